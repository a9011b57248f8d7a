// Package seed loads development data into an empty record store.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"stargate/internal/astronaut/models"
	id "stargate/pkg/domain"
	"stargate/pkg/requestcontext"
)

// Commands is the subset of the astronaut service the seeder drives.
type Commands interface {
	CreatePerson(ctx context.Context, name string) (id.PersonID, error)
	RecordDuty(ctx context.Context, cmd models.RecordDutyCommand) (id.DutyID, error)
}

// PeopleCounter reports how many people the store holds.
type PeopleCounter interface {
	CountPeople(ctx context.Context) (int, error)
}

// Result summarises one seeding run.
type Result struct {
	Skipped       bool
	PeopleCreated int
	DutiesCreated int
}

type Seeder struct {
	counter  PeopleCounter
	commands Commands
	logger   *slog.Logger
}

func New(counter PeopleCounter, commands Commands, logger *slog.Logger) *Seeder {
	return &Seeder{counter: counter, commands: commands, logger: logger}
}

// Run seeds John Doe (a commander starting today) and Jane Doe (no duties).
// It does nothing when anyone already exists.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	count, err := s.counter.CountPeople(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count people: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "seed skipped", "people", count)
		return Result{Skipped: true}, nil
	}

	var res Result
	if _, err := s.commands.CreatePerson(ctx, "John Doe"); err != nil {
		return res, fmt.Errorf("seed John Doe: %w", err)
	}
	res.PeopleCreated++

	if _, err := s.commands.RecordDuty(ctx, models.RecordDutyCommand{
		Name:      "John Doe",
		Rank:      "1LT",
		DutyTitle: "Commander",
		StartDate: models.NewDate(requestcontext.Now(ctx)),
	}); err != nil {
		return res, fmt.Errorf("seed John Doe duty: %w", err)
	}
	res.DutiesCreated++

	if _, err := s.commands.CreatePerson(ctx, "Jane Doe"); err != nil {
		return res, fmt.Errorf("seed Jane Doe: %w", err)
	}
	res.PeopleCreated++

	s.logger.InfoContext(ctx, "seed complete",
		"people_created", res.PeopleCreated,
		"duties_created", res.DutiesCreated,
	)
	return res, nil
}
