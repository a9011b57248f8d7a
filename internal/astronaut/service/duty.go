package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	"stargate/internal/audit"
	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
	"stargate/pkg/requestcontext"
)

// RecordDuty appends a duty to a person's timeline and updates their career
// summary. The guard runs on data read inside the unit of work; the writes
// (summary, closed previous duty, new duty) commit together or not at all.
func (s *Service) RecordDuty(ctx context.Context, cmd models.RecordDutyCommand) (dutyID id.DutyID, err error) {
	ctx, span := s.tracer.Start(ctx, "astronaut.RecordDuty")
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveCommand(opRecordDuty, time.Now())

	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Rank = strings.TrimSpace(cmd.Rank)
	cmd.DutyTitle = strings.TrimSpace(cmd.DutyTitle)
	if err := cmd.Validate(); err != nil {
		s.rejected(ctx, opRecordDuty, audit.ActionDutyRecorded, cmd.Name, reasonOf(err))
		return id.DutyID{}, err
	}
	span.SetAttributes(
		attribute.String("person.name", cmd.Name),
		attribute.String("duty.title", cmd.DutyTitle),
		attribute.String("duty.start_date", cmd.StartDate.String()),
	)
	s.logger.InfoContext(ctx, "recording astronaut duty",
		"name", cmd.Name,
		"rank", cmd.Rank,
		"duty_title", cmd.DutyTitle,
		"duty_start_date", cmd.StartDate.String(),
		"request_id", requestcontext.RequestID(ctx),
	)

	var (
		guard      models.GuardResult
		transition models.DutyTransition
	)
	err = s.tx.RunInTx(ctx, []string{cmd.Name}, func(st Store) error {
		gctx, err := loadRecordDutyContext(ctx, st, cmd)
		if err != nil {
			return err
		}
		guard = models.CanRecordDuty(gctx)
		if !guard.Allowed {
			return guard.Error()
		}

		summary, err := st.FindDetail(ctx, gctx.Person.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load career summary")
		}
		transition = models.PlanDutyTransition(summary, gctx.Latest, cmd, gctx.Person.ID, id.NewDutyID())
		transition.Appended.RecordedAt = s.now().UnixNano()
		return applyDutyTransition(ctx, st, transition)
	})
	if err != nil {
		err = translate(err, "person not found", "duty already recorded", "failed to record duty")
		reason := guard.Rule
		if reason == "" {
			reason = reasonOf(err)
		}
		s.rejected(ctx, opRecordDuty, audit.ActionDutyRecorded, cmd.Name, reason)
		s.logger.WarnContext(ctx, "astronaut duty rejected",
			"name", cmd.Name,
			"reason", reason,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return id.DutyID{}, err
	}

	s.afterDutyRecorded(ctx, cmd, transition)
	return transition.Appended.ID, nil
}

// loadRecordDutyContext reads everything the guard needs. A missing person is
// not an error here; the guard reports it.
func loadRecordDutyContext(ctx context.Context, st Store, cmd models.RecordDutyCommand) (models.RecordDutyContext, error) {
	gctx := models.RecordDutyContext{Command: cmd}
	person, err := st.FindPersonByName(ctx, cmd.Name)
	if errors.Is(err, store.ErrNotFound) {
		return gctx, nil
	}
	if err != nil {
		return gctx, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up person")
	}
	gctx.Person = person

	dup, err := st.FindDutyByTitleAndStart(ctx, person.ID, cmd.DutyTitle, cmd.StartDate)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return gctx, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up duty")
	}
	gctx.Duplicate = dup

	latest, err := st.FindLatestDuty(ctx, person.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return gctx, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up current duty")
	}
	gctx.Latest = latest
	return gctx, nil
}

func applyDutyTransition(ctx context.Context, st Store, t models.DutyTransition) error {
	if err := st.SaveDetail(ctx, t.Summary); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save career summary")
	}
	if t.Closed != nil {
		if err := st.UpdateDuty(ctx, t.Closed); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close previous duty")
		}
	}
	if err := st.CreateDuty(ctx, t.Appended); err != nil {
		if errors.Is(err, store.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeConflict, "duty already recorded")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create duty")
	}
	return nil
}

func (s *Service) afterDutyRecorded(ctx context.Context, cmd models.RecordDutyCommand, t models.DutyTransition) {
	requestID := requestcontext.RequestID(ctx)
	retired := cmd.IsRetirement()

	s.invalidate(ctx, cmd.Name)
	s.metrics.IncrementDutyRecorded(retired)
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionDutyRecorded,
		Outcome:    audit.OutcomeAccepted,
		PersonID:   t.Appended.PersonID.String(),
		PersonName: cmd.Name,
		DutyID:     t.Appended.ID.String(),
		DutyTitle:  cmd.DutyTitle,
		Retired:    retired,
	})

	if t.SummaryCreated {
		s.logger.InfoContext(ctx, "career started",
			"person_id", t.Summary.PersonID.String(),
			"career_start_date", t.Summary.CareerStartDate.String(),
			"request_id", requestID,
		)
	}
	if t.Closed != nil {
		s.logger.InfoContext(ctx, "previous duty closed",
			"duty_id", t.Closed.ID.String(),
			"duty_title", t.Closed.DutyTitle,
			"duty_end_date", t.Closed.EndDate.String(),
			"request_id", requestID,
		)
	}
	if retired && t.Summary.CareerEndDate != nil {
		s.logger.InfoContext(ctx, "astronaut retired",
			"person_id", t.Summary.PersonID.String(),
			"career_end_date", t.Summary.CareerEndDate.String(),
			"request_id", requestID,
		)
	}
	s.logger.InfoContext(ctx, "astronaut duty recorded",
		"duty_id", t.Appended.ID.String(),
		"person_id", t.Appended.PersonID.String(),
		"request_id", requestID,
	)
}
