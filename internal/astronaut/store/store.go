// Package store defines the astronaut record store contract shared by the
// in-memory and SQL implementations.
package store

import (
	"context"

	"stargate/internal/astronaut/models"
	id "stargate/pkg/domain"
	"stargate/pkg/platform/sentinel"
)

// Store errors. Implementations may wrap them with context.
var (
	ErrNotFound    = sentinel.ErrNotFound
	ErrAlreadyUsed = sentinel.ErrAlreadyUsed
)

// Store reads and writes people, career summaries and duties.
//
// Lookups that find nothing return ErrNotFound. Writes that would give two
// people the same name return ErrAlreadyUsed.
type Store interface {
	FindPersonByName(ctx context.Context, name string) (*models.Person, error)
	CreatePerson(ctx context.Context, p *models.Person) error
	UpdatePerson(ctx context.Context, p *models.Person) error

	FindDetail(ctx context.Context, personID id.PersonID) (*models.AstronautDetail, error)
	SaveDetail(ctx context.Context, d *models.AstronautDetail) error

	FindDutyByTitleAndStart(ctx context.Context, personID id.PersonID, title string, start models.Date) (*models.AstronautDuty, error)
	FindLatestDuty(ctx context.Context, personID id.PersonID) (*models.AstronautDuty, error)
	CreateDuty(ctx context.Context, d *models.AstronautDuty) error
	UpdateDuty(ctx context.Context, d *models.AstronautDuty) error
	// ListDutiesByPerson returns duties by start date then recording time, newest first.
	ListDutiesByPerson(ctx context.Context, personID id.PersonID) ([]*models.AstronautDuty, error)

	FindPersonAstronaut(ctx context.Context, name string) (*models.PersonAstronaut, error)
	// ListPeople returns every person ordered by name. Never nil.
	ListPeople(ctx context.Context) ([]*models.PersonAstronaut, error)
	CountPeople(ctx context.Context) (int, error)
}

// Tx runs fn as one unit of work. Writes made through the Store passed to fn
// become visible together when fn returns nil and are discarded otherwise.
// Units of work sharing any lock key are serialized.
type Tx interface {
	RunInTx(ctx context.Context, lockKeys []string, fn func(s Store) error) error
}
