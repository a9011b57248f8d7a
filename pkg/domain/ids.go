// Package domain holds typed identifiers shared across modules.
//
// Typed IDs keep a person id from being passed where a duty id is expected.
// Both are UUIDs on the wire and in storage.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "stargate/pkg/domain-errors"
)

type (
	PersonID uuid.UUID
	DutyID   uuid.UUID
)

func NewPersonID() PersonID { return PersonID(uuid.New()) }
func NewDutyID() DutyID     { return DutyID(uuid.New()) }

func (id PersonID) String() string { return uuid.UUID(id).String() }
func (id DutyID) String() string   { return uuid.UUID(id).String() }

func (id PersonID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DutyID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

func (id PersonID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id DutyID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *PersonID) UnmarshalText(b []byte) error {
	parsed, err := ParsePersonID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DutyID) UnmarshalText(b []byte) error {
	parsed, err := ParseDutyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParsePersonID parses a non-nil UUID.
func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s, "person ID")
	return PersonID(u), err
}

// ParseDutyID parses a non-nil UUID.
func ParseDutyID(s string) (DutyID, error) {
	u, err := parseUUID(s, "duty ID")
	return DutyID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
