package models

import (
	"strings"

	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
)

// MaxNameLength bounds person names.
const MaxNameLength = 256

// Person is the identity record. Name is unique across all people and compared
// case-sensitively.
type Person struct {
	ID   id.PersonID `json:"personId"`
	Name string      `json:"name"`
}

// NewPerson validates the name and builds a Person.
func NewPerson(personID id.PersonID, name string) (*Person, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return &Person{ID: personID, Name: name}, nil
}

// NormalizeName trims surrounding whitespace and enforces length bounds.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "name must be 256 characters or less")
	}
	return name, nil
}

// PersonAstronaut is the career projection of one person. The career fields are
// nil when the person has no recorded duty.
type PersonAstronaut struct {
	PersonID         id.PersonID `json:"personId"`
	Name             string      `json:"name"`
	CurrentRank      *string     `json:"currentRank"`
	CurrentDutyTitle *string     `json:"currentDutyTitle"`
	CareerStartDate  *Date       `json:"careerStartDate"`
	CareerEndDate    *Date       `json:"careerEndDate"`
}

// NewPersonAstronaut joins a person with its optional career summary.
func NewPersonAstronaut(p *Person, detail *AstronautDetail) *PersonAstronaut {
	pa := &PersonAstronaut{PersonID: p.ID, Name: p.Name}
	if detail != nil {
		rank, title, start := detail.CurrentRank, detail.CurrentDutyTitle, detail.CareerStartDate
		pa.CurrentRank = &rank
		pa.CurrentDutyTitle = &title
		pa.CareerStartDate = &start
		if detail.CareerEndDate != nil {
			end := *detail.CareerEndDate
			pa.CareerEndDate = &end
		}
	}
	return pa
}

// DutyHistory is a person's projection plus their duties, most recent first.
// Person is nil when no person has the requested name.
type DutyHistory struct {
	Person *PersonAstronaut `json:"person"`
	Duties []*AstronautDuty `json:"astronautDuties"`
}
