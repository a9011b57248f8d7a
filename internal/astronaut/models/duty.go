package models

import (
	id "stargate/pkg/domain"
)

// DutyTitleRetired is the reserved duty title that ends a career.
const DutyTitleRetired = "Retired"

// IsRetirement reports whether title is the reserved retirement title.
func IsRetirement(title string) bool {
	return title == DutyTitleRetired
}

// AstronautDuty is one rank and title assignment in a person's timeline.
// EndDate is nil while the duty is current.
type AstronautDuty struct {
	ID        id.DutyID   `json:"id"`
	PersonID  id.PersonID `json:"personId"`
	Rank      string      `json:"rank"`
	DutyTitle string      `json:"dutyTitle"`
	StartDate Date        `json:"dutyStartDate"`
	EndDate   *Date       `json:"dutyEndDate"`
	// RecordedAt orders duties sharing a start date (unix nanoseconds).
	RecordedAt int64 `json:"-"`
}

// IsOpen reports whether the duty has no end date.
func (d *AstronautDuty) IsOpen() bool {
	return d.EndDate == nil
}

// AstronautDetail is the stored career summary of a person with at least one
// recorded duty.
type AstronautDetail struct {
	PersonID         id.PersonID
	CurrentRank      string
	CurrentDutyTitle string
	CareerStartDate  Date
	// CareerEndDate is set by retirement and never cleared.
	CareerEndDate *Date
}

// IsRetired reports whether the career has ended.
func (d *AstronautDetail) IsRetired() bool {
	return d.CareerEndDate != nil
}
