package models

import (
	"fmt"
	"strings"

	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
)

// RecordDutyCommand asks for a new duty to be appended to a person's timeline.
type RecordDutyCommand struct {
	Name      string
	Rank      string
	DutyTitle string
	StartDate Date
}

// IsRetirement reports whether the command ends the person's career.
func (c RecordDutyCommand) IsRetirement() bool {
	return IsRetirement(c.DutyTitle)
}

// Validate checks the command's own fields. Store state is checked by CanRecordDuty.
func (c RecordDutyCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(c.Rank) == "" {
		return dErrors.New(dErrors.CodeValidation, "rank is required")
	}
	if strings.TrimSpace(c.DutyTitle) == "" {
		return dErrors.New(dErrors.CodeValidation, "dutyTitle is required")
	}
	if c.StartDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "dutyStartDate is required")
	}
	return nil
}

// RecordDutyContext is everything the guard needs, read inside the unit of work.
type RecordDutyContext struct {
	Command RecordDutyCommand
	// Person is nil when no person has Command.Name.
	Person *Person
	// Duplicate is the person's duty with the same title and start date, if any.
	Duplicate *AstronautDuty
	// Latest is the person's most recent duty, if any.
	Latest *AstronautDuty
}

// GuardResult is the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Code    dErrors.Code
	// Rule names the failed precondition; stable enough for metric labels.
	Rule   string
	Reason string
}

// Error returns the rejection as a coded error, or nil when allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return dErrors.New(r.Code, r.Reason)
}

// Record-duty preconditions.
const (
	RejectPersonNotFound = "person_not_found"
	RejectDuplicateDuty  = "duplicate_duty"
	RejectNotAfterLatest = "not_after_latest"
)

// CanRecordDuty evaluates the record-duty preconditions. It never mutates.
func CanRecordDuty(c RecordDutyContext) GuardResult {
	if c.Person == nil {
		return GuardResult{
			Code:   dErrors.CodeNotFound,
			Rule:   RejectPersonNotFound,
			Reason: fmt.Sprintf("person %q not found", c.Command.Name),
		}
	}
	if c.Duplicate != nil {
		return GuardResult{
			Code: dErrors.CodeConflict,
			Rule: RejectDuplicateDuty,
			Reason: fmt.Sprintf("a duty titled %q starting %s already exists for %q",
				c.Command.DutyTitle, c.Command.StartDate, c.Person.Name),
		}
	}
	if c.Latest != nil && !c.Command.StartDate.After(c.Latest.StartDate) {
		return GuardResult{
			Code: dErrors.CodeConflict,
			Rule: RejectNotAfterLatest,
			Reason: fmt.Sprintf("duty start %s must be after the current duty start %s",
				c.Command.StartDate, c.Latest.StartDate),
		}
	}
	return GuardResult{Allowed: true}
}

// DutyTransition is the set of writes one accepted RecordDuty produces.
type DutyTransition struct {
	Summary        *AstronautDetail
	SummaryCreated bool
	// Closed is the previous open duty with its end date set, nil on a first duty.
	Closed   *AstronautDuty
	Appended *AstronautDuty
}

// PlanDutyTransition computes the new career summary and timeline writes. Inputs are
// not modified; the returned records are copies.
func PlanDutyTransition(
	summary *AstronautDetail,
	latest *AstronautDuty,
	cmd RecordDutyCommand,
	personID id.PersonID,
	newDutyID id.DutyID,
) DutyTransition {
	var t DutyTransition
	retiring := cmd.IsRetirement()

	if summary == nil {
		t.SummaryCreated = true
		t.Summary = &AstronautDetail{
			PersonID:         personID,
			CurrentRank:      cmd.Rank,
			CurrentDutyTitle: cmd.DutyTitle,
			CareerStartDate:  cmd.StartDate,
		}
		if retiring {
			t.Summary.CareerEndDate = cmd.StartDate.Ptr()
		}
	} else {
		next := *summary
		next.CurrentRank = cmd.Rank
		next.CurrentDutyTitle = cmd.DutyTitle
		if retiring {
			next.CareerEndDate = cmd.StartDate.AddDays(-1).Ptr()
		} else if summary.CareerEndDate != nil {
			end := *summary.CareerEndDate
			next.CareerEndDate = &end
		}
		t.Summary = &next
	}

	if latest != nil {
		closed := *latest
		closed.EndDate = cmd.StartDate.AddDays(-1).Ptr()
		t.Closed = &closed
	}

	t.Appended = &AstronautDuty{
		ID:        newDutyID,
		PersonID:  personID,
		Rank:      cmd.Rank,
		DutyTitle: cmd.DutyTitle,
		StartDate: cmd.StartDate,
	}
	return t
}
