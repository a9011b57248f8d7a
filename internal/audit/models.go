package audit

import "time"

// Action names a command that changed, or tried to change, astronaut records.
type Action string

const (
	ActionPersonCreated Action = "person_created"
	ActionPersonRenamed Action = "person_renamed"
	ActionDutyRecorded  Action = "duty_recorded"
)

// Outcome records whether the command was applied.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Event is emitted once per command outcome. Keep it transport-agnostic so
// sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Outcome    Outcome   `json:"outcome"`
	PersonID   string    `json:"person_id,omitempty"`
	PersonName string    `json:"person_name"`
	DutyID     string    `json:"duty_id,omitempty"`
	DutyTitle  string    `json:"duty_title,omitempty"`
	// Retired is set when an accepted duty ended the career.
	Retired bool `json:"retired,omitempty"`
	// Reason is the rejection rule or error code.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
