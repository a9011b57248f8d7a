package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Emitter accepts audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogPublisher writes events as structured log lines.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	attrs := []any{
		"action", string(event.Action),
		"outcome", string(event.Outcome),
		"person_name", event.PersonName,
	}
	if event.PersonID != "" {
		attrs = append(attrs, "person_id", event.PersonID)
	}
	if event.DutyID != "" {
		attrs = append(attrs, "duty_id", event.DutyID, "duty_title", event.DutyTitle)
	}
	if event.Retired {
		attrs = append(attrs, "retired", true)
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	p.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

// Fanout emits to every emitter and joins their errors.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	var errs []error
	for _, e := range f {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps events in memory. Used by tests and the memory driver.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByAction filters recorded events.
func (r *Recorder) ByAction(action Action) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
