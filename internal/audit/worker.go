package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// Queue hands events to a Worker without blocking the caller. When the inbox
// is full the event is dropped and counted; audit delivery never fails a command.
type Queue struct {
	inbox   chan Event
	dropped atomic.Int64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{inbox: make(chan Event, size)}
}

func (q *Queue) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case q.inbox <- event:
	default:
		q.dropped.Add(1)
	}
	return nil
}

// Dropped reports how many events were discarded because the inbox was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Worker consumes queued events and forwards them to a sink such as Kafka.
type Worker struct {
	sink   Emitter
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Emitter, q *Queue, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: q.inbox, logger: logger}
}

// Run forwards events until ctx is done, then drains what is already queued.
// Sink errors are logged and the event is skipped.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.forward(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	err := w.sink.Emit(ctx, event)
	if err == nil || w.logger == nil {
		return
	}
	if errors.Is(err, ErrCircuitOpen) {
		w.logger.DebugContext(ctx, "audit event dropped", "action", string(event.Action))
		return
	}
	w.logger.WarnContext(ctx, "audit sink failed",
		"action", string(event.Action),
		"person_name", event.PersonName,
		"error", err,
	)
}
