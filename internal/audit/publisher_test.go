package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEmitter struct{ err error }

func (f failingEmitter) Emit(context.Context, Event) error { return f.err }

func TestLogPublisherWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Emit(context.Background(), Event{
		Action:     ActionDutyRecorded,
		Outcome:    OutcomeRejected,
		PersonName: "Ada",
		Reason:     "duplicate_duty",
		RequestID:  "req-1",
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "duty_recorded", line["action"])
	assert.Equal(t, "rejected", line["outcome"])
	assert.Equal(t, "duplicate_duty", line["reason"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.NotContains(t, line, "duty_id")
}

func TestFanoutEmitsToAllAndJoinsErrors(t *testing.T) {
	rec1, rec2 := NewRecorder(), NewRecorder()
	boom := errors.New("boom")
	f := Fanout{rec1, failingEmitter{err: boom}, rec2}

	err := f.Emit(context.Background(), Event{Action: ActionPersonCreated, PersonName: "Ada"})
	assert.ErrorIs(t, err, boom)
	require.Len(t, rec1.Events(), 1)
	require.Len(t, rec2.Events(), 1)
	assert.False(t, rec1.Events()[0].Timestamp.IsZero())
}

func TestRecorderByAction(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	require.NoError(t, r.Emit(ctx, Event{Action: ActionPersonCreated}))
	require.NoError(t, r.Emit(ctx, Event{Action: ActionDutyRecorded}))
	require.NoError(t, r.Emit(ctx, Event{Action: ActionDutyRecorded}))

	assert.Len(t, r.ByAction(ActionDutyRecorded), 2)
	assert.Len(t, r.ByAction(ActionPersonRenamed), 0)
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()
	require.NoError(t, q.Emit(ctx, Event{PersonName: "first"}))
	require.NoError(t, q.Emit(ctx, Event{PersonName: "second"}))
	assert.Equal(t, int64(1), q.Dropped())
}

func TestWorkerForwardsAndDrainsOnShutdown(t *testing.T) {
	q := NewQueue(10)
	sink := NewRecorder()
	w := NewWorker(sink, q, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, q.Emit(context.Background(), Event{PersonName: "Ada"}))
	require.Eventually(t, func() bool { return len(sink.Events()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	require.NoError(t, q.Emit(context.Background(), Event{PersonName: "Late"}))
	w.drain()
	assert.Len(t, sink.Events(), 2)
}

func TestWorkerSurvivesSinkErrors(t *testing.T) {
	q := NewQueue(10)
	var buf bytes.Buffer
	w := NewWorker(failingEmitter{err: errors.New("down")}, q, slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, q.Emit(context.Background(), Event{Action: ActionPersonCreated, PersonName: "Ada"}))
	w.drain()
	assert.Contains(t, buf.String(), "audit sink failed")
}

func TestNewKafkaPublisherRequiresConfig(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "topic")
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}
