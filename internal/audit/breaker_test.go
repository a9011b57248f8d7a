package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySink struct {
	fail  bool
	calls int
}

func (s *flakySink) Emit(context.Context, Event) error {
	s.calls++
	if s.fail {
		return errors.New("broker unreachable")
	}
	return nil
}

func newTestBreaker(sink Emitter, clock *time.Time) *Breaker {
	b := NewBreaker(sink, 2, time.Minute)
	b.now = func() time.Time { return *clock }
	return b
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink := &flakySink{fail: true}
	b := newTestBreaker(sink, &clock)
	ctx := context.Background()

	require.Error(t, b.Emit(ctx, Event{}))
	assert.False(t, b.IsOpen())
	require.Error(t, b.Emit(ctx, Event{}))
	assert.True(t, b.IsOpen())

	err := b.Emit(ctx, Event{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, sink.calls, "open breaker must not call the sink")
	assert.Equal(t, int64(1), b.Dropped())
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink := &flakySink{fail: true}
	b := newTestBreaker(sink, &clock)
	ctx := context.Background()
	_ = b.Emit(ctx, Event{})
	_ = b.Emit(ctx, Event{})
	require.True(t, b.IsOpen())

	t.Run("failed half-open call reopens", func(t *testing.T) {
		clock = clock.Add(2 * time.Minute)
		require.Error(t, b.Emit(ctx, Event{}))
		assert.Equal(t, 3, sink.calls)
		assert.True(t, b.IsOpen())
	})

	t.Run("successful half-open call closes", func(t *testing.T) {
		clock = clock.Add(2 * time.Minute)
		sink.fail = false
		require.NoError(t, b.Emit(ctx, Event{}))
		assert.False(t, b.IsOpen())
		require.NoError(t, b.Emit(ctx, Event{}))
		assert.Equal(t, 5, sink.calls)
	})
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink := &flakySink{fail: true}
	b := newTestBreaker(sink, &clock)
	ctx := context.Background()

	_ = b.Emit(ctx, Event{})
	sink.fail = false
	require.NoError(t, b.Emit(ctx, Event{}))
	sink.fail = true
	_ = b.Emit(ctx, Event{})

	assert.False(t, b.IsOpen())
}

func TestRegisterDeliveryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newTestBreaker(&flakySink{fail: true}, &clock)
	q := NewQueue(1)
	RegisterDeliveryMetrics(reg, q, b)

	_ = b.Emit(context.Background(), Event{})
	_ = b.Emit(context.Background(), Event{})
	_ = b.Emit(context.Background(), Event{})

	n, err := promtestutil.GatherAndCount(reg,
		"stargate_audit_queue_dropped_total",
		"stargate_audit_circuit_breaker_dropped_total",
		"stargate_audit_circuit_breaker_open",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	expected := `
# HELP stargate_audit_circuit_breaker_open 1 while the Kafka circuit breaker is open
# TYPE stargate_audit_circuit_breaker_open gauge
stargate_audit_circuit_breaker_open 1
`
	require.NoError(t, promtestutil.GatherAndCompare(reg, strings.NewReader(expected), "stargate_audit_circuit_breaker_open"))
}
