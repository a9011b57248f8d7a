package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is skipping its sink.
var ErrCircuitOpen = errors.New("audit sink circuit open")

// Breaker stops calling a failing sink. After threshold consecutive failures
// it drops events without trying the sink until cooldown has passed, then lets
// one attempt through; a success closes it again.
type Breaker struct {
	sink Emitter

	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	dropped   int64
	now       func() time.Time
}

// NewBreaker wraps sink. Non-positive values fall back to 5 failures and one minute.
func NewBreaker(sink Emitter, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{
		sink:      sink,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (b *Breaker) Emit(ctx context.Context, event Event) error {
	if !b.allow() {
		return ErrCircuitOpen
	}
	err := b.sink.Emit(ctx, event)
	b.record(err)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold || b.now().After(b.openUntil) {
		return true
	}
	b.dropped++
	return false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
	}
}

// IsOpen reports whether events are currently being dropped.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold && !b.now().After(b.openUntil)
}

// Dropped counts events skipped while open.
func (b *Breaker) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
