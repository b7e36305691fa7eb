package batch

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum spacing between external calls across all
// concurrent callers. The next-grant timestamp is owned by the instance
// and guarded by its mutex; an unsynchronized read-then-write of that
// field would let two callers both observe themselves as clear to
// proceed.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewLimiter creates a limiter allowing callsPerSecond external calls.
// callsPerSecond <= 0 disables limiting.
func NewLimiter(callsPerSecond float64) *Limiter {
	if callsPerSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		interval: time.Duration(float64(time.Second) / callsPerSecond),
	}
}

// Wait blocks until the caller may make its call. Across all concurrent
// callers, no two returns occur less than the configured interval apart.
// A cancelled context releases the caller early; its reserved slot is
// burned rather than handed to another waiter.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.interval == 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	grant := l.next
	if grant.Before(now) {
		grant = now
	}
	l.next = grant.Add(l.interval)
	l.mu.Unlock()

	delay := time.Until(grant)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval returns the enforced spacing, zero when disabled.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
