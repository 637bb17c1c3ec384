package search

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
)

// limiter tracks the request budget against a single upstream provider.
type limiter struct {
	clock       clock.Clock
	minInterval time.Duration
	backoffBase time.Duration

	mu sync.Mutex
	// Time the last request was issued.
	lastCall time.Time
	// Consecutive rate-limited responses.
	attempts int
	// No request may be issued before this time.
	blockedUntil time.Time
}

func newLimiter(clk clock.Clock, minInterval, backoffBase time.Duration) *limiter {
	return &limiter{
		clock:       clk,
		minInterval: minInterval,
		backoffBase: backoffBase,
	}
}

// reserve blocks until a request may be issued and records it as issued.
func (l *limiter) reserve(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		next := l.lastCall.Add(l.minInterval)
		if l.blockedUntil.After(next) {
			next = l.blockedUntil
		}

		if !next.After(now) {
			l.lastCall = now
			l.mu.Unlock()

			return nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(next.Sub(now)):
		}
	}
}

// throttled records a rate-limited response and returns the backoff that
// now applies. The backoff doubles with every consecutive call.
func (l *limiter) throttled() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts++
	backoff := l.backoffBase << (l.attempts - 1)
	l.blockedUntil = l.clock.Now().Add(backoff)

	return backoff
}

// reset clears the consecutive rate-limit counter.
func (l *limiter) reset() {
	l.mu.Lock()
	l.attempts = 0
	l.mu.Unlock()
}
