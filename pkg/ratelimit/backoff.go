package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Backoff computes exponential retry delays with random jitter. Attempt 0
// waits Base, attempt 1 waits 2*Base, attempt n waits Base*2^n, each plus a
// uniform random duration in [0, Jitter).
type Backoff struct {
	Base   time.Duration
	Jitter time.Duration
}

// DefaultBackoff matches the upstream search provider's recommended retry
// schedule: 1s base, up to 500ms jitter.
var DefaultBackoff = Backoff{Base: time.Second, Jitter: 500 * time.Millisecond}

// Delay returns the wait duration for the given zero-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base << uint(attempt)
	if b.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(b.Jitter)))
	}
	return d
}

// Sleep waits for the attempt's delay or until the context is canceled.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
