package ratelimit

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of in-flight operations across all callers.
// It is safe for concurrent use by multiple goroutines.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a gate with the given number of permits. Permits below 1
// are clamped to 1, so a zero-value config still serializes calls instead of
// deadlocking.
func NewGate(permits int64) *Gate {
	if permits < 1 {
		permits = 1
	}
	return &Gate{sem: semaphore.NewWeighted(permits)}
}

// Acquire blocks until a permit is available or the context is canceled.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release returns a permit to the gate.
func (g *Gate) Release() {
	g.sem.Release(1)
}
