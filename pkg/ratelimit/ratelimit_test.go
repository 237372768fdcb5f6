package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGate_SerializesWithOnePermit(t *testing.T) {
	gate := NewGate(1)
	ctx := context.Background()

	var inFlight, maxInFlight atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(ctx); err != nil {
				t.Errorf("unexpected acquire error: %v", err)
				return
			}
			defer gate.Release()

			cur := inFlight.Add(1)
			for {
				prev := maxInFlight.Load()
				if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("expected at most 1 in-flight operation, observed %d", got)
	}
}

func TestGate_ClampsPermits(t *testing.T) {
	gate := NewGate(0)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire on clamped gate failed: %v", err)
	}
	gate.Release()
}

func TestGate_ContextCancellation(t *testing.T) {
	gate := NewGate(1)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer gate.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := gate.Acquire(ctx); err == nil {
		t.Fatal("expected context deadline error while gate is held")
	}
}

func TestBackoff_DelayDoubles(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{-1, 100 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := b.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Jitter: 50 * time.Millisecond}

	for i := 0; i < 50; i++ {
		d := b.Delay(1)
		if d < 200*time.Millisecond || d >= 250*time.Millisecond {
			t.Fatalf("jittered delay %v outside [200ms, 250ms)", d)
		}
	}
}

func TestBackoff_SleepCancellation(t *testing.T) {
	b := Backoff{Base: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Sleep(ctx, 0); err == nil {
		t.Fatal("expected context canceled error")
	}
}

func TestHostLimiter_SeparateBuckets(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	// First request for each host consumes the burst and returns immediately.
	start := time.Now()
	if err := hl.WaitURL(ctx, "https://a.example.com/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := hl.WaitURL(ctx, "https://b.example.com/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Errorf("distinct hosts should not block each other")
	}
}

func TestHostLimiter_BadURLFallback(t *testing.T) {
	hl := NewHostLimiter(100, 1)
	if err := hl.WaitURL(context.Background(), "::not-a-url"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
