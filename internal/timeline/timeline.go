package timeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level classifies a timeline event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is one append-only entry in a run's timeline: which component said
// what, and how loudly.
type Event struct {
	RunID   string    `json:"run_id"`
	Agent   string    `json:"agent"`
	Message string    `json:"message"`
	Level   Level     `json:"level"`
	At      time.Time `json:"at"`
}

// Emitter receives timeline events. Implementations must be safe for
// concurrent use; callers treat emit failures as non-fatal.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Bus keeps per-run in-memory event queues so a UI or test can drain the
// timeline after (or during) a run.
type Bus struct {
	mu     sync.Mutex
	queues map[string][]Event
	max    int
}

// NewBus creates a bus that retains up to max events per run (0 means 1024).
func NewBus(max int) *Bus {
	if max <= 0 {
		max = 1024
	}
	return &Bus{queues: make(map[string][]Event), max: max}
}

// Emit appends the event to the run's queue. Oldest events are dropped once
// the per-run cap is reached; emitting never blocks pipeline progress.
func (b *Bus) Emit(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.queues[ev.RunID]
	if len(q) >= b.max {
		q = q[1:]
	}
	b.queues[ev.RunID] = append(q, ev)
	return nil
}

// Events returns a copy of the events recorded for a run, in emit order.
func (b *Bus) Events(runID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.queues[runID]
	out := make([]Event, len(q))
	copy(out, q)
	return out
}

// SlogEmitter mirrors timeline events into a structured logger.
type SlogEmitter struct {
	Logger *slog.Logger
}

func (s SlogEmitter) Emit(_ context.Context, ev Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch ev.Level {
	case LevelError:
		logger.Error(ev.Message, "run_id", ev.RunID, "agent", ev.Agent)
	case LevelWarn:
		logger.Warn(ev.Message, "run_id", ev.RunID, "agent", ev.Agent)
	default:
		logger.Info(ev.Message, "run_id", ev.RunID, "agent", ev.Agent)
	}
	return nil
}

// Multi fans one event out to several emitters; the first error is returned
// after all emitters have been attempted.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, ev Event) error {
	var first error
	for _, e := range m {
		if err := e.Emit(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
