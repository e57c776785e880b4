// Package action implements the pipeline's unit of work: a state machine
// with started/progress/completed notifications, a wrapper for external
// processes with per-tool progress-line parsing, and the file-transform
// actions that run without any child process.
package action

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"discforge/internal/logging"
	"discforge/internal/services"
)

// State tracks an action's lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateStarted
	StateCompleted
)

// Observer receives an action's lifecycle notifications. Nil callbacks are
// skipped.
type Observer struct {
	Started   func(description string)
	Progress  func(description string, current, maximum int64, elapsed, remaining time.Duration)
	Completed func(success bool, message string)
}

// Action is one unit of orchestrated work. Run blocks until the work is
// finished and reports the outcome both through the observers and its return
// value.
type Action interface {
	Description() string
	SetDescription(description string)
	Observe(obs Observer)
	Run(ctx context.Context) error
	Abort()
}

// Base carries the shared state machine. Concrete actions embed it, call
// Begin when their Run starts and Complete exactly once when it ends.
type Base struct {
	mu          sync.Mutex
	description string
	state       State
	startedAt   time.Time
	observers   []Observer
	logger      *slog.Logger
}

// NewBase returns a base with the given description. A nil logger is
// replaced with a no-op logger.
func NewBase(description string, logger *slog.Logger) Base {
	if logger == nil {
		logger = logging.NewNop()
	}
	return Base{description: description, logger: logger}
}

// Description returns the human-readable description.
func (b *Base) Description() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.description
}

// SetDescription replaces the description, used to prefix step counters.
func (b *Base) SetDescription(description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.description = description
}

// Observe registers an observer for subsequent notifications.
func (b *Base) Observe(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, obs)
}

// Logger returns the action's logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// State returns the current lifecycle state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Begin transitions NotStarted → Started, records the start time and emits
// the started notification plus an initial zero progress. A second call
// fails without re-emitting anything.
func (b *Base) Begin() error {
	b.mu.Lock()
	if b.state != StateNotStarted {
		b.mu.Unlock()
		return services.Wrap(services.ErrValidation, "action", "start",
			"action already started", nil)
	}
	b.state = StateStarted
	b.startedAt = time.Now()
	description := b.description
	observers := b.snapshotObservers()
	b.mu.Unlock()

	for _, obs := range observers {
		if obs.Started != nil {
			obs.Started(description)
		}
	}
	b.EmitProgress(0, 1)
	return nil
}

// EmitProgress reports (current, maximum) with a linearly extrapolated
// remaining time.
func (b *Base) EmitProgress(current, maximum int64) {
	b.emit(current, maximum, -1)
}

// EmitProgressWithRemaining reports progress with an explicit remaining-time
// estimate instead of the extrapolation.
func (b *Base) EmitProgressWithRemaining(current, maximum int64, remaining time.Duration) {
	b.emit(current, maximum, remaining)
}

func (b *Base) emit(current, maximum int64, remaining time.Duration) {
	b.mu.Lock()
	if b.state != StateStarted {
		b.mu.Unlock()
		return
	}
	elapsed := time.Since(b.startedAt)
	description := b.description
	observers := b.snapshotObservers()
	b.mu.Unlock()

	if remaining < 0 {
		remaining = 0
		if current > 0 && maximum > 0 && current <= maximum {
			remaining = time.Duration(float64(elapsed)*float64(maximum)/float64(current)) - elapsed
		}
	}
	for _, obs := range observers {
		if obs.Progress != nil {
			obs.Progress(description, current, maximum, elapsed, remaining)
		}
	}
}

// Complete transitions to Completed and emits the completion notification.
// Further calls are no-ops, so a process reporting both a normal and an
// error callback cannot double-complete.
func (b *Base) Complete(success bool, message string) {
	b.mu.Lock()
	if b.state == StateCompleted {
		b.mu.Unlock()
		return
	}
	b.state = StateCompleted
	observers := b.snapshotObservers()
	b.mu.Unlock()

	for _, obs := range observers {
		if obs.Completed != nil {
			obs.Completed(success, message)
		}
	}
}

// Abort is a no-op by default; actions that cannot be cancelled mid-flight
// inherit it.
func (b *Base) Abort() {}

func (b *Base) snapshotObservers() []Observer {
	out := make([]Observer, len(b.observers))
	copy(out, b.observers)
	return out
}
