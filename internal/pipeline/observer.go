package pipeline

import (
	"context"
	"time"
)

// Event describes one state transition of a run.
type Event struct {
	RunID   string
	Program string
	Mode    Mode
	From    State
	To      State
	At      time.Time
	// Err is set when To is Failed or Interrupted.
	Err error
	// Fields carries step details such as paths, counts and the assignment.
	Fields map[string]any
}

// Observer is notified of every transition. Implementations must not block
// for long; failures are theirs to handle.
type Observer interface {
	OnTransition(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnTransition(ctx context.Context, ev Event) {
	f(ctx, ev)
}

type noopObserver struct{}

func (noopObserver) OnTransition(context.Context, Event) {}
