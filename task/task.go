// Package task runs small pieces of background work with a completion
// signal and a way to call them off.
package task

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a single background job.  It finishes exactly once, either by
// running its function or by being cancelled first.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Go runs fn in the background.
func Go(ctx context.Context, fn func(context.Context) error) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.err = fn(ctx)
	}()
	return t
}

// After runs fn once d has elapsed on clock, unless the task is cancelled
// or ctx ends first, in which case fn never runs and Err reports why.
func After(ctx context.Context, clock clockwork.Clock, d time.Duration, fn func(context.Context) error) *Task {
	return Go(ctx, func(ctx context.Context) error {
		timer := clock.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.Chan():
		}
		return fn(ctx)
	})
}

// Cancel asks the task to stop.  Safe on a nil or finished task.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancel()
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its result.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// WaitContext is Wait with a way out.
func (t *Task) WaitContext(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is the task's result, or nil while it is still running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Finished reports whether the task has completed.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
