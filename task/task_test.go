package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestGo(t *testing.T) {
	want := errors.New("boom")
	tk := Go(context.Background(), func(context.Context) error { return want })
	if err := tk.Wait(); !errors.Is(err, want) {
		t.Errorf("Wait() = %v, want %v", err, want)
	}
	if !tk.Finished() {
		t.Errorf("task should be finished after Wait")
	}
}

func TestAfterWaitsForClock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock := clockwork.NewFakeClock()
	ran := make(chan struct{})
	tk := After(ctx, clock, 900*time.Millisecond, func(context.Context) error {
		close(ran)
		return nil
	})
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	clock.Advance(899 * time.Millisecond)
	select {
	case <-ran:
		t.Fatalf("ran before the delay elapsed")
	default:
	}
	clock.Advance(time.Millisecond)
	if err := tk.WaitContext(ctx); err != nil {
		t.Fatalf("WaitContext: %v", err)
	}
	select {
	case <-ran:
	default:
		t.Errorf("function never ran")
	}
}

func TestAfterCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ran := false
	tk := After(context.Background(), clock, time.Second, func(context.Context) error {
		ran = true
		return nil
	})
	tk.Cancel()
	if err := tk.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
	if ran {
		t.Errorf("cancelled task ran")
	}
	// Cancelling twice, or a nil task, is harmless.
	tk.Cancel()
	var nilTask *Task
	nilTask.Cancel()
}

func TestErrWhileRunning(t *testing.T) {
	release := make(chan struct{})
	tk := Go(context.Background(), func(context.Context) error {
		<-release
		return errors.New("late")
	})
	if err := tk.Err(); err != nil {
		t.Errorf("Err() while running = %v, want nil", err)
	}
	close(release)
	if err := tk.Wait(); err == nil {
		t.Errorf("Wait() = nil, want error")
	}
}
