package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{})

	s := New(time.Hour, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			close(done)
		}
		return nil
	})
	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not run on start")
	}
}

func TestSchedulerTicks(t *testing.T) {
	var runs atomic.Int32

	s := New(10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs before the deadline", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()
}

func TestSchedulerStopCancelsContext(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})

	s := New(time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	})
	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("run never started")
	}

	s.Stop()

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the run context")
	}
}
