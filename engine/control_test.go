package engine

import (
	"errors"
	"testing"
	"time"
)

func TestRunControl_Checkpoint(t *testing.T) {
	rc := NewRunControl()

	if err := rc.Checkpoint(); err != nil {
		t.Fatalf("fresh control should pass checkpoints: %v", err)
	}

	rc.Cancel()
	if err := rc.Checkpoint(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestRunControl_PauseBlocksUntilResume(t *testing.T) {
	rc := NewRunControl()
	rc.Pause()

	done := make(chan error, 1)
	go func() {
		done <- rc.Checkpoint()
	}()

	select {
	case err := <-done:
		t.Fatalf("checkpoint returned while paused: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	rc.Resume()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil after resume, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("checkpoint did not return after resume")
	}
}

func TestRunControl_CancelWinsOverPause(t *testing.T) {
	rc := NewRunControl()
	rc.Pause()

	done := make(chan error, 1)
	go func() {
		done <- rc.Checkpoint()
	}()

	rc.Cancel()
	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("paused checkpoint did not observe cancellation")
	}
}
