package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("computing layout")
	s.Start()
	s.Stop()

	// Stop cancels the animation context, so the spinner reports cancelled
	// once stopped.
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop")
	}
}

func TestSpinnerStopIdempotent(t *testing.T) {
	s := newSpinner("rendering")
	s.Start()
	for i := 0; i < 3; i++ {
		s.Stop()
	}
}

func TestSpinnerFollowsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "converting to png")
	s.Start()

	cancel()

	deadline := time.Now().Add(time.Second)
	for !s.Cancelled() {
		if time.Now().After(deadline) {
			t.Fatal("spinner never observed context cancellation")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "waiting on server")
	s.Start()

	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopMessages(t *testing.T) {
	// The message variants route through the styled printers; here we only
	// care that they stop the animation without panicking.
	s := newSpinner("archiving match")
	s.Start()
	s.StopWithSuccess("archived")

	s2 := newSpinner("connecting")
	s2.Start()
	s2.StopWithError("connection refused")
}
