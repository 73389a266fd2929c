package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Fetching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	// Stop is idempotent.
	s.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Fetching...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Fetching...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Download failed")
}
