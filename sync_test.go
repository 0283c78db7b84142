package main

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lexandro/milestones-mcp/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_runPeriodicRescan_DispatchesRescan(t *testing.T) {
	var requests atomic.Int32
	dispatcher := events.NewDispatcher()
	dispatcher.On(events.RescanRequested, func(events.Event) { requests.Add(1) })

	stop := make(chan struct{})
	defer close(stop)
	go runPeriodicRescan(10*time.Millisecond, dispatcher, testLogger(), stop)

	deadline := time.Now().Add(3 * time.Second)
	for requests.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 rescan requests, got %d", requests.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func Test_runPeriodicRescan_StopsOnChannelClose(t *testing.T) {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		runPeriodicRescan(time.Second, events.NewDispatcher(), testLogger(), stop)
		close(done)
	}()

	// Close stop channel to signal shutdown
	close(stop)

	select {
	case <-done:
		// OK - goroutine stopped cleanly
	case <-time.After(3 * time.Second):
		t.Fatal("runPeriodicRescan did not stop within 3 seconds after closing stop channel")
	}
}
