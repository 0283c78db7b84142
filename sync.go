package main

import (
	"log/slog"
	"time"

	"github.com/lexandro/milestones-mcp/events"
)

// runPeriodicRescan requests a full rescan at the given interval, catching
// changes the watcher missed. It runs until the provided stop channel is closed.
func runPeriodicRescan(
	interval time.Duration,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
	stop <-chan struct{},
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic rescan started", "interval", interval)

	for {
		select {
		case <-stop:
			logger.Info("periodic rescan stopped")
			return
		case <-ticker.C:
			dispatcher.Dispatch(events.Event{Kind: events.RescanRequested})
		}
	}
}
