package main

import (
	"log/slog"
	"os"

	"github.com/lexandro/milestones-mcp/events"
	"github.com/lexandro/milestones-mcp/ignore"
	"github.com/lexandro/milestones-mcp/reconcile"
	"github.com/lexandro/milestones-mcp/tools"
	"github.com/lexandro/milestones-mcp/watcher"
)

// newDispatcher subscribes the sync actions to the events that trigger them.
func newDispatcher(
	syncer *reconcile.Syncer,
	ignoreMatcher *ignore.Matcher,
	rescan tools.RescanFunc,
	logger *slog.Logger,
) *events.Dispatcher {
	dispatcher := events.NewDispatcher()

	dispatcher.On(events.FileSaved, func(event events.Event) {
		info, err := os.Stat(event.Path)
		if err != nil || info.IsDir() {
			return
		}
		if ignoreMatcher.IsFileTooLarge(info.Size()) {
			// a file that outgrew the limit no longer backs any milestone
			logger.Debug("skipped large file", "path", event.Path, "size", info.Size())
			syncer.FileRemoved(event.Path)
			return
		}
		if _, err := syncer.FileSaved(event.Path); err != nil {
			logger.Debug("skipped file update", "path", event.Path, "error", err)
		}
	})

	dispatcher.On(events.FileRemoved, func(event events.Event) {
		syncer.FileRemoved(event.Path)
	})

	dispatcher.On(events.RulesChanged, func(event events.Event) {
		logger.Info("ignore rules changed, rescanning", "trigger", event.Path)
		rescan()
	})

	dispatcher.On(events.RescanRequested, func(event events.Event) {
		rescan()
	})

	return dispatcher
}

// classifyChange maps a watcher change to the event it triggers.
// Changes to ignore rule files trigger a full rescan instead of a partial sync.
func classifyChange(change watcher.Change, ignoreMatcher *ignore.Matcher) events.Event {
	if ignoreMatcher.IsRuleFile(change.Path) {
		return events.Event{Kind: events.RulesChanged, Path: change.Path}
	}
	if change.Op == watcher.OpRemove {
		return events.Event{Kind: events.FileRemoved, Path: change.Path}
	}
	return events.Event{Kind: events.FileSaved, Path: change.Path}
}

// handleWatcherEvents processes debounced file system changes until the watcher stops.
func handleWatcherEvents(fileWatcher *watcher.Watcher, dispatcher *events.Dispatcher, ignoreMatcher *ignore.Matcher) {
	for batch := range fileWatcher.Changes() {
		for _, change := range batch {
			dispatcher.Dispatch(classifyChange(change, ignoreMatcher))
		}
	}
}
