package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lexandro/milestones-mcp/config"
	"github.com/lexandro/milestones-mcp/ignore"
	"github.com/lexandro/milestones-mcp/index"
	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/lexandro/milestones-mcp/persist"
	"github.com/lexandro/milestones-mcp/reconcile"
	"github.com/lexandro/milestones-mcp/scan"
	"github.com/lexandro/milestones-mcp/server"
	"github.com/lexandro/milestones-mcp/tools"
	"github.com/lexandro/milestones-mcp/watcher"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	logger.Info("starting milestones-mcp",
		"root", cfg.RootDir,
		"state", cfg.StatePath,
		"marker", cfg.Marker,
		"doneToken", cfg.CompletionToken,
		"maxFileSize", cfg.MaxFileSizeBytes,
	)

	startTime := time.Now()

	// Load persisted milestones
	kv, err := persist.OpenBolt(cfg.StatePath)
	if err != nil {
		logger.Error("failed to open state database", "path", cfg.StatePath, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	tokens := milestone.Tokens{Marker: cfg.Marker, Completion: cfg.CompletionToken}
	store := milestone.NewStore(persist.Load(kv, logger), milestone.StoreOptions{
		Tokens:    tokens,
		Persister: &persist.Saver{KV: kv},
		Logger:    logger,
	})

	ignoreMatcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          cfg.RootDir,
		ExcludeGlobs:     cfg.Excludes,
		OwnFiles:         []string{cfg.StatePath, cfg.LogFile},
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
	})

	markerIndex, err := index.NewMarkerIndex()
	if err != nil {
		logger.Error("failed to create marker index", "error", err)
		os.Exit(1)
	}
	defer markerIndex.Close()

	syncer := reconcile.NewSyncer(reconcile.SyncerOptions{
		ListFiles: func() []string { return scan.ListFiles(cfg.RootDir, ignoreMatcher) },
		Scanner:   scan.NewScanner(tokens.Marker, logger),
		Engine:    reconcile.NewEngine(store),
		Tokens:    tokens,
		Markers:   markerIndex,
		Logger:    logger,
	})

	// Initial full sync, before any save event is handled
	syncer.FullSync()

	rescan := func() reconcile.Report {
		// Reload ignore rules in case .gitignore or .milestoneignore changed
		ignoreMatcher.Reload()
		return syncer.FullSync()
	}
	dispatcher := newDispatcher(syncer, ignoreMatcher, rescan, logger)

	// Start file watcher
	fileWatcher, err := watcher.NewWatcher(watcher.Options{
		RootDir:       cfg.RootDir,
		IgnoreChecker: ignoreMatcher,
		AlwaysEmit:    ignoreMatcher.IsRuleFile,
		Logger:        logger,
	})
	if err != nil {
		logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
	} else {
		go fileWatcher.Start()
		go handleWatcherEvents(fileWatcher, dispatcher, ignoreMatcher)
		defer fileWatcher.Close()
	}

	stop := make(chan struct{})
	defer close(stop)
	if cfg.RescanIntervalSeconds > 0 {
		go runPeriodicRescan(time.Duration(cfg.RescanIntervalSeconds)*time.Second, dispatcher, logger, stop)
	}

	// Setup and run MCP server on stdio
	mcpServer := server.Setup(server.Handlers{
		Milestones: &tools.MilestoneHandler{Store: store, RootDir: cfg.RootDir, Logger: logger},
		Markers:    &tools.MarkersHandler{Markers: markerIndex, Store: store, RootDir: cfg.RootDir, Logger: logger},
		Rescan:     &tools.RescanHandler{DoRescan: rescan, Logger: logger},
		Status: &tools.StatusHandler{
			Store:     store,
			Markers:   markerIndex,
			Syncer:    syncer,
			StartTime: startTime,
			RootDir:   cfg.RootDir,
			StatePath: cfg.StatePath,
			Logger:    logger,
		},
	})

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
