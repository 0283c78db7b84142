package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/lexandro/milestones-mcp/index"
	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/lexandro/milestones-mcp/reconcile"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the milestones_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Store     *milestone.Store
	Markers   *index.MarkerIndex
	Syncer    *reconcile.Syncer
	StartTime time.Time
	RootDir   string
	StatePath string
	Logger    *slog.Logger
}

// Handle processes a milestones_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	milestones := h.Store.All()
	stateCounts := make(map[milestone.State]int)
	located := 0
	for _, m := range milestones {
		stateCounts[m.State]++
		if m.Location != nil {
			located++
		}
	}
	markerCount := h.Markers.Count()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("milestones_status",
		"milestones", len(milestones),
		"markers", markerCount,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== milestones-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", h.RootDir))
	builder.WriteString(fmt.Sprintf("State file: %s\n", h.StatePath))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Milestones: %d (%d with a marker line)\n", len(milestones), located))
	for _, state := range []milestone.State{milestone.NotStarted, milestone.InProgress, milestone.Done} {
		builder.WriteString(fmt.Sprintf("  %-12s %d\n", state, stateCounts[state]))
	}
	builder.WriteString(fmt.Sprintf("Indexed markers: %d\n", markerCount))

	if h.Syncer != nil {
		report := h.Syncer.LastReport()
		if report.At.IsZero() {
			builder.WriteString("Last full sync: never\n")
		} else {
			builder.WriteString(fmt.Sprintf("Last full sync: %s ago (%d files, %d markers)\n",
				formatDuration(time.Since(report.At)), report.Files, report.Markers))
		}
	}
	builder.WriteString(fmt.Sprintf("Memory usage: %d KB\n", memStats.Alloc/1024))

	return textResult(builder.String()), nil, nil
}
