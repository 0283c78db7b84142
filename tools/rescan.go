package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/milestones-mcp/reconcile"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RescanArgs defines the input parameters for the milestones_rescan tool.
type RescanArgs struct{}

// RescanFunc runs a full sync. It is provided by main.go so ignore rules can be
// reloaded first.
type RescanFunc func() reconcile.Report

// RescanHandler holds the dependencies for the rescan tool.
type RescanHandler struct {
	DoRescan RescanFunc
	Logger   *slog.Logger
}

// Handle processes a milestones_rescan request.
func (h *RescanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RescanArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("milestones_rescan started")

	report := h.DoRescan()

	h.Logger.Info("milestones_rescan complete",
		"files", report.Files,
		"markers", report.Markers,
		"linked", report.Result.Linked,
		"duration", report.Duration,
	)

	return textResult(FormatReport(report)), nil, nil
}

// FormatReport summarises a full sync.
func FormatReport(report reconcile.Report) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Rescan complete: %d files, %d markers, %d milestones linked in %s\n",
		report.Files, report.Markers, report.Result.Linked, report.Duration.Round(time.Millisecond).String()))
	if len(report.Result.Unmatched) > 0 {
		builder.WriteString(fmt.Sprintf("Markers without a milestone: %s\n", strings.Join(report.Result.Unmatched, ", ")))
	}
	return builder.String()
}
