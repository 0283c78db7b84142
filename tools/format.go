package tools

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/milestones-mcp/index"
	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FormatMilestones formats the ordered milestone list as human-readable text.
// One row per milestone: date, state, name and the marker location if any.
func FormatMilestones(milestones []milestone.Milestone, rootDir string) string {
	if len(milestones) == 0 {
		return "No milestones."
	}

	nameWidth := 0
	for _, m := range milestones {
		nameWidth = max(nameWidth, len(m.Name))
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%d milestones:\n\n", len(milestones)))

	for _, m := range milestones {
		row := fmt.Sprintf("  %s  %-11s  %-*s", milestone.FormatDate(m.Date), m.State, nameWidth, m.Name)
		if m.Location != nil {
			row += "  " + FormatLocation(*m.Location, rootDir)
		}
		builder.WriteString(strings.TrimRight(row, " "))
		builder.WriteString("\n")
	}

	return builder.String()
}

// FormatMilestone formats a single milestone on one line.
func FormatMilestone(m milestone.Milestone, rootDir string) string {
	text := fmt.Sprintf("%s (%s, %s)", m.Name, milestone.FormatDate(m.Date), m.State)
	if m.Location != nil {
		text += " at " + FormatLocation(*m.Location, rootDir)
	}
	return text
}

// FormatLocation renders a location as path:line with a 1-based line.
func FormatLocation(location milestone.Location, rootDir string) string {
	return fmt.Sprintf("%s:%d", relativePath(rootDir, location.Path), location.Line+1)
}

// FormatMarkers formats marker search results grouped by file.
// Markers without a milestone of the same name are flagged as orphans.
func FormatMarkers(markers []index.Marker, rootDir string, isOrphan func(name string) bool) string {
	if len(markers) == 0 {
		return "No markers found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d markers:\n", len(markers)))

	currentPath := ""
	for _, marker := range markers {
		if marker.Path != currentPath {
			currentPath = marker.Path
			builder.WriteString(fmt.Sprintf("\n── %s ──\n", relativePath(rootDir, marker.Path)))
		}
		flags := ""
		if marker.Done {
			flags += " [done]"
		}
		if isOrphan(marker.Name) {
			flags += " [no milestone]"
		}
		builder.WriteString(fmt.Sprintf("  %d: %s%s\n", marker.Line+1, marker.Text, flags))
	}

	return builder.String()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}

func relativePath(rootDir string, path string) string {
	if rootDir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
