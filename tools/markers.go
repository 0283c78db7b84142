package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/milestones-mcp/index"
	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MarkersArgs defines the input parameters for the milestones_markers tool.
type MarkersArgs struct {
	Query       string `json:"query,omitempty" jsonschema:"Search query. Empty lists every marker. Plain text for word or name match, quoted for exact phrase, /regex/ for milestone names"`
	PathGlob    string `json:"pathGlob,omitempty" jsonschema:"Optional glob pattern on the relative file path (e.g. docs/**/*.md)"`
	OrphansOnly bool   `json:"orphansOnly,omitempty" jsonschema:"Only return markers whose name matches no milestone"`
	MaxResults  int    `json:"maxResults,omitempty" jsonschema:"Maximum number of markers to return (default 50)"`
}

// MarkersHandler holds the dependencies for the marker search tool.
type MarkersHandler struct {
	Markers *index.MarkerIndex
	Store   *milestone.Store
	RootDir string
	Logger  *slog.Logger
}

// Handle processes a milestones_markers request.
func (h *MarkersHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args MarkersArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	searchLimit := maxResults
	if args.OrphansOnly {
		// filter after the search, so fetch every candidate
		searchLimit = h.Markers.Count() + 1
	}

	markers, err := h.Markers.Search(index.SearchOptions{
		Query:      args.Query,
		PathGlob:   args.PathGlob,
		RootDir:    h.RootDir,
		MaxResults: searchLimit,
	})
	if err != nil {
		h.Logger.Error("milestones_markers failed", "query", args.Query, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	isOrphan := func(name string) bool {
		_, ok := h.Store.Get(name)
		return !ok
	}

	if args.OrphansOnly {
		orphans := markers[:0]
		for _, marker := range markers {
			if isOrphan(marker.Name) {
				orphans = append(orphans, marker)
			}
		}
		markers = orphans
		if len(markers) > maxResults {
			markers = markers[:maxResults]
		}
	}

	h.Logger.Info("milestones_markers",
		"query", args.Query,
		"pathGlob", args.PathGlob,
		"orphansOnly", args.OrphansOnly,
		"results", len(markers),
		"elapsed", time.Since(start),
	)

	return textResult(FormatMarkers(markers, h.RootDir, isOrphan)), nil, nil
}
