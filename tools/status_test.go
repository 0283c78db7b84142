package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/milestones-mcp/index"
	"github.com/lexandro/milestones-mcp/milestone"
)

func Test_StatusHandler_Handle(t *testing.T) {
	markers, err := index.NewMarkerIndex()
	if err != nil {
		t.Fatalf("failed to create marker index: %v", err)
	}
	t.Cleanup(func() { markers.Close() })
	markers.Reset([]index.Marker{{Name: "Alpha", Path: "/test/project/a.md", Line: 0, Text: "MILESTONE Alpha"}})

	store := milestone.NewStore([]milestone.Milestone{
		{Name: "Alpha", Date: day(2025, 1, 1), State: milestone.InProgress,
			Location: &milestone.Location{Path: "/test/project/a.md"}},
		{Name: "Beta", Date: day(2025, 2, 1)},
		{Name: "Gamma", Date: day(2025, 3, 1), State: milestone.Done},
	}, milestone.StoreOptions{Logger: testLogger()})

	h := &StatusHandler{
		Store:     store,
		Markers:   markers,
		StartTime: time.Now(),
		RootDir:   "/test/project",
		StatePath: "/test/project/.milestones/state.db",
		Logger:    testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	text := resultText(t, result)
	checks := []string{
		"milestones-mcp Status",
		"/test/project",
		"Milestones: 3 (1 with a marker line)",
		"NOT_STARTED  1",
		"IN_PROGRESS  1",
		"DONE         1",
		"Indexed markers: 1",
	}
	for _, check := range checks {
		if !strings.Contains(text, check) {
			t.Errorf("expected output to contain %q, got:\n%s", check, text)
		}
	}
}
