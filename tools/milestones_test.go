package tools

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMilestoneHandler(initial ...milestone.Milestone) *MilestoneHandler {
	return &MilestoneHandler{
		Store:   milestone.NewStore(initial, milestone.StoreOptions{Logger: testLogger()}),
		RootDir: "/project",
		Logger:  testLogger(),
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}

func Test_MilestoneHandler_CreateAndList(t *testing.T) {
	h := newTestMilestoneHandler()

	result, _, err := h.Create(context.Background(), nil, CreateArgs{Name: "Alpha", Date: "01.03.2025"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "Created Alpha (01.03.2025, NOT_STARTED)") {
		t.Errorf("unexpected create output: %s", resultText(t, result))
	}

	result, _, _ = h.List(context.Background(), nil, ListArgs{})
	text := resultText(t, result)
	if !strings.Contains(text, "1 milestones:") || !strings.Contains(text, "Alpha") {
		t.Errorf("expected Alpha in list, got:\n%s", text)
	}
}

func Test_MilestoneHandler_CreateRejected(t *testing.T) {
	h := newTestMilestoneHandler(milestone.Milestone{Name: "Alpha", Date: day(2025, 1, 1)})

	tests := []CreateArgs{
		{Name: "Alpha", Date: "01.01.2025"},
		{Name: "two words", Date: "01.01.2025"},
		{Name: "MILESTONE", Date: "01.01.2025"},
		{Name: "Beta", Date: "31.02.2025"},
		{Name: "", Date: "01.01.2025"},
	}
	for _, args := range tests {
		result, _, err := h.Create(context.Background(), nil, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("expected IsError=true for %+v", args)
		}
	}
	if h.Store.Len() != 1 {
		t.Errorf("expected rejected creates to leave the store alone, got %d milestones", h.Store.Len())
	}
}

func Test_MilestoneHandler_DeleteUnknown(t *testing.T) {
	h := newTestMilestoneHandler()

	result, _, _ := h.Delete(context.Background(), nil, NameArgs{Name: "Ghost"})
	if !result.IsError {
		t.Fatal("expected IsError=true for unknown milestone")
	}
	if !strings.Contains(resultText(t, result), `"Ghost" not found`) {
		t.Errorf("unexpected error text: %s", resultText(t, result))
	}
}

func Test_MilestoneHandler_Delete(t *testing.T) {
	h := newTestMilestoneHandler(milestone.Milestone{Name: "Alpha", Date: day(2025, 1, 1)})

	result, _, _ := h.Delete(context.Background(), nil, NameArgs{Name: "Alpha"})
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, result))
	}
	if h.Store.Len() != 0 {
		t.Error("expected store to be empty after delete")
	}
}

func Test_MilestoneHandler_SetDate(t *testing.T) {
	h := newTestMilestoneHandler(milestone.Milestone{Name: "Alpha", Date: day(2025, 1, 1)})

	result, _, _ := h.SetDate(context.Background(), nil, SetDateArgs{Name: "Alpha", Date: "2025-06-30"})
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, result))
	}
	got, _ := h.Store.Get("Alpha")
	if !got.Date.Equal(day(2025, 6, 30)) {
		t.Errorf("expected date 2025-06-30, got %v", got.Date)
	}

	result, _, _ = h.SetDate(context.Background(), nil, SetDateArgs{Name: "Alpha", Date: "tomorrow"})
	if !result.IsError {
		t.Error("expected IsError=true for an unparseable date")
	}
}

func Test_MilestoneHandler_ToggleDone(t *testing.T) {
	h := newTestMilestoneHandler(milestone.Milestone{
		Name: "Alpha", Date: day(2025, 1, 1), State: milestone.Done,
		Location: &milestone.Location{Path: "/project/a.md", Line: 2},
	})

	result, _, _ := h.ToggleDone(context.Background(), nil, NameArgs{Name: "Alpha"})
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, result))
	}
	got, _ := h.Store.Get("Alpha")
	if got.State != milestone.NotStarted || got.Location != nil {
		t.Errorf("expected NotStarted without location, got %s %+v", got.State, got.Location)
	}

	h.ToggleDone(context.Background(), nil, NameArgs{Name: "Alpha"})
	got, _ = h.Store.Get("Alpha")
	if got.State != milestone.Done {
		t.Errorf("expected Done after second toggle, got %s", got.State)
	}
}

func Test_MilestoneHandler_Sort(t *testing.T) {
	h := newTestMilestoneHandler(
		milestone.Milestone{Name: "Late", Date: day(2025, 9, 1)},
		milestone.Milestone{Name: "Early", Date: day(2025, 1, 1), State: milestone.Done},
		milestone.Milestone{Name: "Mid", Date: day(2025, 5, 1), State: milestone.InProgress},
	)

	h.Sort(context.Background(), nil, SortArgs{By: "date"})
	assertOrder(t, h.Store, "Early", "Mid", "Late")

	h.Sort(context.Background(), nil, SortArgs{By: "state"})
	assertOrder(t, h.Store, "Late", "Mid", "Early")

	result, _, _ := h.Sort(context.Background(), nil, SortArgs{By: "name"})
	if !result.IsError {
		t.Error("expected IsError=true for unknown sort key")
	}
}

func assertOrder(t *testing.T, store *milestone.Store, names ...string) {
	t.Helper()
	all := store.All()
	if len(all) != len(names) {
		t.Fatalf("expected %d milestones, got %d", len(names), len(all))
	}
	for i, name := range names {
		if all[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, all[i].Name)
		}
	}
}

func Test_MilestoneHandler_Locate(t *testing.T) {
	h := newTestMilestoneHandler(
		milestone.Milestone{Name: "Alpha", Date: day(2025, 1, 1), State: milestone.InProgress,
			Location: &milestone.Location{Path: "/project/docs/plan.md", Line: 6}},
		milestone.Milestone{Name: "Beta", Date: day(2025, 1, 1)},
	)

	result, _, _ := h.Locate(context.Background(), nil, NameArgs{Name: "Alpha"})
	if got := resultText(t, result); got != "docs/plan.md:7" {
		t.Errorf("expected 'docs/plan.md:7', got '%s'", got)
	}

	result, _, _ = h.Locate(context.Background(), nil, NameArgs{Name: "Beta"})
	if result.IsError || !strings.Contains(resultText(t, result), "no marker line") {
		t.Errorf("expected no-location message, got: %s", resultText(t, result))
	}

	result, _, _ = h.Locate(context.Background(), nil, NameArgs{Name: "Ghost"})
	if !result.IsError {
		t.Error("expected IsError=true for unknown milestone")
	}
}
