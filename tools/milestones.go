package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MilestoneHandler holds the dependencies shared by the milestone editing tools.
type MilestoneHandler struct {
	Store   *milestone.Store
	RootDir string
	Logger  *slog.Logger
}

// ListArgs defines the input parameters for the milestones_list tool (none required).
type ListArgs struct{}

// List processes a milestones_list request.
func (h *MilestoneHandler) List(ctx context.Context, req *mcp.CallToolRequest, args ListArgs) (*mcp.CallToolResult, any, error) {
	milestones := h.Store.All()
	h.Logger.Info("milestones_list", "count", len(milestones))
	return textResult(FormatMilestones(milestones, h.RootDir)), nil, nil
}

// CreateArgs defines the input parameters for the milestones_create tool.
type CreateArgs struct {
	Name string `json:"name" jsonschema:"Milestone name, a single word that does not contain the marker keyword"`
	Date string `json:"date" jsonschema:"Due date as dd.mm.yyyy or yyyy-mm-dd"`
}

// Create processes a milestones_create request.
func (h *MilestoneHandler) Create(ctx context.Context, req *mcp.CallToolRequest, args CreateArgs) (*mcp.CallToolResult, any, error) {
	created, err := h.Store.CreateFromInput(args.Name, args.Date)
	if err != nil {
		h.Logger.Warn("milestones_create rejected", "name", args.Name, "date", args.Date, "error", err)
		return errorResult("Create error: %v", err), nil, nil
	}

	h.Logger.Info("milestones_create", "name", created.Name, "date", milestone.FormatDate(created.Date))
	return textResult("Created " + FormatMilestone(created, h.RootDir)), nil, nil
}

// NameArgs identifies a milestone by name.
type NameArgs struct {
	Name string `json:"name" jsonschema:"Milestone name"`
}

// Delete processes a milestones_delete request.
func (h *MilestoneHandler) Delete(ctx context.Context, req *mcp.CallToolRequest, args NameArgs) (*mcp.CallToolResult, any, error) {
	if err := h.Store.Delete(args.Name); err != nil {
		return h.failure("milestones_delete", args.Name, err), nil, nil
	}

	h.Logger.Info("milestones_delete", "name", args.Name)
	return textResult("Deleted " + args.Name), nil, nil
}

// SetDateArgs defines the input parameters for the milestones_set_date tool.
type SetDateArgs struct {
	Name string `json:"name" jsonschema:"Milestone name"`
	Date string `json:"date" jsonschema:"New due date as dd.mm.yyyy or yyyy-mm-dd"`
}

// SetDate processes a milestones_set_date request.
func (h *MilestoneHandler) SetDate(ctx context.Context, req *mcp.CallToolRequest, args SetDateArgs) (*mcp.CallToolResult, any, error) {
	date, err := milestone.ParseDate(args.Date)
	if err != nil {
		return h.failure("milestones_set_date", args.Name, err), nil, nil
	}
	if err := h.Store.SetDate(args.Name, date); err != nil {
		return h.failure("milestones_set_date", args.Name, err), nil, nil
	}

	updated, _ := h.Store.Get(args.Name)
	h.Logger.Info("milestones_set_date", "name", args.Name, "date", milestone.FormatDate(date))
	return textResult("Updated " + FormatMilestone(updated, h.RootDir)), nil, nil
}

// ToggleDone processes a milestones_toggle_done request.
func (h *MilestoneHandler) ToggleDone(ctx context.Context, req *mcp.CallToolRequest, args NameArgs) (*mcp.CallToolResult, any, error) {
	toggled, err := h.Store.ToggleDone(args.Name)
	if err != nil {
		return h.failure("milestones_toggle_done", args.Name, err), nil, nil
	}

	h.Logger.Info("milestones_toggle_done", "name", toggled.Name, "state", toggled.State.String())
	return textResult("Toggled " + FormatMilestone(toggled, h.RootDir)), nil, nil
}

// SortArgs defines the input parameters for the milestones_sort tool.
type SortArgs struct {
	By string `json:"by,omitempty" jsonschema:"Sort key: date (default) or state"`
}

// Sort processes a milestones_sort request.
// The new order lives in memory only and is not persisted.
func (h *MilestoneHandler) Sort(ctx context.Context, req *mcp.CallToolRequest, args SortArgs) (*mcp.CallToolResult, any, error) {
	switch args.By {
	case "", "date":
		h.Store.SortByDate()
	case "state":
		h.Store.SortByState()
	default:
		h.Logger.Warn("milestones_sort called with unknown key", "by", args.By)
		return errorResult("Error: unknown sort key %q, expected date or state", args.By), nil, nil
	}

	milestones := h.Store.All()
	h.Logger.Info("milestones_sort", "by", args.By, "count", len(milestones))
	return textResult(FormatMilestones(milestones, h.RootDir)), nil, nil
}

// Locate processes a milestones_locate request.
func (h *MilestoneHandler) Locate(ctx context.Context, req *mcp.CallToolRequest, args NameArgs) (*mcp.CallToolResult, any, error) {
	if _, ok := h.Store.Get(args.Name); !ok {
		return h.failure("milestones_locate", args.Name, milestone.ErrNotFound), nil, nil
	}

	location, ok := h.Store.Locate(args.Name)
	if !ok {
		h.Logger.Info("milestones_locate", "name", args.Name, "located", false)
		return textResult(args.Name + " has no marker line."), nil, nil
	}

	h.Logger.Info("milestones_locate", "name", args.Name, "path", location.Path, "line", location.Line)
	return textResult(FormatLocation(location, h.RootDir)), nil, nil
}

func (h *MilestoneHandler) failure(tool string, name string, err error) *mcp.CallToolResult {
	if errors.Is(err, milestone.ErrNotFound) {
		h.Logger.Warn(tool+" unknown milestone", "name", name)
		return errorResult("Error: milestone %q not found", name)
	}
	h.Logger.Warn(tool+" rejected", "name", name, "error", err)
	return errorResult("Error: %v", err)
}
