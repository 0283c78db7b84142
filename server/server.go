package server

import (
	"github.com/lexandro/milestones-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handlers groups the tool handlers registered on the server.
type Handlers struct {
	Milestones *tools.MilestoneHandler
	Markers    *tools.MarkersHandler
	Rescan     *tools.RescanHandler
	Status     *tools.StatusHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(handlers Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "milestones-mcp",
			Version: "0.1.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server tracks project milestones and keeps them in sync with marker lines in the source tree.

A marker line contains "MILESTONE <name>" and, optionally, "MILESTONE <name> DONE".
Saving a file with a marker links the milestone of that name to the line and sets it IN_PROGRESS, or DONE when the completion keyword follows the name.

- Use milestones_list to see every milestone with its date, state and marker location
- Use milestones_create, milestones_set_date, milestones_toggle_done and milestones_delete to edit milestones
- Use milestones_locate to find the file and line backing a milestone
- Use milestones_markers to search marker lines, including markers that name no milestone
- Marker changes are picked up automatically via the filesystem watcher; use milestones_rescan to force a full pass`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_list",
		Description: "List all milestones in their current order: date (dd.mm.yyyy), state, name and marker location.",
	}, handlers.Milestones.List)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "milestones_create",
		Description: `Create a NOT_STARTED milestone.

The name must be a single word that does not contain the marker keyword and is not already used.
The date accepts dd.mm.yyyy (e.g. "24.12.2025") or yyyy-mm-dd.`,
	}, handlers.Milestones.Create)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_delete",
		Description: "Delete a milestone by name. Marker lines in files are left untouched.",
	}, handlers.Milestones.Delete)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_set_date",
		Description: "Change the due date of a milestone. Accepts dd.mm.yyyy or yyyy-mm-dd.",
	}, handlers.Milestones.SetDate)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_toggle_done",
		Description: "Mark a milestone DONE, or reset a DONE milestone to NOT_STARTED (which also drops its marker location).",
	}, handlers.Milestones.ToggleDone)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_sort",
		Description: `Reorder the milestone list by "date" (default) or "state" (NOT_STARTED, IN_PROGRESS, DONE; by date within a state). The order is not persisted.`,
	}, handlers.Milestones.Sort)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_locate",
		Description: `Return the marker location of a milestone as "path:line" (1-based line, path relative to the project root).`,
	}, handlers.Milestones.Locate)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "milestones_markers",
		Description: `Search indexed marker lines.

Query formats:
  - empty: every marker
  - Plain text: word match on the line, or the exact milestone name (e.g. "Beta")
  - "quoted text": exact phrase matching on the line
  - /regex/: regular expression on milestone names (e.g. "/v[0-9]+/")

Filtering:
  - pathGlob: glob on the relative file path (e.g. "docs/**/*.md")
  - orphansOnly: only markers whose name matches no milestone`,
	}, handlers.Markers.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_status",
		Description: "Show tracker status: milestone counts per state, indexed markers, last full sync and uptime.",
	}, handlers.Status.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "milestones_rescan",
		Description: "Force a full scan of the project. Reloads ignore rules, re-links every marker and rebuilds the marker index.",
	}, handlers.Rescan.Handle)

	return mcpServer
}
