// Package mcp exposes the editor to AI agents as MCP tools. Every call
// loads the game files fresh; changing tools write them back through the
// safe writer unless dry_run is set.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/markers"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// Loader opens a session on the current game files.
type Loader func(ctx context.Context) (*session.Session, error)

// Handlers implements the ftm/* tools.
type Handlers struct {
	Load    Loader
	Presets *preset.Store
	Markers *markers.Store
	Log     *logging.Logger
}

// NewServer creates a new MCP server with the ftm tools registered.
func NewServer(version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"ftm",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("ftm/show",
			mcp.WithDescription("List save fields with their raw values, labels and unknown-value warnings"),
			mcp.WithString("fields", mcp.Description("Comma-separated field names (default: all)")),
		),
		h.HandleShow,
	)

	s.AddTool(
		mcp.NewTool("ftm/set",
			mcp.WithDescription("Change one save field and write the save file (backed up first)"),
			mcp.WithString("field", mcp.Required(), mcp.Description("Field name, e.g. gold, weapon, location")),
			mcp.WithString("value", mcp.Required(), mcp.Description("New value; select fields take the option number")),
			mcp.WithBoolean("dry_run", mcp.Description("Validate and report without writing")),
		),
		h.HandleSet,
	)

	s.AddTool(
		mcp.NewTool("ftm/persistent",
			mcp.WithDescription("Show the persistent ini values, or change one and write the ini file"),
			mcp.WithString("key", mcp.Description("name, room, kills, love, trapped, battle, deaths or fun")),
			mcp.WithString("value", mcp.Description("New value for key")),
			mcp.WithBoolean("dry_run", mcp.Description("Validate and report without writing")),
		),
		h.HandlePersistent,
	)

	s.AddTool(
		mcp.NewTool("ftm/eval",
			mcp.WithDescription("Evaluate an expression over save fields and ini values, e.g. gold > 100 && weapon == 13"),
			mcp.WithString("expr", mcp.Required(), mcp.Description("Expression")),
		),
		h.HandleEval,
	)

	s.AddTool(
		mcp.NewTool("ftm/presets",
			mcp.WithDescription("Manage saved presets: list, load, save or delete"),
			mcp.WithString("action", mcp.Required(), mcp.Description("list, load, save or delete")),
			mcp.WithString("name", mcp.Description("Preset name (required except for list)")),
		),
		h.HandlePresets,
	)

	s.AddTool(
		mcp.NewTool("ftm/markers",
			mcp.WithDescription("Show, create or delete the system_information marker files"),
			mcp.WithString("action", mcp.Required(), mcp.Description("status, create or delete")),
			mcp.WithNumber("number", mcp.Description("Marker number (962 or 963)")),
		),
		h.HandleMarkers,
	)

	s.AddTool(
		mcp.NewTool("ftm/schema",
			mcp.WithDescription("Export the JSON Schema of the preset file"),
		),
		HandleSchema,
	)

	return s
}
