package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oru-labs/phaserun/internal/artifacts"
	"github.com/oru-labs/phaserun/internal/registry"
	"github.com/oru-labs/phaserun/internal/status"
)

// StatusTool handles the get_workflow_status MCP tool.
type StatusTool struct {
	reg   *registry.Registry
	store *artifacts.Store
	hist  status.LastRunSource
}

// NewStatusTool creates a StatusTool. hist may be nil when run
// recording is disabled.
func NewStatusTool(reg *registry.Registry, store *artifacts.Store, hist status.LastRunSource) *StatusTool {
	return &StatusTool{reg: reg, store: store, hist: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("get_workflow_status",
		mcp.WithDescription(
			"Report workspace readiness: for every registered phase, whether "+
				"its entrypoint script exists and is executable, how many artifacts "+
				"it has produced, and its last recorded run.",
		),
	)
}

// Handle processes the get_workflow_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := status.Collect(t.reg, t.store, t.hist)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status report: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
