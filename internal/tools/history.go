package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oru-labs/phaserun/internal/history"
)

// RunLog lists recorded runs. Satisfied by *history.Store.
type RunLog interface {
	Recent(phase string, limit int) ([]history.Run, error)
}

// HistoryTool handles the get_run_history MCP tool.
type HistoryTool struct {
	log RunLog
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(log RunLog) *HistoryTool {
	return &HistoryTool{log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_run_history",
		mcp.WithDescription(
			"List recorded phase executions, newest first: run id, phase, "+
				"mode, status, exit code, and timing.",
		),
		mcp.WithString("phase",
			mcp.Description("Filter by phase id. Empty means all phases."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to return (default 20, max 200)."),
		),
	)
}

// Handle processes the get_run_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase := req.GetString("phase", "")
	limit := intArg(req, "limit", 20)

	runs, err := t.log.Recent(phase, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying run history: %v", err)), nil
	}
	if runs == nil {
		runs = []history.Run{}
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling run history: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
