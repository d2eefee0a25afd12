package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oru-labs/phaserun/internal/executor"
	"github.com/oru-labs/phaserun/internal/registry"
	"github.com/oru-labs/phaserun/internal/runner"
)

// RunWorkflowTool handles the run_full_workflow MCP tool: execute a
// sequence of phases in order, tolerating per-phase failures.
type RunWorkflowTool struct {
	runner *runner.Runner
	reg    *registry.Registry
}

// NewRunWorkflowTool creates a RunWorkflowTool.
func NewRunWorkflowTool(r *runner.Runner, reg *registry.Registry) *RunWorkflowTool {
	return &RunWorkflowTool{runner: r, reg: reg}
}

// Definition returns the MCP tool definition for registration.
func (t *RunWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool("run_full_workflow",
		mcp.WithDescription(
			"Run a sequence of workflow phases strictly in order. "+
				"A failing phase does not stop the ones after it; the result "+
				"is one SUCCESS/FAILED line per requested phase. "+
				"Omit 'phases' to run every registered phase ("+phaseEnum(t.reg.IDs())+") in order. "+
				"All phases run in captured (non-interactive) mode.",
		),
		mcp.WithArray("phases",
			mcp.Description("Phase ids to run, in execution order. Empty means all."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the run_full_workflow tool call.
func (t *RunWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phases, ok := stringSliceArg(req, "phases")
	if !ok {
		return mcp.NewToolResultError("'phases' must be an array of phase id strings"), nil
	}

	report := t.runner.RunSequence(ctx, phases, executor.ModeCaptured)

	header := fmt.Sprintf("# Workflow run %s\n\n", report.RunID)
	body := report.Summary()
	footer := ""
	if n := report.FailureCount(); n > 0 {
		footer = fmt.Sprintf("\n\n%d of %d phases failed.", n, len(report.Results))
		return mcp.NewToolResultError(header + body + footer), nil
	}
	return mcp.NewToolResultText(header + body), nil
}
