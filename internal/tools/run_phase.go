package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oru-labs/phaserun/internal/executor"
	"github.com/oru-labs/phaserun/internal/registry"
	"github.com/oru-labs/phaserun/internal/runner"
)

// RunPhaseTool handles the run_workflow_phase MCP tool: execute one
// phase's entrypoint script and report the outcome.
type RunPhaseTool struct {
	runner *runner.Runner
	reg    *registry.Registry
}

// NewRunPhaseTool creates a RunPhaseTool.
func NewRunPhaseTool(r *runner.Runner, reg *registry.Registry) *RunPhaseTool {
	return &RunPhaseTool{runner: r, reg: reg}
}

// Definition returns the MCP tool definition for registration.
func (t *RunPhaseTool) Definition() mcp.Tool {
	return mcp.NewTool("run_workflow_phase",
		mcp.WithDescription(
			"Run one workflow phase by executing its entrypoint script. "+
				"In captured mode (default) the script's output is returned here; "+
				"in interactive mode the script talks to the terminal directly. "+
				"Known phases: "+phaseEnum(t.reg.IDs())+".",
		),
		mcp.WithString("phase",
			mcp.Required(),
			mcp.Description("Phase id to run"),
			mcp.Enum(t.reg.IDs()...),
		),
		mcp.WithBoolean("interactive",
			mcp.Description("Attach the script to the terminal so it can prompt. Defaults to false (output captured, prompts suppressed)."),
		),
	)
}

// Handle processes the run_workflow_phase tool call.
func (t *RunPhaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase := req.GetString("phase", "")
	if phase == "" {
		return mcp.NewToolResultError("'phase' is required"), nil
	}

	mode := executor.ModeCaptured
	if boolArg(req, "interactive", false) {
		mode = executor.ModeInteractive
	}

	res := t.runner.RunPhase(ctx, phase, mode)
	if !res.Succeeded() {
		return mcp.NewToolResultError(phaseResultText(res)), nil
	}
	return mcp.NewToolResultText(phaseResultText(res)), nil
}
