package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RunPrompt handles the workflow-run MCP prompt.
// It guides the AI through executing the workflow and summarizing the
// per-phase report.
type RunPrompt struct{}

// NewRunPrompt creates a RunPrompt.
func NewRunPrompt() *RunPrompt {
	return &RunPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RunPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("workflow-run",
		mcp.WithPromptDescription(
			"Run the automation workflow and summarize the outcome. "+
				"Optionally restrict to a subset of phases.",
		),
		mcp.WithArgument("phases",
			mcp.ArgumentDescription("Comma-separated phase ids to run. Empty means the full workflow."),
		),
	)
}

// Handle processes the workflow-run prompt request.
func (p *RunPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	phases := ""
	if args := req.Params.Arguments; args != nil {
		phases = args["phases"]
	}

	instruction := "Please run `run_full_workflow` with no arguments to execute every phase in order."
	if phases != "" {
		instruction = fmt.Sprintf(
			"Please run `run_full_workflow` with phases [%s], preserving that order.", phases,
		)
	}

	return &mcp.GetPromptResult{
		Description: "Run Workflow",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					instruction + "\n\n" +
						"Afterwards:\n" +
						"1. Summarize the per-phase SUCCESS/FAILED report\n" +
						"2. For each failed phase, quote the captured stderr and suggest a fix\n" +
						"3. List any new artifacts worth reading (use the resource list)",
				),
			},
		},
	}, nil
}
