// Package prompts implements MCP prompt handlers for the workflow
// server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the workflow-status MCP prompt.
// It instructs the AI to inspect and present the workspace state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("workflow-status",
		mcp.WithPromptDescription(
			"Check the state of the automation workflow: which phase "+
				"scripts are ready, what artifacts exist, and how recent "+
				"runs went.",
		),
	)
}

// Handle processes the workflow-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Workflow Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `get_workflow_status` to check the workflow state.\n\n" +
						"Then:\n" +
						"1. Show me a compact table of phases: ready/missing script, artifact count, last run\n" +
						"2. Flag any phase whose script is missing or not executable\n" +
						"3. Flag any phase whose last recorded run FAILED, with its stderr detail\n" +
						"4. Suggest which phase to run next",
				),
			},
		},
	}, nil
}
