package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oru-labs/phaserun/internal/artifacts"
	"github.com/oru-labs/phaserun/internal/registry"
)

// DescribePhaseTool handles the describe_phase MCP tool: one phase's
// metadata, readiness, and guardrails.
type DescribePhaseTool struct {
	reg   *registry.Registry
	store *artifacts.Store
}

// NewDescribePhaseTool creates a DescribePhaseTool.
func NewDescribePhaseTool(reg *registry.Registry, store *artifacts.Store) *DescribePhaseTool {
	return &DescribePhaseTool{reg: reg, store: store}
}

// phaseDescription is the JSON shape returned to the caller.
type phaseDescription struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"display_name"`
	Summary           string   `json:"summary,omitempty"`
	Script            string   `json:"script"`
	Ready             bool     `json:"ready"`
	ArtifactDir       string   `json:"artifact_dir"`
	ArtifactCount     int      `json:"artifact_count"`
	MaxRuntimeSeconds int      `json:"max_runtime_seconds"`
	AllowedEnv        []string `json:"allowed_env"`
}

// Definition returns the MCP tool definition for registration.
func (t *DescribePhaseTool) Definition() mcp.Tool {
	return mcp.NewTool("describe_phase",
		mcp.WithDescription(
			"Describe one workflow phase: entrypoint script, readiness, "+
				"artifact directory, and execution guardrails.",
		),
		mcp.WithString("phase",
			mcp.Required(),
			mcp.Description("Phase id to describe"),
			mcp.Enum(t.reg.IDs()...),
		),
	)
}

// Handle processes the describe_phase tool call.
func (t *DescribePhaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("phase", "")
	if id == "" {
		return mcp.NewToolResultError("'phase' is required"), nil
	}

	phase, err := t.reg.Lookup(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	desc := phaseDescription{
		ID:                phase.ID,
		DisplayName:       phase.DisplayName,
		Summary:           phase.Summary,
		Script:            phase.Script,
		Ready:             t.reg.ScriptReady(phase),
		ArtifactDir:       phase.ArtifactDir,
		ArtifactCount:     t.store.Count(phase),
		MaxRuntimeSeconds: int(phase.Guardrails.EffectiveMaxRuntime().Seconds()),
		AllowedEnv:        phase.Guardrails.EffectiveAllowedEnv(),
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling phase description: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
