// Package tools implements the MCP tool handlers for workflow
// execution and inspection.
//
// Each tool is a struct that receives its dependencies via constructor
// and exposes Definition() plus Handle(). One file per tool.
package tools

import (
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oru-labs/phaserun/internal/runner"
)

// phaseEnum renders the registered phase ids for tool descriptions.
func phaseEnum(ids []string) string {
	return strings.Join(ids, ", ")
}

// intArg extracts a numeric argument (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringSliceArg extracts an optional array-of-strings argument.
// mcp clients send JSON arrays, which arrive as []any.
func stringSliceArg(req mcp.CallToolRequest, key string) ([]string, bool) {
	args := req.GetArguments()
	if args == nil {
		return nil, true
	}
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, true
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// phaseResultText renders a single phase result for a tool response.
func phaseResultText(res runner.PhaseResult) string {
	var b strings.Builder
	b.WriteString(res.Detail())
	b.WriteString("\n")
	if res.Duration > 0 {
		b.WriteString("\nDuration: " + res.Duration.Round(time.Millisecond).String())
	}
	if out := strings.TrimSpace(res.Stdout); out != "" {
		b.WriteString("\n\n## stdout (tail)\n\n```\n" + out + "\n```")
	}
	if errOut := strings.TrimSpace(res.Stderr); errOut != "" && !res.Succeeded() {
		b.WriteString("\n\n## stderr (tail)\n\n```\n" + errOut + "\n```")
	}
	return b.String()
}
