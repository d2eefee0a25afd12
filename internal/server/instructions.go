package server

import (
	"fmt"
	"strings"

	"github.com/oru-labs/phaserun/internal/registry"
)

// serverInstructions tells the MCP host how to use the workflow tools.
func serverInstructions(reg *registry.Registry) string {
	var lines []string
	for _, p := range reg.Phases() {
		line := fmt.Sprintf("- %s (%s)", p.ID, p.DisplayName)
		if p.Summary != "" {
			line += ": " + p.Summary
		}
		lines = append(lines, line)
	}

	return fmt.Sprintf(`phaserun exposes this workspace's automation workflow over MCP.

Phases, in workflow order:
%s

Each phase is an external script; running a phase executes that script
and its artifacts appear as phaserun:// resources.

Typical usage:
1. get_workflow_status — check which phase scripts are ready
2. run_workflow_phase — run one phase (captured by default; pass
   interactive=true only when a human is at the terminal)
3. run_full_workflow — run phases in order; failures don't stop the
   sequence, the report has one SUCCESS/FAILED line per phase
4. get_run_history — inspect recorded executions
5. Read phaserun://artifact/<phase>/<file> resources for the outputs

Scripts honor FORCE_NON_INTERACTIVE=1 in captured mode: prompts are
skipped and defaults used.`, strings.Join(lines, "\n"))
}
