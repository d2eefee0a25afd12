// Package status assembles the workspace readiness report: which phase
// scripts exist and are executable, how many artifacts each phase has
// produced, and what the last recorded run looked like.
//
// The same snapshot backs the get_workflow_status MCP tool and the
// `phaserun status` CLI command.
package status

import (
	"fmt"
	"os"
	"strings"

	"github.com/oru-labs/phaserun/internal/artifacts"
	"github.com/oru-labs/phaserun/internal/history"
	"github.com/oru-labs/phaserun/internal/registry"
)

// PhaseStatus is one phase's row in the report.
type PhaseStatus struct {
	ID            string       `json:"id"`
	DisplayName   string       `json:"display_name"`
	Script        string       `json:"script"`
	ScriptExists  bool         `json:"script_exists"`
	Executable    bool         `json:"executable"`
	ArtifactCount int          `json:"artifact_count"`
	LastRun       *history.Run `json:"last_run,omitempty"`
}

// Report is the full workspace snapshot.
type Report struct {
	WorkspaceRoot string        `json:"workspace_root"`
	Phases        []PhaseStatus `json:"phases"`
}

// LastRunSource returns recorded runs. Satisfied by *history.Store.
type LastRunSource interface {
	Last(phase string) (*history.Run, error)
}

// Collect builds the report. hist may be nil when run recording is
// disabled; history lookup failures degrade to "no last run" rather
// than failing the whole report.
func Collect(reg *registry.Registry, store *artifacts.Store, hist LastRunSource) Report {
	phases := reg.Phases()
	report := Report{
		WorkspaceRoot: reg.Root(),
		Phases:        make([]PhaseStatus, 0, len(phases)),
	}

	for _, p := range phases {
		ps := PhaseStatus{
			ID:            p.ID,
			DisplayName:   p.DisplayName,
			Script:        p.Script,
			ArtifactCount: store.Count(p),
		}
		ps.ScriptExists, ps.Executable = scriptState(p)
		if hist != nil {
			if run, err := hist.Last(p.ID); err == nil {
				ps.LastRun = run
			}
		}
		report.Phases = append(report.Phases, ps)
	}
	return report
}

// Render formats the report as aligned text for humans.
func (r Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workspace: %s\n\n", r.WorkspaceRoot)
	fmt.Fprintf(&b, "%-14s %-8s %-10s %-10s %s\n", "PHASE", "SCRIPT", "ARTIFACTS", "LAST RUN", "WHEN")
	for _, p := range r.Phases {
		script := "missing"
		if p.ScriptExists && p.Executable {
			script = "ready"
		} else if p.ScriptExists {
			script = "no-exec"
		}
		lastStatus, lastWhen := "-", "-"
		if p.LastRun != nil {
			lastStatus = p.LastRun.Status
			lastWhen = p.LastRun.StartedAt
		}
		fmt.Fprintf(&b, "%-14s %-8s %-10d %-10s %s\n", p.ID, script, p.ArtifactCount, lastStatus, lastWhen)
	}
	return b.String()
}

func scriptState(p registry.Phase) (exists, executable bool) {
	info, err := os.Stat(p.Script)
	if err != nil {
		return false, false
	}
	return true, !info.IsDir() && info.Mode().Perm()&0o111 != 0
}
