// Package registry holds the static mapping from workflow phase ids to
// their entrypoint scripts and artifact directories.
//
// The registry is plain data: it is built once at startup (defaults,
// optionally overridden by phases.yaml) and never mutated afterwards.
// Tools depend on it for lookup; the executor and artifact lister take
// their paths from it.
package registry

import (
	"fmt"
	"time"
)

// DefaultMaxRuntime bounds a captured-mode run when the phase does not
// set its own limit. Interactive runs are never timed out — the script
// may legitimately wait on a human.
const DefaultMaxRuntime = 15 * time.Minute

// DefaultAllowedEnv is the environment passlist applied to child
// processes when a phase does not declare its own.
var DefaultAllowedEnv = []string{"PATH", "HOME", "LANG", "TMPDIR", "PYTHONPATH"}

// Guardrails limits what a phase's child process may see and how long
// it may run.
type Guardrails struct {
	// MaxRuntime caps captured-mode execution. Zero means DefaultMaxRuntime.
	MaxRuntime time.Duration
	// AllowedEnv is the passlist of parent environment variables handed
	// to the child. Empty means DefaultAllowedEnv.
	AllowedEnv []string
}

// EffectiveMaxRuntime returns the runtime cap with the default applied.
func (g Guardrails) EffectiveMaxRuntime() time.Duration {
	if g.MaxRuntime <= 0 {
		return DefaultMaxRuntime
	}
	return g.MaxRuntime
}

// EffectiveAllowedEnv returns the env passlist with the default applied.
func (g Guardrails) EffectiveAllowedEnv() []string {
	if len(g.AllowedEnv) == 0 {
		return DefaultAllowedEnv
	}
	return g.AllowedEnv
}

// Phase binds a workflow stage id to its entrypoint script and the
// directory its artifacts land in.
type Phase struct {
	ID          string
	DisplayName string
	Summary     string
	// Script is the absolute path to the phase entrypoint.
	Script string
	// ArtifactDir is the absolute path to the phase's artifact directory.
	// The directory is created by the script, not by this server; it may
	// not exist yet.
	ArtifactDir string
	Guardrails  Guardrails
}

func (p Phase) validate() error {
	if p.ID == "" {
		return fmt.Errorf("phase id must not be empty")
	}
	if p.Script == "" {
		return fmt.Errorf("phase %q has no script path", p.ID)
	}
	if p.ArtifactDir == "" {
		return fmt.Errorf("phase %q has no artifact directory", p.ID)
	}
	return nil
}
