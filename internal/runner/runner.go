// Package runner executes workflow phases and orchestrates sequences.
//
// One invocation moves through pending -> running -> succeeded|failed.
// Terminal states are final: no automatic retry. Sequences run strictly
// in order and tolerate individual failures — a broken phase never
// stops the phases after it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oru-labs/phaserun/internal/executor"
	"github.com/oru-labs/phaserun/internal/history"
	"github.com/oru-labs/phaserun/internal/registry"
)

// ErrNonZeroExit marks a script that ran but exited with failure.
var ErrNonZeroExit = errors.New("script exited with nonzero status")

// Recorder persists execution results. Satisfied by *history.Store.
type Recorder interface {
	Record(run history.Run) error
}

// Runner runs phases from a registry through an executor.
type Runner struct {
	reg      *registry.Registry
	exec     executor.Runner
	recorder Recorder // nil disables run recording
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder enables run-history recording.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// New creates a Runner.
func New(reg *registry.Registry, exec executor.Runner, opts ...Option) *Runner {
	r := &Runner{reg: reg, exec: exec}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunPhase executes one phase. The result always identifies the phase;
// lookup and resolution failures produce a failed result without ever
// spawning a process.
func (r *Runner) RunPhase(ctx context.Context, phaseID string, mode executor.Mode) PhaseResult {
	result := PhaseResult{
		Phase:  phaseID,
		RunID:  uuid.NewString(),
		Status: StatusFailed,
	}

	phase, err := r.reg.Lookup(phaseID)
	if err != nil {
		result.Err = err
		return result
	}

	script, err := r.reg.ResolveScript(phase)
	if err != nil {
		result.Err = err
		r.record(result, mode, time.Now())
		return result
	}

	started := time.Now()
	res, err := r.exec.Execute(ctx, executor.Request{
		Script:  script,
		Dir:     r.reg.Root(),
		Env:     r.childEnv(phase),
		Mode:    mode,
		Timeout: phase.Guardrails.EffectiveMaxRuntime(),
	})

	result.ExitCode = res.ExitCode
	result.Stdout = res.Stdout
	result.Stderr = res.Stderr
	result.Duration = res.Duration
	result.TimedOut = res.TimedOut

	switch {
	case err != nil:
		result.Err = fmt.Errorf("phase %q: %w", phaseID, err)
	case res.TimedOut:
		result.Err = fmt.Errorf("phase %q timed out after %s", phaseID, phase.Guardrails.EffectiveMaxRuntime())
	case res.ExitCode != 0:
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = "(no stderr captured)"
		}
		result.Err = fmt.Errorf("%w: phase %q exit code %d: %s", ErrNonZeroExit, phaseID, res.ExitCode, detail)
	default:
		result.Status = StatusSuccess
	}

	r.record(result, mode, started)
	return result
}

// RunSequence executes phases strictly in the given order. An empty
// list means every registered phase in registry order. Failures are
// collected, never propagated: the report always has one entry per
// requested phase.
func (r *Runner) RunSequence(ctx context.Context, phaseIDs []string, mode executor.Mode) SequenceReport {
	if len(phaseIDs) == 0 {
		phaseIDs = r.reg.IDs()
	}

	report := SequenceReport{
		RunID:   uuid.NewString(),
		Results: make([]PhaseResult, 0, len(phaseIDs)),
	}
	for _, id := range phaseIDs {
		report.Results = append(report.Results, r.RunPhase(ctx, id, mode))
	}
	return report
}

// childEnv builds the guardrail-filtered environment for a phase's
// child process, plus the workspace context variables scripts rely on.
func (r *Runner) childEnv(phase registry.Phase) []string {
	allowed := phase.Guardrails.EffectiveAllowedEnv()
	env := make([]string, 0, len(allowed)+3)
	for _, key := range allowed {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	env = append(env,
		"WORKSPACE_ROOT="+r.reg.Root(),
		"PHASE_ID="+phase.ID,
		"PHASE_ARTIFACT_DIR="+phase.ArtifactDir,
	)
	return env
}

// record writes the result to history. Best-effort: recording failures
// are logged, never surfaced to the caller.
func (r *Runner) record(result PhaseResult, mode executor.Mode, started time.Time) {
	if r.recorder == nil {
		return
	}
	detail := result.Stderr
	if result.Err != nil && detail == "" {
		detail = result.Err.Error()
	}
	run := history.Run{
		ID:         result.RunID,
		Phase:      result.Phase,
		Mode:       mode.String(),
		Status:     string(result.Status),
		ExitCode:   result.ExitCode,
		TimedOut:   result.TimedOut,
		StderrTail: detail,
		StartedAt:  started.UTC().Format(time.RFC3339),
		DurationMS: result.Duration.Milliseconds(),
	}
	if err := r.recorder.Record(run); err != nil {
		log.Printf("WARNING: recording run %s: %v", result.RunID, err)
	}
}
