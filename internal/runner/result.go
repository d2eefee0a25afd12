package runner

import (
	"fmt"
	"strings"
	"time"
)

// Status is the terminal state of one phase execution.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// PhaseResult is the outcome of running one phase. It is a plain value:
// a failed phase is a populated result with Err set, never a panic or a
// propagated error — the orchestrator collects results and keeps going.
type PhaseResult struct {
	Phase    string
	RunID    string
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
	// Err carries the failure detail. Callers can match sentinel errors
	// (registry.ErrUnknownPhase, executor.ErrScriptNotFound, ...) with
	// errors.Is. Nil iff Status == StatusSuccess.
	Err error
}

// Succeeded reports whether the phase exited cleanly.
func (r PhaseResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Detail renders the one-line report entry for this result:
// "phase: SUCCESS" or "phase: FAILED - <message>".
func (r PhaseResult) Detail() string {
	if r.Succeeded() {
		return fmt.Sprintf("%s: %s", r.Phase, StatusSuccess)
	}
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return fmt.Sprintf("%s: %s - %s", r.Phase, StatusFailed, msg)
}

// SequenceReport aggregates results across one workflow invocation.
// Results are in request order and always have one entry per requested
// phase.
type SequenceReport struct {
	RunID   string
	Results []PhaseResult
}

// Succeeded reports whether every phase in the sequence succeeded.
func (rep SequenceReport) Succeeded() bool {
	for _, r := range rep.Results {
		if !r.Succeeded() {
			return false
		}
	}
	return true
}

// FailureCount returns how many phases failed.
func (rep SequenceReport) FailureCount() int {
	n := 0
	for _, r := range rep.Results {
		if !r.Succeeded() {
			n++
		}
	}
	return n
}

// Summary renders the per-phase report, one line per phase.
func (rep SequenceReport) Summary() string {
	lines := make([]string, len(rep.Results))
	for i, r := range rep.Results {
		lines[i] = r.Detail()
	}
	return strings.Join(lines, "\n")
}
