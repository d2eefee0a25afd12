// Package executor spawns phase entrypoint scripts as child processes.
//
// The executor is stateless: each call is independent, safe to run
// concurrently with others. It knows nothing about phases — callers
// hand it a resolved script path and an execution request.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors. ErrScriptNotFound is returned from a synchronous
// pre-spawn check so callers see a precise message instead of the OS's
// generic exec failure; ErrSpawn wraps OS-level failures to create the
// process (bad interpreter, permission denied).
var (
	ErrScriptNotFound = errors.New("script not found")
	ErrSpawn          = errors.New("failed to spawn script")
)

// maxOutputTail caps how much captured stdout/stderr is retained.
// Matches the tail the upstream automation scripts expect in reports.
const maxOutputTail = 8000

// Mode selects how the child's stdio is wired.
type Mode int

const (
	// ModeCaptured pipes stdout/stderr into memory and leaves stdin
	// closed. FORCE_NON_INTERACTIVE=1 is set so scripts skip their own
	// prompts and use defaults.
	ModeCaptured Mode = iota
	// ModeInteractive attaches the child directly to the parent's
	// terminal so a human can answer prompts. Output is not captured.
	ModeInteractive
)

func (m Mode) String() string {
	if m == ModeInteractive {
		return "interactive"
	}
	return "captured"
}

// Request describes one execution.
type Request struct {
	// Script is the resolved entrypoint path. Must exist.
	Script string
	Args   []string
	// Dir is the child's working directory (the workspace root).
	Dir string
	// Env is the child's full base environment, KEY=VALUE. The executor
	// appends its own mode marker; it never inherits os.Environ itself —
	// guardrail filtering is the caller's job.
	Env  []string
	Mode Mode
	// Timeout bounds captured-mode runs. Ignored in interactive mode.
	// Zero means no limit.
	Timeout time.Duration
}

// Result is the outcome of one execution. A nonzero exit code is a
// normal Result, not an error: classification is the caller's concern.
type Result struct {
	ExitCode int
	// Stdout and Stderr hold the captured tails. Always empty in
	// interactive mode.
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Runner abstracts execution so the phase runner can be tested with a
// fake that records calls instead of spawning processes.
type Runner interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// Local runs scripts on the local machine.
type Local struct{}

// NewLocal returns the OS-backed executor.
func NewLocal() *Local {
	return &Local{}
}

// Execute spawns the script and waits for it to exit.
func (l *Local) Execute(ctx context.Context, req Request) (Result, error) {
	if _, err := os.Stat(req.Script); err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("%w: %s", ErrScriptNotFound, req.Script)
		}
		return Result{}, fmt.Errorf("stat %s: %w", req.Script, err)
	}

	cancel := func() {}
	if req.Mode == ModeCaptured && req.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	argv := buildCommand(req.Script)
	argv = append(argv, req.Args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = req.Dir
	cmd.Env = append(append([]string(nil), req.Env...), "FORCE_NON_INTERACTIVE="+nonInteractiveFlag(req.Mode))

	var stdout, stderr bytes.Buffer
	if req.Mode == ModeInteractive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: 0,
		Duration: time.Since(start),
		Stdout:   tail(stdout.Bytes()),
		Stderr:   tail(stderr.Bytes()),
		TimedOut: ctx.Err() == context.DeadlineExceeded,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("%w: %s: %v", ErrSpawn, req.Script, err)
	}
	return res, nil
}

// buildCommand picks the interpreter for a script by extension:
// .sh via bash, .py via python3, anything executable runs directly,
// and everything else falls back to bash.
func buildCommand(script string) []string {
	switch strings.ToLower(filepath.Ext(script)) {
	case ".sh":
		return []string{"bash", script}
	case ".py":
		return []string{"python3", script}
	}
	if info, err := os.Stat(script); err == nil && info.Mode().Perm()&0o111 != 0 {
		return []string{script}
	}
	return []string{"bash", script}
}

func nonInteractiveFlag(m Mode) string {
	if m == ModeCaptured {
		return "1"
	}
	return "0"
}

// tail returns the last maxOutputTail bytes as a string.
func tail(b []byte) string {
	if len(b) <= maxOutputTail {
		return string(b)
	}
	return string(b[len(b)-maxOutputTail:])
}
