// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it resolves the workspace, builds the
// registry, executor, runner, and stores, and injects them into the
// tools/prompts/resources that depend on them. No business logic lives
// here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/oru-labs/phaserun/internal/artifacts"
	"github.com/oru-labs/phaserun/internal/config"
	"github.com/oru-labs/phaserun/internal/executor"
	"github.com/oru-labs/phaserun/internal/history"
	"github.com/oru-labs/phaserun/internal/prompts"
	"github.com/oru-labs/phaserun/internal/registry"
	"github.com/oru-labs/phaserun/internal/resources"
	"github.com/oru-labs/phaserun/internal/runner"
	"github.com/oru-labs/phaserun/internal/status"
	"github.com/oru-labs/phaserun/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if history init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Resolve the workspace ---

	config.LoadDotenv()

	root, err := config.FindWorkspaceRoot()
	if err != nil {
		return nil, noop, fmt.Errorf("finding workspace root: %w", err)
	}

	reg, err := registry.FromWorkspace(root)
	if err != nil {
		return nil, noop, fmt.Errorf("building phase registry: %w", err)
	}

	// --- Create shared dependencies ---

	store := artifacts.NewStore(reg)

	// History is an independent subsystem: if it fails to initialize,
	// phase execution keeps working and runs simply go unrecorded.
	cleanup := noop
	var runnerOpts []runner.Option
	var lastRuns status.LastRunSource
	hist, histErr := history.New(history.Config{Path: config.HistoryDBPath(root)})
	if histErr != nil {
		log.Printf("WARNING: run history disabled: %v", histErr)
	} else {
		cleanup = func() {
			if err := hist.Close(); err != nil {
				log.Printf("WARNING: history store close: %v", err)
			}
		}
		runnerOpts = append(runnerOpts, runner.WithRecorder(hist))
		lastRuns = hist
	}

	run := runner.New(reg, executor.NewLocal(), runnerOpts...)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"phaserun",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(reg)),
	)

	// --- Register workflow tools ---

	runPhaseTool := tools.NewRunPhaseTool(run, reg)
	s.AddTool(runPhaseTool.Definition(), runPhaseTool.Handle)

	runWorkflowTool := tools.NewRunWorkflowTool(run, reg)
	s.AddTool(runWorkflowTool.Definition(), runWorkflowTool.Handle)

	describeTool := tools.NewDescribePhaseTool(reg, store)
	s.AddTool(describeTool.Definition(), describeTool.Handle)

	// Nil-safe over history: with recording disabled the status tool
	// just omits last-run data.
	statusTool := tools.NewStatusTool(reg, store, lastRuns)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	if histErr == nil {
		historyTool := tools.NewHistoryTool(hist)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	runPrompt := prompts.NewRunPrompt()
	s.AddPrompt(runPrompt.Definition(), runPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.ManifestResource(), resourceHandler.HandleRead)
	s.AddResourceTemplate(resourceHandler.ArtifactTemplate(), resourceHandler.HandleRead)
	if err := resourceHandler.Sync(s); err != nil {
		log.Printf("WARNING: initial resource sync: %v", err)
	}

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when history
// is disabled or hasn't been initialized.
func noop() {}
