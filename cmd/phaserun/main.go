// phaserun: workspace workflow MCP server
//
// Exposes a workspace's automation phases (external scripts under
// .automation/) as MCP tools and their artifacts as MCP resources,
// so any MCP-capable AI tool can drive the workflow.
//
// Usage:
//
//	phaserun serve     # Start MCP server (stdio transport)
//	phaserun status    # Print the phase readiness table
//	phaserun update    # Update to the latest version
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/oru-labs/phaserun/internal/artifacts"
	"github.com/oru-labs/phaserun/internal/config"
	"github.com/oru-labs/phaserun/internal/history"
	"github.com/oru-labs/phaserun/internal/registry"
	phaserver "github.com/oru-labs/phaserun/internal/server"
	"github.com/oru-labs/phaserun/internal/status"
	"github.com/oru-labs/phaserun/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "status":
		if err := runStatus(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("phaserun v%s\n", phaserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	s, cleanup, err := phaserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// runStatus prints the same readiness report the get_workflow_status
// tool returns, formatted for humans.
func runStatus() error {
	config.LoadDotenv()

	root, err := config.FindWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("finding workspace root: %w", err)
	}
	reg, err := registry.FromWorkspace(root)
	if err != nil {
		return fmt.Errorf("building phase registry: %w", err)
	}

	var lastRuns status.LastRunSource
	if hist, err := history.New(history.Config{Path: config.HistoryDBPath(root)}); err == nil {
		defer hist.Close()
		lastRuns = hist
	}

	report := status.Collect(reg, artifacts.NewStore(reg), lastRuns)
	fmt.Print(report.Render())
	return nil
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort — network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(phaserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: phaserun update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	result := updater.CheckVersion(phaserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Downloading...\n")

	if err := updater.SelfUpdate(phaserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n  You can download manually from:\n  %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Restart phaserun to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `phaserun v%s — workspace workflow MCP server

Usage:
  phaserun serve     Start the MCP server (stdio transport)
  phaserun status    Print the phase readiness table
  phaserun update    Update to the latest version

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "phaserun": {
        "command": "phaserun",
        "args": ["serve"]
      }
    }
  }

Environment:
  PHASERUN_WORKSPACE    Workspace root (default: walk up to .automation/)
  PHASERUN_HISTORY_DB   Run-history database path
`, phaserver.Version)
}
