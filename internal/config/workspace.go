// Package config resolves the workspace root and the convention-based
// paths under it (phase scripts, artifact directories, capability
// manifest, history database).
//
// Everything the server touches lives under <root>/.automation/. The
// root is found by walking up from the working directory, so the server
// works when started from any subdirectory of the workspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// AutomationDir is the workspace subdirectory holding everything
	// this server cares about.
	AutomationDir = ".automation"
	// ScriptsDir is the subdirectory for phase entrypoint scripts.
	ScriptsDir = "scripts"
	// ArtifactsDir is the subdirectory for per-phase artifact output.
	ArtifactsDir = "artifacts"
	// CapabilitiesDir is the subdirectory holding the capability manifest.
	CapabilitiesDir = "capabilities"
	// ManifestFile is the capability manifest filename.
	ManifestFile = "manifest.json"
	// PhasesFile is the optional registry configuration filename.
	PhasesFile = "phases.yaml"
	// HistoryDBFile is the default run-history database filename.
	HistoryDBFile = "phaserun.db"
)

// Environment variables consumed at startup.
const (
	// EnvWorkspace overrides workspace root detection.
	EnvWorkspace = "PHASERUN_WORKSPACE"
	// EnvHistoryDB overrides the run-history database path.
	EnvHistoryDB = "PHASERUN_HISTORY_DB"
)

// LoadDotenv loads a .env file from the working directory if one
// exists. Best-effort: a missing file is not an error.
func LoadDotenv() {
	_ = godotenv.Load()
}

// FindWorkspaceRoot locates the workspace root. PHASERUN_WORKSPACE
// wins if set; otherwise the nearest ancestor of the working directory
// containing .automation/ is used; otherwise the working directory
// itself (tools will simply report every phase unready).
func FindWorkspaceRoot() (string, error) {
	if env := os.Getenv(EnvWorkspace); env != "" {
		abs, err := filepath.Abs(env)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", EnvWorkspace, err)
		}
		return abs, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, AutomationDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root, no workspace found.
			// Return original cwd — the caller decides what to do.
			return dir, nil
		}
		current = parent
	}
}

// AutomationPath returns the absolute path to <root>/.automation.
func AutomationPath(root string) string {
	return filepath.Join(root, AutomationDir)
}

// ScriptPath returns the conventional script path for a phase id.
func ScriptPath(root, phaseID string) string {
	return filepath.Join(root, AutomationDir, ScriptsDir, phaseID+".sh")
}

// ArtifactDirPath returns the conventional artifact directory for a phase id.
func ArtifactDirPath(root, phaseID string) string {
	return filepath.Join(root, AutomationDir, ArtifactsDir, phaseID)
}

// ManifestPath returns the capability manifest path.
func ManifestPath(root string) string {
	return filepath.Join(root, AutomationDir, CapabilitiesDir, ManifestFile)
}

// PhasesConfigPath returns the optional phases.yaml path.
func PhasesConfigPath(root string) string {
	return filepath.Join(root, AutomationDir, PhasesFile)
}

// HistoryDBPath returns the run-history database path, honoring the
// PHASERUN_HISTORY_DB override.
func HistoryDBPath(root string) string {
	if env := os.Getenv(EnvHistoryDB); env != "" {
		return env
	}
	return filepath.Join(root, AutomationDir, HistoryDBFile)
}
