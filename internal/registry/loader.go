package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oru-labs/phaserun/internal/config"
	"gopkg.in/yaml.v3"
)

// defaultPhaseIDs is the built-in workflow, in execution order.
var defaultPhaseIDs = []string{"planning", "architecture", "coding", "debugging", "review"}

var defaultDisplayNames = map[string]string{
	"planning":     "Planning",
	"architecture": "Architecture",
	"coding":       "Coding",
	"debugging":    "Debugging",
	"review":       "Review",
}

// Defaults returns the built-in phase table for a workspace, with
// convention-based script and artifact paths.
func Defaults(root string) []Phase {
	phases := make([]Phase, 0, len(defaultPhaseIDs))
	for _, id := range defaultPhaseIDs {
		phases = append(phases, Phase{
			ID:          id,
			DisplayName: defaultDisplayNames[id],
			Script:      config.ScriptPath(root, id),
			ArtifactDir: config.ArtifactDirPath(root, id),
		})
	}
	return phases
}

// phasesFile mirrors the on-disk phases.yaml structure.
type phasesFile struct {
	Phases []phaseEntry `yaml:"phases"`
}

type phaseEntry struct {
	ID                string   `yaml:"id"`
	DisplayName       string   `yaml:"display_name"`
	Summary           string   `yaml:"summary"`
	Script            string   `yaml:"script"`
	ArtifactDir       string   `yaml:"artifact_dir"`
	MaxRuntimeSeconds int      `yaml:"max_runtime_seconds"`
	AllowedEnv        []string `yaml:"allowed_env"`
}

// FromWorkspace builds the registry for a workspace root: the built-in
// defaults, overridden or extended by .automation/phases.yaml when that
// file exists. Entries in the file with a known id replace the default;
// entries with a new id are appended in file order.
func FromWorkspace(root string) (*Registry, error) {
	phases := Defaults(root)

	path := config.PhasesConfigPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(root, phases)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file phasesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, entry := range file.Phases {
		p, err := entry.toPhase(root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		phases = upsert(phases, p)
	}

	return New(root, phases)
}

func (e phaseEntry) toPhase(root string) (Phase, error) {
	if e.ID == "" {
		return Phase{}, fmt.Errorf("phase entry missing id")
	}

	script := e.Script
	if script == "" {
		script = config.ScriptPath(root, e.ID)
	} else if !filepath.IsAbs(script) {
		script = filepath.Join(root, script)
	}

	artifactDir := e.ArtifactDir
	if artifactDir == "" {
		artifactDir = config.ArtifactDirPath(root, e.ID)
	} else if !filepath.IsAbs(artifactDir) {
		artifactDir = filepath.Join(root, artifactDir)
	}

	displayName := e.DisplayName
	if displayName == "" {
		displayName = e.ID
	}

	return Phase{
		ID:          e.ID,
		DisplayName: displayName,
		Summary:     e.Summary,
		Script:      script,
		ArtifactDir: artifactDir,
		Guardrails: Guardrails{
			MaxRuntime: time.Duration(e.MaxRuntimeSeconds) * time.Second,
			AllowedEnv: e.AllowedEnv,
		},
	}, nil
}

func upsert(phases []Phase, p Phase) []Phase {
	for i := range phases {
		if phases[i].ID == p.ID {
			phases[i] = p
			return phases
		}
	}
	return append(phases, p)
}
