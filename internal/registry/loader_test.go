package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oru-labs/phaserun/internal/config"
)

func writePhasesConfig(t *testing.T, root, content string) {
	t.Helper()
	path := config.PhasesConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults_ConventionPaths(t *testing.T) {
	phases := Defaults("/ws")

	if len(phases) != 5 {
		t.Fatalf("len = %d, want 5", len(phases))
	}
	if phases[0].ID != "planning" || phases[4].ID != "review" {
		t.Errorf("order = %v", phases)
	}
	wantScript := filepath.Join("/ws", ".automation", "scripts", "coding.sh")
	if phases[2].Script != wantScript {
		t.Errorf("coding script = %s, want %s", phases[2].Script, wantScript)
	}
}

func TestFromWorkspace_NoConfigFile(t *testing.T) {
	root := t.TempDir()

	reg, err := FromWorkspace(root)
	if err != nil {
		t.Fatalf("FromWorkspace: %v", err)
	}
	ids := reg.IDs()
	if len(ids) != 5 || ids[0] != "planning" {
		t.Errorf("IDs = %v, want built-in defaults", ids)
	}
}

func TestFromWorkspace_OverridesDefault(t *testing.T) {
	root := t.TempDir()
	writePhasesConfig(t, root, `
phases:
  - id: coding
    display_name: Implementation
    script: tools/run-coding.sh
    max_runtime_seconds: 120
    allowed_env: [PATH, GOCACHE]
`)

	reg, err := FromWorkspace(root)
	if err != nil {
		t.Fatalf("FromWorkspace: %v", err)
	}

	p, err := reg.Lookup("coding")
	if err != nil {
		t.Fatal(err)
	}
	if p.DisplayName != "Implementation" {
		t.Errorf("DisplayName = %s, want Implementation", p.DisplayName)
	}
	wantScript := filepath.Join(root, "tools", "run-coding.sh")
	if p.Script != wantScript {
		t.Errorf("Script = %s, want %s", p.Script, wantScript)
	}
	if p.Guardrails.MaxRuntime != 120*time.Second {
		t.Errorf("MaxRuntime = %v, want 2m", p.Guardrails.MaxRuntime)
	}
	if len(p.Guardrails.AllowedEnv) != 2 || p.Guardrails.AllowedEnv[1] != "GOCACHE" {
		t.Errorf("AllowedEnv = %v", p.Guardrails.AllowedEnv)
	}

	// The remaining defaults are untouched.
	if len(reg.IDs()) != 5 {
		t.Errorf("IDs = %v, want 5 phases", reg.IDs())
	}
}

func TestFromWorkspace_AppendsNewPhase(t *testing.T) {
	root := t.TempDir()
	writePhasesConfig(t, root, `
phases:
  - id: release
    summary: Tag and publish
`)

	reg, err := FromWorkspace(root)
	if err != nil {
		t.Fatalf("FromWorkspace: %v", err)
	}

	ids := reg.IDs()
	if len(ids) != 6 || ids[5] != "release" {
		t.Errorf("IDs = %v, want release appended", ids)
	}

	p, _ := reg.Lookup("release")
	if p.Script != config.ScriptPath(root, "release") {
		t.Errorf("Script = %s, want convention default", p.Script)
	}
	if p.DisplayName != "release" {
		t.Errorf("DisplayName = %s, want id fallback", p.DisplayName)
	}
}

func TestFromWorkspace_RejectsEntryWithoutID(t *testing.T) {
	root := t.TempDir()
	writePhasesConfig(t, root, `
phases:
  - display_name: Anonymous
`)

	if _, err := FromWorkspace(root); err == nil {
		t.Error("expected error for phase entry without id")
	}
}

func TestFromWorkspace_RejectsBadYAML(t *testing.T) {
	root := t.TempDir()
	writePhasesConfig(t, root, "phases: [unclosed")

	if _, err := FromWorkspace(root); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
