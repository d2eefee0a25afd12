package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oru-labs/phaserun/internal/artifacts"
	"github.com/oru-labs/phaserun/internal/config"
	"github.com/oru-labs/phaserun/internal/history"
	"github.com/oru-labs/phaserun/internal/registry"
)

type fakeLastRuns map[string]*history.Run

func (f fakeLastRuns) Last(phase string) (*history.Run, error) {
	return f[phase], nil
}

func testWorkspace(t *testing.T, ids ...string) (*registry.Registry, *artifacts.Store, string) {
	t.Helper()
	root := t.TempDir()
	phases := make([]registry.Phase, 0, len(ids))
	for _, id := range ids {
		phases = append(phases, registry.Phase{
			ID:          id,
			DisplayName: id,
			Script:      config.ScriptPath(root, id),
			ArtifactDir: config.ArtifactDirPath(root, id),
		})
	}
	reg, err := registry.New(root, phases)
	if err != nil {
		t.Fatal(err)
	}
	return reg, artifacts.NewStore(reg), root
}

func TestCollect_ScriptExistence(t *testing.T) {
	reg, store, root := testWorkspace(t, "planning", "coding", "review")

	// planning: executable, coding: present but not executable, review: missing.
	planScript := config.ScriptPath(root, "planning")
	if err := os.MkdirAll(filepath.Dir(planScript), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(planScript, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(config.ScriptPath(root, "coding"), []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	report := Collect(reg, store, nil)

	if len(report.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(report.Phases))
	}
	byID := map[string]PhaseStatus{}
	for _, p := range report.Phases {
		byID[p.ID] = p
	}
	if p := byID["planning"]; !p.ScriptExists || !p.Executable {
		t.Errorf("planning = %+v, want exists+executable", p)
	}
	if p := byID["coding"]; !p.ScriptExists || p.Executable {
		t.Errorf("coding = %+v, want exists, not executable", p)
	}
	if p := byID["review"]; p.ScriptExists {
		t.Errorf("review = %+v, want missing script", p)
	}
}

func TestCollect_ArtifactCounts(t *testing.T) {
	reg, store, root := testWorkspace(t, "coding")
	dir := config.ArtifactDirPath(root, "coding")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.txt", "b.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report := Collect(reg, store, nil)
	if got := report.Phases[0].ArtifactCount; got != 2 {
		t.Errorf("ArtifactCount = %d, want 2", got)
	}
}

func TestCollect_LastRuns(t *testing.T) {
	reg, store, _ := testWorkspace(t, "coding", "review")
	hist := fakeLastRuns{
		"coding": {ID: "run-1", Phase: "coding", Status: "FAILED", StartedAt: "2026-02-01T09:00:00Z"},
	}

	report := Collect(reg, store, hist)

	byID := map[string]PhaseStatus{}
	for _, p := range report.Phases {
		byID[p.ID] = p
	}
	if byID["coding"].LastRun == nil || byID["coding"].LastRun.Status != "FAILED" {
		t.Errorf("coding last run = %+v", byID["coding"].LastRun)
	}
	if byID["review"].LastRun != nil {
		t.Errorf("review last run = %+v, want nil", byID["review"].LastRun)
	}
}

func TestRender_OneRowPerPhase(t *testing.T) {
	reg, store, _ := testWorkspace(t, "planning", "coding")

	out := Collect(reg, store, nil).Render()

	if !strings.Contains(out, "planning") || !strings.Contains(out, "coding") {
		t.Errorf("render missing phases:\n%s", out)
	}
	if !strings.Contains(out, "missing") {
		t.Errorf("render should mark missing scripts:\n%s", out)
	}
}
