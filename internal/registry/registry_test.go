package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// --- Helpers ---

func testPhase(id, script, artifactDir string) Phase {
	return Phase{
		ID:          id,
		DisplayName: id,
		Script:      script,
		ArtifactDir: artifactDir,
	}
}

func writeScript(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode); err != nil {
		t.Fatal(err)
	}
}

// --- New ---

func TestNew_RejectsEmptyTable(t *testing.T) {
	if _, err := New("/ws", nil); err == nil {
		t.Error("expected error for empty phase table")
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	phases := []Phase{
		testPhase("coding", "/ws/a.sh", "/ws/art/coding"),
		testPhase("coding", "/ws/b.sh", "/ws/art/coding2"),
	}
	if _, err := New("/ws", phases); err == nil {
		t.Error("expected error for duplicate phase id")
	}
}

func TestNew_RejectsMissingScriptPath(t *testing.T) {
	phases := []Phase{{ID: "coding", ArtifactDir: "/ws/art"}}
	if _, err := New("/ws", phases); err == nil {
		t.Error("expected error for phase without script path")
	}
}

// --- Lookup ---

func TestLookup_KnownPhase(t *testing.T) {
	reg, err := New("/ws", []Phase{testPhase("planning", "/ws/p.sh", "/ws/art/planning")})
	if err != nil {
		t.Fatal(err)
	}

	p, err := reg.Lookup("planning")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Script != "/ws/p.sh" {
		t.Errorf("Script = %s, want /ws/p.sh", p.Script)
	}
}

func TestLookup_UnknownPhase(t *testing.T) {
	reg, err := New("/ws", []Phase{testPhase("planning", "/ws/p.sh", "/ws/art/planning")})
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.Lookup("deploy")
	if !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("err = %v, want ErrUnknownPhase", err)
	}
}

func TestIDs_PreservesOrder(t *testing.T) {
	phases := []Phase{
		testPhase("debugging", "/ws/d.sh", "/ws/art/d"),
		testPhase("planning", "/ws/p.sh", "/ws/art/p"),
	}
	reg, err := New("/ws", phases)
	if err != nil {
		t.Fatal(err)
	}

	ids := reg.IDs()
	if len(ids) != 2 || ids[0] != "debugging" || ids[1] != "planning" {
		t.Errorf("IDs = %v, want [debugging planning]", ids)
	}
}

// --- ResolveScript ---

func TestResolveScript_Executable(t *testing.T) {
	root := t.TempDir()
	script := filepath.Join(root, "scripts", "coding.sh")
	writeScript(t, script, 0o755)

	reg, err := New(root, []Phase{testPhase("coding", script, filepath.Join(root, "art"))})
	if err != nil {
		t.Fatal(err)
	}

	got, err := reg.ResolveScript(reg.Phases()[0])
	if err != nil {
		t.Fatalf("ResolveScript: %v", err)
	}
	if got != script {
		t.Errorf("path = %s, want %s", got, script)
	}
}

func TestResolveScript_Missing(t *testing.T) {
	root := t.TempDir()
	phase := testPhase("coding", filepath.Join(root, "nope.sh"), filepath.Join(root, "art"))
	reg, err := New(root, []Phase{phase})
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.ResolveScript(phase)
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("err = %v, want ErrScriptNotFound", err)
	}
}

func TestResolveScript_NotExecutable(t *testing.T) {
	root := t.TempDir()
	script := filepath.Join(root, "scripts", "coding.sh")
	writeScript(t, script, 0o644)

	phase := testPhase("coding", script, filepath.Join(root, "art"))
	reg, err := New(root, []Phase{phase})
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.ResolveScript(phase)
	if !errors.Is(err, ErrScriptNotExecutable) {
		t.Errorf("err = %v, want ErrScriptNotExecutable", err)
	}
}

func TestResolveScript_OutsideWorkspace(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	script := filepath.Join(outside, "evil.sh")
	writeScript(t, script, 0o755)

	phase := testPhase("coding", script, filepath.Join(root, "art"))
	reg, err := New(root, []Phase{phase})
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.ResolveScript(phase)
	if !errors.Is(err, ErrScriptNotExecutable) {
		t.Errorf("err = %v, want containment failure", err)
	}
}

func TestResolveScript_Directory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scripts", "coding.sh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	phase := testPhase("coding", dir, filepath.Join(root, "art"))
	reg, err := New(root, []Phase{phase})
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.ResolveScript(phase)
	if !errors.Is(err, ErrScriptNotExecutable) {
		t.Errorf("err = %v, want ErrScriptNotExecutable", err)
	}
}

// --- ScriptReady ---

func TestScriptReady(t *testing.T) {
	root := t.TempDir()
	ready := filepath.Join(root, "scripts", "planning.sh")
	writeScript(t, ready, 0o755)

	phases := []Phase{
		testPhase("planning", ready, filepath.Join(root, "art", "planning")),
		testPhase("coding", filepath.Join(root, "scripts", "coding.sh"), filepath.Join(root, "art", "coding")),
	}
	reg, err := New(root, phases)
	if err != nil {
		t.Fatal(err)
	}

	if !reg.ScriptReady(phases[0]) {
		t.Error("planning should be ready")
	}
	if reg.ScriptReady(phases[1]) {
		t.Error("coding should not be ready (script missing)")
	}
}
