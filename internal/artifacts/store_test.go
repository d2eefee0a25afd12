package artifacts

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/oru-labs/phaserun/internal/config"
	"github.com/oru-labs/phaserun/internal/registry"
)

// --- Fixtures ---

func testStore(t *testing.T, ids ...string) (*Store, string) {
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
	return NewStore(reg), root
}

func writeArtifact(t *testing.T, root, phase, name string, content []byte) {
	t.Helper()
	dir := config.ArtifactDirPath(root, phase)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeManifest(t *testing.T, root string, content []byte) {
	t.Helper()
	path := config.ManifestPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- List ---

func TestList_EmptyWorkspace(t *testing.T) {
	store, _ := testStore(t, "planning", "coding")

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}

func TestList_ArtifactsAndManifest(t *testing.T) {
	store, root := testStore(t, "planning", "coding")
	writeArtifact(t, root, "planning", "roadmap.md", []byte("# plan"))
	writeArtifact(t, root, "coding", "report.json", []byte("{}"))
	writeManifest(t, root, []byte(`{"version":"1"}`))

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	// Registry order: planning first, manifest last.
	if entries[0].URI != "phaserun://artifact/planning/roadmap.md" {
		t.Errorf("entry 0 = %s", entries[0].URI)
	}
	if entries[0].MIMEType != "text/markdown" {
		t.Errorf("entry 0 mime = %s", entries[0].MIMEType)
	}
	if entries[1].URI != "phaserun://artifact/coding/report.json" {
		t.Errorf("entry 1 = %s", entries[1].URI)
	}
	if entries[2].URI != "phaserun://capabilities/manifest" {
		t.Errorf("entry 2 = %s", entries[2].URI)
	}
}

func TestList_SkipsSubdirsAndDotfiles(t *testing.T) {
	store, root := testStore(t, "coding")
	writeArtifact(t, root, "coding", "out.txt", []byte("x"))
	writeArtifact(t, root, "coding", ".hidden", []byte("x"))
	if err := os.MkdirAll(filepath.Join(config.ArtifactDirPath(root, "coding"), "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "out.txt" {
		t.Errorf("entries = %v, want only out.txt", entries)
	}
}

func TestList_Idempotent(t *testing.T) {
	store, root := testStore(t, "planning")
	writeArtifact(t, root, "planning", "a.md", []byte("a"))
	writeArtifact(t, root, "planning", "b.json", []byte("{}"))

	first, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("List not idempotent:\nfirst  = %v\nsecond = %v", first, second)
	}
}

// --- Read ---

func TestRead_RoundTrip(t *testing.T) {
	store, root := testStore(t, "review")
	content := []byte("## findings\nall good\n")
	writeArtifact(t, root, "review", "findings.md", content)

	entry, data, err := store.Read("phaserun://artifact/review/findings.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content = %q, want byte-identical round trip", data)
	}
	if entry.MIMEType != "text/markdown" {
		t.Errorf("mime = %s, want text/markdown", entry.MIMEType)
	}
}

func TestRead_Manifest(t *testing.T) {
	store, root := testStore(t, "planning")
	writeManifest(t, root, []byte(`{"capabilities":[]}`))

	entry, data, err := store.Read("phaserun://capabilities/manifest")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if entry.MIMEType != "application/json" {
		t.Errorf("mime = %s", entry.MIMEType)
	}
	if !bytes.Contains(data, []byte("capabilities")) {
		t.Errorf("data = %q", data)
	}
}

func TestRead_MissingFile(t *testing.T) {
	store, _ := testStore(t, "review")

	_, _, err := store.Read("phaserun://artifact/review/ghost.md")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound", err)
	}
}

func TestRead_UnknownPhase(t *testing.T) {
	store, _ := testStore(t, "review")

	_, _, err := store.Read("phaserun://artifact/deploy/x.md")
	if !errors.Is(err, registry.ErrUnknownPhase) {
		t.Errorf("err = %v, want ErrUnknownPhase", err)
	}
}

func TestRead_UnsupportedURIs(t *testing.T) {
	store, _ := testStore(t, "review")

	uris := []string{
		"http://artifact/review/x.md",
		"phaserun://other/review/x.md",
		"phaserun://artifact/review",
		"phaserun://artifact/review/a/b",
		"phaserun://capabilities/other",
		"phaserun://artifact/review/..",
		"garbage",
	}
	for _, uri := range uris {
		if _, _, err := store.Read(uri); !errors.Is(err, ErrUnsupportedURI) {
			t.Errorf("Read(%q) err = %v, want ErrUnsupportedURI", uri, err)
		}
	}
}

// --- Count ---

func TestCount(t *testing.T) {
	store, root := testStore(t, "coding", "review")
	writeArtifact(t, root, "coding", "a.txt", []byte("x"))
	writeArtifact(t, root, "coding", "b.txt", []byte("x"))

	phases := store.reg.Phases()
	if got := store.Count(phases[0]); got != 2 {
		t.Errorf("Count(coding) = %d, want 2", got)
	}
	if got := store.Count(phases[1]); got != 0 {
		t.Errorf("Count(review) = %d, want 0 for missing dir", got)
	}
}

// --- MIME mapping ---

func TestMIMEType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.json", "application/json"},
		{"notes.md", "text/markdown"},
		{"notes.markdown", "text/markdown"},
		{"run.sh", "text/plain"},
		{"log.txt", "text/plain"},
		{"config.yaml", "application/yaml"},
		{"config.yml", "application/yaml"},
		{"page.html", "text/html"},
		{"mystery.xyz", "text/plain"},
		{"noext", "text/plain"},
	}
	for _, tt := range tests {
		if got := MIMEType(tt.name); got != tt.want {
			t.Errorf("MIMEType(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
