// Package artifacts exposes phase output files as addressable,
// read-only resources.
//
// Artifacts are written by phase scripts, never by this server; the
// store only observes the directories the registry points it at. Each
// file maps to exactly one phaserun:// uri.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oru-labs/phaserun/internal/config"
	"github.com/oru-labs/phaserun/internal/registry"
)

// ErrResourceNotFound marks a well-formed uri whose file does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// Entry describes one listable resource.
type Entry struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Phase    string `json:"phase,omitempty"`
	MIMEType string `json:"mime_type"`
	Path     string `json:"-"`
}

// Store lists and reads artifacts for the phases of one registry.
type Store struct {
	root string
	reg  *registry.Registry
}

// NewStore creates an artifact store over a workspace registry.
func NewStore(reg *registry.Registry) *Store {
	return &Store{root: reg.Root(), reg: reg}
}

// List enumerates every artifact of every registered phase, in registry
// order with files sorted by name, plus the capability manifest when it
// exists. Missing artifact directories are skipped silently — a phase
// that has never run simply contributes no entries.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry

	for _, phase := range s.reg.Phases() {
		files, err := os.ReadDir(phase.ArtifactDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("listing artifacts for %q: %w", phase.ID, err)
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			entries = append(entries, Entry{
				URI:      ArtifactURI(phase.ID, f.Name()),
				Name:     f.Name(),
				Phase:    phase.ID,
				MIMEType: MIMEType(f.Name()),
				Path:     filepath.Join(phase.ArtifactDir, f.Name()),
			})
		}
	}

	manifest := config.ManifestPath(s.root)
	if info, err := os.Stat(manifest); err == nil && !info.IsDir() {
		entries = append(entries, Entry{
			URI:      ManifestURI(),
			Name:     config.ManifestFile,
			MIMEType: "application/json",
			Path:     manifest,
		})
	}

	return entries, nil
}

// Read resolves a uri and returns the entry plus file content.
// Fails with ErrUnsupportedURI for unrecognized uris, ErrUnknownPhase
// for artifact uris naming an unregistered phase, and
// ErrResourceNotFound when the resolved file is missing.
func (s *Store) Read(uri string) (Entry, []byte, error) {
	parsed, err := parseURI(uri)
	if err != nil {
		return Entry{}, nil, err
	}

	var entry Entry
	switch parsed.kind {
	case kindManifest:
		entry = Entry{
			URI:      ManifestURI(),
			Name:     config.ManifestFile,
			MIMEType: "application/json",
			Path:     config.ManifestPath(s.root),
		}
	case kindArtifact:
		phase, err := s.reg.Lookup(parsed.phase)
		if err != nil {
			return Entry{}, nil, err
		}
		entry = Entry{
			URI:      ArtifactURI(phase.ID, parsed.file),
			Name:     parsed.file,
			Phase:    phase.ID,
			MIMEType: MIMEType(parsed.file),
			Path:     filepath.Join(phase.ArtifactDir, parsed.file),
		}
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, nil, fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
		}
		return Entry{}, nil, fmt.Errorf("reading %s: %w", entry.Path, err)
	}
	return entry, data, nil
}

// Count returns the number of artifact files for one phase. A missing
// directory counts as zero.
func (s *Store) Count(phase registry.Phase) int {
	files, err := os.ReadDir(phase.ArtifactDir)
	if err != nil {
		return 0
	}
	n := 0
	for _, f := range files {
		if !f.IsDir() && !strings.HasPrefix(f.Name(), ".") {
			n++
		}
	}
	return n
}
