package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for phase lookup and script resolution. Callers match
// with errors.Is; the transport layer turns them into tool errors.
var (
	ErrUnknownPhase        = errors.New("unknown phase")
	ErrScriptNotFound      = errors.New("phase script not found")
	ErrScriptNotExecutable = errors.New("phase script not executable")
)

// Registry is the read-only phase table. Safe for concurrent use after
// construction.
type Registry struct {
	root   string
	phases []Phase
	byID   map[string]Phase
}

// New builds a registry for the given workspace root from an explicit
// phase list. Duplicate ids are a configuration error.
func New(root string, phases []Phase) (*Registry, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("registry needs at least one phase")
	}

	byID := make(map[string]Phase, len(phases))
	for _, p := range phases {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate phase id %q", p.ID)
		}
		byID[p.ID] = p
	}

	return &Registry{
		root:   root,
		phases: append([]Phase(nil), phases...),
		byID:   byID,
	}, nil
}

// Root returns the workspace root the registry was built for.
func (r *Registry) Root() string {
	return r.root
}

// Lookup returns the phase for an id, or ErrUnknownPhase.
func (r *Registry) Lookup(id string) (Phase, error) {
	p, ok := r.byID[id]
	if !ok {
		return Phase{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPhase, id, strings.Join(r.IDs(), ", "))
	}
	return p, nil
}

// Phases returns all phases in registration order.
func (r *Registry) Phases() []Phase {
	return append([]Phase(nil), r.phases...)
}

// IDs returns all phase ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, p := range r.phases {
		ids[i] = p.ID
	}
	return ids
}

// ResolveScript verifies a phase's entrypoint right before execution:
// the script must exist, be a regular file (not a symlink, not a
// directory), live inside the workspace, and carry an execute bit.
// Checked here rather than at spawn time so callers get a precise
// error instead of a generic OS failure.
func (r *Registry) ResolveScript(p Phase) (string, error) {
	info, err := os.Lstat(p.Script)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q at %s", ErrScriptNotFound, p.ID, p.Script)
		}
		return "", fmt.Errorf("stat script for %q: %w", p.ID, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("%w: %q entrypoint %s is a symlink", ErrScriptNotExecutable, p.ID, p.Script)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q entrypoint %s is a directory", ErrScriptNotExecutable, p.ID, p.Script)
	}
	if !scriptInsideRoot(r.root, p.Script) {
		return "", fmt.Errorf("%w: %q entrypoint %s escapes workspace %s", ErrScriptNotExecutable, p.ID, p.Script, r.root)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%w: %q at %s (missing execute bit)", ErrScriptNotExecutable, p.ID, p.Script)
	}
	return p.Script, nil
}

// ScriptReady reports whether a phase's script would pass ResolveScript.
// Used by status reporting: an unready phase is reported, not invoked.
func (r *Registry) ScriptReady(p Phase) bool {
	_, err := r.ResolveScript(p)
	return err == nil
}

func scriptInsideRoot(root, script string) bool {
	rel, err := filepath.Rel(root, script)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
