// Package resources exposes phase artifacts and the capability
// manifest as MCP resources.
//
// Resources use URI-based addressing (phaserun://...) following MCP
// conventions. Concrete artifact files are registered individually so
// clients can discover them via resources/list; a template covers
// direct reads of artifacts produced after the last sync.
package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oru-labs/phaserun/internal/artifacts"
)

// Handler serves artifact and manifest resource reads.
type Handler struct {
	store *artifacts.Store
}

// NewHandler creates a resource Handler over an artifact store.
func NewHandler(store *artifacts.Store) *Handler {
	return &Handler{store: store}
}

// ManifestResource returns the capability manifest resource definition.
func (h *Handler) ManifestResource() mcp.Resource {
	return mcp.NewResource(
		artifacts.ManifestURI(),
		"Capability Manifest",
		mcp.WithResourceDescription("The workspace capability manifest, written by the manifest generator"),
		mcp.WithMIMEType("application/json"),
	)
}

// ArtifactTemplate returns the template matching any phase artifact uri.
func (h *Handler) ArtifactTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		artifacts.Scheme+"://artifact/{phase}/{file}",
		"Phase Artifact",
		mcp.WithTemplateDescription("A file produced by a workflow phase's entrypoint script"),
	)
}

// HandleRead resolves any phaserun:// uri and returns its content.
// Used for the manifest resource, the artifact template, and every
// concrete artifact registered by Sync.
func (h *Handler) HandleRead(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entry, data, err := h.store.Read(req.Params.URI)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      entry.URI,
			MIMEType: entry.MIMEType,
			Text:     string(data),
		},
	}, nil
}

// Sync scans the artifact store and registers one concrete resource
// per discovered file, so resources/list reflects what is on disk.
// Re-registering an existing uri overwrites the previous entry; the
// server emits list_changed to subscribed clients. Called at startup;
// artifacts produced later are still readable through the template.
func (h *Handler) Sync(s *server.MCPServer) error {
	entries, err := h.store.List()
	if err != nil {
		return fmt.Errorf("syncing resource list: %w", err)
	}
	for _, e := range entries {
		if e.URI == artifacts.ManifestURI() {
			continue // registered statically
		}
		name := fmt.Sprintf("%s/%s", e.Phase, e.Name)
		s.AddResource(mcp.NewResource(
			e.URI,
			name,
			mcp.WithResourceDescription(fmt.Sprintf("Artifact of the %s phase", e.Phase)),
			mcp.WithMIMEType(e.MIMEType),
		), h.HandleRead)
	}
	return nil
}
