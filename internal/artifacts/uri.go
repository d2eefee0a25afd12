package artifacts

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Scheme is the resource URI scheme served by this process.
const Scheme = "phaserun"

// URI forms:
//
//	phaserun://artifact/<phase>/<file>
//	phaserun://capabilities/manifest
const (
	artifactHost     = "artifact"
	capabilitiesHost = "capabilities"
	manifestName     = "manifest"
)

// ErrUnsupportedURI marks a uri that matches neither recognized form.
var ErrUnsupportedURI = errors.New("unsupported resource uri")

// uriKind tags the recognized uri variants.
type uriKind int

const (
	kindArtifact uriKind = iota
	kindManifest
)

type parsedURI struct {
	kind  uriKind
	phase string
	file  string
}

// ArtifactURI builds the canonical uri for a phase artifact file.
func ArtifactURI(phase, file string) string {
	return fmt.Sprintf("%s://%s/%s/%s", Scheme, artifactHost, phase, file)
}

// ManifestURI is the canonical uri of the capability manifest.
func ManifestURI() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, capabilitiesHost, manifestName)
}

// parseURI decodes a resource uri. The file component must be a bare
// name: separators and dot-segments are rejected so a uri can never
// escape its phase's artifact directory.
func parseURI(uri string) (parsedURI, error) {
	rest, ok := strings.CutPrefix(uri, Scheme+"://")
	if !ok {
		return parsedURI{}, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 2 && parts[0] == capabilitiesHost && parts[1] == manifestName:
		return parsedURI{kind: kindManifest}, nil
	case len(parts) == 3 && parts[0] == artifactHost:
		phase, file := parts[1], parts[2]
		if phase == "" || file == "" || file != path.Clean(file) || file == "." || file == ".." {
			return parsedURI{}, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
		}
		return parsedURI{kind: kindArtifact, phase: phase, file: file}, nil
	default:
		return parsedURI{}, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
	}
}

// MIMEType derives a mime type from a filename extension.
func MIMEType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return "application/json"
	case ".md", ".markdown":
		return "text/markdown"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".html":
		return "text/html"
	default:
		// .sh, .txt, and anything unrecognized.
		return "text/plain"
	}
}
