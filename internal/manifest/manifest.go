// Package manifest loads desired-state manifests from plain YAML files,
// kustomize directories, and helm charts into a uniform shape the
// reconcilers consume.
package manifest

import (
	"fmt"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// Options contains configuration options for renderers
type Options struct {
	// ValidateOutput requires every rendered manifest to carry
	// apiVersion, kind and metadata.name. Reconcile targets cannot be
	// derived without them.
	ValidateOutput bool
	// IncludeMetadata attaches provenance metadata to each manifest
	IncludeMetadata bool
	// Values is a path to a values.yaml file used when rendering a helm
	// chart
	Values string
	// Namespace is the release namespace for helm rendering
	Namespace string
}

// DefaultOptions returns a new Options with default values
func DefaultOptions() *Options {
	return &Options{
		ValidateOutput:  true,
		IncludeMetadata: true,
		Namespace:       "stackrox",
	}
}

// RenderResult contains the output of a render operation
type RenderResult struct {
	// Name of the rendered source
	Name string
	// Version is a content hash of the rendered output
	Version string
	// Manifests are the rendered documents in source order
	Manifests []*types.Manifest
	// Warnings holds non-fatal problems encountered while rendering
	Warnings []string
}

// Error types for the manifest package
var (
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrInvalidFormat = fmt.Errorf("invalid format")
	ErrIncomplete    = fmt.Errorf("manifest incomplete")
)

// Renderer converts one source format into rendered manifests
type Renderer interface {
	// Render loads the source at path and returns the rendered
	// manifests. Fatal problems return an error, recoverable ones are
	// reported as warnings on the result.
	Render(path string) (*RenderResult, error)

	// Detect reports whether this renderer can handle the source at
	// path
	Detect(path string) bool
}

// validateManifest checks that a rendered document carries enough
// identity to derive a reconcile target from it
func validateManifest(m *types.Manifest) error {
	if _, ok := m.Content["apiVersion"].(string); !ok {
		return fmt.Errorf("%w: %s has no apiVersion", ErrIncomplete, m.Name)
	}
	if _, ok := m.Content["kind"].(string); !ok {
		return fmt.Errorf("%w: %s has no kind", ErrIncomplete, m.Name)
	}
	metadata, ok := m.Content["metadata"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: %s has no metadata", ErrIncomplete, m.Name)
	}
	if _, ok := metadata["name"].(string); !ok {
		return fmt.Errorf("%w: %s has no metadata.name", ErrIncomplete, m.Name)
	}
	return nil
}

// manifestName extracts metadata.name from a parsed document, falling
// back to the given default
func manifestName(obj map[string]interface{}, fallback string) string {
	if metadata, ok := obj["metadata"].(map[string]interface{}); ok {
		if name, ok := metadata["name"].(string); ok && name != "" {
			return name
		}
	}
	return fallback
}
