package manifest

import (
	"fmt"
	"os"
)

// Factory picks the right renderer for a desired-state source
type Factory struct {
	opts      *Options
	renderers []Renderer
}

// NewFactory creates a Factory with the given options
func NewFactory(opts *Options) *Factory {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Factory{
		opts: opts,
		// order matters: a chart directory may also contain loose yaml
		renderers: []Renderer{
			NewHelmRenderer(opts),
			NewKustomizeRenderer(opts),
			NewYAMLRenderer(opts),
		},
	}
}

// RendererFor returns the renderer that can handle the source at path
func (f *Factory) RendererFor(path string) (Renderer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	for _, r := range f.renderers {
		if r.Detect(path) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not a yaml file, kustomize directory or helm chart", ErrInvalidInput, path)
}

// Load renders the source at path with the detected renderer
func (f *Factory) Load(path string) (*RenderResult, error) {
	renderer, err := f.RendererFor(path)
	if err != nil {
		return nil, err
	}
	return renderer.Render(path)
}
