package manifest

import (
	"path/filepath"
	"testing"
)

func TestFactoryDetection(t *testing.T) {
	factory := NewFactory(nil)

	yamlPath := writeFixture(t, "install.yaml", multiDocYAML)
	kustomizeDir := writeKustomizeDir(t)
	chartDir := writeChartDir(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "yaml file", path: yamlPath, want: "*manifest.YAMLRenderer"},
		{name: "kustomize directory", path: kustomizeDir, want: "*manifest.KustomizeRenderer"},
		{name: "helm chart", path: chartDir, want: "*manifest.HelmRenderer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, err := factory.RendererFor(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			switch tt.want {
			case "*manifest.YAMLRenderer":
				if _, ok := renderer.(*YAMLRenderer); !ok {
					t.Errorf("expected YAMLRenderer, got %T", renderer)
				}
			case "*manifest.KustomizeRenderer":
				if _, ok := renderer.(*KustomizeRenderer); !ok {
					t.Errorf("expected KustomizeRenderer, got %T", renderer)
				}
			case "*manifest.HelmRenderer":
				if _, ok := renderer.(*HelmRenderer); !ok {
					t.Errorf("expected HelmRenderer, got %T", renderer)
				}
			}
		})
	}
}

func TestFactoryLoad(t *testing.T) {
	factory := NewFactory(nil)
	path := writeFixture(t, "install.yaml", multiDocYAML)

	result, err := factory.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Manifests) != 2 {
		t.Errorf("expected 2 manifests, got %d", len(result.Manifests))
	}
}

func TestFactoryUnknownSource(t *testing.T) {
	factory := NewFactory(nil)

	if _, err := factory.RendererFor(t.TempDir()); err == nil {
		t.Error("expected error for directory without kustomization or chart")
	}
	if _, err := factory.RendererFor(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
