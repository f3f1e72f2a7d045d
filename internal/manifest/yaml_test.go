package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const multiDocYAML = `apiVersion: v1
kind: Namespace
metadata:
  name: stackrox
---
apiVersion: operators.coreos.com/v1alpha1
kind: Subscription
metadata:
  namespace: stackrox
  name: rhacs-operator
spec:
  channel: stable
  name: rhacs-operator
  source: redhat-operators
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLRender(t *testing.T) {
	path := writeFixture(t, "install.yaml", multiDocYAML)
	r := NewYAMLRenderer(nil)

	result, err := r.Render(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Manifests) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(result.Manifests))
	}
	if result.Manifests[0].Name != "stackrox" {
		t.Errorf("expected first manifest stackrox, got %s", result.Manifests[0].Name)
	}
	if result.Manifests[1].Name != "rhacs-operator" {
		t.Errorf("expected second manifest rhacs-operator, got %s", result.Manifests[1].Name)
	}
	if result.Version == "" {
		t.Error("expected a content version")
	}
}

func TestYAMLRenderRejectsIncompleteDocument(t *testing.T) {
	path := writeFixture(t, "incomplete.yaml", "apiVersion: v1\nkind: Namespace\n")
	r := NewYAMLRenderer(nil)

	if _, err := r.Render(path); err == nil {
		t.Error("expected error for manifest without metadata.name")
	}
}

func TestYAMLRenderIncompleteAllowedWhenValidationOff(t *testing.T) {
	path := writeFixture(t, "incomplete.yaml", "apiVersion: v1\nkind: Namespace\n")
	opts := DefaultOptions()
	opts.ValidateOutput = false
	r := NewYAMLRenderer(opts)

	result, err := r.Render(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Manifests) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(result.Manifests))
	}
}

func TestYAMLRenderEmptyFile(t *testing.T) {
	path := writeFixture(t, "empty.yaml", "")
	r := NewYAMLRenderer(nil)

	if _, err := r.Render(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestYAMLRenderInvalidSyntax(t *testing.T) {
	path := writeFixture(t, "broken.yaml", "{broken: [")
	r := NewYAMLRenderer(nil)

	if _, err := r.Render(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestYAMLDetect(t *testing.T) {
	yamlPath := writeFixture(t, "a.yaml", "x: 1\n")
	r := NewYAMLRenderer(nil)

	if !r.Detect(yamlPath) {
		t.Error("expected yaml file to be detected")
	}
	if r.Detect(filepath.Dir(yamlPath)) {
		t.Error("expected directory to be rejected")
	}
	if r.Detect(filepath.Join(t.TempDir(), "missing.yaml")) {
		t.Error("expected missing file to be rejected")
	}
}
