package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeKustomizeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"kustomization.yaml": `resources:
  - namespace.yaml
  - subscription.yaml
commonLabels:
  app.kubernetes.io/managed-by: acs-ops
`,
		"namespace.yaml": `apiVersion: v1
kind: Namespace
metadata:
  name: stackrox
`,
		"subscription.yaml": `apiVersion: operators.coreos.com/v1alpha1
kind: Subscription
metadata:
  namespace: stackrox
  name: rhacs-operator
spec:
  channel: stable
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestKustomizeRender(t *testing.T) {
	dir := writeKustomizeDir(t)
	r := NewKustomizeRenderer(nil)

	result, err := r.Render(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Manifests) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(result.Manifests))
	}

	for _, m := range result.Manifests {
		metadata, ok := m.Content["metadata"].(map[string]interface{})
		if !ok {
			t.Fatalf("manifest %s has no metadata", m.Name)
		}
		labels, ok := metadata["labels"].(map[string]interface{})
		if !ok {
			t.Fatalf("manifest %s missing common labels", m.Name)
		}
		if labels["app.kubernetes.io/managed-by"] != "acs-ops" {
			t.Errorf("manifest %s missing managed-by label", m.Name)
		}
	}
}

func TestKustomizeDetect(t *testing.T) {
	dir := writeKustomizeDir(t)
	r := NewKustomizeRenderer(nil)

	if !r.Detect(dir) {
		t.Error("expected kustomize directory to be detected")
	}
	if r.Detect(t.TempDir()) {
		t.Error("expected plain directory to be rejected")
	}
	if r.Detect(filepath.Join(dir, "namespace.yaml")) {
		t.Error("expected file to be rejected")
	}
}

func TestKustomizeRenderBadDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kustomization.yaml"), []byte("resources:\n  - missing.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewKustomizeRenderer(nil)

	if _, err := r.Render(dir); err == nil {
		t.Error("expected error for unresolvable resource")
	}
}
