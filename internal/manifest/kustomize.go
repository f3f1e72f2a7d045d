package manifest

import (
	"crypto/sha512"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
	"sigs.k8s.io/kustomize/api/krusty"
	"sigs.k8s.io/kustomize/kyaml/filesys"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// KustomizeRenderer handles directories containing a kustomization file
type KustomizeRenderer struct {
	opts *Options
}

// NewKustomizeRenderer creates a new KustomizeRenderer
func NewKustomizeRenderer(opts *Options) *KustomizeRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &KustomizeRenderer{opts: opts}
}

// Detect reports whether path is a directory with a kustomization file
func (r *KustomizeRenderer) Detect(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	for _, name := range []string{"kustomization.yaml", "kustomization.yml", "Kustomization"} {
		if _, err := os.Stat(filepath.Join(path, name)); err == nil {
			return true
		}
	}
	return false
}

// Render builds the kustomization and parses the flattened output
func (r *KustomizeRenderer) Render(path string) (*RenderResult, error) {
	k := krusty.MakeKustomizer(krusty.MakeDefaultOptions())
	resources, err := k.Run(filesys.MakeFsOnDisk(), path)
	if err != nil {
		return nil, fmt.Errorf("error building kustomization %s: %w", path, err)
	}

	yamlData, err := resources.AsYaml()
	if err != nil {
		return nil, fmt.Errorf("error encoding kustomize output: %w", err)
	}

	hash := sha512.Sum512(yamlData)
	result := &RenderResult{
		Name:      filepath.Base(path),
		Version:   fmt.Sprintf("sha512:%x", hash),
		Manifests: make([]*types.Manifest, 0),
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(yamlData)))
	docNum := 0
	for {
		var obj map[string]interface{}
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: kustomize output document %d: %v", ErrInvalidFormat, docNum+1, err)
		}
		docNum++
		if len(obj) == 0 {
			continue
		}

		raw, err := yaml.Marshal(obj)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("document %d: failed to re-encode: %v", docNum, err))
			continue
		}

		m := &types.Manifest{
			Name:    manifestName(obj, fmt.Sprintf("document-%d", docNum)),
			Content: obj,
			Raw:     raw,
		}
		if r.opts.IncludeMetadata {
			m.Metadata = map[string]interface{}{
				"source": path,
				"docNum": docNum,
			}
		}
		if r.opts.ValidateOutput {
			if err := validateManifest(m); err != nil {
				return nil, err
			}
		}
		result.Manifests = append(result.Manifests, m)
	}

	return result, nil
}
