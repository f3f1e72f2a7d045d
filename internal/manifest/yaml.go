package manifest

import (
	"crypto/sha512"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// YAMLRenderer handles plain single- or multi-document YAML files
type YAMLRenderer struct {
	opts *Options
}

// NewYAMLRenderer creates a new YAMLRenderer
func NewYAMLRenderer(opts *Options) *YAMLRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &YAMLRenderer{opts: opts}
}

// Detect reports whether path looks like a plain YAML source
func (r *YAMLRenderer) Detect(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Render parses every document in the file
func (r *YAMLRenderer) Render(path string) (*RenderResult, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidInput, path)
	}

	hash := sha512.Sum512(input)
	result := &RenderResult{
		Name:      filepath.Base(path),
		Version:   fmt.Sprintf("sha512:%x", hash),
		Manifests: make([]*types.Manifest, 0),
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(input)))
	docNum := 0
	for {
		var obj map[string]interface{}
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", ErrInvalidFormat, docNum+1, err)
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

	if len(result.Manifests) == 0 {
		return nil, fmt.Errorf("%w: no documents in %s", ErrInvalidInput, path)
	}
	return result, nil
}
