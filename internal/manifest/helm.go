package manifest

import (
	"crypto/sha512"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// HelmRenderer handles helm chart directories and packaged .tgz charts
type HelmRenderer struct {
	opts *Options
}

// NewHelmRenderer creates a new HelmRenderer
func NewHelmRenderer(opts *Options) *HelmRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HelmRenderer{opts: opts}
}

// Detect reports whether path is a chart directory or packaged chart
func (r *HelmRenderer) Detect(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err := os.Stat(filepath.Join(path, "Chart.yaml"))
		return err == nil
	}
	return strings.HasSuffix(path, ".tgz")
}

// Render loads the chart, renders its templates and parses the output
func (r *HelmRenderer) Render(path string) (*RenderResult, error) {
	chart, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading chart %s: %w", path, err)
	}

	values := chart.Values
	if values == nil {
		values = map[string]interface{}{}
	}
	if r.opts.Values != "" {
		overrides, err := chartutil.ReadValuesFile(r.opts.Values)
		if err != nil {
			return nil, fmt.Errorf("error reading values %s: %w", r.opts.Values, err)
		}
		values = chartutil.CoalesceTables(overrides.AsMap(), values)
	}

	releaseOpts := chartutil.ReleaseOptions{
		Name:      chart.Name(),
		Namespace: r.opts.Namespace,
		Revision:  1,
		IsInstall: true,
	}
	renderValues, err := chartutil.ToRenderValues(chart, values, releaseOpts, nil)
	if err != nil {
		return nil, fmt.Errorf("error preparing chart values: %w", err)
	}

	rendered, err := (engine.Engine{Strict: true}).Render(chart, renderValues)
	if err != nil {
		return nil, fmt.Errorf("error rendering chart %s: %w", chart.Name(), err)
	}

	// sort template names for a stable manifest order
	names := make([]string, 0, len(rendered))
	for name := range rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &RenderResult{
		Name:      chart.Name(),
		Manifests: make([]*types.Manifest, 0),
	}
	var combined strings.Builder

	for _, name := range names {
		content := rendered[name]
		if strings.TrimSpace(content) == "" {
			continue
		}
		combined.WriteString(content)

		decoder := yaml.NewDecoder(strings.NewReader(content))
		docNum := 0
		for {
			var obj map[string]interface{}
			err := decoder.Decode(&obj)
			if err == io.EOF {
				break
			}
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("template %s document %d: %v", name, docNum+1, err))
				break
			}
			docNum++
			if len(obj) == 0 {
				continue
			}

			raw, err := yaml.Marshal(obj)
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("template %s document %d: failed to re-encode: %v", name, docNum, err))
				continue
			}

			m := &types.Manifest{
				Name:    manifestName(obj, fmt.Sprintf("%s-%d", filepath.Base(name), docNum)),
				Content: obj,
				Raw:     raw,
			}
			if r.opts.IncludeMetadata {
				m.Metadata = map[string]interface{}{
					"template": name,
					"docNum":   docNum,
				}
			}
			if r.opts.ValidateOutput {
				if err := validateManifest(m); err != nil {
					return nil, err
				}
			}
			result.Manifests = append(result.Manifests, m)
		}
	}

	hash := sha512.Sum512([]byte(combined.String()))
	result.Version = fmt.Sprintf("sha512:%x", hash)
	return result, nil
}
