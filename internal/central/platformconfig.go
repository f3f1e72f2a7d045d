package central

import (
	"context"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// PlatformConfigProber compares a desired fragment against the live
// platform configuration. Only the fields present in the fragment are
// compared; everything else in the live config is left alone.
type PlatformConfigProber struct {
	client  *Client
	desired map[string]interface{}
}

// NewPlatformConfigProber creates a prober for one desired config
// fragment
func NewPlatformConfigProber(client *Client, desired map[string]interface{}) *PlatformConfigProber {
	return &PlatformConfigProber{client: client, desired: desired}
}

// Probe implements reconcile.Prober
func (p *PlatformConfigProber) Probe(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
	current, err := p.client.GetConfig(ctx)
	if err != nil {
		return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
	}
	if len(current) == 0 {
		return reconcile.Absent, nil
	}
	if subsetOf(p.desired, current) {
		return reconcile.PresentMatching, nil
	}
	return reconcile.PresentMismatched, nil
}

// PlatformConfigApplier merges a desired fragment into the live platform
// configuration and writes it back. Read-merge-write, last writer wins.
type PlatformConfigApplier struct {
	client  *Client
	desired map[string]interface{}
}

// NewPlatformConfigApplier creates an applier for one desired config
// fragment
func NewPlatformConfigApplier(client *Client, desired map[string]interface{}) *PlatformConfigApplier {
	return &PlatformConfigApplier{client: client, desired: desired}
}

// Apply implements reconcile.Applier
func (a *PlatformConfigApplier) Apply(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error) {
	current, err := a.client.GetConfig(ctx)
	if err != nil {
		return reconcile.Unchanged, err
	}

	created := len(current) == 0
	merged := deepMerge(current, a.desired)
	if err := a.client.PutConfig(ctx, merged); err != nil {
		return reconcile.Unchanged, err
	}

	if created {
		return reconcile.Created, nil
	}
	return reconcile.Updated, nil
}

// subsetOf reports whether every leaf in want is present with the same
// value in have
func subsetOf(want, have map[string]interface{}) bool {
	for key, wantVal := range want {
		haveVal, ok := have[key]
		if !ok {
			return false
		}
		wantMap, wantIsMap := wantVal.(map[string]interface{})
		haveMap, haveIsMap := haveVal.(map[string]interface{})
		if wantIsMap && haveIsMap {
			if !subsetOf(wantMap, haveMap) {
				return false
			}
			continue
		}
		if wantVal != haveVal {
			return false
		}
	}
	return true
}

// deepMerge overlays src onto dst, recursing into nested maps. dst is
// modified and returned.
func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = map[string]interface{}{}
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]interface{})
		dstMap, dstIsMap := dst[key].(map[string]interface{})
		if srcIsMap && dstIsMap {
			dst[key] = deepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
