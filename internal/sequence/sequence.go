// Package sequence assembles the reconcile pipelines: ordered step lists
// for installing RHACS, enabling compliance scanning, enabling VM
// scanning, and verifying a finished installation.
package sequence

import (
	"context"

	"github.com/rhacs-labs/acs-ops/internal/central"
	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/config"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	"github.com/rhacs-labs/acs-ops/internal/types"
)

// Deps bundles the shared dependencies of the pipeline builders
type Deps struct {
	Cfg     *config.Config
	Clients *cluster.Clients
	Central *central.Client
}

// proberFunc adapts a function to the Prober interface
type proberFunc func(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error)

func (f proberFunc) Probe(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
	return f(ctx, target)
}

// applierFunc adapts a function to the Applier interface
type applierFunc func(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error)

func (f applierFunc) Apply(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error) {
	return f(ctx, target)
}

// pollPolicy builds the default poll policy from configuration
func pollPolicy(cfg *config.Config, onTimeout reconcile.TimeoutAction) reconcile.PollPolicy {
	return reconcile.PollPolicy{
		Interval:  cfg.Poll.Interval,
		Timeout:   cfg.Poll.Timeout,
		OnTimeout: onTimeout,
	}
}

// readiness builds a Readiness block that polls the target's live object
func readiness(deps Deps, target reconcile.Target, predicate reconcile.Predicate, onTimeout reconcile.TimeoutAction) *reconcile.Readiness {
	return &reconcile.Readiness{
		Fetch:     deps.Clients.StatusFetcher(target),
		Predicate: predicate,
		Policy:    pollPolicy(deps.Cfg, onTimeout),
	}
}

// newManifest wraps a parsed document as a Manifest
func newManifest(name string, content map[string]interface{}) *types.Manifest {
	return &types.Manifest{Name: name, Content: content}
}

// metadata builds the metadata block of a manifest
func metadata(namespace, name string) map[string]interface{} {
	m := map[string]interface{}{"name": name}
	if namespace != "" {
		m["namespace"] = namespace
	}
	return m
}
