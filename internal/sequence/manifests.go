package sequence

import (
	"fmt"

	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/manifest"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	"github.com/rhacs-labs/acs-ops/internal/types"
)

// kindMap translates manifest kinds onto the engine's target kinds.
// Anything unlisted reconciles through the generic custom-resource path.
var kindMap = map[string]reconcile.Kind{
	"Namespace":             reconcile.KindNamespace,
	"OperatorGroup":         reconcile.KindOperatorGroup,
	"Subscription":          reconcile.KindOperatorSubscription,
	"ClusterServiceVersion": reconcile.KindClusterServiceVersion,
	"Deployment":            reconcile.KindDeployment,
	"DaemonSet":             reconcile.KindDaemonSet,
	"Route":                 reconcile.KindRoute,
	"Certificate":           reconcile.KindCertificate,
}

// FromManifests renders the source at path and converts every document
// into an apply step, in source order. Used by the install pipeline's
// --manifests flag to reconcile user-provided desired state.
func FromManifests(deps Deps, path string) ([]reconcile.Step, error) {
	factory := manifest.NewFactory(manifest.DefaultOptions())
	result, err := factory.Load(path)
	if err != nil {
		return nil, err
	}

	applier := cluster.NewServerSideApplier(deps.Clients.Dynamic)
	steps := make([]reconcile.Step, 0, len(result.Manifests))
	for _, m := range result.Manifests {
		target, err := targetFromManifest(m)
		if err != nil {
			return nil, err
		}
		steps = append(steps, reconcile.Step{
			Name:      fmt.Sprintf("apply %s %s", m.Content["kind"], target.Identity),
			Target:    target,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			OnFailure: reconcile.Continue,
		})
	}
	return steps, nil
}

// targetFromManifest derives a reconcile target from a rendered document
func targetFromManifest(m *types.Manifest) (reconcile.Target, error) {
	kindName, _ := m.Content["kind"].(string)
	metadata, ok := m.Content["metadata"].(map[string]interface{})
	if !ok {
		return reconcile.Target{}, fmt.Errorf("manifest %s has no metadata", m.Name)
	}
	name, _ := metadata["name"].(string)
	if name == "" {
		return reconcile.Target{}, fmt.Errorf("manifest %s has no metadata.name", m.Name)
	}
	namespace, _ := metadata["namespace"].(string)

	kind, ok := kindMap[kindName]
	if !ok {
		kind = reconcile.KindCustomResource
	}

	return reconcile.Target{
		Kind:        kind,
		Identity:    reconcile.Identity{Namespace: namespace, Name: name},
		DesiredSpec: m,
	}, nil
}
