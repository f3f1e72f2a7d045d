package cluster

import (
	"fmt"
	"strings"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Mapping resolves a reconcile kind to the dynamic-client coordinates
type Mapping struct {
	Resource   schema.GroupVersionResource
	Namespaced bool
}

// kindMappings covers the fixed kinds the pipelines touch
var kindMappings = map[reconcile.Kind]Mapping{
	reconcile.KindNamespace: {
		Resource: schema.GroupVersionResource{Version: "v1", Resource: "namespaces"},
	},
	reconcile.KindOperatorGroup: {
		Resource:   schema.GroupVersionResource{Group: "operators.coreos.com", Version: "v1", Resource: "operatorgroups"},
		Namespaced: true,
	},
	reconcile.KindOperatorSubscription: {
		Resource:   schema.GroupVersionResource{Group: "operators.coreos.com", Version: "v1alpha1", Resource: "subscriptions"},
		Namespaced: true,
	},
	reconcile.KindClusterServiceVersion: {
		Resource:   schema.GroupVersionResource{Group: "operators.coreos.com", Version: "v1alpha1", Resource: "clusterserviceversions"},
		Namespaced: true,
	},
	reconcile.KindDeployment: {
		Resource:   schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "deployments"},
		Namespaced: true,
	},
	reconcile.KindDaemonSet: {
		Resource:   schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "daemonsets"},
		Namespaced: true,
	},
	reconcile.KindRoute: {
		Resource:   schema.GroupVersionResource{Group: "route.openshift.io", Version: "v1", Resource: "routes"},
		Namespaced: true,
	},
	reconcile.KindCertificate: {
		Resource:   schema.GroupVersionResource{Group: "cert-manager.io", Version: "v1", Resource: "certificates"},
		Namespaced: true,
	},
}

// ResourceFor resolves the dynamic-client mapping for a target. Custom
// resources derive their coordinates from the desired manifest's
// apiVersion and kind.
func ResourceFor(target reconcile.Target) (Mapping, error) {
	if m, ok := kindMappings[target.Kind]; ok {
		return m, nil
	}
	if target.Kind == reconcile.KindCustomResource {
		return mappingFromManifest(target)
	}
	return Mapping{}, fmt.Errorf("no resource mapping for kind %q", target.Kind)
}

// mappingFromManifest derives GVR coordinates from the manifest itself
func mappingFromManifest(target reconcile.Target) (Mapping, error) {
	if target.DesiredSpec == nil || target.DesiredSpec.Content == nil {
		return Mapping{}, fmt.Errorf("custom-resource target %s has no desired manifest", target.Identity)
	}

	apiVersion, _ := target.DesiredSpec.Content["apiVersion"].(string)
	kind, _ := target.DesiredSpec.Content["kind"].(string)
	if apiVersion == "" || kind == "" {
		return Mapping{}, fmt.Errorf("manifest for %s is missing apiVersion or kind", target.Identity)
	}

	gv, err := schema.ParseGroupVersion(apiVersion)
	if err != nil {
		return Mapping{}, fmt.Errorf("invalid apiVersion %q: %w", apiVersion, err)
	}

	return Mapping{
		Resource:   gv.WithResource(guessResource(kind)),
		Namespaced: target.Identity.Namespace != "",
	}, nil
}

// guessResource lowercases and pluralizes a kind name. Good enough for
// the CRDs this tool touches (VirtualMachine, ScanSettingBinding, ...).
func guessResource(kind string) string {
	lower := strings.ToLower(kind)
	if strings.HasSuffix(lower, "s") {
		return lower + "es"
	}
	if strings.HasSuffix(lower, "y") {
		return strings.TrimSuffix(lower, "y") + "ies"
	}
	return lower + "s"
}
