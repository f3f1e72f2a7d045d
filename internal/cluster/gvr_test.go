package cluster

import (
	"testing"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	"github.com/rhacs-labs/acs-ops/internal/types"
)

func TestResourceForKnownKinds(t *testing.T) {
	tests := []struct {
		kind       reconcile.Kind
		resource   string
		group      string
		namespaced bool
	}{
		{kind: reconcile.KindNamespace, resource: "namespaces", group: "", namespaced: false},
		{kind: reconcile.KindOperatorGroup, resource: "operatorgroups", group: "operators.coreos.com", namespaced: true},
		{kind: reconcile.KindOperatorSubscription, resource: "subscriptions", group: "operators.coreos.com", namespaced: true},
		{kind: reconcile.KindClusterServiceVersion, resource: "clusterserviceversions", group: "operators.coreos.com", namespaced: true},
		{kind: reconcile.KindDeployment, resource: "deployments", group: "apps", namespaced: true},
		{kind: reconcile.KindDaemonSet, resource: "daemonsets", group: "apps", namespaced: true},
		{kind: reconcile.KindRoute, resource: "routes", group: "route.openshift.io", namespaced: true},
		{kind: reconcile.KindCertificate, resource: "certificates", group: "cert-manager.io", namespaced: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			mapping, err := ResourceFor(reconcile.Target{Kind: tt.kind})
			if err != nil {
				t.Fatal(err)
			}
			if mapping.Resource.Resource != tt.resource {
				t.Errorf("expected resource %s, got %s", tt.resource, mapping.Resource.Resource)
			}
			if mapping.Resource.Group != tt.group {
				t.Errorf("expected group %s, got %s", tt.group, mapping.Resource.Group)
			}
			if mapping.Namespaced != tt.namespaced {
				t.Errorf("expected namespaced %v, got %v", tt.namespaced, mapping.Namespaced)
			}
		})
	}
}

func TestResourceForCustomResource(t *testing.T) {
	target := reconcile.Target{
		Kind:     reconcile.KindCustomResource,
		Identity: reconcile.Identity{Namespace: "stackrox", Name: "vuln-scan-target"},
		DesiredSpec: &types.Manifest{
			Content: map[string]interface{}{
				"apiVersion": "kubevirt.io/v1",
				"kind":       "VirtualMachine",
			},
		},
	}

	mapping, err := ResourceFor(target)
	if err != nil {
		t.Fatal(err)
	}
	if mapping.Resource.Group != "kubevirt.io" {
		t.Errorf("expected group kubevirt.io, got %s", mapping.Resource.Group)
	}
	if mapping.Resource.Resource != "virtualmachines" {
		t.Errorf("expected resource virtualmachines, got %s", mapping.Resource.Resource)
	}
	if !mapping.Namespaced {
		t.Error("expected namespaced mapping")
	}
}

func TestResourceForCustomResourceMissingManifest(t *testing.T) {
	_, err := ResourceFor(reconcile.Target{Kind: reconcile.KindCustomResource})
	if err == nil {
		t.Error("expected error for custom resource without manifest")
	}
}

func TestGuessResource(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{kind: "VirtualMachine", want: "virtualmachines"},
		{kind: "ScanSettingBinding", want: "scansettingbindings"},
		{kind: "SecurityPolicy", want: "securitypolicies"},
		{kind: "Ingress", want: "ingresses"},
	}

	for _, tt := range tests {
		if got := guessResource(tt.kind); got != tt.want {
			t.Errorf("guessResource(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}
