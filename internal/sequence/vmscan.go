package sequence

import (
	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// VMScanSteps builds the virtual-machine-scanning pipeline: the
// cert-manager operator, the feature flag on Central, the vsock listener
// certificate, and a scan-target VM to exercise the scanner against.
func VMScanSteps(deps Deps) []reconcile.Step {
	cfg := deps.Cfg
	applier := cluster.NewServerSideApplier(deps.Clients.Dynamic)
	ns := cfg.VMScan.Namespace
	opNS := cfg.VMScan.OperatorNamespace

	operatorNamespaceTarget := reconcile.Target{
		Kind:     reconcile.KindNamespace,
		Identity: reconcile.Identity{Name: opNS},
		DesiredSpec: newManifest(opNS, map[string]interface{}{
			"apiVersion": "v1",
			"kind":       "Namespace",
			"metadata":   metadata("", opNS),
		}),
	}

	operatorGroupTarget := reconcile.Target{
		Kind:     reconcile.KindOperatorGroup,
		Identity: reconcile.Identity{Namespace: opNS, Name: "cert-manager-operator-group"},
		DesiredSpec: newManifest("cert-manager-operator-group", map[string]interface{}{
			"apiVersion": "operators.coreos.com/v1",
			"kind":       "OperatorGroup",
			"metadata":   metadata(opNS, "cert-manager-operator-group"),
			"spec": map[string]interface{}{
				"targetNamespaces": []interface{}{opNS},
			},
		}),
	}

	subscriptionTarget := reconcile.Target{
		Kind:     reconcile.KindOperatorSubscription,
		Identity: reconcile.Identity{Namespace: opNS, Name: cfg.VMScan.OperatorName},
		DesiredSpec: newManifest(cfg.VMScan.OperatorName, map[string]interface{}{
			"apiVersion": "operators.coreos.com/v1alpha1",
			"kind":       "Subscription",
			"metadata":   metadata(opNS, cfg.VMScan.OperatorName),
			"spec": map[string]interface{}{
				"channel":             cfg.VMScan.OperatorChannel,
				"name":                cfg.VMScan.OperatorName,
				"source":              cfg.Operator.Source,
				"sourceNamespace":     cfg.Operator.SourceNamespace,
				"installPlanApproval": "Automatic",
			},
		}),
	}

	centralDeploy := reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: cfg.Central.Namespace, Name: "central"},
	}

	certTarget := reconcile.Target{
		Kind:     reconcile.KindCertificate,
		Identity: reconcile.Identity{Namespace: ns, Name: cfg.VMScan.CertificateName},
		DesiredSpec: newManifest(cfg.VMScan.CertificateName, map[string]interface{}{
			"apiVersion": "cert-manager.io/v1",
			"kind":       "Certificate",
			"metadata":   metadata(ns, cfg.VMScan.CertificateName),
			"spec": map[string]interface{}{
				"secretName": cfg.VMScan.CertificateName,
				"dnsNames":   []interface{}{"vsock-listener." + ns + ".svc"},
				"issuerRef": map[string]interface{}{
					"kind": "Issuer",
					"name": "selfsigned-issuer",
				},
			},
		}),
	}

	vmTarget := reconcile.Target{
		Kind:     reconcile.KindCustomResource,
		Identity: reconcile.Identity{Namespace: ns, Name: cfg.VMScan.VMName},
		DesiredSpec: newManifest(cfg.VMScan.VMName, map[string]interface{}{
			"apiVersion": "kubevirt.io/v1",
			"kind":       "VirtualMachine",
			"metadata":   metadata(ns, cfg.VMScan.VMName),
			"spec": map[string]interface{}{
				"runStrategy": "Always",
				"template": map[string]interface{}{
					"spec": map[string]interface{}{
						"domain": map[string]interface{}{
							"devices": map[string]interface{}{
								"autoattachVSOCK": true,
							},
						},
					},
				},
			},
		}),
	}

	return []reconcile.Step{
		{
			Name:      "cert-manager namespace",
			Target:    operatorNamespaceTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			Readiness: readiness(deps, operatorNamespaceTarget, cluster.NamespaceActive, reconcile.TimeoutFail),
			OnFailure: reconcile.Abort,
		},
		{
			Name:      "cert-manager operator group",
			Target:    operatorGroupTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			OnFailure: reconcile.Abort,
		},
		{
			Name:   "cert-manager operator subscription",
			Target: subscriptionTarget,
			Prober: cluster.NewDeclarativeProber(deps.Clients.Dynamic, cluster.FieldMatch{
				Path:  []string{"spec", "channel"},
				Value: cfg.VMScan.OperatorChannel,
			}),
			Applier:     applier,
			Readiness:   readiness(deps, subscriptionTarget, cluster.SubscriptionInstalled, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + opNS + " describe subscription " + cfg.VMScan.OperatorName,
		},
		{
			Name:        "vm scanning feature flag",
			Target:      centralDeploy,
			Prober:      cluster.NewEnvVarProber(deps.Clients.Kube, "central", cfg.VMScan.FeatureFlagEnv, "true"),
			Applier:     cluster.NewEnvVarApplier(deps.Clients.Kube, "central", cfg.VMScan.FeatureFlagEnv, "true"),
			Readiness:   readiness(deps, centralDeploy, cluster.DeploymentAvailable, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + cfg.Central.Namespace + " rollout status deploy/central",
		},
		{
			Name:        "vsock listener certificate",
			Target:      certTarget,
			Prober:      cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:     applier,
			Readiness:   readiness(deps, certTarget, cluster.CertificateReady, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + ns + " describe certificate " + cfg.VMScan.CertificateName,
		},
		{
			Name:        "scan target virtual machine",
			Target:      vmTarget,
			Prober:      cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:     applier,
			Readiness:   readiness(deps, vmTarget, cluster.VirtualMachineRunning, reconcile.TimeoutWarn),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " get vmi " + cfg.VMScan.VMName,
		},
	}
}
