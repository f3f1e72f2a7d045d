package sequence

import (
	"github.com/rhacs-labs/acs-ops/internal/central"
	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// InstallSteps builds the installation pipeline: namespace, OLM
// subscription, the Central and SecuredCluster custom resources, and the
// readiness waits between them. Order is load-bearing: every step depends
// on the one before it.
func InstallSteps(deps Deps) []reconcile.Step {
	cfg := deps.Cfg
	applier := cluster.NewServerSideApplier(deps.Clients.Dynamic)

	ns := cfg.Central.Namespace
	namespaceTarget := reconcile.Target{
		Kind:     reconcile.KindNamespace,
		Identity: reconcile.Identity{Name: ns},
		DesiredSpec: newManifest(ns, map[string]interface{}{
			"apiVersion": "v1",
			"kind":       "Namespace",
			"metadata":   metadata("", ns),
		}),
	}

	operatorGroupTarget := reconcile.Target{
		Kind:     reconcile.KindOperatorGroup,
		Identity: reconcile.Identity{Namespace: ns, Name: "stackrox-operator-group"},
		DesiredSpec: newManifest("stackrox-operator-group", map[string]interface{}{
			"apiVersion": "operators.coreos.com/v1",
			"kind":       "OperatorGroup",
			"metadata":   metadata(ns, "stackrox-operator-group"),
			"spec": map[string]interface{}{
				"targetNamespaces": []interface{}{ns},
			},
		}),
	}

	subscriptionTarget := reconcile.Target{
		Kind:     reconcile.KindOperatorSubscription,
		Identity: reconcile.Identity{Namespace: ns, Name: cfg.Operator.Name},
		DesiredSpec: newManifest(cfg.Operator.Name, map[string]interface{}{
			"apiVersion": "operators.coreos.com/v1alpha1",
			"kind":       "Subscription",
			"metadata":   metadata(ns, cfg.Operator.Name),
			"spec": map[string]interface{}{
				"channel":             cfg.Operator.Channel,
				"name":                cfg.Operator.Name,
				"source":              cfg.Operator.Source,
				"sourceNamespace":     cfg.Operator.SourceNamespace,
				"installPlanApproval": "Automatic",
			},
		}),
	}

	centralCRTarget := reconcile.Target{
		Kind:     reconcile.KindCustomResource,
		Identity: reconcile.Identity{Namespace: ns, Name: "stackrox-central-services"},
		DesiredSpec: newManifest("stackrox-central-services", map[string]interface{}{
			"apiVersion": "platform.stackrox.io/v1alpha1",
			"kind":       "Central",
			"metadata":   metadata(ns, "stackrox-central-services"),
			"spec": map[string]interface{}{
				"central": map[string]interface{}{
					"exposure": map[string]interface{}{
						"route": map[string]interface{}{"enabled": true},
					},
				},
			},
		}),
	}

	securedClusterTarget := reconcile.Target{
		Kind:     reconcile.KindCustomResource,
		Identity: reconcile.Identity{Namespace: ns, Name: "stackrox-secured-cluster-services"},
		DesiredSpec: newManifest("stackrox-secured-cluster-services", map[string]interface{}{
			"apiVersion": "platform.stackrox.io/v1alpha1",
			"kind":       "SecuredCluster",
			"metadata":   metadata(ns, "stackrox-secured-cluster-services"),
			"spec": map[string]interface{}{
				"clusterName": cfg.Compliance.ClusterName,
			},
		}),
	}

	centralDeploy := reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: ns, Name: "central"},
	}
	scannerDeploy := reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: ns, Name: "scanner"},
	}
	sensorDeploy := reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: ns, Name: "sensor"},
	}
	routeTarget := reconcile.Target{
		Kind:     reconcile.KindRoute,
		Identity: reconcile.Identity{Namespace: ns, Name: cfg.Central.RouteName},
	}

	steps := []reconcile.Step{
		{
			Name:      "namespace",
			Target:    namespaceTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			Readiness: readiness(deps, namespaceTarget, cluster.NamespaceActive, reconcile.TimeoutFail),
			OnFailure: reconcile.Abort,
		},
		{
			Name:      "operator group",
			Target:    operatorGroupTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			OnFailure: reconcile.Abort,
		},
		{
			Name:   "operator subscription",
			Target: subscriptionTarget,
			Prober: cluster.NewDeclarativeProber(deps.Clients.Dynamic, cluster.FieldMatch{
				Path:  []string{"spec", "channel"},
				Value: cfg.Operator.Channel,
			}),
			Applier:     applier,
			Readiness:   readiness(deps, subscriptionTarget, cluster.SubscriptionInstalled, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + ns + " describe subscription " + cfg.Operator.Name,
		},
		{
			Name:        "central custom resource",
			Target:      centralCRTarget,
			Prober:      cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:     applier,
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + ns + " describe central stackrox-central-services",
		},
		{
			Name:        "central deployment available",
			Target:      centralDeploy,
			Readiness:   readiness(deps, centralDeploy, cluster.DeploymentAvailable, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + ns + " get pods -l app=central",
		},
		{
			Name:      "scanner deployment available",
			Target:    scannerDeploy,
			Readiness: readiness(deps, scannerDeploy, cluster.DeploymentAvailable, reconcile.TimeoutWarn),
			OnFailure: reconcile.Continue,
		},
		{
			Name:        "central route admitted",
			Target:      routeTarget,
			Readiness:   readiness(deps, routeTarget, cluster.RouteAdmitted, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + ns + " get route " + cfg.Central.RouteName,
		},
		{
			Name:      "secured cluster custom resource",
			Target:    securedClusterTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			OnFailure: reconcile.Abort,
		},
		{
			Name:        "sensor deployment available",
			Target:      sensorDeploy,
			Readiness:   readiness(deps, sensorDeploy, cluster.DeploymentAvailable, reconcile.TimeoutWarn),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " get pods -l app=sensor",
		},
	}

	// Central-side configuration runs only when a session is available;
	// on a first install the route may not exist until the steps above
	// have run.
	if deps.Central != nil {
		fragment := platformConfigFragment()
		steps = append(steps, reconcile.Step{
			Name: "platform configuration",
			Target: reconcile.Target{
				Kind:     reconcile.KindAPIConfig,
				Identity: reconcile.Identity{Name: "platform-config"},
			},
			Prober:    central.NewPlatformConfigProber(deps.Central, fragment),
			Applier:   central.NewPlatformConfigApplier(deps.Central, fragment),
			OnFailure: reconcile.Continue,
		})
	}
	return steps
}

// platformConfigFragment is the slice of Central's platform config this
// tool owns: a login notice and telemetry opt-out
func platformConfigFragment() map[string]interface{} {
	return map[string]interface{}{
		"config": map[string]interface{}{
			"publicConfig": map[string]interface{}{
				"loginNotice": map[string]interface{}{
					"enabled": true,
					"text":    "Authorized use only",
				},
				"telemetry": map[string]interface{}{
					"enabled": false,
				},
			},
		},
	}
}
