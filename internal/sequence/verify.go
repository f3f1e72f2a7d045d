package sequence

import (
	"context"
	"fmt"

	"github.com/rhacs-labs/acs-ops/internal/central"
	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// VerifySteps builds the verification pipeline. Every step is probe-only:
// a verify run never mutates the cluster or Central, it only reports
// drift. Failures count toward the exit code, one per failed check.
func VerifySteps(ctx context.Context, deps Deps) ([]reconcile.Step, error) {
	cfg := deps.Cfg
	ns := cfg.Central.Namespace

	steps := []reconcile.Step{
		{
			Name: "central pods running",
			Target: reconcile.Target{
				Kind:     reconcile.KindDeployment,
				Identity: reconcile.Identity{Namespace: ns, Name: "central"},
			},
			Prober:      cluster.NewPodsRunningProber(deps.Clients.Kube, "central-"),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " get pods -l app=central",
		},
		{
			Name: "scanner pods running",
			Target: reconcile.Target{
				Kind:     reconcile.KindDeployment,
				Identity: reconcile.Identity{Namespace: ns, Name: "scanner"},
			},
			Prober:      cluster.NewPodsRunningProber(deps.Clients.Kube, "scanner-"),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " get pods -l app=scanner",
		},
		{
			Name: "sensor pods running",
			Target: reconcile.Target{
				Kind:     reconcile.KindDeployment,
				Identity: reconcile.Identity{Namespace: ns, Name: "sensor"},
			},
			Prober:      cluster.NewPodsRunningProber(deps.Clients.Kube, "sensor-"),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " get pods -l app=sensor",
		},
		{
			Name: "central route present",
			Target: reconcile.Target{
				Kind:     reconcile.KindRoute,
				Identity: reconcile.Identity{Namespace: ns, Name: cfg.Central.RouteName},
			},
			Prober:      cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " get route " + cfg.Central.RouteName,
		},
	}

	if deps.Central == nil {
		return steps, nil
	}
	if _, err := deps.Central.EnsureToken(ctx); err != nil {
		return nil, fmt.Errorf("error establishing central session: %w", err)
	}

	steps = append(steps,
		reconcile.Step{
			Name: "secured cluster registered",
			Target: reconcile.Target{
				Kind:     reconcile.KindAPIConfig,
				Identity: reconcile.Identity{Name: cfg.Compliance.ClusterName},
			},
			Prober:      clusterRegisteredProber(deps.Central, cfg.Compliance.ClusterName),
			OnFailure:   reconcile.Continue,
			Remediation: "check sensor connectivity from the secured cluster",
		},
		reconcile.Step{
			Name: "security policies loaded",
			Target: reconcile.Target{
				Kind:     reconcile.KindAPIConfig,
				Identity: reconcile.Identity{Name: "policies"},
			},
			Prober:    policiesLoadedProber(deps.Central),
			OnFailure: reconcile.Continue,
		},
		reconcile.Step{
			Name: "scan configuration present",
			Target: reconcile.Target{
				Kind:     reconcile.KindScanConfiguration,
				Identity: reconcile.Identity{Name: cfg.Compliance.ScanConfigName},
			},
			Prober:    scanConfigPresentProber(deps.Central),
			OnFailure: reconcile.Continue,
		},
		reconcile.Step{
			Name: "report configuration present",
			Target: reconcile.Target{
				Kind:     reconcile.KindAPIConfig,
				Identity: reconcile.Identity{Name: cfg.Compliance.ReportConfigName},
			},
			Prober:    reportConfigPresentProber(deps.Central),
			OnFailure: reconcile.Continue,
		},
		reconcile.Step{
			Name: "platform configuration applied",
			Target: reconcile.Target{
				Kind:     reconcile.KindAPIConfig,
				Identity: reconcile.Identity{Name: "platform-config"},
			},
			Prober:    central.NewPlatformConfigProber(deps.Central, platformConfigFragment()),
			OnFailure: reconcile.Continue,
		},
	)
	return steps, nil
}

// clusterRegisteredProber checks the secured cluster shows up in Central
func clusterRegisteredProber(client *central.Client, name string) reconcile.Prober {
	return proberFunc(func(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
		clusters, err := client.Clusters(ctx)
		if err != nil {
			return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
		}
		for _, c := range clusters {
			if c.Name == name {
				return reconcile.PresentMatching, nil
			}
		}
		return reconcile.Absent, nil
	})
}

// policiesLoadedProber checks that Central carries a non-empty policy set
func policiesLoadedProber(client *central.Client) reconcile.Prober {
	return proberFunc(func(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
		policies, err := client.Policies(ctx)
		if err != nil {
			return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
		}
		if len(policies) == 0 {
			return reconcile.Absent, nil
		}
		return reconcile.PresentMatching, nil
	})
}

// reportConfigPresentProber checks a vulnerability report configuration
// exists by name
func reportConfigPresentProber(client *central.Client) reconcile.Prober {
	return proberFunc(func(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
		reports, err := client.ReportConfigurations(ctx)
		if err != nil {
			return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
		}
		for _, rc := range reports {
			if rc.Name == target.Identity.Name {
				return reconcile.PresentMatching, nil
			}
		}
		return reconcile.Absent, nil
	})
}

// scanConfigPresentProber checks a scan configuration exists by name,
// without comparing its contents
func scanConfigPresentProber(client *central.Client) reconcile.Prober {
	return proberFunc(func(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
		configs, err := client.ScanConfigurations(ctx)
		if err != nil {
			return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
		}
		for _, sc := range configs {
			if sc.ScanName == target.Identity.Name {
				return reconcile.PresentMatching, nil
			}
		}
		return reconcile.Absent, nil
	})
}
