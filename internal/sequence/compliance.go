package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rhacs-labs/acs-ops/internal/central"
	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/logger"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// complianceOperatorName is the OLM package name of the Compliance
// Operator
const complianceOperatorName = "compliance-operator"

// ComplianceSteps builds the compliance-scanning pipeline: the
// Compliance Operator install, the profile binding, and the scan
// configuration in Central. The Central-side steps need a resolved
// secured-cluster ID, so this builder talks to Central up front.
func ComplianceSteps(ctx context.Context, deps Deps) ([]reconcile.Step, error) {
	cfg := deps.Cfg
	applier := cluster.NewServerSideApplier(deps.Clients.Dynamic)

	if _, err := deps.Central.EnsureToken(ctx); err != nil {
		return nil, fmt.Errorf("error establishing central session: %w", err)
	}
	clusterID, err := deps.Central.ClusterID(ctx, cfg.Compliance.ClusterName)
	if err != nil {
		return nil, fmt.Errorf("error resolving secured cluster: %w", err)
	}

	ns := cfg.Compliance.Namespace
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
		Identity: reconcile.Identity{Namespace: ns, Name: "compliance-operator-group"},
		DesiredSpec: newManifest("compliance-operator-group", map[string]interface{}{
			"apiVersion": "operators.coreos.com/v1",
			"kind":       "OperatorGroup",
			"metadata":   metadata(ns, "compliance-operator-group"),
			"spec": map[string]interface{}{
				"targetNamespaces": []interface{}{ns},
			},
		}),
	}

	subscriptionTarget := reconcile.Target{
		Kind:     reconcile.KindOperatorSubscription,
		Identity: reconcile.Identity{Namespace: ns, Name: complianceOperatorName},
		DesiredSpec: newManifest(complianceOperatorName, map[string]interface{}{
			"apiVersion": "operators.coreos.com/v1alpha1",
			"kind":       "Subscription",
			"metadata":   metadata(ns, complianceOperatorName),
			"spec": map[string]interface{}{
				"channel":             "stable",
				"name":                complianceOperatorName,
				"source":              cfg.Operator.Source,
				"sourceNamespace":     cfg.Operator.SourceNamespace,
				"installPlanApproval": "Automatic",
			},
		}),
	}

	profiles := make([]interface{}, 0, len(cfg.Compliance.Profiles))
	for _, p := range cfg.Compliance.Profiles {
		profiles = append(profiles, map[string]interface{}{
			"apiGroup": "compliance.openshift.io",
			"kind":     "Profile",
			"name":     p,
		})
	}
	bindingTarget := reconcile.Target{
		Kind:     reconcile.KindCustomResource,
		Identity: reconcile.Identity{Namespace: ns, Name: cfg.Compliance.ScanConfigName},
		DesiredSpec: newManifest(cfg.Compliance.ScanConfigName, map[string]interface{}{
			"apiVersion": "compliance.openshift.io/v1alpha1",
			"kind":       "ScanSettingBinding",
			"metadata":   metadata(ns, cfg.Compliance.ScanConfigName),
			"profiles":   profiles,
			"settingsRef": map[string]interface{}{
				"apiGroup": "compliance.openshift.io",
				"kind":     "ScanSetting",
				"name":     "default",
			},
		}),
	}

	desired := central.ScanConfiguration{
		ScanName: cfg.Compliance.ScanConfigName,
		ScanConfig: central.ScanConfigurationSpec{
			Profiles:     cfg.Compliance.Profiles,
			ScanSchedule: scheduleFromCron(cfg.Compliance.ScanSchedule),
			Description:  "managed by acs-ops",
		},
		Clusters: []string{clusterID},
	}
	scanConfigTarget := reconcile.Target{
		Kind:     reconcile.KindScanConfiguration,
		Identity: reconcile.Identity{Name: cfg.Compliance.ScanConfigName},
	}

	runTarget := reconcile.Target{
		Kind:     reconcile.KindAPIConfig,
		Identity: reconcile.Identity{Name: "compliance-run"},
	}

	return []reconcile.Step{
		{
			Name:      "compliance namespace",
			Target:    namespaceTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			OnFailure: reconcile.Abort,
		},
		{
			Name:      "compliance operator group",
			Target:    operatorGroupTarget,
			Prober:    cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:   applier,
			OnFailure: reconcile.Abort,
		},
		{
			Name:        "compliance operator subscription",
			Target:      subscriptionTarget,
			Prober:      cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:     applier,
			Readiness:   readiness(deps, subscriptionTarget, cluster.SubscriptionInstalled, reconcile.TimeoutFail),
			OnFailure:   reconcile.Abort,
			Remediation: "oc -n " + ns + " describe subscription " + complianceOperatorName,
		},
		{
			Name:        "scan setting binding",
			Target:      bindingTarget,
			Prober:      cluster.NewDeclarativeProber(deps.Clients.Dynamic),
			Applier:     applier,
			Readiness:   readiness(deps, bindingTarget, cluster.ScanSettingBindingReady, reconcile.TimeoutWarn),
			OnFailure:   reconcile.Continue,
			Remediation: "oc -n " + ns + " describe scansettingbinding " + cfg.Compliance.ScanConfigName,
		},
		{
			Name:      "central scan configuration",
			Target:    scanConfigTarget,
			Prober:    central.NewScanConfigProber(deps.Central, desired),
			Applier:   central.NewScanConfigApplier(deps.Central, desired),
			OnFailure: reconcile.Abort,
		},
		{
			Name:      "trigger compliance run",
			Target:    runTarget,
			Applier:   triggerComplianceRuns(deps.Central, clusterID),
			OnFailure: reconcile.Continue,
		},
	}, nil
}

// triggerComplianceRuns starts a compliance run for every CIS standard on
// the secured cluster. Always runs; a fresh run is the desired effect.
// The outcome is Triggered, not Created: no resource is left behind, so
// a repeat of the sequence still counts as mutation-free.
func triggerComplianceRuns(client *central.Client, clusterID string) reconcile.Applier {
	return applierFunc(func(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error) {
		standards, err := client.ComplianceStandards(ctx)
		if err != nil {
			return reconcile.Unchanged, err
		}
		triggered := 0
		for _, standard := range standards {
			if !strings.Contains(standard.Name, "CIS") {
				continue
			}
			if err := client.TriggerComplianceRun(ctx, clusterID, standard.ID); err != nil {
				return reconcile.Unchanged, err
			}
			logger.Info().Str("standard", standard.Name).Msg("compliance run triggered")
			triggered++
		}
		if triggered == 0 {
			return reconcile.Unchanged, fmt.Errorf("no CIS compliance standards found")
		}
		return reconcile.Triggered, nil
	})
}

// scheduleFromCron converts the "minute hour * * *" prefix of a cron
// expression into Central's schedule shape. Anything unparseable falls
// back to daily at midnight.
func scheduleFromCron(spec string) *central.ScanSchedule {
	schedule := &central.ScanSchedule{IntervalType: "DAILY"}
	fields := strings.Fields(spec)
	if len(fields) >= 2 {
		if minute, err := strconv.Atoi(fields[0]); err == nil && minute >= 0 && minute < 60 {
			schedule.Minute = minute
		}
		if hour, err := strconv.Atoi(fields[1]); err == nil && hour >= 0 && hour < 24 {
			schedule.Hour = hour
		}
	}
	return schedule
}
