package cluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// FieldMatch compares one field of the live object against an expected
// value. Matching is intentionally a small caller-specified field set, not
// a full spec diff.
type FieldMatch struct {
	// Path is the nested field path, e.g. ["spec", "tls", "termination"]
	Path []string
	// Value is the expected string value at that path
	Value string
}

// DeclarativeProber checks existence and field-level match of a
// declarative resource through the dynamic client. Probes are read-only.
type DeclarativeProber struct {
	client  dynamic.Interface
	matches []FieldMatch
}

// NewDeclarativeProber creates a prober with an optional set of field
// matchers. With no matchers, existence alone counts as matching.
func NewDeclarativeProber(client dynamic.Interface, matches ...FieldMatch) *DeclarativeProber {
	return &DeclarativeProber{client: client, matches: matches}
}

// Probe looks up the target and compares the configured fields. A lookup
// failure other than NotFound is a ProbeError, never Absent.
func (p *DeclarativeProber) Probe(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
	mapping, err := ResourceFor(target)
	if err != nil {
		return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
	}

	obj, err := resourceClient(p.client, mapping, target.Identity.Namespace).
		Get(ctx, target.Identity.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return reconcile.Absent, nil
	}
	if err != nil {
		return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
	}

	for _, m := range p.matches {
		value, found, err := unstructured.NestedString(obj.Object, m.Path...)
		if err != nil || !found || value != m.Value {
			return reconcile.PresentMismatched, nil
		}
	}

	return reconcile.PresentMatching, nil
}

// resourceClient returns the namespaced or cluster-scoped resource
// interface for a mapping
func resourceClient(client dynamic.Interface, mapping Mapping, namespace string) dynamic.ResourceInterface {
	if mapping.Namespaced {
		return client.Resource(mapping.Resource).Namespace(namespace)
	}
	return client.Resource(mapping.Resource)
}

// EnvVarProber checks that a deployment container carries an environment
// variable with the expected value. Used for feature-flag reconciliation
// (e.g. enabling VM scanning on Central).
type EnvVarProber struct {
	kube      kubernetes.Interface
	container string
	envName   string
	envValue  string
}

// NewEnvVarProber creates a prober for one container env var
func NewEnvVarProber(kube kubernetes.Interface, container, envName, envValue string) *EnvVarProber {
	return &EnvVarProber{kube: kube, container: container, envName: envName, envValue: envValue}
}

// Probe fetches the deployment and compares the env var value
func (p *EnvVarProber) Probe(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
	deploy, err := p.kube.AppsV1().Deployments(target.Identity.Namespace).
		Get(ctx, target.Identity.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return reconcile.Absent, nil
	}
	if err != nil {
		return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
	}

	for _, c := range deploy.Spec.Template.Spec.Containers {
		if c.Name != p.container {
			continue
		}
		for _, env := range c.Env {
			if env.Name == p.envName {
				if env.Value == p.envValue {
					return reconcile.PresentMatching, nil
				}
				return reconcile.PresentMismatched, nil
			}
		}
		return reconcile.PresentMismatched, nil
	}

	// A deployment without the expected container cannot be fixed by
	// setting an env var; surfacing it as mismatched would loop forever
	return reconcile.Absent, &reconcile.ProbeError{
		Target: target,
		Err:    fmt.Errorf("container %q not found in deployment", p.container),
	}
}

// PodsRunningProber checks that at least one pod with the given name
// prefix is Running in the target namespace. Used by the verification
// pipeline.
type PodsRunningProber struct {
	kube   kubernetes.Interface
	prefix string
}

// NewPodsRunningProber creates a prober for pods by name prefix
func NewPodsRunningProber(kube kubernetes.Interface, prefix string) *PodsRunningProber {
	return &PodsRunningProber{kube: kube, prefix: prefix}
}

// Probe lists pods in the target namespace and filters by prefix
func (p *PodsRunningProber) Probe(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
	pods, err := p.kube.CoreV1().Pods(target.Identity.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
	}

	found := false
	for _, pod := range pods.Items {
		if !strings.HasPrefix(pod.Name, p.prefix) {
			continue
		}
		found = true
		if pod.Status.Phase == corev1.PodRunning {
			return reconcile.PresentMatching, nil
		}
	}

	if found {
		return reconcile.PresentMismatched, nil
	}
	return reconcile.Absent, nil
}

// StatusFetcher returns a fetcher that retrieves the target's live object
// for readiness polling
func (c *Clients) StatusFetcher(target reconcile.Target) reconcile.StatusFetcher {
	return func(ctx context.Context) (interface{}, error) {
		mapping, err := ResourceFor(target)
		if err != nil {
			return nil, err
		}
		obj, err := resourceClient(c.Dynamic, mapping, target.Identity.Namespace).
			Get(ctx, target.Identity.Name, metav1.GetOptions{})
		if err != nil {
			return nil, fmt.Errorf("fetch status of %s %s: %w", target.Kind, target.Identity, err)
		}
		return obj, nil
	}
}
