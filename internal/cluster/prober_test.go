package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	appsv1 "k8s.io/api/apps/v1"
)

func newRoute(namespace, name, termination string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "route.openshift.io/v1",
		"kind":       "Route",
		"metadata": map[string]interface{}{
			"namespace": namespace,
			"name":      name,
		},
		"spec": map[string]interface{}{
			"tls": map[string]interface{}{
				"termination": termination,
			},
		},
	}}
}

func routeTarget() reconcile.Target {
	return reconcile.Target{
		Kind:     reconcile.KindRoute,
		Identity: reconcile.Identity{Namespace: "stackrox", Name: "central"},
	}
}

func TestDeclarativeProbeAbsent(t *testing.T) {
	client := dynfake.NewSimpleDynamicClient(runtime.NewScheme())
	prober := NewDeclarativeProber(client)

	result, err := prober.Probe(context.Background(), routeTarget())
	if err != nil {
		t.Fatal(err)
	}
	if result != reconcile.Absent {
		t.Errorf("expected Absent, got %s", result)
	}
}

func TestDeclarativeProbePresentMatching(t *testing.T) {
	client := dynfake.NewSimpleDynamicClient(runtime.NewScheme(), newRoute("stackrox", "central", "passthrough"))
	prober := NewDeclarativeProber(client, FieldMatch{
		Path:  []string{"spec", "tls", "termination"},
		Value: "passthrough",
	})

	result, err := prober.Probe(context.Background(), routeTarget())
	if err != nil {
		t.Fatal(err)
	}
	if result != reconcile.PresentMatching {
		t.Errorf("expected PresentMatching, got %s", result)
	}
}

func TestDeclarativeProbePresentMismatched(t *testing.T) {
	client := dynfake.NewSimpleDynamicClient(runtime.NewScheme(), newRoute("stackrox", "central", "edge"))
	prober := NewDeclarativeProber(client, FieldMatch{
		Path:  []string{"spec", "tls", "termination"},
		Value: "passthrough",
	})

	result, err := prober.Probe(context.Background(), routeTarget())
	if err != nil {
		t.Fatal(err)
	}
	if result != reconcile.PresentMismatched {
		t.Errorf("expected PresentMismatched, got %s", result)
	}
}

func TestDeclarativeProbeErrorIsNotAbsent(t *testing.T) {
	client := dynfake.NewSimpleDynamicClient(runtime.NewScheme())
	client.PrependReactor("get", "routes", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, context.DeadlineExceeded
	})
	prober := NewDeclarativeProber(client)

	_, err := prober.Probe(context.Background(), routeTarget())
	if err == nil {
		t.Fatal("expected a probe error, got nil")
	}
	var probeErr *reconcile.ProbeError
	if !errors.As(err, &probeErr) {
		t.Errorf("expected ProbeError, got %T: %v", err, err)
	}
}

func TestEnvVarProber(t *testing.T) {
	deploy := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: "stackrox", Name: "central"},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name: "central",
						Env: []corev1.EnvVar{
							{Name: "ROX_VIRTUAL_MACHINES", Value: "true"},
						},
					}},
				},
			},
		},
	}

	target := reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: "stackrox", Name: "central"},
	}

	tests := []struct {
		name  string
		value string
		want  reconcile.ProbeResult
	}{
		{name: "matching", value: "true", want: reconcile.PresentMatching},
		{name: "mismatched", value: "false", want: reconcile.PresentMismatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kube := k8sfake.NewSimpleClientset(deploy)
			prober := NewEnvVarProber(kube, "central", "ROX_VIRTUAL_MACHINES", tt.value)

			result, err := prober.Probe(context.Background(), target)
			if err != nil {
				t.Fatal(err)
			}
			if result != tt.want {
				t.Errorf("expected %s, got %s", tt.want, result)
			}
		})
	}

	t.Run("deployment absent", func(t *testing.T) {
		kube := k8sfake.NewSimpleClientset()
		prober := NewEnvVarProber(kube, "central", "ROX_VIRTUAL_MACHINES", "true")

		result, err := prober.Probe(context.Background(), target)
		if err != nil {
			t.Fatal(err)
		}
		if result != reconcile.Absent {
			t.Errorf("expected Absent, got %s", result)
		}
	})

	t.Run("container missing", func(t *testing.T) {
		// A wrongly configured container name must error, not read as a
		// fixable mismatch
		kube := k8sfake.NewSimpleClientset(deploy)
		prober := NewEnvVarProber(kube, "no-such-container", "ROX_VIRTUAL_MACHINES", "true")

		_, err := prober.Probe(context.Background(), target)
		var probeErr *reconcile.ProbeError
		if !errors.As(err, &probeErr) {
			t.Errorf("expected ProbeError, got %T: %v", err, err)
		}
	})
}

func TestPodsRunningProber(t *testing.T) {
	target := reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: "patient-portal", Name: "frontend"},
	}

	tests := []struct {
		name string
		pods []runtime.Object
		want reconcile.ProbeResult
	}{
		{
			name: "running pod",
			pods: []runtime.Object{&corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Namespace: "patient-portal", Name: "frontend-abc"},
				Status:     corev1.PodStatus{Phase: corev1.PodRunning},
			}},
			want: reconcile.PresentMatching,
		},
		{
			name: "pending pod",
			pods: []runtime.Object{&corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Namespace: "patient-portal", Name: "frontend-abc"},
				Status:     corev1.PodStatus{Phase: corev1.PodPending},
			}},
			want: reconcile.PresentMismatched,
		},
		{
			name: "no matching pods",
			pods: []runtime.Object{&corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{Namespace: "patient-portal", Name: "backend-abc"},
				Status:     corev1.PodStatus{Phase: corev1.PodRunning},
			}},
			want: reconcile.Absent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kube := k8sfake.NewSimpleClientset(tt.pods...)
			prober := NewPodsRunningProber(kube, "frontend-")

			result, err := prober.Probe(context.Background(), target)
			if err != nil {
				t.Fatal(err)
			}
			if result != tt.want {
				t.Errorf("expected %s, got %s", tt.want, result)
			}
		})
	}
}
