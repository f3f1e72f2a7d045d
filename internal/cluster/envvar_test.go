package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sfake "k8s.io/client-go/kubernetes/fake"
)

func centralDeployment(envValue string) *appsv1.Deployment {
	env := []corev1.EnvVar{}
	if envValue != "" {
		env = append(env, corev1.EnvVar{Name: "ROX_VIRTUAL_MACHINES", Value: envValue})
	}
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: "stackrox", Name: "central"},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "central", Env: env}},
				},
			},
		},
	}
}

func centralTarget() reconcile.Target {
	return reconcile.Target{
		Kind:     reconcile.KindDeployment,
		Identity: reconcile.Identity{Namespace: "stackrox", Name: "central"},
	}
}

func TestEnvVarApplierAddsVariable(t *testing.T) {
	kube := k8sfake.NewSimpleClientset(centralDeployment(""))
	applier := NewEnvVarApplier(kube, "central", "ROX_VIRTUAL_MACHINES", "true")

	result, err := applier.Apply(context.Background(), centralTarget())
	if err != nil {
		t.Fatal(err)
	}
	if result != reconcile.Updated {
		t.Errorf("expected Updated, got %s", result)
	}

	deploy, err := kube.AppsV1().Deployments("stackrox").Get(context.Background(), "central", metav1.GetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	env := deploy.Spec.Template.Spec.Containers[0].Env
	if len(env) != 1 || env[0].Name != "ROX_VIRTUAL_MACHINES" || env[0].Value != "true" {
		t.Errorf("unexpected env %v", env)
	}
}

func TestEnvVarApplierUpdatesValue(t *testing.T) {
	kube := k8sfake.NewSimpleClientset(centralDeployment("false"))
	applier := NewEnvVarApplier(kube, "central", "ROX_VIRTUAL_MACHINES", "true")

	result, err := applier.Apply(context.Background(), centralTarget())
	if err != nil {
		t.Fatal(err)
	}
	if result != reconcile.Updated {
		t.Errorf("expected Updated, got %s", result)
	}
}

func TestEnvVarApplierAlreadySet(t *testing.T) {
	kube := k8sfake.NewSimpleClientset(centralDeployment("true"))
	applier := NewEnvVarApplier(kube, "central", "ROX_VIRTUAL_MACHINES", "true")

	result, err := applier.Apply(context.Background(), centralTarget())
	if err != nil {
		t.Fatal(err)
	}
	if result != reconcile.Unchanged {
		t.Errorf("expected Unchanged, got %s", result)
	}
}

func TestEnvVarApplierMissingContainer(t *testing.T) {
	kube := k8sfake.NewSimpleClientset(centralDeployment(""))
	applier := NewEnvVarApplier(kube, "no-such-container", "ROX_VIRTUAL_MACHINES", "true")

	_, err := applier.Apply(context.Background(), centralTarget())
	var dep *reconcile.DependencyUnmetError
	if !errors.As(err, &dep) {
		t.Errorf("expected DependencyUnmetError, got %T: %v", err, err)
	}

	deploy, err := kube.AppsV1().Deployments("stackrox").Get(context.Background(), "central", metav1.GetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(deploy.Spec.Template.Spec.Containers[0].Env) != 0 {
		t.Errorf("deployment must not change, got env %v", deploy.Spec.Template.Spec.Containers[0].Env)
	}
}

func TestEnvVarApplierMissingDeployment(t *testing.T) {
	kube := k8sfake.NewSimpleClientset()
	applier := NewEnvVarApplier(kube, "central", "ROX_VIRTUAL_MACHINES", "true")

	_, err := applier.Apply(context.Background(), centralTarget())
	var dep *reconcile.DependencyUnmetError
	if !errors.As(err, &dep) {
		t.Errorf("expected DependencyUnmetError, got %T: %v", err, err)
	}
}
