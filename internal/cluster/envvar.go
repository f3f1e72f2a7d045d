package cluster

import (
	"context"
	"fmt"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// EnvVarApplier sets an environment variable on one container of a
// deployment. The operator reconciles the rest of the pod spec, so the
// change is a plain update of that single env entry.
type EnvVarApplier struct {
	kube      kubernetes.Interface
	container string
	envName   string
	envValue  string
}

// NewEnvVarApplier creates an applier for one container env var
func NewEnvVarApplier(kube kubernetes.Interface, container, envName, envValue string) *EnvVarApplier {
	return &EnvVarApplier{kube: kube, container: container, envName: envName, envValue: envValue}
}

// Apply fetches the deployment, sets the env var and updates it. The
// rollout this triggers is observed by the step's readiness wait, not
// here.
func (a *EnvVarApplier) Apply(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error) {
	deployments := a.kube.AppsV1().Deployments(target.Identity.Namespace)

	deploy, err := deployments.Get(ctx, target.Identity.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return reconcile.Unchanged, &reconcile.DependencyUnmetError{
			Dependency: "deployment " + target.Identity.String(),
		}
	}
	if err != nil {
		return reconcile.Unchanged, classifyAPIError("set env var", err)
	}

	changed := false
	found := false
	containers := deploy.Spec.Template.Spec.Containers
	for i := range containers {
		if containers[i].Name != a.container {
			continue
		}
		found = true
		set := false
		for j := range containers[i].Env {
			if containers[i].Env[j].Name == a.envName {
				set = true
				if containers[i].Env[j].Value != a.envValue {
					containers[i].Env[j].Value = a.envValue
					changed = true
				}
				break
			}
		}
		if !set {
			containers[i].Env = append(containers[i].Env, corev1.EnvVar{
				Name:  a.envName,
				Value: a.envValue,
			})
			changed = true
		}
	}

	if !found {
		return reconcile.Unchanged, &reconcile.DependencyUnmetError{
			Dependency: fmt.Sprintf("container %q in deployment %s", a.container, target.Identity),
		}
	}
	if !changed {
		return reconcile.Unchanged, nil
	}

	if _, err := deployments.Update(ctx, deploy, metav1.UpdateOptions{FieldManager: fieldManager}); err != nil {
		return reconcile.Unchanged, classifyAPIError("set env var", err)
	}
	return reconcile.Updated, nil
}
