package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ktypes "k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// fieldManager identifies this tool's server-side apply ownership
const fieldManager = "acs-ops"

// ServerSideApplier submits declarative manifests with server-side apply.
// Submitting the full desired manifest is always safe to repeat.
type ServerSideApplier struct {
	client dynamic.Interface
}

// NewServerSideApplier creates an applier over the dynamic client
func NewServerSideApplier(client dynamic.Interface) *ServerSideApplier {
	return &ServerSideApplier{client: client}
}

// Apply submits the target's desired manifest. The result distinguishes
// Created, Updated, and Unchanged by comparing the live resource version
// before and after the patch.
func (a *ServerSideApplier) Apply(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error) {
	if target.DesiredSpec == nil || target.DesiredSpec.Content == nil {
		return reconcile.Unchanged, &reconcile.ValidationError{
			Op:  "apply",
			Err: fmt.Errorf("target %s has no desired manifest", target.Identity),
		}
	}

	mapping, err := ResourceFor(target)
	if err != nil {
		return reconcile.Unchanged, &reconcile.ValidationError{Op: "apply", Err: err}
	}

	data, err := json.Marshal(target.DesiredSpec.Content)
	if err != nil {
		return reconcile.Unchanged, &reconcile.ValidationError{Op: "apply", Err: err}
	}

	ri := resourceClient(a.client, mapping, target.Identity.Namespace)

	existingVersion := ""
	present := false
	existing, err := ri.Get(ctx, target.Identity.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		present = true
		existingVersion = existing.GetResourceVersion()
	case apierrors.IsNotFound(err):
		// First creation
	default:
		return reconcile.Unchanged, classifyAPIError("apply", err)
	}

	force := true
	applied, err := ri.Patch(ctx, target.Identity.Name, ktypes.ApplyPatchType, data, metav1.PatchOptions{
		FieldManager: fieldManager,
		Force:        &force,
	})
	if err != nil {
		return reconcile.Unchanged, classifyAPIError("apply", err)
	}

	if !present {
		return reconcile.Created, nil
	}
	if applied.GetResourceVersion() == existingVersion {
		return reconcile.Unchanged, nil
	}
	return reconcile.Updated, nil
}

// classifyAPIError maps a Kubernetes API error onto the engine's taxonomy
func classifyAPIError(op string, err error) error {
	switch {
	case apierrors.IsConflict(err):
		return &reconcile.ConflictError{Op: op, Err: err}
	case apierrors.IsInvalid(err) || apierrors.IsBadRequest(err):
		return &reconcile.ValidationError{Op: op, Err: err}
	case apierrors.IsUnauthorized(err):
		return &reconcile.AuthError{Op: op, Status: 401}
	case apierrors.IsForbidden(err):
		return &reconcile.AuthError{Op: op, Status: 403}
	default:
		return &reconcile.TransientError{Op: op, Err: err}
	}
}
