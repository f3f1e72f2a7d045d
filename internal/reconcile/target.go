// Package reconcile implements the desired-state reconciliation engine:
// probe the current state of a target resource, apply the desired state
// when it is absent or mismatched, poll until a readiness predicate holds,
// and report the outcome.
package reconcile

import (
	"context"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// Kind enumerates the resource kinds the engine knows how to reconcile
type Kind string

const (
	KindNamespace             Kind = "namespace"
	KindOperatorGroup         Kind = "operator-group"
	KindOperatorSubscription  Kind = "operator-subscription"
	KindClusterServiceVersion Kind = "cluster-service-version"
	KindCustomResource        Kind = "custom-resource"
	KindDeployment            Kind = "deployment"
	KindDaemonSet             Kind = "daemonset"
	KindRoute                 Kind = "route"
	KindCertificate           Kind = "certificate"
	KindScanConfiguration     Kind = "scan-configuration"
	KindAPIConfig             Kind = "api-config"
)

// Identity is the composite key of a reconcile target. Namespace is empty
// for cluster-scoped resources.
type Identity struct {
	Namespace string
	Name      string
}

// String renders the identity as namespace/name, or just name when
// cluster-scoped
func (id Identity) String() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "/" + id.Name
}

// Target identifies one resource to reconcile. Identity is stable for the
// lifetime of one reconciliation; re-running with the same identity must be
// idempotent.
type Target struct {
	// Kind of the target resource
	Kind Kind
	// Identity is the composite key of the resource
	Identity Identity
	// DesiredSpec is the declarative payload to apply when the resource is
	// absent or mismatched. May be nil for probe-only targets.
	DesiredSpec *types.Manifest
}

// ProbeResult is the outcome of a read-only existence/match check
type ProbeResult int

const (
	// Absent means the target does not exist
	Absent ProbeResult = iota
	// PresentMatching means the target exists and matches the desired fields
	PresentMatching
	// PresentMismatched means the target exists but differs from the desired fields
	PresentMismatched
)

// String returns a human-readable name for the probe result
func (p ProbeResult) String() string {
	switch p {
	case Absent:
		return "Absent"
	case PresentMatching:
		return "PresentMatching"
	case PresentMismatched:
		return "PresentMismatched"
	default:
		return "Unknown"
	}
}

// Prober checks whether a target already exists and matches the desired
// state. Probes are read-only. A returned error means the current state
// could not be determined and must never be conflated with Absent: acting
// on a failed probe risks duplicate creation.
type Prober interface {
	Probe(ctx context.Context, target Target) (ProbeResult, error)
}

// ApplyResult is the outcome of submitting the desired state
type ApplyResult int

const (
	// Created means the resource did not exist and was created
	Created ApplyResult = iota
	// Updated means the resource existed and was modified
	Updated
	// Unchanged means the submitted state matched the live state
	Unchanged
	// Triggered means a fire-and-forget action ran (e.g. starting a scan).
	// Actions leave no resource behind, so Triggered does not count as a
	// mutation for the idempotence contract.
	Triggered
)

// String returns a human-readable name for the apply result
func (a ApplyResult) String() string {
	switch a {
	case Created:
		return "Created"
	case Updated:
		return "Updated"
	case Unchanged:
		return "Unchanged"
	case Triggered:
		return "Triggered"
	default:
		return "Unknown"
	}
}

// Applier submits the desired declarative state for a target. Submitting
// the full desired manifest must always be safe to repeat.
type Applier interface {
	Apply(ctx context.Context, target Target) (ApplyResult, error)
}
