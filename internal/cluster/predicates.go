package cluster

import (
	"fmt"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Readiness predicates for the resource kinds the pipelines wait on.
// Each predicate is a pure function of the fetched object; a status that
// cannot be interpreted yet counts as Pending.

// asUnstructured extracts the live object from the fetched status
func asUnstructured(status interface{}) (*unstructured.Unstructured, bool) {
	obj, ok := status.(*unstructured.Unstructured)
	return obj, ok && obj != nil
}

// conditionStatus returns the status and reason of the named condition in
// status.conditions
func conditionStatus(obj *unstructured.Unstructured, condType string) (string, string, bool) {
	conditions, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil || !found {
		return "", "", false
	}
	for _, c := range conditions {
		cond, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		if cond["type"] == condType {
			status, _ := cond["status"].(string)
			reason, _ := cond["reason"].(string)
			return status, reason, true
		}
	}
	return "", "", false
}

// NamespaceActive waits for status.phase == Active
func NamespaceActive(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	if phase == "Active" {
		return reconcile.Verdict{Phase: reconcile.Ready}
	}
	if phase == "Terminating" {
		return reconcile.Verdict{Phase: reconcile.Failed, Reason: "namespace is terminating"}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// CSVSucceeded waits for the ClusterServiceVersion to report phase
// Succeeded, which signals operator installation completion
func CSVSucceeded(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	switch phase {
	case "Succeeded":
		return reconcile.Verdict{Phase: reconcile.Ready}
	case "Failed":
		reason, _, _ := unstructured.NestedString(obj.Object, "status", "reason")
		return reconcile.Verdict{Phase: reconcile.Failed, Reason: fmt.Sprintf("csv failed: %s", reason)}
	default:
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
}

// SubscriptionInstalled waits for the subscription to resolve an
// installed CSV
func SubscriptionInstalled(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	installed, _, _ := unstructured.NestedString(obj.Object, "status", "installedCSV")
	if installed != "" {
		return reconcile.Verdict{Phase: reconcile.Ready}
	}
	if condStatus, reason, found := conditionStatus(obj, "ResolutionFailed"); found && condStatus == "True" {
		return reconcile.Verdict{Phase: reconcile.Failed, Reason: fmt.Sprintf("subscription resolution failed: %s", reason)}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// DeploymentAvailable waits for the Available condition
func DeploymentAvailable(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	if condStatus, _, found := conditionStatus(obj, "Available"); found && condStatus == "True" {
		return reconcile.Verdict{Phase: reconcile.Ready}
	}
	if condStatus, reason, found := conditionStatus(obj, "ReplicaFailure"); found && condStatus == "True" {
		return reconcile.Verdict{Phase: reconcile.Failed, Reason: fmt.Sprintf("replica failure: %s", reason)}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// DaemonSetReady waits until every scheduled pod is ready
func DaemonSetReady(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	desired, foundDesired, _ := unstructured.NestedInt64(obj.Object, "status", "desiredNumberScheduled")
	ready, foundReady, _ := unstructured.NestedInt64(obj.Object, "status", "numberReady")
	if foundDesired && foundReady && desired > 0 && ready == desired {
		return reconcile.Verdict{Phase: reconcile.Ready}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// RouteAdmitted waits for any ingress to report the Admitted condition
func RouteAdmitted(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	ingresses, found, err := unstructured.NestedSlice(obj.Object, "status", "ingress")
	if err != nil || !found {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	for _, i := range ingresses {
		ingress, ok := i.(map[string]interface{})
		if !ok {
			continue
		}
		conditions, _ := ingress["conditions"].([]interface{})
		for _, c := range conditions {
			cond, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			if cond["type"] == "Admitted" && cond["status"] == "True" {
				return reconcile.Verdict{Phase: reconcile.Ready}
			}
		}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// CertificateReady waits for cert-manager's Ready condition
func CertificateReady(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	if condStatus, _, found := conditionStatus(obj, "Ready"); found && condStatus == "True" {
		return reconcile.Verdict{Phase: reconcile.Ready}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// VirtualMachineRunning waits for a KubeVirt VM to report Running
func VirtualMachineRunning(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	printable, _, _ := unstructured.NestedString(obj.Object, "status", "printableStatus")
	if printable == "Running" {
		return reconcile.Verdict{Phase: reconcile.Ready}
	}
	if printable == "CrashLoopBackOff" || printable == "ErrorUnschedulable" {
		return reconcile.Verdict{Phase: reconcile.Failed, Reason: fmt.Sprintf("vm status: %s", printable)}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}

// ScanSettingBindingReady waits for the compliance operator to accept the
// binding
func ScanSettingBindingReady(status interface{}) reconcile.Verdict {
	obj, ok := asUnstructured(status)
	if !ok {
		return reconcile.Verdict{Phase: reconcile.Pending}
	}
	if condStatus, reason, found := conditionStatus(obj, "Ready"); found {
		if condStatus == "True" {
			return reconcile.Verdict{Phase: reconcile.Ready}
		}
		if reason == "Invalid" {
			return reconcile.Verdict{Phase: reconcile.Failed, Reason: "scan setting binding rejected as invalid"}
		}
	}
	return reconcile.Verdict{Phase: reconcile.Pending}
}
