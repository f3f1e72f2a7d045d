package central

import (
	"context"
	"sort"
	"time"

	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// settleFn is swapped out in tests
var settleFn = time.Sleep

// settleDelay gives Central time to release the scan name after a
// delete before the replacement is posted
const settleDelay = 2 * time.Second

// ScanConfigProber checks whether a scan configuration with the target's
// name exists in Central and whether its profile set and cluster set
// match the desired one.
type ScanConfigProber struct {
	client  *Client
	desired ScanConfiguration
}

// NewScanConfigProber creates a prober for one desired scan
// configuration
func NewScanConfigProber(client *Client, desired ScanConfiguration) *ScanConfigProber {
	return &ScanConfigProber{client: client, desired: desired}
}

// Probe implements reconcile.Prober. Lookup errors become ProbeError:
// an unreachable Central never reads as an absent configuration.
func (p *ScanConfigProber) Probe(ctx context.Context, target reconcile.Target) (reconcile.ProbeResult, error) {
	existing, err := p.client.ScanConfigurations(ctx)
	if err != nil {
		return reconcile.Absent, &reconcile.ProbeError{Target: target, Err: err}
	}

	for _, sc := range existing {
		if sc.ScanName != target.Identity.Name {
			continue
		}
		if sameSet(sc.ScanConfig.Profiles, p.desired.ScanConfig.Profiles) &&
			sameSet(sc.Clusters, p.desired.Clusters) {
			return reconcile.PresentMatching, nil
		}
		return reconcile.PresentMismatched, nil
	}
	return reconcile.Absent, nil
}

// ScanConfigApplier replaces a scan configuration by deleting any
// existing one with the same name and posting a fresh copy. Central's
// v2 API rejects in-place updates that change the profile set, so
// replacement is the only reliable path. The window between delete and
// create is not atomic.
type ScanConfigApplier struct {
	client  *Client
	desired ScanConfiguration
}

// NewScanConfigApplier creates an applier for one desired scan
// configuration
func NewScanConfigApplier(client *Client, desired ScanConfiguration) *ScanConfigApplier {
	return &ScanConfigApplier{client: client, desired: desired}
}

// Apply implements reconcile.Applier
func (a *ScanConfigApplier) Apply(ctx context.Context, target reconcile.Target) (reconcile.ApplyResult, error) {
	existing, err := a.client.ScanConfigurations(ctx)
	if err != nil {
		return reconcile.Unchanged, err
	}

	replaced := false
	for _, sc := range existing {
		if sc.ScanName != target.Identity.Name {
			continue
		}
		if err := a.client.DeleteScanConfiguration(ctx, sc.ID); err != nil {
			return reconcile.Unchanged, err
		}
		replaced = true
	}
	if replaced {
		settleFn(settleDelay)
	}

	desired := a.desired
	desired.ID = ""
	if desired.ScanName == "" {
		desired.ScanName = target.Identity.Name
	}
	if err := a.client.CreateScanConfiguration(ctx, desired); err != nil {
		return reconcile.Unchanged, err
	}

	if replaced {
		return reconcile.Updated, nil
	}
	return reconcile.Created, nil
}

// sameSet compares two string slices ignoring order
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
