package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rhacs-labs/acs-ops/internal/logger"
	"github.com/rhacs-labs/acs-ops/internal/types"
)

// FailureMode decides whether a failed step aborts the run or lets it
// proceed to the next step
type FailureMode int

const (
	// Abort stops the run immediately with a non-zero exit
	Abort FailureMode = iota
	// Continue records the failure and proceeds; it is surfaced again in
	// the final summary
	Continue
)

// Readiness bundles what a step needs to wait for its target
type Readiness struct {
	// Fetch retrieves the target's observed status
	Fetch StatusFetcher
	// Predicate maps the observed status to a phase
	Predicate Predicate
	// Policy bounds the wait
	Policy PollPolicy
}

// Step bundles one reconciliation: probe, optionally apply, optionally
// wait for readiness. Steps execute strictly in sequence because later
// steps have hard data dependencies on earlier ones.
type Step struct {
	// Name of the step, used in outcome records and logs
	Name string
	// Target identifies the resource this step reconciles
	Target Target
	// Prober checks the current state. When nil the step is treated as
	// always-absent (action steps that must run every time set this).
	Prober Prober
	// Applier submits the desired state. When nil the step is probe-only.
	Applier Applier
	// Readiness, when set, blocks the step until its predicate holds
	Readiness *Readiness
	// OnFailure decides whether a failure aborts the run
	OnFailure FailureMode
	// Remediation is a suggested follow-up surfaced on failure
	Remediation string
}

// Options holds configuration for the runner
type Options struct {
	// Sequence names the pipeline being run
	Sequence string
	// DryRun probes and reports without applying
	DryRun bool
}

// Runner executes an ordered list of reconcile steps
type Runner struct {
	opts *Options
}

// NewRunner creates a new Runner with the given options
func NewRunner(opts *Options) *Runner {
	if opts == nil {
		opts = &Options{}
	}
	return &Runner{opts: opts}
}

// Run executes the steps strictly in sequence. Step N+1 never starts
// before step N's outcome is finalized. A second run against an already
// reconciled cluster must produce only Unchanged/Pass outcomes and perform
// zero mutating calls.
func (r *Runner) Run(ctx context.Context, steps []Step) *types.RunResult {
	result := &types.RunResult{
		ID:        uuid.New().String(),
		Sequence:  r.opts.Sequence,
		StartedAt: time.Now().Unix(),
	}

	for _, step := range steps {
		outcome := r.runStep(ctx, step)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Result == types.ResultFail && step.OnFailure == Abort {
			logger.Error().
				Str("step", step.Name).
				Str("detail", outcome.Detail).
				Msg("aborting run")
			result.Aborted = true
			break
		}
	}

	result.FinishedAt = time.Now().Unix()
	return result
}

// describeProbe phrases a failed check for the outcome table
func describeProbe(p ProbeResult) string {
	switch p {
	case Absent:
		return "was not found"
	case PresentMismatched:
		return "exists but does not match the desired state"
	default:
		return "is not in the desired state"
	}
}

// runStep drives one probe -> (skip | apply) -> wait cycle and converts
// every error into the step's outcome record. Errors are never silently
// swallowed; Abort-class handling happens in Run.
func (r *Runner) runStep(ctx context.Context, step Step) types.OutcomeRecord {
	outcome := types.OutcomeRecord{
		Step:     step.Name,
		Kind:     string(step.Target.Kind),
		Identity: step.Target.Identity.String(),
	}

	probeResult := Absent
	if step.Prober != nil {
		pr, err := step.Prober.Probe(ctx, step.Target)
		if err != nil {
			// Could not determine current state. Acting here risks
			// duplicate creation, so the step fails without applying.
			outcome.Result = types.ResultFail
			outcome.Detail = types.DetailProbeError
			outcome.Message = err.Error()
			outcome.Remediation = step.Remediation
			return outcome
		}
		probeResult = pr
	}

	logger.Debug().
		Str("step", step.Name).
		Str("probe", probeResult.String()).
		Msg("probe finished")

	applied := false
	applyResult := Unchanged
	if probeResult != PresentMatching {
		if step.Applier == nil {
			if step.Prober != nil {
				// Probe-only step that found the target missing or wrong
				outcome.Result = types.ResultFail
				outcome.Detail = types.DetailFailed
				outcome.Message = fmt.Sprintf("%s %s", step.Target.Identity, describeProbe(probeResult))
				outcome.Remediation = step.Remediation
				return outcome
			}
		} else if r.opts.DryRun {
			outcome.Result = types.ResultPass
			outcome.Detail = types.DetailSkipped
			outcome.Message = "dry run: apply skipped"
			return outcome
		} else {
			ar, err := step.Applier.Apply(ctx, step.Target)
			if err != nil {
				outcome.Result = types.ResultFail
				outcome.Detail = types.DetailApplyError
				outcome.Message = err.Error()
				outcome.Remediation = step.Remediation
				return outcome
			}
			applied = true
			applyResult = ar
			logger.Info().
				Str("step", step.Name).
				Str("apply", ar.String()).
				Msg("desired state applied")
		}
	}

	if step.Readiness != nil {
		wait, err := WaitUntilReady(ctx, step.Readiness.Fetch, step.Readiness.Predicate, step.Readiness.Policy)
		if err != nil {
			outcome.Result = types.ResultFail
			outcome.Detail = types.DetailFailed
			outcome.Message = err.Error()
			outcome.Remediation = step.Remediation
			return outcome
		}

		switch wait.State {
		case WaitFailed:
			outcome.Result = types.ResultFail
			outcome.Detail = types.DetailFailed
			outcome.Message = fmt.Sprintf("readiness failed after %v: %s", wait.Elapsed, wait.Reason)
			outcome.Remediation = step.Remediation
			return outcome
		case WaitTimedOut:
			outcome.Detail = types.DetailTimedOut
			outcome.Message = fmt.Sprintf("not ready after %v (%d polls)", wait.Elapsed, wait.Polls)
			switch step.Readiness.Policy.OnTimeout {
			case TimeoutWarn:
				outcome.Result = types.ResultWarn
			case TimeoutProceed:
				outcome.Result = types.ResultPass
				outcome.Message += "; proceeding anyway"
			default:
				outcome.Result = types.ResultFail
				outcome.Remediation = step.Remediation
			}
			return outcome
		}
	}

	outcome.Result = types.ResultPass
	switch {
	case applied:
		outcome.Detail = applyResult.String()
	case probeResult == PresentMatching:
		outcome.Detail = types.DetailUnchanged
		outcome.Message = "already satisfied"
	default:
		outcome.Detail = types.DetailReady
	}
	return outcome
}
