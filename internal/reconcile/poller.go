package reconcile

import (
	"context"
	"fmt"
	"time"
)

// sleepFn is the sleep used between poll iterations.
// This can be overridden for testing.
var sleepFn = time.Sleep

// Phase is the verdict of a readiness predicate over an observed status
type Phase int

const (
	// Pending means the resource has not reached a terminal state yet
	Pending Phase = iota
	// Ready means the resource reached its terminal success state
	Ready
	// Failed means the resource reached a terminal failure state
	Failed
)

// Verdict couples a phase with an optional reason (set on Failed)
type Verdict struct {
	Phase  Phase
	Reason string
}

// Predicate is a pure function of a resource's observed status. It must
// not perform I/O.
type Predicate func(status interface{}) Verdict

// StatusFetcher retrieves the current observed status of a target
type StatusFetcher func(ctx context.Context) (interface{}, error)

// TimeoutAction decides what a timed-out readiness wait means for the
// calling step
type TimeoutAction int

const (
	// TimeoutFail treats a timeout as a step failure
	TimeoutFail TimeoutAction = iota
	// TimeoutWarn records a warning and lets the run proceed
	TimeoutWarn
	// TimeoutProceed proceeds as if ready, letting a downstream step fail
	// loudly if the dependency truly is not ready
	TimeoutProceed
)

// PollPolicy bounds one readiness wait
type PollPolicy struct {
	// Interval between status fetches
	Interval time.Duration
	// Timeout is the elapsed-time budget. Must be finite and larger than
	// Interval.
	Timeout time.Duration
	// OnTimeout decides the step outcome when the budget is exhausted
	OnTimeout TimeoutAction
}

// Validate checks the policy invariants
func (p PollPolicy) Validate() error {
	if p.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", p.Interval)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("poll timeout must be positive, got %v", p.Timeout)
	}
	if p.Interval >= p.Timeout {
		return fmt.Errorf("poll interval (%v) must be smaller than timeout (%v)", p.Interval, p.Timeout)
	}
	return nil
}

// WaitState is the terminal state of a readiness wait
type WaitState int

const (
	// WaitReady means the predicate reported Ready
	WaitReady WaitState = iota
	// WaitFailed means the predicate reported a terminal failure
	WaitFailed
	// WaitTimedOut means the poll budget was exhausted
	WaitTimedOut
)

// String returns a human-readable name for the wait state
func (s WaitState) String() string {
	switch s {
	case WaitReady:
		return "Ready"
	case WaitFailed:
		return "Failed"
	case WaitTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// WaitResult describes how a readiness wait ended
type WaitResult struct {
	// State is the terminal wait state
	State WaitState
	// Reason carries the predicate's failure reason, when failed
	Reason string
	// Elapsed is the accumulated sleep time
	Elapsed time.Duration
	// Polls is the number of status fetches performed
	Polls int
}

// WaitUntilReady polls the target's status until the predicate reports a
// terminal phase or the policy's timeout elapses.
//
// Elapsed time is tracked by accumulating sleep durations, not by deadline
// comparison, so the actual wait may exceed the timeout by up to one
// interval. That overshoot is part of the contract and relied upon for
// predictable timing.
//
// Fetch errors count as Pending: a resource is often briefly not queryable
// right after it was applied, and that eventual-consistency lag must not
// surface as a failure.
func WaitUntilReady(ctx context.Context, fetch StatusFetcher, predicate Predicate, policy PollPolicy) (WaitResult, error) {
	if err := policy.Validate(); err != nil {
		return WaitResult{}, err
	}
	if fetch == nil || predicate == nil {
		return WaitResult{}, fmt.Errorf("fetch and predicate are required")
	}

	var elapsed time.Duration
	polls := 0

	for {
		if err := ctx.Err(); err != nil {
			return WaitResult{State: WaitFailed, Reason: "canceled", Elapsed: elapsed, Polls: polls}, err
		}

		status, err := fetch(ctx)
		polls++

		verdict := Verdict{Phase: Pending}
		if err == nil {
			verdict = predicate(status)
		}

		switch verdict.Phase {
		case Ready:
			return WaitResult{State: WaitReady, Elapsed: elapsed, Polls: polls}, nil
		case Failed:
			return WaitResult{State: WaitFailed, Reason: verdict.Reason, Elapsed: elapsed, Polls: polls}, nil
		}

		if elapsed >= policy.Timeout {
			return WaitResult{State: WaitTimedOut, Elapsed: elapsed, Polls: polls}, nil
		}

		sleepFn(policy.Interval)
		elapsed += policy.Interval
	}
}
