package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSleep records requested sleep durations without sleeping
type fakeSleep struct {
	slept []time.Duration
}

func (f *fakeSleep) sleep(d time.Duration) {
	f.slept = append(f.slept, d)
}

func withFakeSleep(t *testing.T) *fakeSleep {
	t.Helper()
	f := &fakeSleep{}
	original := sleepFn
	sleepFn = f.sleep
	t.Cleanup(func() { sleepFn = original })
	return f
}

func pendingThenReady(pendingPolls int) (StatusFetcher, Predicate) {
	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}
	pred := func(status interface{}) Verdict {
		if status.(int) > pendingPolls {
			return Verdict{Phase: Ready}
		}
		return Verdict{Phase: Pending}
	}
	return fetch, pred
}

func TestWaitUntilReadyAfterKPolls(t *testing.T) {
	fs := withFakeSleep(t)

	const k = 3
	interval := 10 * time.Second
	fetch, pred := pendingThenReady(k)

	res, err := WaitUntilReady(context.Background(), fetch, pred, PollPolicy{
		Interval: interval,
		Timeout:  10 * time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.State != WaitReady {
		t.Fatalf("expected Ready, got %s", res.State)
	}
	// k pending evaluations then one ready evaluation: k+1 fetches, k sleeps
	if res.Polls != k+1 {
		t.Errorf("expected %d polls, got %d", k+1, res.Polls)
	}
	if len(fs.slept) != k {
		t.Errorf("expected %d sleeps, got %d", k, len(fs.slept))
	}
	if res.Elapsed != time.Duration(k)*interval {
		t.Errorf("expected elapsed %v, got %v", time.Duration(k)*interval, res.Elapsed)
	}
}

func TestWaitUntilReadyShortCircuit(t *testing.T) {
	fs := withFakeSleep(t)

	fetch, pred := pendingThenReady(0)
	res, err := WaitUntilReady(context.Background(), fetch, pred, PollPolicy{
		Interval: time.Second,
		Timeout:  time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.State != WaitReady {
		t.Fatalf("expected Ready, got %s", res.State)
	}
	if res.Polls != 1 {
		t.Errorf("expected 1 poll, got %d", res.Polls)
	}
	if len(fs.slept) != 0 {
		t.Errorf("expected no sleeps, got %d", len(fs.slept))
	}
	if res.Elapsed != 0 {
		t.Errorf("expected zero elapsed, got %v", res.Elapsed)
	}
}

func TestWaitUntilReadyTimeoutBound(t *testing.T) {
	withFakeSleep(t)

	interval := 10 * time.Second
	timeout := 35 * time.Second
	neverReady := func(status interface{}) Verdict { return Verdict{Phase: Pending} }
	fetch := func(ctx context.Context) (interface{}, error) { return nil, nil }

	res, err := WaitUntilReady(context.Background(), fetch, neverReady, PollPolicy{
		Interval: interval,
		Timeout:  timeout,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.State != WaitTimedOut {
		t.Fatalf("expected TimedOut, got %s", res.State)
	}
	// Elapsed accumulates whole intervals, so the wait overshoots the
	// timeout by less than one interval
	if res.Elapsed < timeout || res.Elapsed >= timeout+interval {
		t.Errorf("elapsed %v outside [%v, %v)", res.Elapsed, timeout, timeout+interval)
	}
}

func TestWaitUntilReadyFetchErrorIsPending(t *testing.T) {
	withFakeSleep(t)

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls <= 2 {
			// Resource briefly not queryable right after apply
			return nil, errors.New("not found")
		}
		return calls, nil
	}
	pred := func(status interface{}) Verdict { return Verdict{Phase: Ready} }

	res, err := WaitUntilReady(context.Background(), fetch, pred, PollPolicy{
		Interval: time.Second,
		Timeout:  time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.State != WaitReady {
		t.Fatalf("expected Ready after fetch errors settle, got %s", res.State)
	}
	if res.Polls != 3 {
		t.Errorf("expected 3 polls, got %d", res.Polls)
	}
}

func TestWaitUntilReadyPredicateFailed(t *testing.T) {
	withFakeSleep(t)

	fetch := func(ctx context.Context) (interface{}, error) { return "Failed", nil }
	pred := func(status interface{}) Verdict {
		return Verdict{Phase: Failed, Reason: "install plan failed"}
	}

	res, err := WaitUntilReady(context.Background(), fetch, pred, PollPolicy{
		Interval: time.Second,
		Timeout:  time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.State != WaitFailed {
		t.Fatalf("expected Failed, got %s", res.State)
	}
	if res.Reason != "install plan failed" {
		t.Errorf("unexpected reason: %s", res.Reason)
	}
}

func TestWaitUntilReadyContextCanceled(t *testing.T) {
	withFakeSleep(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(ctx context.Context) (interface{}, error) { return nil, nil }
	pred := func(status interface{}) Verdict { return Verdict{Phase: Pending} }

	_, err := WaitUntilReady(ctx, fetch, pred, PollPolicy{
		Interval: time.Second,
		Timeout:  time.Minute,
	})
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestPollPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  PollPolicy
		wantErr bool
	}{
		{
			name:   "valid",
			policy: PollPolicy{Interval: time.Second, Timeout: time.Minute},
		},
		{
			name:    "zero interval",
			policy:  PollPolicy{Interval: 0, Timeout: time.Minute},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			policy:  PollPolicy{Interval: time.Second, Timeout: 0},
			wantErr: true,
		},
		{
			name:    "interval not below timeout",
			policy:  PollPolicy{Interval: time.Minute, Timeout: time.Minute},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
