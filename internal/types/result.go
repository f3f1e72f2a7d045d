package types

// Manifest represents a single YAML manifest
type Manifest struct {
	// Name of the manifest
	Name string `json:"name"`
	// Content is the parsed YAML content
	Content map[string]interface{} `json:"content"`
	// Raw is the original YAML content
	Raw []byte `json:"raw,omitempty"`
	// Metadata contains additional information about the manifest
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Result represents the outcome classification of a single reconcile step
type Result string

const (
	// ResultPass means the step reached (or already satisfied) its desired state
	ResultPass Result = "Pass"
	// ResultFail means the step could not reach its desired state
	ResultFail Result = "Fail"
	// ResultWarn means the step did not confirm readiness but the run proceeds
	ResultWarn Result = "Warn"
)

// Detail values recorded on OutcomeRecord
const (
	DetailCreated        = "Created"
	DetailUpdated        = "Updated"
	DetailUnchanged      = "Unchanged"
	DetailTriggered      = "Triggered"
	DetailAlreadyPresent = "AlreadyPresent"
	DetailReady          = "Ready"
	DetailTimedOut       = "TimedOut"
	DetailFailed         = "Failed"
	DetailProbeError     = "ProbeError"
	DetailApplyError     = "ApplyError"
	DetailSkipped        = "Skipped"
)

// OutcomeRecord captures the final result of one reconcile step
type OutcomeRecord struct {
	// Step is the human-readable step name
	Step string `json:"step"`
	// Kind is the reconciled resource kind
	Kind string `json:"kind"`
	// Identity is the namespace/name (or cluster-scoped name) of the target
	Identity string `json:"identity"`
	// Result is the pass/fail/warn classification
	Result Result `json:"result"`
	// Detail records how the outcome was reached (Created, Updated, Unchanged, TimedOut, ...)
	Detail string `json:"detail,omitempty"`
	// Message is a human-readable explanation
	Message string `json:"message,omitempty"`
	// Remediation suggests a follow-up command or action on failure
	Remediation string `json:"remediation,omitempty"`
}

// RunResult aggregates the outcomes of a full reconciliation run
type RunResult struct {
	// ID uniquely identifies the run
	ID string `json:"id"`
	// Sequence is the name of the pipeline that produced this run
	Sequence string `json:"sequence"`
	// StartedAt and FinishedAt are unix timestamps
	StartedAt  int64 `json:"started_at"`
	FinishedAt int64 `json:"finished_at"`
	// Outcomes holds one record per executed step, in execution order
	Outcomes []OutcomeRecord `json:"outcomes"`
	// Aborted is true when an Abort-class failure cut the run short
	Aborted bool `json:"aborted"`
	// OutputFormatted holds the rendered summary, when requested
	OutputFormatted string `json:"output_formatted,omitempty"`
}

// Failed returns the number of failed outcomes
func (r *RunResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == ResultFail {
			n++
		}
	}
	return n
}

// Warned returns the number of warning outcomes
func (r *RunResult) Warned() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == ResultWarn {
			n++
		}
	}
	return n
}

// ExitCode derives the process exit code from the run: the count of
// failed checks, zero on a clean run
func (r *RunResult) ExitCode() int {
	return r.Failed()
}

// Mutated reports whether any step created or updated a resource. A
// repeat run against an already reconciled cluster must report false
// here. Fire-and-forget actions (DetailTriggered) do not count: they
// leave no resource behind.
func (r *RunResult) Mutated() bool {
	for _, o := range r.Outcomes {
		if o.Detail == DetailCreated || o.Detail == DetailUpdated {
			return true
		}
	}
	return false
}
