package engine

import (
	"time"
)

// StepStatus is the terminal state of one step within a run.
type StepStatus string

const (
	// StepPassed means the step exited zero.
	StepPassed StepStatus = "passed"

	// StepFailed means the step exited non-zero or could not be started.
	StepFailed StepStatus = "failed"

	// StepSkipped means an earlier step failed, so this one never ran.
	StepSkipped StepStatus = "skipped"
)

// StepResult reports how one step finished.
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// RunResult is the terminal report of one workflow run.
//
// It is the payload for the completion webhook, the artifact summary, and the
// history record, so everything in it is already redacted: secret values never
// appear in step names, transcripts, or failure output.
type RunResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Workflow is the workflow name.
	Workflow string `json:"workflow"`

	// Inputs are the resolved trigger inputs for the run.
	Inputs map[string]string `json:"inputs,omitempty"`

	// Passed is true when every step and post check succeeded.
	Passed bool `json:"passed"`

	// FailedStep names the first failing step, or the post check label
	// for post-condition failures. Empty on success.
	FailedStep string `json:"failed_step,omitempty"`

	// ExitCode is the exit status the process should report: zero on
	// success, the first failing step's exit code otherwise.
	ExitCode int `json:"exit_code"`

	// Steps holds per-step results in execution order, including skipped
	// steps after the first failure.
	Steps []StepResult `json:"steps"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration_ns"`

	// Transcript is the redacted combined output of the run, as printed.
	Transcript string `json:"-"`
}

// PostCheckCleanWorktree is the FailedStep label for clean-worktree
// post-condition failures.
const PostCheckCleanWorktree = "post: clean_worktree"
