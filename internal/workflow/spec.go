// Package workflow defines the declarative workflow file format and its loader.
//
// A workflow is a YAML document describing an ordered list of shell steps plus
// the dispatch inputs it accepts, the secrets it references, and optional
// post-run checks. Workflows are loaded with [Load] or [LoadDir], defaulted via
// struct tags, and validated before the engine ever sees them.
//
// Key types:
//   - [Workflow] is the root document
//   - [Step] is a single shell command with its working directory and environment
//   - [InputSpec] declares a dispatch input
//   - [PostChecks] declares post-run assertions
package workflow

// Workflow is the root of a workflow YAML document.
//
// Steps run strictly in order with fail-fast semantics: the first non-zero
// exit aborts the run and skips everything after it. There is no branching,
// no retries, and no parallelism.
type Workflow struct {
	// Name identifies the workflow. Used as the dispatch route, the history
	// key, and the artifact prefix.
	Name string `yaml:"name" validate:"required"`

	// Description is free-form text shown by `driftrun list`.
	Description string `yaml:"description"`

	// Inputs declares the parameters supplied at trigger time.
	// Keys are referenced in steps as ${{ inputs.<key> }}.
	Inputs map[string]InputSpec `yaml:"inputs"`

	// Env is the workflow-level environment, merged under every step's own env.
	// Values may contain ${{ ... }} expressions.
	Env map[string]string `yaml:"env"`

	// Steps is the ordered command sequence. At least one step is required.
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`

	// Post declares assertions checked after all steps succeed.
	Post PostChecks `yaml:"post"`
}

// InputSpec declares a single dispatch input.
type InputSpec struct {
	// Description is free-form text for display.
	Description string `yaml:"description"`

	// Required inputs must be supplied at trigger time unless Default is set.
	Required bool `yaml:"required"`

	// Default is used when the caller omits the input.
	Default string `yaml:"default"`
}

// Step is a single shell command in the sequence.
type Step struct {
	// Name labels the step in output and run results.
	Name string `yaml:"name" validate:"required"`

	// Run is the shell command, executed via `sh -c`. May contain
	// ${{ ... }} expressions.
	Run string `yaml:"run" validate:"required"`

	// WorkingDirectory is where the command runs. Empty means the runner's
	// current directory. May contain ${{ ... }} expressions.
	WorkingDirectory string `yaml:"working_directory"`

	// Env is the step-local environment, layered over the workflow env.
	// Secrets enter a step only through ${{ secrets.NAME }} references here
	// or in Run; steps without references never see them.
	Env map[string]string `yaml:"env"`

	// Shell overrides the interpreter for this step.
	Shell string `yaml:"shell" default:"sh"`
}

// PostChecks are assertions evaluated after the last step succeeds.
type PostChecks struct {
	// CleanWorktree runs `git status` in the workflow's working directory
	// and fails the run unless the output reports a clean tree. Catches
	// tests that silently write files.
	CleanWorktree bool `yaml:"clean_worktree"`

	// WorkingDirectory is where the clean-worktree check runs. Defaults to
	// the first step's working directory, then the runner's current
	// directory. May contain ${{ ... }} expressions.
	WorkingDirectory string `yaml:"working_directory"`
}
