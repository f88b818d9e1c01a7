package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"driftrun/internal/gitcheck"
	"driftrun/internal/output"
	"driftrun/internal/secrets"
	"driftrun/internal/workflow"
)

// Hook is notified after a run finishes, pass or fail. Hooks must not change
// the run's outcome; failures inside a hook are the hook's own problem to
// report (typically via logging).
type Hook interface {
	RunFinished(ctx context.Context, result *RunResult)
}

// Executor runs workflow plans with fail-fast semantics.
//
// Executor uses dependency injection for testability: [CommandRunner] spawns
// subprocesses and [gitcheck.StatusFunc] obtains git status output. Use
// [NewExecutor] to create an instance and [Execute] to run a workflow.
type Executor struct {
	runner   CommandRunner
	printer  *output.Printer
	statusFn gitcheck.StatusFunc
	hooks    []Hook
}

// NewExecutor creates an Executor with the required dependencies.
func NewExecutor(runner CommandRunner, printer *output.Printer) *Executor {
	return &Executor{
		runner:   runner,
		printer:  printer,
		statusFn: gitcheck.GitStatus,
	}
}

// SetStatusFunc overrides how git status output is obtained for the
// clean-worktree check. Tests use this to simulate clean and dirty trees.
func (e *Executor) SetStatusFunc(fn gitcheck.StatusFunc) {
	e.statusFn = fn
}

// AddHook registers a completion hook. Hooks run in registration order after
// the run reaches a terminal state.
func (e *Executor) AddHook(h Hook) {
	e.hooks = append(e.hooks, h)
}

// Execute runs a workflow: resolve inputs and secrets, build the plan, run
// each step in order stopping at the first failure, then apply post checks.
//
// An error return means the run never started (bad inputs, unresolved
// secrets, interpolation failure). Once steps begin, failures are reported
// through [RunResult.Passed] and [RunResult.ExitCode] instead, so callers
// always get the per-step breakdown.
func (e *Executor) Execute(ctx context.Context, wf *workflow.Workflow, supplied map[string]string, stores ...secrets.Store) (*RunResult, error) {
	inputs, err := wf.ResolveInputs(supplied)
	if err != nil {
		return nil, err
	}

	secretValues, err := secrets.Resolve(wf.SecretRefs(), stores...)
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(wf, inputs, secretValues)
	if err != nil {
		return nil, err
	}

	redactor := secrets.NewRedactor(secretValues)
	e.printer.SetRedactor(redactor.Redact)

	result := &RunResult{
		RunID:     uuid.NewString(),
		Workflow:  wf.Name,
		Inputs:    inputs,
		StartedAt: time.Now(),
		Steps:     make([]StepResult, 0, len(plan.Steps)),
	}

	var transcript strings.Builder
	logLine := func(line string) {
		transcript.WriteString(redactor.Redact(line))
		transcript.WriteByte('\n')
	}

	e.printer.RunHeader(wf.Name, result.RunID)
	logLine(fmt.Sprintf("run %s: workflow %s", result.RunID, wf.Name))

	e.runSteps(ctx, plan, result, logLine)

	if result.FailedStep == "" && plan.CleanWorktree {
		e.checkCleanWorktree(ctx, plan, result, logLine)
	}

	result.Passed = result.FailedStep == ""
	result.Duration = time.Since(result.StartedAt)
	result.Transcript = transcript.String()

	if result.Passed {
		e.printer.RunSuccess(wf.Name, result.Duration)
	} else {
		e.printer.RunFailure(wf.Name, result.FailedStep, result.Duration)
	}

	for _, h := range e.hooks {
		h.RunFinished(ctx, result)
	}

	return result, nil
}

// runSteps executes the plan's steps in order, stopping at the first failure
// and marking everything after it as skipped.
func (e *Executor) runSteps(ctx context.Context, plan *Plan, result *RunResult, logLine func(string)) {
	for i, step := range plan.Steps {
		if result.FailedStep != "" {
			e.printer.StepSkipped(step.Name)
			result.Steps = append(result.Steps, StepResult{
				Name:   step.Name,
				Status: StepSkipped,
			})
			continue
		}

		e.printer.StepHeader(i+1, len(plan.Steps), step.Name)
		logLine(fmt.Sprintf("[%d/%d] %s", i+1, len(plan.Steps), step.Name))

		start := time.Now()
		cmdResult, err := e.runner.Run(ctx, Command{
			Shell:  step.Shell,
			Script: step.Run,
			Dir:    step.WorkingDirectory,
			Env:    step.Env,
		}, func(line string) {
			e.printer.StepOutput(line)
			logLine(line)
		})
		elapsed := time.Since(start)

		stepResult := StepResult{
			Name:     step.Name,
			ExitCode: cmdResult.ExitCode,
			Duration: elapsed,
		}

		switch {
		case err != nil:
			e.printer.Error(err.Error())
			logLine(err.Error())
			stepResult.Status = StepFailed
			if stepResult.ExitCode == 0 {
				stepResult.ExitCode = 1
			}
		case cmdResult.ExitCode != 0:
			stepResult.Status = StepFailed
		default:
			stepResult.Status = StepPassed
		}

		if stepResult.Status == StepFailed {
			e.printer.StepFailure(step.Name, elapsed, stepResult.ExitCode)
			logLine(fmt.Sprintf("step %q failed with exit %d", step.Name, stepResult.ExitCode))
			result.FailedStep = step.Name
			result.ExitCode = stepResult.ExitCode
		} else {
			e.printer.StepSuccess(step.Name, elapsed)
		}

		result.Steps = append(result.Steps, stepResult)
	}
}

// checkCleanWorktree applies the post-run cleanliness assertion, surfacing
// the offending git status output on failure.
func (e *Executor) checkCleanWorktree(ctx context.Context, plan *Plan, result *RunResult, logLine func(string)) {
	statusOutput, err := e.statusFn(ctx, plan.CheckDir)
	if err != nil {
		e.printer.Error(err.Error())
		logLine(err.Error())
		result.FailedStep = PostCheckCleanWorktree
		result.ExitCode = 1
		return
	}

	if gitcheck.IsClean(statusOutput) {
		e.printer.Info("working tree clean")
		logLine("working tree clean")
		return
	}

	e.printer.DirtyTree(statusOutput)
	logLine("working tree is dirty after run:")
	logLine(statusOutput)
	result.FailedStep = PostCheckCleanWorktree
	result.ExitCode = 1
}
