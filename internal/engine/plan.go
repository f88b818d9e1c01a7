package engine

import (
	"fmt"

	"driftrun/internal/workflow"
)

// PlannedStep is a fully resolved step: every ${{ ... }} expression has been
// evaluated and the environment merged, so execution needs no further context.
type PlannedStep struct {
	Name             string
	Shell            string
	Run              string
	WorkingDirectory string
	Env              map[string]string
}

// Plan is the resolved, ordered execution plan for one run.
//
// Building the plan up front means every interpolation error surfaces before
// the first step runs, and `--dry-run` can show exactly what would execute.
type Plan struct {
	Workflow string
	Steps    []PlannedStep

	// CleanWorktree enables the post-run git status assertion.
	CleanWorktree bool

	// CheckDir is where the clean-worktree check runs.
	CheckDir string
}

// BuildPlan resolves a workflow against trigger inputs and resolved secrets.
//
// Secrets reach a step's environment only through explicit ${{ secrets.* }}
// references in that step; the plan never injects them wholesale.
func BuildPlan(wf *workflow.Workflow, inputs, secretValues map[string]string) (*Plan, error) {
	// Workflow-level env may itself reference inputs or secrets, so it is
	// interpolated first and then exposed as env.* to the steps.
	baseEval := workflow.NewEvaluator(wf.Name, inputs, secretValues, nil)
	wfEnv, err := baseEval.InterpolateMap(wf.Env)
	if err != nil {
		return nil, fmt.Errorf("workflow env: %w", err)
	}

	eval := workflow.NewEvaluator(wf.Name, inputs, secretValues, wfEnv)

	plan := &Plan{
		Workflow:      wf.Name,
		Steps:         make([]PlannedStep, 0, len(wf.Steps)),
		CleanWorktree: wf.Post.CleanWorktree,
	}

	for _, step := range wf.Steps {
		run, err := eval.Interpolate(step.Run)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}

		dir, err := eval.Interpolate(step.WorkingDirectory)
		if err != nil {
			return nil, fmt.Errorf("step %q working_directory: %w", step.Name, err)
		}

		stepEnv, err := eval.InterpolateMap(step.Env)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}

		env := make(map[string]string, len(wfEnv)+len(stepEnv))
		for k, v := range wfEnv {
			env[k] = v
		}
		for k, v := range stepEnv {
			env[k] = v
		}

		plan.Steps = append(plan.Steps, PlannedStep{
			Name:             step.Name,
			Shell:            step.Shell,
			Run:              run,
			WorkingDirectory: dir,
			Env:              env,
		})
	}

	if plan.CleanWorktree {
		checkDir, err := eval.Interpolate(wf.Post.WorkingDirectory)
		if err != nil {
			return nil, fmt.Errorf("post working_directory: %w", err)
		}
		if checkDir == "" && len(plan.Steps) > 0 {
			checkDir = plan.Steps[0].WorkingDirectory
		}
		plan.CheckDir = checkDir
	}

	return plan, nil
}
