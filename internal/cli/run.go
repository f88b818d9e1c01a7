package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"driftrun/internal/engine"
	"driftrun/internal/secrets"
	"driftrun/internal/workflow"
)

func newRunCommand(app *App) *cobra.Command {
	var (
		inputFlags  []string
		secretsFile string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "run <workflow>",
		Short: "Run a workflow",
		Long: `Run a workflow by file path or by name from the workflows directory.

Steps execute in order and the first failure aborts the run. The process
exits with the failing step's exit code, or non-zero if the post-run
clean-worktree check finds uncommitted changes.

Example:
  driftrun run integration-tests \
    --input working_directory=libs/community \
    --input python_version=3.11`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := resolveWorkflow(app, args[0])
			if err != nil {
				return err
			}

			inputs, err := parseInputs(inputFlags)
			if err != nil {
				return err
			}

			if dryRun {
				return printPlan(app, wf, inputs)
			}

			stores, err := app.SecretStores(secretsFile)
			if err != nil {
				return err
			}

			result, err := app.Executor.Execute(cmd.Context(), wf, inputs, stores...)
			if err != nil {
				return err
			}
			if !result.Passed {
				code := result.ExitCode
				if code == 0 {
					code = 1
				}
				return NewExitError(code)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&inputFlags, "input", nil, "workflow input as key=value (repeatable)")
	cmd.Flags().StringVar(&secretsFile, "secrets-file", "", "YAML file of secret name: value pairs")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the resolved plan without executing")

	return cmd
}

// resolveWorkflow loads a workflow from a file path, or by name from the
// configured workflows directory.
func resolveWorkflow(app *App, ref string) (*workflow.Workflow, error) {
	if _, err := os.Stat(ref); err == nil {
		return workflow.Load(ref)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(app.Config.WorkflowsDir, ref+ext)
		if _, err := os.Stat(path); err == nil {
			return workflow.Load(path)
		}
	}

	workflows, err := workflow.LoadDir(app.Config.WorkflowsDir)
	if err != nil {
		return nil, err
	}
	if wf, ok := workflows[ref]; ok {
		return wf, nil
	}
	return nil, fmt.Errorf("workflow not found: %s", ref)
}

// parseInputs turns repeated key=value flags into a map.
func parseInputs(flags []string) (map[string]string, error) {
	inputs := make(map[string]string, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --input %q, expected key=value", f)
		}
		inputs[key] = value
	}
	return inputs, nil
}

// printPlan shows what a run would execute. Secret references are planned
// against placeholder values so a dry run needs no resolved secrets and can
// never leak one.
func printPlan(app *App, wf *workflow.Workflow, supplied map[string]string) error {
	inputs, err := wf.ResolveInputs(supplied)
	if err != nil {
		return err
	}

	placeholders := make(map[string]string)
	for _, name := range wf.SecretRefs() {
		placeholders[name] = secrets.RedactedValue
	}

	plan, err := engine.BuildPlan(wf, inputs, placeholders)
	if err != nil {
		return err
	}

	app.Printer.Info(fmt.Sprintf("%s: %d steps", plan.Workflow, len(plan.Steps)))
	for i, step := range plan.Steps {
		app.Printer.StepHeader(i+1, len(plan.Steps), step.Name)
		app.Printer.StepOutput("$ " + step.Run)
		if step.WorkingDirectory != "" {
			app.Printer.StepOutput("dir: " + step.WorkingDirectory)
		}
	}
	if plan.CleanWorktree {
		app.Printer.Info("post: clean worktree check")
	}
	return nil
}
