package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"driftrun/internal/workflow"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows and their last run status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := workflow.LoadDir(app.Config.WorkflowsDir)
			if err != nil {
				return err
			}
			if len(workflows) == 0 {
				app.Printer.Info(fmt.Sprintf("no workflows in %s", app.Config.WorkflowsDir))
				return nil
			}

			runs, err := app.History.All()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(workflows))
			for name := range workflows {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				wf := workflows[name]
				line := fmt.Sprintf("%-30s %d steps", name, len(wf.Steps))
				if rec, ok := runs[name]; ok {
					line += fmt.Sprintf("  last run: %s (%s)", rec.Status, rec.RunID)
				}
				app.Printer.Info(line)
				if wf.Description != "" {
					app.Printer.StepOutput(wf.Description)
				}
			}
			return nil
		},
	}
}
