package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"driftrun/internal/workflow"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workflow-file>...",
		Short: "Validate workflow files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				wf, err := workflow.Load(path)
				if err != nil {
					app.Printer.Error(err.Error())
					failed = true
					continue
				}
				app.Printer.Info(fmt.Sprintf("%s: ok (%s, %d steps)", path, wf.Name, len(wf.Steps)))
			}
			if failed {
				return NewExitError(1)
			}
			return nil
		},
	}
}
