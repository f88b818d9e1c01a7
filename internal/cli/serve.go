package cli

import (
	"context"

	"github.com/spf13/cobra"

	"driftrun/internal/engine"
	"driftrun/internal/server"
	"driftrun/internal/workflow"
)

func newServeCommand(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve workflow dispatch over HTTP",
		Long: `Load the workflows directory and serve manual dispatch requests:

  POST /workflows/<name>/dispatch  {"inputs": {...}}

The run executes synchronously; the response carries the run summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := workflow.LoadDir(app.Config.WorkflowsDir)
			if err != nil {
				return err
			}

			stores, err := app.SecretStores("")
			if err != nil {
				return err
			}

			run := func(ctx context.Context, wf *workflow.Workflow, inputs map[string]string) (*engine.RunResult, error) {
				return app.Executor.Execute(ctx, wf, inputs, stores...)
			}

			srv := server.New(workflows, run, app.Logger)

			listen := addr
			if listen == "" {
				listen = app.Config.Serve.Addr
			}
			return srv.Run(listen)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
