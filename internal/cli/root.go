// Package cli wires driftrun's Cobra commands to the engine.
//
// [App] holds the shared dependencies (config, printer, executor, secret
// stores); each command file adds one subcommand. Commands signal failure
// through [ExitError] rather than os.Exit so the whole CLI is testable via
// [RunWithConfig].
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"driftrun/internal/artifact"
	"driftrun/internal/config"
	"driftrun/internal/engine"
	"driftrun/internal/history"
	"driftrun/internal/notify"
	"driftrun/internal/output"
	"driftrun/internal/secrets"
)

// App bundles the dependencies shared by every command.
type App struct {
	Config   *config.Config
	Printer  *output.Printer
	Executor *engine.Executor
	History  *history.Store
	Logger   *slog.Logger
}

// NewApp builds an App from config, writing terminal output to w.
//
// The executor is assembled here: real subprocess runner, printer, plus the
// optional hooks (history record, completion webhook, artifact upload) that
// config enables.
func NewApp(cfg *config.Config, w io.Writer) (*App, error) {
	printer := output.NewPrinterWithWriter(w)
	printer.SetTruncateLength(cfg.Output.TruncateLength)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	executor := engine.NewExecutor(engine.NewExecRunner(), printer)

	historyStore := history.NewStore(cfg.HistoryPath)
	executor.AddHook(&historyHook{store: historyStore, logger: logger})

	if webhook := notify.NewWebhook(cfg.Notify, logger); webhook != nil {
		executor.AddHook(webhook)
	}

	uploader, err := artifact.NewUploader(cfg.Artifacts, logger)
	if err != nil {
		return nil, err
	}
	if uploader != nil {
		if err := uploader.EnsureBucket(context.Background(), cfg.Artifacts.Region); err != nil {
			return nil, err
		}
		executor.AddHook(uploader)
	}

	return &App{
		Config:   cfg,
		Printer:  printer,
		Executor: executor,
		History:  historyStore,
		Logger:   logger,
	}, nil
}

// SecretStores returns the configured secret stores in resolution order.
// An explicit secrets file (from the --secrets-file flag) is consulted after
// the environment, matching the config-file store's position.
func (a *App) SecretStores(secretsFile string) ([]secrets.Store, error) {
	stores := []secrets.Store{&secrets.EnvStore{Prefix: a.Config.Secrets.EnvPrefix}}

	path := secretsFile
	if path == "" {
		path = a.Config.Secrets.File
	}
	if path != "" {
		fileStore, err := secrets.NewFileStore(path)
		if err != nil {
			return nil, err
		}
		stores = append(stores, fileStore)
	}
	return stores, nil
}

// newRootCommand assembles the command tree.
func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "driftrun",
		Short:         "Run declarative step workflows and catch working-tree drift",
		Long:          "driftrun executes ordered shell steps from a YAML workflow file, fail-fast,\nwith secrets injected by reference and an optional post-run assertion that\nthe working tree is still clean.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(app))
	root.AddCommand(newValidateCommand(app))
	root.AddCommand(newListCommand(app))
	root.AddCommand(newServeCommand(app))

	return root
}

// ExecuteResult reports how a CLI invocation finished.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// RunWithConfig runs the CLI against an explicit config, writing output to w.
// Tests call this directly; [Execute] wraps it for main.
func RunWithConfig(ctx context.Context, cfg *config.Config, args []string, w io.Writer) ExecuteResult {
	app, err := NewApp(cfg, w)
	if err != nil {
		return ExecuteResult{ExitCode: 1, Err: err}
	}

	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetOut(w)
	root.SetErr(w)

	if err := root.ExecuteContext(ctx); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		app.Printer.Error(err.Error())
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{ExitCode: 0}
}

// Execute is the entry point used by main. It loads configuration, runs the
// CLI, and exits with the resulting code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		output.NewPrinter().Error(err.Error())
		os.Exit(1)
	}

	result := RunWithConfig(context.Background(), cfg, os.Args[1:], os.Stdout)
	os.Exit(result.ExitCode)
}
