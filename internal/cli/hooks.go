package cli

import (
	"context"
	"log/slog"
	"time"

	"driftrun/internal/engine"
	"driftrun/internal/history"
)

// historyHook records each run's outcome in the history file. Like the other
// completion hooks, a write failure is logged and otherwise ignored.
type historyHook struct {
	store  *history.Store
	logger *slog.Logger
}

func (h *historyHook) RunFinished(ctx context.Context, result *engine.RunResult) {
	status := "passed"
	if !result.Passed {
		status = "failed"
	}

	err := h.store.Put(result.Workflow, history.Record{
		RunID:      result.RunID,
		Status:     status,
		FailedStep: result.FailedStep,
		FinishedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("failed to record run history",
			"workflow", result.Workflow,
			"run_id", result.RunID,
			"error", err)
	}
}
