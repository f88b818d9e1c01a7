// Package notify delivers run summaries to a configured webhook.
//
// Delivery is best-effort: the webhook fires after every run, pass or fail,
// and a failed delivery is logged but never changes the run's outcome or
// exit code.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"driftrun/internal/config"
	"driftrun/internal/engine"
)

// Webhook posts JSON run summaries to a URL. It implements [engine.Hook].
type Webhook struct {
	url    string
	client *resty.Client
	logger *slog.Logger
}

// NewWebhook builds a Webhook from config. Returns nil when no URL is
// configured; a nil Webhook must not be registered as a hook.
func NewWebhook(cfg config.NotifyConfig, logger *slog.Logger) *Webhook {
	if cfg.URL == "" {
		return nil
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Webhook{
		url:    cfg.URL,
		client: client,
		logger: logger,
	}
}

// RunFinished posts the run summary. The [engine.RunResult] is already
// redacted, so the payload never contains secret values.
func (w *Webhook) RunFinished(ctx context.Context, result *engine.RunResult) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(result).
		Post(w.url)

	if err != nil {
		w.logger.Error("run notification failed",
			"workflow", result.Workflow,
			"run_id", result.RunID,
			"error", err)
		return
	}
	if resp.IsError() {
		w.logger.Error("run notification rejected",
			"workflow", result.Workflow,
			"run_id", result.RunID,
			"status", resp.StatusCode())
		return
	}

	w.logger.Debug("run notification delivered",
		"workflow", result.Workflow,
		"run_id", result.RunID,
		"status", resp.StatusCode())
}
