// Package artifact uploads run artifacts to an S3-compatible object store.
//
// After every run the transcript and a JSON summary are uploaded under
// runs/<run-id>/. Like the completion webhook, upload is best-effort: a
// failed upload is logged but never changes the run's outcome.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"driftrun/internal/config"
	"driftrun/internal/engine"
)

// Uploader pushes run artifacts to a bucket. It implements [engine.Hook].
type Uploader struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewUploader builds an Uploader from config. Returns (nil, nil) when no
// endpoint is configured.
func NewUploader(cfg config.ArtifactsConfig, logger *slog.Logger) (*Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("artifact store: bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	return &Uploader{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist. Called once at
// startup, not per run.
func (u *Uploader) EnsureBucket(ctx context.Context, region string) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("artifact bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("artifact bucket create: %w", err)
	}
	return nil
}

// RunFinished uploads the run transcript and summary.
func (u *Uploader) RunFinished(ctx context.Context, result *engine.RunResult) {
	summary, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		u.logger.Error("artifact summary encode failed", "run_id", result.RunID, "error", err)
		return
	}

	objects := []struct {
		key         string
		data        []byte
		contentType string
	}{
		{SummaryKey(result.RunID), summary, "application/json"},
		{TranscriptKey(result.RunID), []byte(result.Transcript), "text/plain"},
	}

	for _, obj := range objects {
		_, err := u.client.PutObject(ctx, u.bucket, obj.key,
			bytes.NewReader(obj.data), int64(len(obj.data)),
			minio.PutObjectOptions{ContentType: obj.contentType})
		if err != nil {
			u.logger.Error("artifact upload failed",
				"run_id", result.RunID,
				"object", obj.key,
				"error", err)
			continue
		}
		u.logger.Debug("artifact uploaded", "run_id", result.RunID, "object", obj.key)
	}
}

// SummaryKey is the object key for a run's JSON summary.
func SummaryKey(runID string) string {
	return path.Join("runs", sanitize(runID), "summary.json")
}

// TranscriptKey is the object key for a run's transcript.
func TranscriptKey(runID string) string {
	return path.Join("runs", sanitize(runID), "transcript.log")
}

// sanitize keeps run IDs from escaping the runs/ prefix. Run IDs are UUIDs
// in practice, so this only matters for hand-crafted values.
func sanitize(runID string) string {
	runID = strings.ReplaceAll(runID, "/", "_")
	return strings.ReplaceAll(runID, "..", "_")
}
