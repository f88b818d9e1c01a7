package artifact

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftrun/internal/config"
)

func TestNewUploader_DisabledWithoutEndpoint(t *testing.T) {
	u, err := NewUploader(config.ArtifactsConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNewUploader_RequiresBucket(t *testing.T) {
	_, err := NewUploader(config.ArtifactsConfig{
		Endpoint: "minio.internal:9000",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "runs/run-1/summary.json", SummaryKey("run-1"))
	assert.Equal(t, "runs/run-1/transcript.log", TranscriptKey("run-1"))

	// Path separators in run IDs cannot escape the prefix
	assert.Equal(t, "runs/a_b/summary.json", SummaryKey("a/b"))
	assert.NotContains(t, SummaryKey("../../etc"), "..")
}
