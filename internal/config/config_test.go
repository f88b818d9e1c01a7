package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "workflows", cfg.WorkflowsDir)
	assert.Equal(t, ".driftrun/history.yaml", cfg.HistoryPath)
	assert.Equal(t, "DRIFTRUN_SECRET_", cfg.Secrets.EnvPrefix)
	assert.Equal(t, ":8080", cfg.Serve.Addr)

	// Webhook and artifact store are off until configured
	assert.Empty(t, cfg.Notify.URL)
	assert.Empty(t, cfg.Artifacts.Endpoint)
	assert.Equal(t, 10, cfg.Notify.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Notify.MaxRetries)
}

func TestLoader_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "driftrun.yaml")

	configContent := `
workflows_dir: ci/workflows
secrets:
  file: /etc/driftrun/secrets.yaml
notify:
  url: https://hooks.example.com/driftrun
  max_retries: 5
artifacts:
  endpoint: minio.internal:9000
  bucket: ci-runs
  use_ssl: false
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	loader := NewLoader()
	cfg, err := loader.LoadFromFile(configPath)

	require.NoError(t, err)
	assert.Equal(t, "ci/workflows", cfg.WorkflowsDir)
	assert.Equal(t, "/etc/driftrun/secrets.yaml", cfg.Secrets.File)
	assert.Equal(t, "https://hooks.example.com/driftrun", cfg.Notify.URL)
	assert.Equal(t, 5, cfg.Notify.MaxRetries)
	assert.Equal(t, "minio.internal:9000", cfg.Artifacts.Endpoint)
	assert.False(t, cfg.Artifacts.UseSSL)

	// Unset keys keep their defaults
	assert.Equal(t, "DRIFTRUN_SECRET_", cfg.Secrets.EnvPrefix)
	assert.Equal(t, 10, cfg.Notify.TimeoutSeconds)
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoader_Load_NoFile(t *testing.T) {
	// Run from an empty directory so no driftrun.yaml is discovered
	tmpDir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	loader := NewLoader()
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "workflows", cfg.WorkflowsDir)
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("DRIFTRUN_WORKFLOWS_DIR", "/opt/workflows")
	t.Setenv("DRIFTRUN_NOTIFY_URL", "https://env.example.com/hook")

	tmpDir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	loader := NewLoader()
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "/opt/workflows", cfg.WorkflowsDir)
	assert.Equal(t, "https://env.example.com/hook", cfg.Notify.URL)
}

func TestLoader_ConfigPathEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("workflows_dir: from-env-path\n"), 0644))

	t.Setenv("DRIFTRUN_CONFIG_PATH", configPath)

	loader := NewLoader()
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "from-env-path", cfg.WorkflowsDir)
}
