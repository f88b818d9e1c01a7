package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftrun/internal/config"
)

// testConfig returns a config rooted in a fresh temp directory, with a
// workflows dir ready to be populated.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tmpDir := t.TempDir()
	workflowsDir := filepath.Join(tmpDir, "workflows")
	require.NoError(t, os.MkdirAll(workflowsDir, 0755))

	cfg := config.DefaultConfig()
	cfg.WorkflowsDir = workflowsDir
	cfg.HistoryPath = filepath.Join(tmpDir, "history.yaml")
	return cfg
}

func writeWorkflow(t *testing.T, cfg *config.Config, filename, content string) string {
	t.Helper()

	path := filepath.Join(cfg.WorkflowsDir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) (ExecuteResult, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	result := RunWithConfig(context.Background(), cfg, args, buf)
	return result, buf.String()
}

const echoWorkflow = `
name: echo-test
steps:
  - name: say hello
    run: echo hello
  - name: say goodbye
    run: echo goodbye
`

const failingWorkflow = `
name: fail-test
steps:
  - name: first
    run: echo first
  - name: boom
    run: exit 3
  - name: never
    run: echo never
`

func TestRunCommand_Passes(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "echo.yaml", echoWorkflow)

	result, out := runCLI(t, cfg, "run", "echo-test")

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "PASSED")
}

func TestRunCommand_ByFilePath(t *testing.T) {
	cfg := testConfig(t)
	path := writeWorkflow(t, cfg, "echo.yaml", echoWorkflow)

	result, _ := runCLI(t, cfg, "run", path)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunCommand_FailFastExitCode(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "fail.yaml", failingWorkflow)

	result, out := runCLI(t, cfg, "run", "fail-test")

	// The failing step's exit code becomes the process exit code
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "never (skipped)")
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "echo.yaml", echoWorkflow)

	result, _ := runCLI(t, cfg, "run", "echo-test")
	require.Equal(t, 0, result.ExitCode)

	data, err := os.ReadFile(cfg.HistoryPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo-test")
	assert.Contains(t, string(data), "passed")
}

func TestRunCommand_UnknownWorkflow(t *testing.T) {
	cfg := testConfig(t)

	result, _ := runCLI(t, cfg, "run", "nope")
	assert.Equal(t, 1, result.ExitCode)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "workflow not found")
}

func TestRunCommand_MissingRequiredInput(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "wf.yaml", `
name: needs-input
inputs:
  working_directory:
    required: true
steps:
  - name: s
    run: echo ${{ inputs.working_directory }}
`)

	result, _ := runCLI(t, cfg, "run", "needs-input")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Err.Error(), "missing required input")
}

func TestRunCommand_InputsFlow(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "wf.yaml", `
name: with-input
inputs:
  greeting:
    required: true
steps:
  - name: s
    run: echo ${{ inputs.greeting }}
`)

	result, out := runCLI(t, cfg, "run", "with-input", "--input", "greeting=salut")
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, out, "salut")
}

func TestRunCommand_SecretsFromEnvAndRedacted(t *testing.T) {
	t.Setenv("DRIFTRUN_SECRET_API_KEY", "super-secret-value")

	cfg := testConfig(t)
	writeWorkflow(t, cfg, "wf.yaml", `
name: with-secret
steps:
  - name: s
    run: echo $API_KEY
    env:
      API_KEY: ${{ secrets.API_KEY }}
`)

	result, out := runCLI(t, cfg, "run", "with-secret")
	assert.Equal(t, 0, result.ExitCode)
	assert.NotContains(t, out, "super-secret-value")
	assert.Contains(t, out, "***")
}

func TestRunCommand_DryRun(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "wf.yaml", `
name: dry
steps:
  - name: dangerous
    run: echo would-run ${{ secrets.UNSET_SECRET }}
post:
  clean_worktree: true
`)

	// No secret is set anywhere; dry-run must still work and run nothing
	result, out := runCLI(t, cfg, "run", "dry", "--dry-run")

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, out, "would-run")
	assert.Contains(t, out, "clean worktree check")
	assert.NotContains(t, out, "PASSED")
}

func TestRunCommand_SecretsFile(t *testing.T) {
	cfg := testConfig(t)
	secretsPath := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(secretsPath, []byte("FILE_SECRET: from-file\n"), 0600))

	writeWorkflow(t, cfg, "wf.yaml", `
name: file-secret
steps:
  - name: s
    run: test "$FILE_SECRET" = "from-file"
    env:
      FILE_SECRET: ${{ secrets.FILE_SECRET }}
`)

	result, _ := runCLI(t, cfg, "run", "file-secret", "--secrets-file", secretsPath)
	assert.Equal(t, 0, result.ExitCode)
}

func TestValidateCommand(t *testing.T) {
	cfg := testConfig(t)
	good := writeWorkflow(t, cfg, "good.yaml", echoWorkflow)
	bad := writeWorkflow(t, cfg, "bad.yaml", "name: only-a-name\n")

	result, out := runCLI(t, cfg, "validate", good)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, out, "ok")

	result, _ = runCLI(t, cfg, "validate", bad)
	assert.Equal(t, 1, result.ExitCode)
}

func TestListCommand(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "echo.yaml", echoWorkflow)
	writeWorkflow(t, cfg, "fail.yaml", failingWorkflow)

	result, out := runCLI(t, cfg, "list")
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, out, "echo-test")
	assert.Contains(t, out, "fail-test")
	assert.Contains(t, out, "2 steps")
}

func TestListCommand_ShowsLastRun(t *testing.T) {
	cfg := testConfig(t)
	writeWorkflow(t, cfg, "echo.yaml", echoWorkflow)

	_, _ = runCLI(t, cfg, "run", "echo-test")

	result, out := runCLI(t, cfg, "list")
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, out, "last run: passed")
}

func TestParseInputs(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "valid pairs",
			flags: []string{"a=1", "b=x=y"},
			want:  map[string]string{"a": "1", "b": "x=y"},
		},
		{
			name:  "empty",
			flags: nil,
			want:  map[string]string{},
		},
		{
			name:    "missing equals",
			flags:   []string{"oops"},
			wantErr: true,
		},
		{
			name:    "empty key",
			flags:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInputs(tt.flags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
