package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWorkflowFile writes a workflow YAML file into dir for testing.
func writeWorkflowFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

const validWorkflow = `
name: integration-tests
description: Run the integration suite.
inputs:
  working_directory:
    required: true
  python_version:
    required: true
    default: "3.11"
env:
  CI: "true"
steps:
  - name: install deps
    run: poetry install --with=test,test_integration
    working_directory: ${{ inputs.working_directory }}
  - name: run tests
    run: make integration_test
    working_directory: ${{ inputs.working_directory }}
    env:
      GOOGLE_API_KEY: ${{ secrets.GOOGLE_API_KEY }}
post:
  clean_worktree: true
`

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeWorkflowFile(t, tmpDir, "integration.yaml", validWorkflow)

	wf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "integration-tests", wf.Name)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, "install deps", wf.Steps[0].Name)
	assert.True(t, wf.Post.CleanWorktree)

	// Shell default applied by struct tag
	assert.Equal(t, "sh", wf.Steps[0].Shell)

	// Input declarations parsed
	require.Contains(t, wf.Inputs, "python_version")
	assert.Equal(t, "3.11", wf.Inputs["python_version"].Default)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing name",
			content: "steps:\n  - name: a\n    run: true\n",
		},
		{
			name:    "no steps",
			content: "name: empty\n",
		},
		{
			name:    "step without run",
			content: "name: w\nsteps:\n  - name: a\n",
		},
		{
			name:    "duplicate step names",
			content: "name: w\nsteps:\n  - name: a\n    run: true\n  - name: a\n    run: true\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := writeWorkflowFile(t, tmpDir, "bad.yaml", tt.content)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeWorkflowFile(t, tmpDir, "a.yaml", "name: alpha\nsteps:\n  - name: s\n    run: true\n")
	writeWorkflowFile(t, tmpDir, "b.yml", "name: beta\nsteps:\n  - name: s\n    run: true\n")

	workflows, err := LoadDir(tmpDir)
	require.NoError(t, err)

	assert.Len(t, workflows, 2)
	assert.Contains(t, workflows, "alpha")
	assert.Contains(t, workflows, "beta")
}

func TestLoadDir_DuplicateName(t *testing.T) {
	tmpDir := t.TempDir()
	writeWorkflowFile(t, tmpDir, "a.yaml", "name: same\nsteps:\n  - name: s\n    run: true\n")
	writeWorkflowFile(t, tmpDir, "b.yaml", "name: same\nsteps:\n  - name: s\n    run: true\n")

	_, err := LoadDir(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate workflow name")
}

func TestResolveInputs(t *testing.T) {
	wf := &Workflow{
		Inputs: map[string]InputSpec{
			"working_directory": {Required: true},
			"python_version":    {Required: true, Default: "3.11"},
			"verbose":           {},
		},
	}

	tests := []struct {
		name     string
		supplied map[string]string
		want     map[string]string
		wantErr  string
	}{
		{
			name:     "all supplied",
			supplied: map[string]string{"working_directory": "libs/community", "python_version": "3.12"},
			want:     map[string]string{"working_directory": "libs/community", "python_version": "3.12", "verbose": ""},
		},
		{
			name:     "default fills required",
			supplied: map[string]string{"working_directory": "libs/community"},
			want:     map[string]string{"working_directory": "libs/community", "python_version": "3.11", "verbose": ""},
		},
		{
			name:     "missing required",
			supplied: map[string]string{"python_version": "3.11"},
			wantErr:  "missing required input: working_directory",
		},
		{
			name:     "unknown input",
			supplied: map[string]string{"working_directory": "x", "typo": "y"},
			wantErr:  "unknown input: typo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wf.ResolveInputs(tt.supplied)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
