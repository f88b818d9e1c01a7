// Package history records the last run outcome per workflow.
//
// History is a small YAML file, read by `driftrun list` and written after
// every run. It is purely informational: a missing file is an empty history,
// and a failed write never changes a run's outcome.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the history file location relative to the working directory.
const DefaultPath = ".driftrun/history.yaml"

// Record is the stored outcome of a workflow's most recent run.
type Record struct {
	RunID      string    `yaml:"run_id"`
	Status     string    `yaml:"status"`
	FailedStep string    `yaml:"failed_step,omitempty"`
	FinishedAt time.Time `yaml:"finished_at"`
}

// file is the on-disk document shape.
type file struct {
	Runs map[string]Record `yaml:"runs"`
}

// Store reads and writes the history file.
type Store struct {
	path string
}

// NewStore creates a Store at path. Pass an empty string for [DefaultPath].
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// All returns every recorded run, keyed by workflow name. A missing history
// file yields an empty map.
func (s *Store) All() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	if f.Runs == nil {
		f.Runs = map[string]Record{}
	}
	return f.Runs, nil
}

// Get returns the last recorded run for a workflow, if any.
func (s *Store) Get(workflowName string) (Record, bool, error) {
	runs, err := s.All()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := runs[workflowName]
	return rec, ok, nil
}

// Put records a run outcome for a workflow, creating the history file and its
// directory as needed. The write is atomic (temp file + rename) so a crash
// mid-write never corrupts existing history.
func (s *Store) Put(workflowName string, rec Record) error {
	runs, err := s.All()
	if err != nil {
		return err
	}
	runs[workflowName] = rec

	data, err := yaml.Marshal(&file{Runs: runs})
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history dir: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
