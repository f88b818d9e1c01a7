// Package secrets resolves named secret bindings for a run.
//
// Secrets are resolved once at run start, by name, from one or more stores:
// the process environment (with a configurable prefix) and an optional YAML
// secrets file. Resolved values are opaque strings; they are injected into
// step environments only where referenced and are redacted from all printed
// output via [Redactor].
package secrets

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store looks up a secret value by its logical name.
type Store interface {
	Get(name string) (string, bool)
}

// EnvStore resolves secrets from the process environment.
//
// A secret named GOOGLE_API_KEY with prefix "DRIFTRUN_SECRET_" is read from
// the DRIFTRUN_SECRET_GOOGLE_API_KEY environment variable.
type EnvStore struct {
	Prefix string
}

func (s *EnvStore) Get(name string) (string, bool) {
	return os.LookupEnv(s.Prefix + name)
}

// FileStore resolves secrets from a YAML file of name: value pairs.
type FileStore struct {
	values map[string]string
}

// NewFileStore loads a secrets file. The file must be a flat YAML mapping of
// secret names to string values.
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %w", err)
	}

	return &FileStore{values: values}, nil
}

func (s *FileStore) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Resolve looks up each name across the stores in order, first hit wins.
//
// Every requested name must resolve; a workflow referencing a secret that no
// store can supply is a configuration error, reported before any step runs.
func Resolve(names []string, stores ...Store) (map[string]string, error) {
	resolved := make(map[string]string, len(names))
	var missing []string

	for _, name := range names {
		found := false
		for _, store := range stores {
			if v, ok := store.Get(name); ok {
				resolved[name] = v
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("unresolved secrets: %s", strings.Join(missing, ", "))
	}
	return resolved, nil
}

// RedactedValue replaces secret values in printed output.
const RedactedValue = "***"

// Redactor scrubs resolved secret values from strings before they reach any
// log, terminal, or artifact.
type Redactor struct {
	replacer *strings.Replacer
}

// NewRedactor builds a Redactor over the given secret values. Empty values
// are skipped so the replacer never matches the empty string.
func NewRedactor(values map[string]string) *Redactor {
	pairs := make([]string, 0, len(values)*2)
	for _, v := range values {
		if v == "" {
			continue
		}
		pairs = append(pairs, v, RedactedValue)
	}
	return &Redactor{replacer: strings.NewReplacer(pairs...)}
}

// Redact returns s with every known secret value replaced.
func (r *Redactor) Redact(s string) string {
	if r == nil || r.replacer == nil {
		return s
	}
	return r.replacer.Replace(s)
}
