package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load reads, defaults, and validates a single workflow file.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}

	if err := defaults.Set(&wf); err != nil {
		return nil, fmt.Errorf("failed to apply workflow defaults: %w", err)
	}

	if err := validate.Struct(&wf); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("field %q failed rule %q", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid workflow %s: %s", path, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid workflow %s: %w", path, err)
	}

	if err := checkStepNames(&wf); err != nil {
		return nil, fmt.Errorf("invalid workflow %s: %w", path, err)
	}

	return &wf, nil
}

// checkStepNames rejects duplicate step names, which would make run results
// and failure reports ambiguous.
func checkStepNames(wf *Workflow) error {
	seen := make(map[string]struct{}, len(wf.Steps))
	for _, s := range wf.Steps {
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate step name: %s", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// LoadDir loads every *.yaml and *.yml workflow in dir, keyed by workflow name.
//
// Files that fail to load abort the whole call; a workflows directory with a
// broken file is treated as misconfiguration, not something to skip past.
func LoadDir(dir string) (map[string]*Workflow, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflows dir: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	workflows := make(map[string]*Workflow, len(files))
	for _, file := range files {
		wf, err := Load(file)
		if err != nil {
			return nil, err
		}
		if _, dup := workflows[wf.Name]; dup {
			return nil, fmt.Errorf("duplicate workflow name %q in %s", wf.Name, file)
		}
		workflows[wf.Name] = wf
	}

	return workflows, nil
}

// ResolveInputs merges supplied input values with declared defaults and
// rejects unknown or missing inputs.
//
// The returned map contains exactly the declared input keys. Required inputs
// without a supplied value or default are an error, as are supplied keys the
// workflow never declared.
func (w *Workflow) ResolveInputs(supplied map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(w.Inputs))

	for key := range supplied {
		if _, ok := w.Inputs[key]; !ok {
			return nil, fmt.Errorf("unknown input: %s", key)
		}
	}

	for key, spec := range w.Inputs {
		if v, ok := supplied[key]; ok {
			resolved[key] = v
			continue
		}
		if spec.Default != "" {
			resolved[key] = spec.Default
			continue
		}
		if spec.Required {
			return nil, fmt.Errorf("missing required input: %s", key)
		}
		resolved[key] = ""
	}

	return resolved, nil
}
