package workflow

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr"
)

// placeholderRe matches ${{ ... }} placeholders in workflow strings.
var placeholderRe = regexp.MustCompile(`\$\{\{\s*(.+?)\s*\}\}`)

// secretRefRe matches secrets.NAME references inside expressions.
var secretRefRe = regexp.MustCompile(`\bsecrets\.([A-Za-z_][A-Za-z0-9_]*)`)

// Evaluator interpolates ${{ ... }} expressions against a run's context.
//
// The expression environment exposes four namespaces: inputs.*, secrets.*,
// env.*, and workflow.name. Expressions are evaluated with expr-lang, so
// anything the language supports works inside a placeholder, though plain
// lookups cover nearly every workflow in practice.
type Evaluator struct {
	env map[string]any
}

// NewEvaluator builds an Evaluator for one run.
func NewEvaluator(workflowName string, inputs, secrets, env map[string]string) *Evaluator {
	return &Evaluator{
		env: map[string]any{
			"inputs":  toAnyMap(inputs),
			"secrets": toAnyMap(secrets),
			"env":     toAnyMap(env),
			"workflow": map[string]any{
				"name": workflowName,
			},
		},
	}
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Interpolate replaces every ${{ ... }} placeholder in s with the result of
// evaluating the inner expression.
//
// An expression that fails to evaluate, or evaluates to nil (for example a
// reference to a secret that was never resolved), fails the whole call.
func (e *Evaluator) Interpolate(s string) (string, error) {
	var evalErr error

	result := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		if evalErr != nil {
			return match
		}

		expression := placeholderRe.FindStringSubmatch(match)[1]
		value, err := expr.Eval(expression, e.env)
		if err != nil {
			evalErr = fmt.Errorf("failed to evaluate %q: %w", expression, err)
			return match
		}
		if value == nil {
			evalErr = fmt.Errorf("expression %q evaluated to nothing", expression)
			return match
		}
		return fmt.Sprint(value)
	})

	if evalErr != nil {
		return "", evalErr
	}
	return result, nil
}

// InterpolateMap interpolates every value of m, returning a new map.
func (e *Evaluator) InterpolateMap(m map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		iv, err := e.Interpolate(v)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", k, err)
		}
		out[k] = iv
	}
	return out, nil
}

// SecretRefs returns the secret names referenced by s, in order of first
// appearance. Used to resolve only the secrets a workflow actually needs and
// to keep them out of steps that never reference them.
func SecretRefs(s string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range secretRefRe.FindAllStringSubmatch(s, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// SecretRefs returns every secret name the workflow references, across all
// step commands and environment values.
func (w *Workflow) SecretRefs() []string {
	var names []string
	seen := make(map[string]struct{})
	collect := func(s string) {
		for _, name := range SecretRefs(s) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	for _, v := range w.Env {
		collect(v)
	}
	for _, step := range w.Steps {
		collect(step.Run)
		for _, v := range step.Env {
			collect(v)
		}
	}
	return names
}
