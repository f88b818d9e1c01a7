// Package gitcheck asserts that a run left the working tree unchanged.
//
// Install and test steps are allowed to mutate the tree while they run, but a
// passing run must leave it exactly as it started. The check shells out to
// `git status` and looks for git's clean-tree message; anything else means a
// step wrote files it should not have.
package gitcheck

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CleanMarker is the literal git prints when the tree has no uncommitted
// changes. The check matches this substring rather than parsing porcelain
// output so the surfaced failure text is exactly what a developer would see
// running git themselves.
const CleanMarker = "nothing to commit, working tree clean"

// StatusFunc obtains `git status` output for a directory. It exists so the
// engine can stub the check in tests.
type StatusFunc func(ctx context.Context, dir string) (string, error)

// GitStatus runs `git status` in dir and returns its combined output.
func GitStatus(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "status")
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git status failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// IsClean reports whether status output indicates a clean working tree.
func IsClean(statusOutput string) bool {
	return strings.Contains(statusOutput, CleanMarker)
}
