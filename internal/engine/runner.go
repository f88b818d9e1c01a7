// Package engine executes workflow runs.
//
// The engine turns a loaded workflow plus a set of trigger inputs into an
// ordered [Plan], then executes it step by step with fail-fast semantics:
// the first non-zero exit aborts the run and every remaining step is skipped.
// After a fully passing run it applies the workflow's post checks, currently
// the clean-worktree assertion.
//
// Key types:
//   - [CommandRunner] abstracts subprocess execution (see [ExecRunner])
//   - [Executor] drives the run loop
//   - [RunResult] is the terminal report of one run
//
// For testing, use [MockRunner] which implements [CommandRunner] without
// spawning real processes.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command is one shell invocation with its working directory and environment.
type Command struct {
	// Shell is the interpreter, invoked as `<shell> -c <script>`.
	Shell string

	// Script is the command text.
	Script string

	// Dir is the working directory. Empty means the process's current
	// directory.
	Dir string

	// Env is layered over the parent process environment.
	Env map[string]string
}

// CommandResult reports how a command finished.
type CommandResult struct {
	// ExitCode is the subprocess exit status. Zero means success.
	ExitCode int
}

// CommandRunner executes a shell command, streaming output lines to onLine
// as they arrive.
//
// A non-zero exit status is reported through [CommandResult.ExitCode], not
// the error; the error is reserved for failures to run the command at all
// (missing shell, bad working directory, cancelled context).
type CommandRunner interface {
	Run(ctx context.Context, cmd Command, onLine func(string)) (CommandResult, error)
}

// ExecRunner runs commands as real subprocesses via os/exec.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, cmd Command, onLine func(string)) (CommandResult, error) {
	shell := cmd.Shell
	if shell == "" {
		shell = "sh"
	}

	c := exec.CommandContext(ctx, shell, "-c", cmd.Script)
	c.Dir = cmd.Dir
	c.Env = mergedEnv(cmd.Env)

	stdout, err := c.StdoutPipe()
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := c.Start(); err != nil {
		return CommandResult{}, fmt.Errorf("failed to start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	emit := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		if onLine != nil {
			onLine(line)
		}
	}

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		// Large buffer for commands that emit long lines
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		for scanner.Scan() {
			emit(scanner.Text())
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	err = c.Wait()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return CommandResult{ExitCode: exitErr.ExitCode()}, nil
		}
		return CommandResult{ExitCode: 1}, fmt.Errorf("command failed: %w", err)
	}

	return CommandResult{ExitCode: 0}, nil
}

// mergedEnv layers extra over the parent environment.
func mergedEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

// MockRunner is a CommandRunner for tests. It records every command it
// receives and replies from a scripted response table keyed by a substring
// of the command script.
type MockRunner struct {
	// Commands records every executed command in order.
	Commands []Command

	// Responses maps a script substring to a scripted response. The first
	// matching entry wins; commands with no match succeed silently.
	Responses []MockResponse
}

// MockResponse scripts the outcome for commands whose script contains Match.
type MockResponse struct {
	Match    string
	Output   []string
	ExitCode int
	Err      error
}

func (m *MockRunner) Run(ctx context.Context, cmd Command, onLine func(string)) (CommandResult, error) {
	m.Commands = append(m.Commands, cmd)

	for _, resp := range m.Responses {
		if strings.Contains(cmd.Script, resp.Match) {
			for _, line := range resp.Output {
				if onLine != nil {
					onLine(line)
				}
			}
			return CommandResult{ExitCode: resp.ExitCode}, resp.Err
		}
	}
	return CommandResult{}, nil
}
