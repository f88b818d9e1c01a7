package cli

import "fmt"

// ExitError carries a specific process exit code out of a Cobra RunE function.
//
// Commands return NewExitError(code) instead of calling os.Exit directly, so
// the code propagates up to [RunWithConfig] and tests can assert on exit
// codes without terminating the test process. [Execute] performs the actual
// os.Exit based on the returned [ExecuteResult].
type ExitError struct {
	// Code is the exit code to return to the shell. Zero is success; failed
	// runs pass through the failing step's exit code.
	Code int
}

// Error returns "exit status N", matching the os/exec convention so wrapped
// subprocess failures read consistently.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports whether err is an *ExitError, returning its code.
func IsExitError(err error) (int, bool) {
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.Code, true
	}
	return 0, false
}
