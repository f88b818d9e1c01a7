// Package output formats driftrun's terminal output.
//
// [Printer] renders run and step progress with lipgloss styling. Every string
// passes through an optional redaction hook before it is written, so secret
// values never reach the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	skippedStyle = lipgloss.NewStyle().Faint(true)
	outputStyle  = lipgloss.NewStyle().Faint(true)
)

// Printer writes formatted run progress to a terminal.
//
// Use [NewPrinter] for stdout or [NewPrinterWithWriter] to capture output in
// tests. Printer is not safe for concurrent use; the engine runs steps
// sequentially so this never matters in practice.
type Printer struct {
	w              io.Writer
	redact         func(string) string
	truncateLength int
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a Printer writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{w: w, truncateLength: 0}
}

// SetRedactor installs a hook applied to every string before printing.
func (p *Printer) SetRedactor(redact func(string) string) {
	p.redact = redact
}

// SetTruncateLength caps the length of printed step output lines.
// Zero means no truncation.
func (p *Printer) SetTruncateLength(n int) {
	p.truncateLength = n
}

func (p *Printer) clean(s string) string {
	if p.redact != nil {
		s = p.redact(s)
	}
	return s
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, p.clean(s))
}

// RunHeader prints the banner that opens a run.
func (p *Printer) RunHeader(workflowName, runID string) {
	p.println(headerStyle.Render(fmt.Sprintf("driftrun: %s", workflowName)))
	p.println(skippedStyle.Render(fmt.Sprintf("run %s", runID)))
	fmt.Fprintln(p.w)
}

// StepHeader prints the banner that opens a step.
func (p *Printer) StepHeader(index, total int, name string) {
	p.println(stepStyle.Render(fmt.Sprintf("[%d/%d] %s", index, total, name)))
}

// StepOutput prints one line of subprocess output, indented and truncated.
func (p *Printer) StepOutput(line string) {
	line = p.clean(line)
	if p.truncateLength > 3 && len(line) > p.truncateLength {
		line = line[:p.truncateLength-3] + "..."
	}
	fmt.Fprintln(p.w, outputStyle.Render("  "+line))
}

// StepSuccess prints a step's passing summary line.
func (p *Printer) StepSuccess(name string, d time.Duration) {
	p.println(successStyle.Render("  ✓ ") + fmt.Sprintf("%s (%s)", name, d.Round(time.Millisecond)))
}

// StepFailure prints a step's failing summary line.
func (p *Printer) StepFailure(name string, d time.Duration, exitCode int) {
	p.println(failureStyle.Render("  ✗ ") + fmt.Sprintf("%s (%s, exit %d)", name, d.Round(time.Millisecond), exitCode))
}

// StepSkipped marks a step that never ran because an earlier one failed.
func (p *Printer) StepSkipped(name string) {
	p.println(skippedStyle.Render(fmt.Sprintf("  ○ %s (skipped)", name)))
}

// RunSuccess prints the closing banner for a passing run.
func (p *Printer) RunSuccess(workflowName string, d time.Duration) {
	fmt.Fprintln(p.w)
	p.println(successStyle.Render("✓ PASSED ") + fmt.Sprintf("%s (%s)", workflowName, d.Round(time.Millisecond)))
}

// RunFailure prints the closing banner for a failing run.
func (p *Printer) RunFailure(workflowName, failedStep string, d time.Duration) {
	fmt.Fprintln(p.w)
	p.println(failureStyle.Render("✗ FAILED ") + fmt.Sprintf("%s at %q (%s)", workflowName, failedStep, d.Round(time.Millisecond)))
}

// DirtyTree surfaces the offending git status output before a
// clean-worktree failure.
func (p *Printer) DirtyTree(statusOutput string) {
	fmt.Fprintln(p.w)
	p.println(failureStyle.Render("working tree is dirty after run:"))
	for _, line := range strings.Split(strings.TrimRight(statusOutput, "\n"), "\n") {
		p.StepOutput(line)
	}
}

// Info prints a plain informational line.
func (p *Printer) Info(msg string) {
	p.println(msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.println(failureStyle.Render("error: ") + msg)
}
