// Package ui handles terminal output and the survey-backed prompts. All
// output goes to stderr so stdout stays free for machine-readable data
// (the openwith JSON report in particular).
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// UI writes status lines with severity prefixes and coloring.
type UI struct {
	output         io.Writer
	nonInteractive bool // suppresses prompts; callers fall back to defaults

	colorInfo    *color.Color
	colorSuccess *color.Color
	colorWarning *color.Color
	colorError   *color.Color
	colorBold    *color.Color
	colorAccent  *color.Color
}

// New returns a UI writing to stderr.
func New() *UI {
	return &UI{
		output:       os.Stderr,
		colorInfo:    color.New(color.FgBlue),
		colorSuccess: color.New(color.FgGreen),
		colorWarning: color.New(color.FgYellow),
		colorError:   color.New(color.FgRed),
		colorBold:    color.New(color.Bold),
		colorAccent:  color.New(color.FgCyan, color.Bold),
	}
}

// NewWithWriter returns a UI writing to w. Tests pass a buffer.
func NewWithWriter(w io.Writer) *UI {
	u := New()
	u.output = w
	return u
}

// SetNonInteractive toggles prompt suppression.
func (u *UI) SetNonInteractive(enabled bool) {
	u.nonInteractive = enabled
}

// IsNonInteractive reports whether prompts are suppressed.
func (u *UI) IsNonInteractive() bool {
	return u.nonInteractive
}

// Info writes a neutral status line.
func (u *UI) Info(msg string) {
	u.colorInfo.Fprintf(u.output, "[INFO] %s\n", msg)
}

// Infof writes a formatted status line.
func (u *UI) Infof(format string, args ...interface{}) {
	u.Info(fmt.Sprintf(format, args...))
}

// Success reports a completed action.
func (u *UI) Success(msg string) {
	u.colorSuccess.Fprintf(u.output, "[OK] %s\n", msg)
}

// Successf reports a formatted completed action.
func (u *UI) Successf(format string, args ...interface{}) {
	u.Success(fmt.Sprintf(format, args...))
}

// Warning reports a recoverable problem.
func (u *UI) Warning(msg string) {
	u.colorWarning.Fprintf(u.output, "[WARN] %s\n", msg)
}

// Warningf reports a formatted recoverable problem.
func (u *UI) Warningf(format string, args ...interface{}) {
	u.Warning(fmt.Sprintf(format, args...))
}

// Error reports a failure.
func (u *UI) Error(msg string) {
	u.colorError.Fprintf(u.output, "[ERROR] %s\n", msg)
}

// Errorf reports a formatted failure.
func (u *UI) Errorf(format string, args ...interface{}) {
	u.Error(fmt.Sprintf(format, args...))
}

// Step marks the start of a phase within a setup step.
func (u *UI) Step(msg string) {
	fmt.Fprintln(u.output)
	u.colorAccent.Fprintf(u.output, "--> %s\n", msg)
	fmt.Fprintln(u.output)
}

// Header frames a step title between border lines.
func (u *UI) Header(title string) {
	border := strings.Repeat("=", 70)

	fmt.Fprintln(u.output)
	u.colorAccent.Fprintln(u.output, border)
	u.colorAccent.Fprintf(u.output, "  %s\n", title)
	u.colorAccent.Fprintln(u.output, border)
	fmt.Fprintln(u.output)
}

// Separator writes a horizontal rule.
func (u *UI) Separator() {
	u.colorAccent.Fprintln(u.output, strings.Repeat("-", 70))
}

// Print writes a line without prefix or color.
func (u *UI) Print(msg string) {
	fmt.Fprintln(u.output, msg)
}

// Printf writes a formatted line without prefix or color.
func (u *UI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(u.output, format+"\n", args...)
}

// Bold writes a line in bold.
func (u *UI) Bold(msg string) {
	u.colorBold.Fprintln(u.output, msg)
}
