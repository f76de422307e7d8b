// Package system wraps the host interfaces the setup tool depends on:
// command execution, privileged file operations, the package manager, and
// systemd. External programs are opaque collaborators; only their exit
// status and combined output are inspected.
package system

import "os/exec"

// CommandRunner defines an interface for running system commands.
type CommandRunner interface {
	Run(name string, args ...string) (string, error)
}

// ExecCommandRunner executes commands using the local shell.
type ExecCommandRunner struct{}

// NewCommandRunner returns a default command runner implementation.
func NewCommandRunner() CommandRunner {
	return &ExecCommandRunner{}
}

// Run executes a command and returns its combined output.
func (r *ExecCommandRunner) Run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Sudo runs a command through sudo -n (non-interactive; fails instead of
// prompting for a password).
func Sudo(r CommandRunner, name string, args ...string) (string, error) {
	sudoArgs := append([]string{"-n", name}, args...)
	return r.Run("sudo", sudoArgs...)
}
