package steps

import (
	"fmt"

	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/mhalvorsen/fedora-setup/internal/release"
	"github.com/mhalvorsen/fedora-setup/internal/system"
	"github.com/mhalvorsen/fedora-setup/internal/ui"
)

const preflightCompletionMarker = "preflight-complete"

// requiredCommands must be in PATH for the setup steps to work.
var requiredCommands = []string{"rpm", "dnf", "systemctl", "sudo"}

// Preflight verifies the system before any mutating step runs.
type Preflight struct {
	runner        system.CommandRunner
	registry      *release.Registry
	osReleasePath string
	config        *config.Config
	ui            *ui.UI
	markers       *config.Markers
}

// NewPreflight creates a new Preflight instance.
func NewPreflight(runner system.CommandRunner, registry *release.Registry, cfg *config.Config, ui *ui.UI, markers *config.Markers) *Preflight {
	return &Preflight{
		runner:        runner,
		registry:      registry,
		osReleasePath: release.DefaultOSReleasePath,
		config:        cfg,
		ui:            ui,
		markers:       markers,
	}
}

// SetOSReleasePath overrides where the Fedora release is detected from.
func (p *Preflight) SetOSReleasePath(path string) {
	p.osReleasePath = path
}

// CheckOS verifies the host is a Fedora release the registry knows about.
func (p *Preflight) CheckOS() error {
	osRelease, err := release.Detect(p.osReleasePath)
	if err != nil {
		return fmt.Errorf("failed to detect OS release: %w", err)
	}

	if !osRelease.IsFedora() {
		return fmt.Errorf("this tool supports Fedora only, detected: %s", osRelease.PrettyName)
	}
	p.ui.Successf("Detected %s", osRelease.PrettyName)

	if osRelease.VersionID > p.registry.Newest() {
		p.ui.Warningf("Fedora %d is newer than any tested release (newest: %d)",
			osRelease.VersionID, p.registry.Newest())
	}
	return nil
}

// CheckCommands verifies the required external commands are present.
func (p *Preflight) CheckCommands() error {
	for _, cmd := range requiredCommands {
		if !system.CommandExists(cmd) {
			return fmt.Errorf("required command not found in PATH: %s", cmd)
		}
		p.ui.Successf("%s is available", cmd)
	}
	return nil
}

// CheckSudo verifies passwordless sudo, which the privileged file
// operations rely on (sudo -n never prompts).
func (p *Preflight) CheckSudo() error {
	if _, err := system.Sudo(p.runner, "true"); err != nil {
		p.ui.Warning("Passwordless sudo is not available")
		p.ui.Info("Run 'sudo -v' first, or configure NOPASSWD for your user")
		return fmt.Errorf("passwordless sudo check failed: %w", err)
	}
	p.ui.Success("Passwordless sudo is available")
	return nil
}

// Run executes the pre-flight checks.
func (p *Preflight) Run() error {
	exists, err := p.markers.Exists(preflightCompletionMarker)
	if err != nil {
		return fmt.Errorf("failed to check marker: %w", err)
	}
	if exists {
		p.ui.Info("Pre-flight checks already completed (marker found)")
		p.ui.Info("To re-run, remove marker: ~/.local/fedora-setup/" + preflightCompletionMarker)
		return nil
	}

	p.ui.Header("Pre-flight Checks")

	p.ui.Step("Operating System")
	if err := p.CheckOS(); err != nil {
		return err
	}

	p.ui.Step("Required Commands")
	if err := p.CheckCommands(); err != nil {
		return err
	}

	p.ui.Step("Privilege Escalation")
	if err := p.CheckSudo(); err != nil {
		return err
	}

	p.ui.Print("")
	p.ui.Separator()
	p.ui.Success("Pre-flight checks passed")

	if err := p.markers.Create(preflightCompletionMarker); err != nil {
		return fmt.Errorf("failed to create completion marker: %w", err)
	}

	return nil
}
