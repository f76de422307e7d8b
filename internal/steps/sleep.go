// Package steps contains the setup steps the tool can run. Each step is
// marker-guarded so re-running the tool skips work that already completed.
package steps

import (
	"fmt"
	"path/filepath"

	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/mhalvorsen/fedora-setup/internal/configfile"
	"github.com/mhalvorsen/fedora-setup/internal/system"
	"github.com/mhalvorsen/fedora-setup/internal/ui"
)

// SleepConfContent is the systemd sleep drop-in that disables every
// suspend variant.
const SleepConfContent = "[Sleep]\n" +
	"AllowSuspend=no\n" +
	"AllowHibernation=no\n" +
	"AllowSuspendThenHibernate=no\n" +
	"AllowHybridSleep=no\n"

const sleepCompletionMarker = "sleep-disabled"

// SleepSetup installs the sleep-disable drop-in under
// /etc/systemd/sleep.conf.d and reloads logind.
type SleepSetup struct {
	installer *configfile.Installer
	runner    system.CommandRunner
	config    *config.Config
	ui        *ui.UI
	markers   *config.Markers

	// serviceExists checks for the logind unit file. Overridable so tests
	// don't depend on the host's systemd layout.
	serviceExists func(name string) (bool, error)
}

// NewSleepSetup creates a new SleepSetup instance. The installer must be
// backed by privileged file operations when targeting /etc.
func NewSleepSetup(installer *configfile.Installer, runner system.CommandRunner, cfg *config.Config, ui *ui.UI, markers *config.Markers) *SleepSetup {
	return &SleepSetup{
		installer:     installer,
		runner:        runner,
		config:        cfg,
		ui:            ui,
		markers:       markers,
		serviceExists: system.ServiceExists,
	}
}

// DesiredState returns the sleep drop-in the step installs.
func (s *SleepSetup) DesiredState() configfile.DesiredFileState {
	dir := s.config.GetOrDefault(config.KeySleepConfDir, "/etc/systemd/sleep.conf.d")
	file := s.config.GetOrDefault(config.KeySleepConfFile, "nosuspend.conf")

	return configfile.DesiredFileState{
		Dir:     dir,
		Path:    filepath.Join(dir, file),
		Content: []byte(SleepConfContent),
		Perm:    0644,
	}
}

// Run executes the sleep-disable step.
func (s *SleepSetup) Run() error {
	exists, err := s.markers.Exists(sleepCompletionMarker)
	if err != nil {
		return fmt.Errorf("failed to check marker: %w", err)
	}
	if exists {
		s.ui.Info("Sleep already disabled (marker found)")
		s.ui.Info("To re-run, remove marker: ~/.local/fedora-setup/" + sleepCompletionMarker)
		return nil
	}

	s.ui.Header("Disable Sleep and Suspend")
	s.ui.Info("Installing a systemd drop-in that disables suspend, hibernation,")
	s.ui.Info("suspend-then-hibernate, and hybrid sleep.")

	state := s.DesiredState()

	s.ui.Step("Installing Sleep Configuration")
	s.ui.Infof("Target: %s", state.Path)

	result, err := s.installer.Apply(state)
	if err != nil {
		return fmt.Errorf("failed to install sleep configuration: %w", err)
	}

	if result.DirectoryCreated {
		s.ui.Successf("Created directory %s", state.Dir)
	} else {
		s.ui.Infof("Directory %s already present", state.Dir)
	}
	if result.FileCreated {
		s.ui.Successf("Created %s", result.Path)
	} else {
		s.ui.Successf("Updated %s", result.Path)
	}

	// logind picks the drop-in up on restart. Best-effort: the setting
	// also applies after the next boot, so a failure here is not fatal.
	s.ui.Step("Reloading systemd-logind")
	s.reloadLogind()

	s.ui.Print("")
	s.ui.Separator()
	s.ui.Success("Sleep and suspend disabled")

	if err := s.markers.Create(sleepCompletionMarker); err != nil {
		return fmt.Errorf("failed to create completion marker: %w", err)
	}

	return nil
}

// reloadLogind reloads systemd and restarts logind so the drop-in applies
// without a reboot. Skipped when the unit file is absent (containers,
// minimal installs).
func (s *SleepSetup) reloadLogind() {
	exists, err := s.serviceExists("systemd-logind.service")
	if err == nil && !exists {
		s.ui.Warning("systemd-logind unit not found, skipping restart")
		s.ui.Info("The sleep configuration takes effect after the next reboot")
		return
	}

	if err := system.SystemdDaemonReload(s.runner); err != nil {
		s.ui.Warningf("Failed to reload systemd: %v", err)
	}

	if err := system.RestartService(s.runner, "systemd-logind"); err != nil {
		s.ui.Warningf("Failed to restart systemd-logind: %v", err)
		s.ui.Info("The sleep configuration takes effect after the next reboot")
	} else {
		s.ui.Success("systemd-logind restarted")
	}
}
