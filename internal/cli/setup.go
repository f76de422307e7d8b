// Package cli provides the command-line interface layer for fedora-setup:
// the shared setup context, step registry and dispatch, and the interactive
// menu.
package cli

import (
	"fmt"
	"os"

	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/mhalvorsen/fedora-setup/internal/configfile"
	"github.com/mhalvorsen/fedora-setup/internal/download"
	"github.com/mhalvorsen/fedora-setup/internal/release"
	"github.com/mhalvorsen/fedora-setup/internal/steps"
	"github.com/mhalvorsen/fedora-setup/internal/system"
	"github.com/mhalvorsen/fedora-setup/internal/ui"
)

// SetupContext holds all dependencies needed for setup operations
type SetupContext struct {
	Config   *config.Config
	Markers  *config.Markers
	UI       *ui.UI
	Runner   system.CommandRunner
	Registry *release.Registry
}

// NewSetupContext creates a new SetupContext with all dependencies
// initialized
func NewSetupContext() (*SetupContext, error) {
	return NewSetupContextWithOptions(false)
}

// NewSetupContextWithOptions creates a new SetupContext with custom options
func NewSetupContextWithOptions(nonInteractive bool) (*SetupContext, error) {
	cfg := config.New("")
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := release.LoadRegistry()
	if err != nil {
		return nil, err
	}

	uiInstance := ui.New()
	uiInstance.SetNonInteractive(nonInteractive)

	return &SetupContext{
		Config:   cfg,
		Markers:  config.NewMarkers(""),
		UI:       uiInstance,
		Runner:   system.NewCommandRunner(),
		Registry: registry,
	}, nil
}

// StepInfo contains metadata about a setup step
type StepInfo struct {
	Name        string
	ShortName   string
	Description string
	MarkerName  string
	Optional    bool
}

// GetAllSteps returns information about all steps in order
func GetAllSteps() []StepInfo {
	return []StepInfo{
		{Name: "Pre-flight Check", ShortName: "preflight", Description: "Verify Fedora release, commands, and sudo", MarkerName: "preflight-complete", Optional: false},
		{Name: "Disable Sleep", ShortName: "sleep", Description: "Install the systemd drop-in that disables suspend", MarkerName: "sleep-disabled", Optional: false},
		{Name: "Remote Desktop Client", ShortName: "remotedesktop", Description: "Install the remote-desktop client for this release", MarkerName: "remote-desktop-installed", Optional: false},
		{Name: "Open With Cleanup", ShortName: "openwith", Description: "Audit and clean application associations (optional)", MarkerName: "openwith-cleaned", Optional: true},
	}
}

// IsStepComplete checks if a step's completion marker exists
func (ctx *SetupContext) IsStepComplete(markerName string) bool {
	return ctx.Markers.IsComplete(markerName)
}

// promptRerun asks whether a completed step should run again and clears its
// marker if so. Returns false when the step should be skipped.
func (ctx *SetupContext) promptRerun(stepName, markerName string) (bool, error) {
	if !ctx.IsStepComplete(markerName) {
		return true, nil
	}

	ctx.UI.Infof("%s already completed", stepName)
	rerun, err := ctx.UI.PromptYesNo("Run again?", false)
	if err != nil || !rerun {
		return false, err
	}

	if err := ctx.Markers.Remove(markerName); err != nil {
		ctx.UI.Warningf("Failed to remove marker: %v", err)
	}
	return true, nil
}

// RunStep executes a specific step by short name
func (ctx *SetupContext) RunStep(shortName string) error {
	var info *StepInfo
	for _, s := range GetAllSteps() {
		if s.ShortName == shortName {
			info = &s
			break
		}
	}
	if info == nil {
		return fmt.Errorf("unknown step: %s", shortName)
	}

	proceed, err := ctx.promptRerun(info.Name, info.MarkerName)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	switch shortName {
	case "preflight":
		err = ctx.runPreflight()
	case "sleep":
		err = ctx.runSleep()
	case "remotedesktop":
		err = ctx.runRemoteDesktop()
	case "openwith":
		err = ctx.runOpenWith()
	}

	if err != nil {
		return err
	}

	ctx.UI.Successf("Step '%s' completed successfully!", shortName)
	return nil
}

// RunAll runs all setup steps in order. Optional steps are skipped in
// non-interactive mode unless already requested individually.
func (ctx *SetupContext) RunAll() error {
	for _, step := range GetAllSteps() {
		if step.Optional && ctx.UI.IsNonInteractive() {
			ctx.UI.Infof("Skipping optional step: %s", step.Name)
			continue
		}
		if err := ctx.RunStep(step.ShortName); err != nil {
			return fmt.Errorf("step %s failed: %w", step.ShortName, err)
		}
	}

	ctx.UI.Success("All steps completed successfully!")
	return nil
}

// sudoInstaller builds the privileged installer used for targets under /etc.
func (ctx *SetupContext) sudoInstaller() (*configfile.Installer, system.FileOps) {
	fileOps := system.NewSudoFileOps(ctx.Runner)
	return configfile.NewInstaller(fileOps), fileOps
}

func (ctx *SetupContext) runPreflight() error {
	step := steps.NewPreflight(ctx.Runner, ctx.Registry, ctx.Config, ctx.UI, ctx.Markers)
	return step.Run()
}

func (ctx *SetupContext) runSleep() error {
	installer, _ := ctx.sudoInstaller()
	step := steps.NewSleepSetup(installer, ctx.Runner, ctx.Config, ctx.UI, ctx.Markers)
	return step.Run()
}

func (ctx *SetupContext) runRemoteDesktop() error {
	installer, fileOps := ctx.sudoInstaller()
	step := steps.NewRemoteDesktopSetup(installer, fileOps, ctx.Runner, download.New(), ctx.Registry, ctx.Config, ctx.UI, ctx.Markers)
	return step.Run()
}

func (ctx *SetupContext) runOpenWith() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}

	step := steps.NewOpenWithCleanup(home, ctx.Runner, ctx.Config, ctx.UI, ctx.Markers)
	return step.RunInteractive()
}

// NewOpenWithStep builds the openwith step for direct (flag-driven)
// invocation by the openwith command.
func (ctx *SetupContext) NewOpenWithStep() (*steps.OpenWithCleanup, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return steps.NewOpenWithCleanup(home, ctx.Runner, ctx.Config, ctx.UI, ctx.Markers), nil
}
