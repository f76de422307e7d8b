package steps

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/mhalvorsen/fedora-setup/internal/openwith"
	"github.com/mhalvorsen/fedora-setup/internal/system"
	"github.com/mhalvorsen/fedora-setup/internal/ui"
)

const openWithCompletionMarker = "openwith-cleaned"

// OpenWithOptions selects which cleanup actions run. With no action flags
// set, the step only scans and reports.
type OpenWithOptions struct {
	FixBroken      bool
	HideDuplicates bool
	FixMimeapps    bool
	Strategy       openwith.Strategy
	Prefer         openwith.Provider
	JSONPath       string
}

// HasFixes reports whether any mutating action was requested.
func (o OpenWithOptions) HasFixes() bool {
	return o.FixBroken || o.HideDuplicates || o.FixMimeapps
}

// OpenWithCleanup audits and cleans the "Open With" application
// associations for the current user.
type OpenWithCleanup struct {
	scanner *openwith.Scanner
	fixer   *openwith.Fixer
	runner  system.CommandRunner
	home    string
	config  *config.Config
	ui      *ui.UI
	markers *config.Markers
}

// NewOpenWithCleanup creates a new OpenWithCleanup for the given home
// directory.
func NewOpenWithCleanup(home string, runner system.CommandRunner, cfg *config.Config, ui *ui.UI, markers *config.Markers) *OpenWithCleanup {
	userAppsDir := filepath.Join(home, ".local", "share", "applications")
	return &OpenWithCleanup{
		scanner: openwith.NewScanner(home),
		fixer:   openwith.NewFixer(userAppsDir),
		runner:  runner,
		home:    home,
		config:  cfg,
		ui:      ui,
		markers: markers,
	}
}

// RunInteractive prompts for the cleanup options and runs the cleaner.
// Used by the menu and the plain `run openwith` step.
func (c *OpenWithCleanup) RunInteractive() error {
	c.ui.Header("Open With Cleanup")
	c.ui.Info("Scans .desktop application entries for broken and duplicate")
	c.ui.Info("\"Open With\" candidates, and can hide the redundant ones.")

	opts := OpenWithOptions{
		Strategy: openwith.Strategy(c.config.GetOrDefault(config.KeyOpenWithStrategy, "auto")),
		Prefer:   openwith.Provider(c.config.GetOrDefault(config.KeyOpenWithPrefer, "native")),
	}

	fixBroken, err := c.ui.PromptYesNo("Hide entries whose executables are missing?", false)
	if err != nil {
		return fmt.Errorf("failed to prompt: %w", err)
	}
	opts.FixBroken = fixBroken

	hideDuplicates, err := c.ui.PromptYesNo("Hide redundant duplicate entries?", false)
	if err != nil {
		return fmt.Errorf("failed to prompt: %w", err)
	}
	opts.HideDuplicates = hideDuplicates

	if opts.HideDuplicates {
		providers := []string{"native", "flatpak", "snap"}
		idx, err := c.ui.PromptSelect("Which install type should be kept when deduplicating?", providers)
		if err != nil {
			return fmt.Errorf("failed to prompt: %w", err)
		}
		opts.Prefer = openwith.Provider(providers[idx])

		if err := c.config.Set(config.KeyOpenWithPrefer, providers[idx]); err != nil {
			return fmt.Errorf("failed to save preference: %w", err)
		}
	}

	fixMimeapps, err := c.ui.PromptYesNo("Clean ~/.config/mimeapps.list?", false)
	if err != nil {
		return fmt.Errorf("failed to prompt: %w", err)
	}
	opts.FixMimeapps = fixMimeapps

	return c.Run(opts)
}

// Run scans the application entries and applies the requested fixes.
// Scanning is always re-runnable; the completion marker is only written
// after a mutating pass.
func (c *OpenWithCleanup) Run(opts OpenWithOptions) error {
	if opts.Strategy == "" {
		opts.Strategy = openwith.StrategyAuto
	}
	if opts.Prefer == "" {
		opts.Prefer = openwith.ProviderNative
	}

	c.ui.Step("Scanning Application Entries")
	entries, err := c.scanner.Scan()
	if err != nil {
		return fmt.Errorf("failed to scan desktop entries: %w", err)
	}

	broken := openwith.BrokenEntries(entries)
	nameGroups := openwith.GroupsByName(entries)
	nameCmdGroups := openwith.GroupsByNameCommand(entries)

	c.printScanReport(entries, broken, nameGroups, nameCmdGroups)

	if opts.JSONPath != "" {
		report := openwith.BuildReport(entries)
		if err := report.WriteJSON(opts.JSONPath); err != nil {
			return err
		}
		c.ui.Successf("JSON report written to %s", opts.JSONPath)
	}

	if !opts.HasFixes() {
		return nil
	}

	if opts.FixBroken {
		c.ui.Step("Hiding Broken Entries")
		if err := c.hideBroken(broken); err != nil {
			return err
		}
	}

	if opts.HideDuplicates {
		c.ui.Step("Hiding Duplicate Entries")
		if err := c.hideDuplicates(opts, nameGroups, nameCmdGroups); err != nil {
			return err
		}
	}

	if opts.FixMimeapps {
		c.ui.Step("Cleaning mimeapps.list")
		mimeappsPath := openwith.DefaultMimeappsPath(c.home)
		result, err := openwith.CleanMimeapps(mimeappsPath, openwith.DesktopIDs(entries))
		if err != nil {
			return fmt.Errorf("failed to clean %s: %w", mimeappsPath, err)
		}
		c.ui.Successf("Removed %d duplicate and %d missing references",
			result.RemovedDuplicates, result.RemovedMissing)
	}

	c.refreshDesktopDatabase()

	c.ui.Print("")
	c.ui.Separator()
	c.ui.Success("Open With cleanup finished")

	if err := c.markers.Create(openWithCompletionMarker); err != nil {
		return fmt.Errorf("failed to create completion marker: %w", err)
	}

	return nil
}

func (c *OpenWithCleanup) printScanReport(entries, broken []*openwith.Entry, nameGroups, nameCmdGroups []openwith.Group) {
	c.ui.Infof("Total Open-With candidates: %d", len(entries))
	c.ui.Infof("Likely broken entries: %d", len(broken))
	for _, e := range broken {
		label := e.Name
		if label == "" {
			label = "(no name)"
		}
		c.ui.Printf("  - [%s] %s -> %s (%s)", e.Scope, label, e.Reason, e.Path)
	}

	c.ui.Print("")
	c.ui.Infof("Duplicate groups by name: %d", len(nameGroups))
	for _, g := range nameGroups {
		c.ui.Printf("  - %q x%d providers=%v", g[0].Name, len(g), g.Providers())
		for _, e := range g {
			c.ui.Printf("      [%s/%s] %s", e.Provider, e.Scope, e.Path)
		}
	}

	c.ui.Print("")
	c.ui.Infof("Duplicate groups by name+command: %d", len(nameCmdGroups))
	for _, g := range nameCmdGroups {
		c.ui.Printf("  - %q via %q x%d", g[0].Name, g[0].FirstCommand, len(g))
		for _, e := range g {
			c.ui.Printf("      [%s/%s] %s", e.Provider, e.Scope, e.Path)
		}
	}
}

// hideEntry hides one entry appropriate to its scope and reports the
// action taken.
func (c *OpenWithCleanup) hideEntry(e *openwith.Entry, what string) error {
	if e.Scope == openwith.ScopeUser {
		newPath, err := c.fixer.DisableUserEntry(e.Path)
		if err != nil {
			return err
		}
		c.ui.Printf("  - disabled user %s: %s -> %s", what, e.Path, newPath)
		return nil
	}

	newPath, err := c.fixer.ShadowSystemEntry(e.Path)
	if err != nil {
		return err
	}
	c.ui.Printf("  - shadowed system %s with NoDisplay=true at: %s", what, newPath)
	return nil
}

func (c *OpenWithCleanup) hideBroken(broken []*openwith.Entry) error {
	for _, e := range broken {
		if err := c.hideEntry(e, "entry"); err != nil {
			return err
		}
	}
	return nil
}

func (c *OpenWithCleanup) hideDuplicates(opts OpenWithOptions, nameGroups, nameCmdGroups []openwith.Group) error {
	if opts.Strategy == openwith.StrategyName || opts.Strategy == openwith.StrategyAuto {
		for _, group := range nameGroups {
			keep := openwith.ChooseKeep(group, opts.Prefer)
			c.ui.Printf("  - keeping (by name): %s [%s/%s]", keep.Path, keep.Provider, keep.Scope)
			for _, e := range group {
				if e == keep {
					continue
				}
				if err := c.hideEntry(e, "duplicate"); err != nil {
					return err
				}
			}
		}
	}

	if opts.Strategy == openwith.StrategyNameCmd || opts.Strategy == openwith.StrategyAuto {
		for _, group := range nameCmdGroups {
			keep := openwith.ChooseKeepByCommand(group)
			c.ui.Printf("  - keeping (by name+cmd): %s", keep.Path)
			for _, e := range group {
				if e == keep {
					continue
				}
				if err := c.hideEntry(e, "duplicate"); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// refreshDesktopDatabase rebuilds the desktop MIME cache and restarts the
// desktop portals so menus pick the changes up. Both are opaque external
// collaborators; failures only warn.
func (c *OpenWithCleanup) refreshDesktopDatabase() {
	userAppsDir := filepath.Join(c.home, ".local", "share", "applications")
	if err := os.MkdirAll(userAppsDir, 0755); err == nil {
		if err := system.UpdateDesktopDatabase(c.runner, userAppsDir); err != nil {
			c.ui.Warningf("%v", err)
		}
	}

	err := system.RestartUserServices(c.runner, "xdg-desktop-portal", "xdg-desktop-portal-gtk")
	if err != nil {
		c.ui.Warning("Could not restart desktop portals; log out and in for menus to refresh")
	}
}
