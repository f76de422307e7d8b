package main

import (
	"fmt"

	"github.com/mhalvorsen/fedora-setup/internal/cli"
	"github.com/mhalvorsen/fedora-setup/internal/openwith"
	"github.com/mhalvorsen/fedora-setup/internal/steps"
	"github.com/spf13/cobra"
)

var (
	owScan           bool
	owFixBroken      bool
	owHideDuplicates bool
	owFixMimeapps    bool
	owStrategy       string
	owPrefer         string
	owJSONPath       string
)

var openwithCmd = &cobra.Command{
	Use:   "openwith",
	Short: "Audit and clean Open With application entries",
	Long: `Scan .desktop application entries for broken and duplicate "Open With"
candidates, and optionally hide the redundant ones.

Without action flags the command only scans and reports. Pass --fix-broken,
--hide-duplicates, or --fix-mimeapps to apply changes. User-scope entries are
moved aside; system-scope entries are shadowed with a NoDisplay=true copy in
~/.local/share/applications (nothing outside the home directory is touched).`,
	RunE: runOpenWith,
}

func init() {
	openwithCmd.Flags().BoolVar(&owScan, "scan", false, "Scan and report only (default when no fix flags are set)")
	openwithCmd.Flags().BoolVar(&owFixBroken, "fix-broken", false, "Hide entries whose executables are missing")
	openwithCmd.Flags().BoolVar(&owHideDuplicates, "hide-duplicates", false, "Hide redundant duplicate entries")
	openwithCmd.Flags().BoolVar(&owFixMimeapps, "fix-mimeapps", false, "Clean duplicate and dangling references in mimeapps.list")
	openwithCmd.Flags().StringVar(&owStrategy, "strategy", "auto", "Duplicate grouping strategy: name, name+cmd, or auto")
	openwithCmd.Flags().StringVar(&owPrefer, "prefer", "native", "Install type to keep when deduplicating: native, flatpak, or snap")
	openwithCmd.Flags().StringVar(&owJSONPath, "json", "", "Write the scan report as JSON to the given path")

	rootCmd.AddCommand(openwithCmd)
}

// openwithOptions builds the step options from the command flags. --scan
// forces a report-only run and cannot be combined with fix flags.
func openwithOptions() (steps.OpenWithOptions, error) {
	var opts steps.OpenWithOptions

	if !openwith.ValidStrategy(owStrategy) {
		return opts, fmt.Errorf("invalid strategy %q (want name, name+cmd, or auto)", owStrategy)
	}
	if !openwith.ValidProvider(owPrefer) {
		return opts, fmt.Errorf("invalid provider %q (want native, flatpak, or snap)", owPrefer)
	}
	if owScan && (owFixBroken || owHideDuplicates || owFixMimeapps) {
		return opts, fmt.Errorf("--scan cannot be combined with fix flags")
	}

	return steps.OpenWithOptions{
		FixBroken:      owFixBroken,
		HideDuplicates: owHideDuplicates,
		FixMimeapps:    owFixMimeapps,
		Strategy:       openwith.Strategy(owStrategy),
		Prefer:         openwith.Provider(owPrefer),
		JSONPath:       owJSONPath,
	}, nil
}

func runOpenWith(cmd *cobra.Command, args []string) error {
	opts, err := openwithOptions()
	if err != nil {
		return err
	}

	// The flag-driven form never prompts.
	ctx, err := cli.NewSetupContextWithOptions(true)
	if err != nil {
		return fmt.Errorf("failed to initialize setup context: %w", err)
	}

	step, err := ctx.NewOpenWithStep()
	if err != nil {
		return err
	}

	return step.Run(opts)
}
