package main

import (
	"fmt"
	"os"

	"github.com/mhalvorsen/fedora-setup/internal/cli"
	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which setup steps have run",
	Long: `Report each setup step's completion marker, the installed remote-desktop
client recorded in the configuration, and where the state files live.`,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewSetupContext()
	if err != nil {
		return fmt.Errorf("failed to initialize setup context: %w", err)
	}

	ctx.UI.Header("Setup Status")

	allSteps := cli.GetAllSteps()
	done := 0

	for i, step := range allSteps {
		if ctx.IsStepComplete(step.MarkerName) {
			ctx.UI.Successf("[%d] %s", i, step.Name)
			done++
		} else if step.Optional {
			ctx.UI.Infof("[%d] %s (optional, not run)", i, step.Name)
		} else {
			ctx.UI.Infof("[%d] %s (pending)", i, step.Name)
		}
	}

	ctx.UI.Print("")
	ctx.UI.Separator()
	ctx.UI.Infof("%d of %d steps completed", done, len(allSteps))
	ctx.UI.Separator()

	// What the remote-desktop step recorded, if it ran.
	if pkg, err := ctx.Config.Get(config.KeyRemoteDesktopPackage); err == nil {
		line := pkg
		if rel, err := ctx.Config.Get(config.KeyRemoteDesktopRelease); err == nil {
			line = fmt.Sprintf("%s (installed on Fedora %s)", pkg, rel)
		}
		ctx.UI.Infof("Remote-desktop client: %s", line)
	}

	if _, err := os.Stat(ctx.Config.FilePath()); err == nil {
		ctx.UI.Infof("Configuration: %s", ctx.Config.FilePath())
	}
	if _, err := os.Stat(ctx.Markers.Dir()); err == nil {
		ctx.UI.Infof("Markers: %s", ctx.Markers.Dir())
	}

	ctx.UI.Print("")

	return nil
}
