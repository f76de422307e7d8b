package main

import (
	"fmt"
	"os"

	"github.com/mhalvorsen/fedora-setup/internal/cli"
	"github.com/spf13/cobra"
)

var (
	resetForce  bool
	resetConfig bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget which setup steps have run",
	Long: `Remove the completion markers so every step runs again on the next
invocation. Nothing the steps installed is touched: the sleep drop-in, the
vendor repository, and the client package all stay in place, and re-running
the steps simply reconverges on them.

The configuration file survives a reset unless --config is also given.`,
	RunE: resetSetup,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Reset without asking")
	resetCmd.Flags().BoolVarP(&resetConfig, "config", "c", false, "Delete the configuration file too")
	rootCmd.AddCommand(resetCmd)
}

func resetSetup(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewSetupContext()
	if err != nil {
		return fmt.Errorf("failed to initialize setup context: %w", err)
	}

	if !resetForce {
		ctx.UI.Header("Reset Setup State")
		ctx.UI.Warning("All completion markers will be removed")
		if resetConfig {
			ctx.UI.Warningf("The configuration file will be deleted: %s", ctx.Config.FilePath())
		} else {
			ctx.UI.Info("The configuration file is kept (pass --config to delete it)")
		}
		ctx.UI.Info("Files installed by the steps are not removed")
		ctx.UI.Print("")

		confirm, err := ctx.UI.PromptYesNo("Reset setup state?", false)
		if err != nil {
			return err
		}
		if !confirm {
			ctx.UI.Info("Nothing changed")
			return nil
		}
	}

	if err := ctx.Markers.RemoveAll(); err != nil {
		return fmt.Errorf("failed to remove markers: %w", err)
	}
	ctx.UI.Success("Completion markers removed")

	if resetConfig {
		configPath := ctx.Config.FilePath()
		switch err := os.Remove(configPath); {
		case err == nil:
			ctx.UI.Successf("Configuration deleted: %s", configPath)
		case os.IsNotExist(err):
			ctx.UI.Info("No configuration file to delete")
		default:
			return fmt.Errorf("failed to remove config file: %w", err)
		}
	}

	ctx.UI.Print("")
	ctx.UI.Info("Run the tool again to redo the setup steps")

	return nil
}
