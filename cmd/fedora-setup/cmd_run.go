package main

import (
	"fmt"

	"github.com/mhalvorsen/fedora-setup/internal/cli"
	"github.com/mhalvorsen/fedora-setup/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Flags for non-interactive mode
	nonInteractive bool
	sleepConfDir   string
	sleepConfFile  string
)

var runCmd = &cobra.Command{
	Use:   "run [step|all]",
	Short: "Run setup steps",
	Long: `Run one or more setup steps.

Steps:
  all            - Run all setup steps
  preflight      - Pre-flight system checks
  sleep          - Install the sleep-disable drop-in
  remotedesktop  - Install the remote-desktop client
  openwith       - Clean up Open With application entries`,
	Args: cobra.ExactArgs(1),
	RunE: runSetup,
}

func init() {
	runCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Run in non-interactive mode")
	runCmd.Flags().StringVar(&sleepConfDir, "sleep-conf-dir", "", "Directory for the sleep drop-in")
	runCmd.Flags().StringVar(&sleepConfFile, "sleep-conf-file", "", "File name for the sleep drop-in")

	rootCmd.AddCommand(runCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Create setup context with non-interactive mode if requested
	ctx, err := cli.NewSetupContextWithOptions(nonInteractive)
	if err != nil {
		return fmt.Errorf("failed to initialize setup context: %w", err)
	}

	if err := applyFlagConfig(ctx); err != nil {
		return err
	}
	if nonInteractive {
		ctx.UI.Info("Running in non-interactive mode")
	}

	step := args[0]

	switch step {
	case "all":
		return ctx.RunAll()
	case "preflight", "sleep", "remotedesktop", "openwith":
		return ctx.RunStep(step)
	default:
		return fmt.Errorf("unknown step: %s", step)
	}
}

func applyFlagConfig(ctx *cli.SetupContext) error {
	if sleepConfDir != "" {
		if err := ctx.Config.Set(config.KeySleepConfDir, sleepConfDir); err != nil {
			return fmt.Errorf("failed to set %s: %w", config.KeySleepConfDir, err)
		}
	}

	if sleepConfFile != "" {
		if err := ctx.Config.Set(config.KeySleepConfFile, sleepConfFile); err != nil {
			return fmt.Errorf("failed to set %s: %w", config.KeySleepConfFile, err)
		}
	}

	return nil
}
