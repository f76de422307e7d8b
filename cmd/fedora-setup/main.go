package main

import (
	"fmt"
	"os"

	"github.com/mhalvorsen/fedora-setup/internal/cli"
	"github.com/mhalvorsen/fedora-setup/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fedora-setup",
	Short: "Fedora Workstation Setup Tool",
	Long: `A post-install setup tool for Fedora workstations.

This tool provides an interactive menu and command-line interface for:
- System validation and pre-flight checks
- Disabling suspend and hibernation via a systemd drop-in
- Installing the proprietary remote-desktop client per release
- Auditing and cleaning "Open With" application entries

Run without arguments to launch the interactive menu.`,
	SilenceUsage:  true, // We handle errors manually, but silence usage on error
	SilenceErrors: true, // We format errors ourselves for consistent output
	RunE:          runInteractiveMenu,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Launch interactive menu",
	Long:  `Launch the interactive menu interface for setup.`,
	RunE:  runInteractiveMenu,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(menuCmd)
}

func runInteractiveMenu(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewSetupContext()
	if err != nil {
		return fmt.Errorf("failed to initialize setup context: %w", err)
	}

	menu := cli.NewMenu(ctx)
	return menu.Show()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
