package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallRecursive bool

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <unique-name>",
	Aliases: []string{"remove", "rm"},
	Short:   "Uninstall a mod",
	Long: `Remove a mod folder from the Mods directory.

With --recursive, dependencies that no other installed mod needs are removed too.

Examples:
  owmods uninstall xen.NewHorizons
  owmods uninstall -r xen.NewHorizons`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallRecursive, "recursive", "r", false, "also remove dependencies no other mod needs")

	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	removed, err := service.Uninstall(args[0], uninstallRecursive)
	out := cmd.OutOrStdout()
	for _, name := range removed {
		fmt.Fprintf(out, "Removed %s\n", name)
	}
	if err != nil {
		return fmt.Errorf("uninstalling: %w", err)
	}
	return nil
}
