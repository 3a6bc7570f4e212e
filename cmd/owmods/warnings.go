package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var warningsCmd = &cobra.Command{
	Use:   "warnings",
	Short: "Show pre-launch warnings of enabled mods",
	Long: `Show the warnings that enabled mods ask to display before the game starts.

Each warning is shown once; shown warnings are remembered in the config file.`,
	Args: cobra.NoArgs,
	RunE: runWarnings,
}

func init() {
	rootCmd.AddCommand(warningsCmd)
}

func runWarnings(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	local, err := service.LocalDB()
	if err != nil {
		return err
	}

	pending := service.PendingWarnings(local)
	if len(pending) == 0 {
		if verbose {
			fmt.Fprintln(cmd.OutOrStdout(), "No pending warnings.")
		}
		return nil
	}

	names := make([]string, len(pending))
	for i, m := range pending {
		names[i] = m.UniqueName()
	}
	printWarnings(cmd, service, local, names)
	return nil
}
