package main

import (
	"fmt"
	"os"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the enabled mod list",
	Long: `Write the unique names of all enabled mods as a JSON array.

Without a file argument the list is printed to stdout. The output can be passed to 'owmods import'.

Examples:
  owmods export
  owmods export mods.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importDisableMissing bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a mod list",
	Long: `Apply a mod list written by 'owmods export'.

Listed mods that are installed get enabled; the others are installed from the remote
database along with their dependencies. With --disable-missing, installed mods that are
not in the list are disabled.

Examples:
  owmods import mods.json
  owmods import --disable-missing mods.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDisableMissing, "disable-missing", false, "disable installed mods that are not in the list")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	data, err := service.Export()
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if len(args) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported mod list to %s\n", args[0])
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	names, err := core.ParseModList(data)
	if err != nil {
		return err
	}

	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	result, err := service.Import(cmd.Context(), names, importDisableMissing)
	if result == nil {
		return fmt.Errorf("importing: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, name := range result.Enabled {
		fmt.Fprintf(out, "Enabled %s\n", name)
	}
	for _, m := range result.Installed {
		fmt.Fprintf(out, "Installed %s %s\n", m.UniqueName(), m.Manifest.Version)
	}
	for _, name := range result.Disabled {
		fmt.Fprintf(out, "Disabled %s\n", name)
	}

	if len(result.Warnings) > 0 {
		local, lerr := service.LocalDB()
		if lerr == nil {
			printWarnings(cmd, service, local, result.Warnings)
		}
	}

	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}
	return nil
}
