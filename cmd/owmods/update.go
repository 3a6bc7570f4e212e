package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"

	"github.com/spf13/cobra"
)

var updateDryRun bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update outdated mods",
	Long: `Compare installed mods and OWML against the remote database and install newer versions.

Only mods whose remote version is strictly newer are updated. Settings and paths the
manifest asks to preserve are kept.

Examples:
  owmods update
  owmods update --dry-run`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVarP(&updateDryRun, "dry-run", "n", false, "only list available updates")

	rootCmd.AddCommand(updateCmd)
}

// updateJSON is the JSON shape of an available update
type updateJSON struct {
	UniqueName     string `json:"uniqueName"`
	Name           string `json:"name"`
	CurrentVersion string `json:"currentVersion"`
	LatestVersion  string `json:"latestVersion"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initDownloadService(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	result, err := service.Update(cmd.Context(), core.UpdateOptions{DryRun: updateDryRun})
	if result == nil {
		return fmt.Errorf("updating: %w", err)
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		entries := make([]updateJSON, len(result.Candidates))
		for i, c := range result.Candidates {
			entries[i] = updateJSON{
				UniqueName:     c.UniqueName,
				Name:           c.Name,
				CurrentVersion: c.CurrentVersion,
				LatestVersion:  c.LatestVersion,
			}
		}
		if jerr := writeJSON(out, entries); jerr != nil {
			return jerr
		}
		if err != nil {
			return fmt.Errorf("updating: %w", err)
		}
		return nil
	}

	if len(result.Candidates) == 0 {
		fmt.Fprintln(out, "All mods are up to date.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIQUE NAME\tNAME\tCURRENT\tLATEST")
	fmt.Fprintln(w, "-----------\t----\t-------\t------")
	for _, c := range result.Candidates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.UniqueName, truncate(c.Name, 40), c.CurrentVersion, colorGreen(c.LatestVersion))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	if updateDryRun {
		fmt.Fprintf(out, "\n%d update(s) available. Run 'owmods update' to install.\n", len(result.Candidates))
		return nil
	}

	if result.Any() {
		fmt.Fprintf(out, "\nUpdated %d mod(s).\n", len(result.Updated))
	}
	if err != nil {
		return fmt.Errorf("updating: %w", err)
	}
	return nil
}
