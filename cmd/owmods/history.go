package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/db"

	"github.com/spf13/cobra"
)

var (
	historyLimit     int
	historyOperation string
)

var historyCmd = &cobra.Command{
	Use:   "history [unique-name]",
	Short: "Show install history",
	Long: `Show the installs, updates and imports recorded in the history database.

With a unique name, every recorded install of that mod is shown.

Examples:
  owmods history
  owmods history --limit 50
  owmods history xen.NewHorizons
  owmods history --operation 6f1c2a9e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of recent records to show")
	historyCmd.Flags().StringVar(&historyOperation, "operation", "", "show the records of one operation")

	rootCmd.AddCommand(historyCmd)
}

// historyJSON is the JSON shape of an install record
type historyJSON struct {
	OperationID     string `json:"operationId"`
	UniqueName      string `json:"uniqueName"`
	Version         string `json:"version"`
	PreviousVersion string `json:"previousVersion,omitempty"`
	Source          string `json:"source,omitempty"`
	Checksum        string `json:"checksum,omitempty"`
	InstalledAt     string `json:"installedAt"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	var records []db.InstallRecord
	if historyOperation != "" {
		records, err = service.OperationHistory(historyOperation)
	} else {
		records, err = service.History(name, historyLimit)
	}
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		entries := make([]historyJSON, len(records))
		for i, r := range records {
			entries[i] = historyJSON{
				OperationID:     r.OperationID,
				UniqueName:      r.UniqueName,
				Version:         r.Version,
				PreviousVersion: r.PreviousVersion,
				Source:          r.SourceURL,
				Checksum:        r.Checksum,
				InstalledAt:     r.InstalledAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		}
		return writeJSON(out, entries)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No history recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tUNIQUE NAME\tVERSION\tPREVIOUS\tOPERATION")
	fmt.Fprintln(w, "----\t-----------\t-------\t--------\t---------")
	for _, r := range records {
		previous := r.PreviousVersion
		if previous == "" {
			previous = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.InstalledAt.Local().Format("2006-01-02 15:04"),
			r.UniqueName,
			r.Version,
			previous,
			truncate(r.OperationID, 8),
		)
	}
	return w.Flush()
}
