package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/cobra"
)

var (
	searchLocal bool
	searchTags  []string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the mod database",
	Long: `Search the remote mod database by name, unique name, author and description.

Results are ranked by relevance. With --local, installed mods are searched instead.

Examples:
  owmods search "new horizons"
  owmods search --tag story ship
  owmods search --local xen`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVarP(&searchLocal, "local", "l", false, "search installed mods")
	searchCmd.Flags().StringSliceVarP(&searchTags, "tag", "t", nil, "only mods carrying one of these tags")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results (0 for all)")

	rootCmd.AddCommand(searchCmd)
}

// remoteModJSON is the JSON shape of a catalog entry
type remoteModJSON struct {
	UniqueName    string   `json:"uniqueName"`
	Name          string   `json:"name"`
	Author        string   `json:"author"`
	Version       string   `json:"version"`
	DownloadCount int64    `json:"downloadCount"`
	Tags          []string `json:"tags,omitempty"`
	Description   string   `json:"description,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	if searchLocal {
		local, err := service.LocalDB()
		if err != nil {
			return err
		}
		results := limitResults(local.Search(query), searchLimit)
		if jsonOutput {
			entries := make([]localModJSON, len(results))
			for i, m := range results {
				entries[i] = localModJSON{
					UniqueName: m.UniqueName(),
					Name:       m.Manifest.Name,
					Version:    m.Manifest.Version,
					Enabled:    m.Enabled,
					Path:       m.ModPath,
				}
			}
			return writeJSON(out, entries)
		}
		if len(results) == 0 {
			fmt.Fprintf(out, "No installed mods match %q.\n", query)
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "UNIQUE NAME\tNAME\tAUTHOR\tVERSION\tENABLED")
		fmt.Fprintln(w, "-----------\t----\t------\t-------\t-------")
		for _, m := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				m.UniqueName(),
				truncate(m.Manifest.Name, 40),
				truncate(m.Manifest.Author, 20),
				m.Manifest.Version,
				enabledLabel(m.Enabled),
			)
		}
		return w.Flush()
	}

	remote, err := service.RemoteDB(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching remote database: %w", err)
	}

	results := remote.Search(query, searchTags...)
	if len(results) == 0 && !jsonOutput {
		fmt.Fprintf(out, "No mods found matching %q.\n", query)
		return nil
	}
	return printRemoteMods(cmd, limitResults(results, searchLimit))
}

// printRemoteMods renders catalog entries as a table or JSON
func printRemoteMods(cmd *cobra.Command, mods []*domain.RemoteMod) error {
	out := cmd.OutOrStdout()

	if jsonOutput {
		entries := make([]remoteModJSON, len(mods))
		for i, m := range mods {
			entries[i] = remoteModJSON{
				UniqueName:    m.UniqueName,
				Name:          m.Name,
				Author:        m.DisplayAuthor(),
				Version:       m.Version,
				DownloadCount: m.DownloadCount,
				Tags:          m.Tags,
				Description:   m.Description,
			}
		}
		return writeJSON(out, entries)
	}

	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIQUE NAME\tNAME\tAUTHOR\tVERSION\tDOWNLOADS")
	fmt.Fprintln(w, "-----------\t----\t------\t-------\t---------")
	for _, m := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			m.UniqueName,
			truncate(m.Name, 40),
			truncate(m.DisplayAuthor(), 20),
			m.Version,
			m.DownloadCount,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(out, "\n%d mod(s)\n", len(mods))
	}
	return nil
}

func limitResults[T any](results []T, limit int) []T {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
