package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/cobra"
)

var (
	listRemote bool
	listTag    []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods",
	Long: `List the mods installed under the OWML Mods folder with their validation status.

Mods that failed to load are listed last with the reason.

Examples:
  owmods list
  owmods list --remote
  owmods list --remote --tag gameplay`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listRemote, "remote", "r", false, "list the mods in the remote database instead")
	listCmd.Flags().StringSliceVarP(&listTag, "tag", "t", nil, "with --remote, only mods carrying one of these tags")

	rootCmd.AddCommand(listCmd)
}

// localModJSON is the JSON shape of an installed mod
type localModJSON struct {
	UniqueName string   `json:"uniqueName"`
	Name       string   `json:"name,omitempty"`
	Version    string   `json:"version,omitempty"`
	Enabled    bool     `json:"enabled"`
	Path       string   `json:"path"`
	Errors     []string `json:"errors,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	if listRemote {
		return runListRemote(cmd)
	}

	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	local, err := service.Validate(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mods := local.Valid()
	invalid := local.Invalid()

	if jsonOutput {
		entries := make([]localModJSON, 0, len(mods)+len(invalid))
		for _, m := range mods {
			entries = append(entries, localModJSON{
				UniqueName: m.UniqueName(),
				Name:       m.Manifest.Name,
				Version:    m.Manifest.Version,
				Enabled:    m.Enabled,
				Path:       m.ModPath,
				Errors:     errorStrings(m.Errors),
			})
		}
		for _, u := range invalid {
			if f, ok := u.(*domain.FailedMod); ok {
				entries = append(entries, localModJSON{
					UniqueName: f.DisplayPath,
					Path:       f.ModPath,
					Errors:     []string{f.Error.String()},
				})
			}
		}
		return writeJSON(out, entries)
	}

	if owml := local.Owml(); verbose && owml != nil {
		fmt.Fprintf(out, "OWML %s at %s\n\n", owml.Manifest.Version, owml.ModPath)
	}

	if len(mods) == 0 && len(invalid) == 0 {
		fmt.Fprintln(out, "No mods installed.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIQUE NAME\tNAME\tVERSION\tENABLED\tSTATUS")
	fmt.Fprintln(w, "-----------\t----\t-------\t-------\t------")
	for _, m := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.UniqueName(),
			truncate(m.Manifest.Name, 40),
			m.Manifest.Version,
			enabledLabel(m.Enabled),
			statusLabel(m),
		)
	}
	for _, u := range invalid {
		if f, ok := u.(*domain.FailedMod); ok {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.DisplayPath, "-", "-", "-", colorRed(f.Error.String()))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(out, "\nTotal: %d mod(s), %d enabled\n", len(mods), len(local.Active()))
	}

	return nil
}

func runListRemote(cmd *cobra.Command) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	remote, err := service.RemoteDB(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching remote database: %w", err)
	}

	mods := remote.Mods()
	if len(listTag) > 0 {
		mods = core.MatchesTags(mods, listTag)
	}
	return printRemoteMods(cmd, mods)
}

func errorStrings(errs []domain.ValidationError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.String()
	}
	return out
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags used in the remote database",
	Long: `List the tags used in the remote database, most common first.

Tags can be passed to 'owmods search --tag' and 'owmods list --remote --tag'.`,
	Args: cobra.NoArgs,
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	remote, err := service.RemoteDB(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching remote database: %w", err)
	}

	tags := remote.Tags()
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), tags)
	}
	for _, tag := range tags {
		fmt.Fprintln(cmd.OutOrStdout(), tag)
	}
	return nil
}
