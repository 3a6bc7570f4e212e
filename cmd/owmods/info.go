package main

import (
	"fmt"
	"strings"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <unique-name>",
	Short: "Show details about a mod",
	Long: `Show what is known about a mod locally and in the remote database.

For installed mods the dependency tree and the mods depending on it are listed.

Examples:
  owmods info xen.NewHorizons`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	name := args[0]

	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	local, err := service.LocalDB()
	if err != nil {
		return err
	}

	var remoteMod *domain.RemoteMod
	remote, err := service.RemoteDB(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote database unavailable: %v\n", err)
	} else if m, ok := remote.GetMod(name); ok {
		remoteMod = m
	} else if m, ok := remote.GetOwml(); ok && name == domain.OwmlUniqueName {
		remoteMod = m
	}

	localMod, installed := local.Get(name)
	if name == domain.OwmlUniqueName {
		localMod, installed = local.Owml(), true
	}
	if !installed && remoteMod == nil {
		return fmt.Errorf("%w: %s", domain.ErrModNotFound, name)
	}

	if installed {
		fmt.Fprintf(out, "%s %s\n", bold(localMod.Manifest.Name), localMod.Manifest.Version)
		fmt.Fprintf(out, "  Unique name: %s\n", localMod.UniqueName())
		fmt.Fprintf(out, "  Author:      %s\n", localMod.Manifest.Author)
		fmt.Fprintf(out, "  Path:        %s\n", localMod.ModPath)
		fmt.Fprintf(out, "  Enabled:     %s\n", enabledLabel(localMod.Enabled))
		fmt.Fprintf(out, "  Status:      %s\n", statusLabel(localMod))
		if len(localMod.Manifest.Conflicts) > 0 {
			fmt.Fprintf(out, "  Conflicts:   %s\n", strings.Join(localMod.Manifest.Conflicts, ", "))
		}
		if w := localMod.Manifest.Warning; w != nil {
			fmt.Fprintf(out, "  Warning:     %s\n", colorYellow(w.Title))
		}
	} else {
		fmt.Fprintf(out, "%s %s %s\n", bold(remoteMod.Name), remoteMod.Version, faint("(not installed)"))
		fmt.Fprintf(out, "  Unique name: %s\n", remoteMod.UniqueName)
		fmt.Fprintf(out, "  Author:      %s\n", remoteMod.DisplayAuthor())
	}

	if remoteMod != nil {
		fmt.Fprintf(out, "  Latest:      %s\n", remoteMod.Version)
		if remoteMod.Prerelease != nil {
			fmt.Fprintf(out, "  Prerelease:  %s\n", remoteMod.Prerelease.Version)
		}
		fmt.Fprintf(out, "  Downloads:   %d\n", remoteMod.DownloadCount)
		if len(remoteMod.Tags) > 0 {
			fmt.Fprintf(out, "  Tags:        %s\n", strings.Join(remoteMod.Tags, ", "))
		}
		if remoteMod.Repo != "" {
			fmt.Fprintf(out, "  Repository:  %s\n", remoteMod.Repo)
		}
		if remoteMod.Description != "" {
			fmt.Fprintf(out, "\n  %s\n", remoteMod.Description)
		}
	}

	if !installed {
		return nil
	}

	tree := core.ResolveDependencies(localMod, local)
	if len(tree.Installed) > 0 || len(tree.Missing) > 0 {
		fmt.Fprintln(out, "\nDependencies:")
		for _, dep := range tree.Installed {
			fmt.Fprintf(out, "  %s %s (%s)\n", dep.UniqueName(), dep.Manifest.Version, enabledState(dep.Enabled))
		}
		for _, name := range tree.Missing {
			fmt.Fprintf(out, "  %s %s\n", name, colorRed("(missing)"))
		}
	}

	if dependents := local.Dependent(localMod); len(dependents) > 0 {
		fmt.Fprintln(out, "\nRequired by:")
		for _, d := range dependents {
			fmt.Fprintf(out, "  %s\n", d.UniqueName())
		}
	}

	return nil
}

func enabledState(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
