package main

import (
	"fmt"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/cobra"
)

var (
	installRecursive  bool
	installPrerelease bool
	installURL        string
	installZip        string
)

var installCmd = &cobra.Command{
	Use:   "install [unique-name]",
	Short: "Install a mod",
	Long: `Install a mod from the remote database, a download URL or a local zip archive.

Reinstalling a mod keeps its config.json, save.json and any paths its manifest asks to preserve.
With --recursive, missing dependencies are installed as well, several at a time.
With --verbose, download progress is printed to stderr.

Examples:
  owmods install xen.NewHorizons
  owmods install -r xen.NewHorizons
  owmods install --prerelease Raicuparta.NomaiVR
  owmods install --url https://example.com/MyMod.zip
  owmods install --zip ./MyMod.zip`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installRecursive, "recursive", "r", false, "also install missing dependencies")
	installCmd.Flags().BoolVar(&installPrerelease, "prerelease", false, "install the prerelease build")
	installCmd.Flags().StringVar(&installURL, "url", "", "install from a zip archive URL")
	installCmd.Flags().StringVar(&installZip, "zip", "", "install from a local zip archive")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	sources := 0
	if len(args) == 1 {
		sources++
	}
	if installURL != "" {
		sources++
	}
	if installZip != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("specify exactly one of a unique name, --url or --zip")
	}
	if installPrerelease && len(args) == 0 {
		return fmt.Errorf("--prerelease only applies to mods from the remote database")
	}

	service, cleanup, err := initDownloadService(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	opts := core.InstallOptions{
		Recursive:  installRecursive,
		Prerelease: installPrerelease,
	}

	var installed []*domain.LocalMod
	switch {
	case installURL != "":
		installed, err = service.InstallURL(cmd.Context(), installURL, opts)
	case installZip != "":
		installed, err = service.InstallZip(cmd.Context(), installZip, opts)
	default:
		installed, err = service.Install(cmd.Context(), args[0], opts)
	}

	out := cmd.OutOrStdout()
	for _, m := range installed {
		fmt.Fprintf(out, "%s %s %s\n", colorGreen("✓"), m.UniqueName(), m.Manifest.Version)
	}
	if err != nil {
		return fmt.Errorf("installing: %w", err)
	}

	if len(installed) > 1 {
		fmt.Fprintf(out, "\nInstalled %d mod(s).\n", len(installed))
	}

	if !installRecursive && len(installed) == 1 {
		if len(installed[0].Manifest.Dependencies) > 0 {
			fmt.Fprintf(out, "%s declares dependencies; run 'owmods validate --fix' or reinstall with -r to fetch missing ones.\n",
				installed[0].UniqueName())
		}
	}

	return nil
}
