package main

import (
	"fmt"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"

	"github.com/spf13/cobra"
)

var (
	setupPrerelease bool
	setupPath       string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install OWML or point at an existing installation",
	Long: `Install the OWML mod loader from the remote database, or update it when already installed.

With --path, an existing OWML folder is used instead and nothing is downloaded. Without a
configured path, OWML is installed under the data directory.

Examples:
  owmods setup
  owmods setup --prerelease
  owmods setup --path ~/Games/OuterWilds/OWML`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupPrerelease, "prerelease", false, "install the OWML prerelease build")
	setupCmd.Flags().StringVar(&setupPath, "path", "", "use an existing OWML folder")

	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initDownloadService(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	if setupPath != "" {
		owml, err := core.LoadOwml(service.Fs(), setupPath)
		if err != nil {
			return fmt.Errorf("checking %s: %w", setupPath, err)
		}
		if err := service.SetOwmlPath(setupPath); err != nil {
			return fmt.Errorf("saving OWML path: %w", err)
		}
		fmt.Fprintf(out, "Using OWML %s at %s\n", owml.Manifest.Version, service.Config().OwmlPath)
		return nil
	}

	owml, err := service.InstallOwml(cmd.Context(), setupPrerelease)
	if err != nil {
		return fmt.Errorf("installing OWML: %w", err)
	}
	fmt.Fprintf(out, "%s OWML %s installed at %s\n", colorGreen("✓"), owml.Manifest.Version, owml.ModPath)
	return nil
}
