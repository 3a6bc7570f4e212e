package main

import (
	"fmt"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/cobra"
)

var validateFix bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check installed mods for problems",
	Long: `Check enabled mods for missing DLLs, missing or disabled dependencies, conflicts,
duplicates and outdated versions.

With --fix, missing dependencies are installed and disabled ones enabled.

Examples:
  owmods validate
  owmods validate --fix`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFix, "fix", false, "install missing dependencies and enable disabled ones")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	if validateFix {
		result, err := service.FixDeps(cmd.Context())
		if result != nil {
			for _, m := range result.Installed {
				fmt.Fprintf(out, "Installed %s %s\n", m.UniqueName(), m.Manifest.Version)
			}
			for _, name := range result.Enabled {
				fmt.Fprintf(out, "Enabled %s\n", name)
			}
		}
		if err != nil {
			return fmt.Errorf("fixing dependencies: %w", err)
		}
	}

	local, err := service.Validate(cmd.Context())
	if err != nil {
		return err
	}

	problems := 0
	if owml := local.Owml(); owml != nil && owml.HasErrors() {
		problems++
		fmt.Fprintf(out, "%s: %s\n", owml.UniqueName(), statusLabel(owml))
	}
	for _, m := range local.Active() {
		if !m.HasErrors() {
			continue
		}
		problems++
		fmt.Fprintf(out, "%s:\n", m.UniqueName())
		for _, e := range m.Errors {
			fmt.Fprintf(out, "  %s\n", describeError(e))
		}
	}
	for _, u := range local.Invalid() {
		f, ok := u.(*domain.FailedMod)
		if !ok {
			continue
		}
		problems++
		fmt.Fprintf(out, "%s:\n  %s\n", f.DisplayPath, describeError(f.Error))
	}

	if problems == 0 {
		fmt.Fprintf(out, "%s No problems found.\n", colorGreen("✓"))
		return nil
	}
	fmt.Fprintf(out, "\n%d mod(s) with problems.\n", problems)
	return nil
}

func describeError(e domain.ValidationError) string {
	if e.Kind == domain.Outdated {
		return colorYellow(e.String())
	}
	return colorRed(e.String())
}
