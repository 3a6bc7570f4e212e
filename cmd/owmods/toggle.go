package main

import (
	"fmt"
	"strings"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"

	"github.com/spf13/cobra"
)

var (
	enableRecursive  bool
	disableRecursive bool
)

var enableCmd = &cobra.Command{
	Use:   "enable <unique-name>",
	Short: "Enable a mod",
	Long: `Enable an installed mod by updating its config.json.

With --recursive, the mod's dependencies are enabled as well. Mods carrying a
pre-launch warning that have just been enabled are reported.

Examples:
  owmods enable xen.NewHorizons
  owmods enable -r xen.NewHorizons`,
	Args: cobra.ExactArgs(1),
	RunE: runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable <unique-name>",
	Short: "Disable a mod",
	Long: `Disable an installed mod by updating its config.json. Its files stay in place.

With --recursive, the mod's dependencies are disabled as well.

Examples:
  owmods disable xen.NewHorizons`,
	Args: cobra.ExactArgs(1),
	RunE: runDisable,
}

func init() {
	enableCmd.Flags().BoolVarP(&enableRecursive, "recursive", "r", false, "also enable dependencies")
	disableCmd.Flags().BoolVarP(&disableRecursive, "recursive", "r", false, "also disable dependencies")

	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	return runToggle(cmd, args[0], true, enableRecursive)
}

func runDisable(cmd *cobra.Command, args []string) error {
	return runToggle(cmd, args[0], false, disableRecursive)
}

func runToggle(cmd *cobra.Command, name string, enabled, recursive bool) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	warnings, err := service.Toggle(name, enabled, recursive)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", capitalize(enabledState(enabled)), name)

	if len(warnings) == 0 {
		return nil
	}
	local, err := service.LocalDB()
	if err != nil {
		return err
	}
	printWarnings(cmd, service, local, warnings)
	return nil
}

// printWarnings shows the pre-launch warning of each named mod once and records it as shown
func printWarnings(cmd *cobra.Command, service *core.Service, local *core.LocalDatabase, names []string) {
	out := cmd.OutOrStdout()
	for _, name := range names {
		mod, ok := local.Get(name)
		if !ok || mod.Manifest.Warning == nil || service.Config().WarningShown(name) {
			continue
		}
		fmt.Fprintf(out, "\n%s %s\n", colorYellow("Warning from "+name+":"), bold(mod.Manifest.Warning.Title))
		fmt.Fprintln(out, mod.Manifest.Warning.Body)
		if err := service.MarkWarningShown(name); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: saving shown warnings: %v\n", err)
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
