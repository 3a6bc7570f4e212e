package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage staged downloads",
	Long: `Inspect or clear the folder where archives are staged while installing.

Archives are removed once their install finishes; leftovers only remain after an interrupted run.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all staged downloads",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the staging folder and its size",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInfoCmd)

	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	if err := service.Cache().Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	service, cleanup, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer cleanup()

	size, err := service.Cache().Size()
	if err != nil {
		return fmt.Errorf("measuring cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Path: %s\nSize: %s\n", service.Cache().BasePath(), formatBytes(size))
	return nil
}

// formatBytes renders a byte count with a binary unit
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
