package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/config"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	// Global flags
	configDir  string
	configFile string
	dataDir    string
	verbose    bool
	jsonOutput bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "owmods",
	Short: "Outer Wilds mod manager",
	Long: `owmods installs, updates and toggles Outer Wilds mods managed by OWML.

It reads the mods installed under the configured OWML folder, compares them against the
published mod database and resolves dependencies when installing.

Use subcommands for operations. Run 'owmods --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/owmods)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "settings file to use instead of <config>/config.yaml")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/owmods)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (list, search, update, history)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, domain.ErrOwmlNotInstalled) {
				fmt.Fprintln(os.Stderr, "Run 'owmods setup' to install OWML, or 'owmods setup --path <dir>' to use an existing one.")
			}
		}
		os.Exit(1)
	}
}

// initService creates the core service and its logger. The returned func releases both.
func initService() (*core.Service, func(), error) {
	return newService(nil)
}

// initDownloadService is initService for commands that fetch archives. With --verbose,
// download progress is written to w.
func initDownloadService(w io.Writer) (*core.Service, func(), error) {
	var progress core.ProgressFunc
	if verbose && !jsonOutput {
		progress = newProgressPrinter(w)
	}
	return newService(progress)
}

func newService(progress core.ProgressFunc) (*core.Service, func(), error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data dir: %w", err)
	}

	configPath := cfg.ConfigFile
	if configPath == "" {
		configPath = filepath.Join(cfg.ConfigDir, config.FileName)
	}
	appConfig, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, flush, err := logger.New(logger.Options{Verbose: verbose, File: appConfig.LogFile})
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	cfg.Logger = log.Sugar()
	cfg.Config = appConfig
	cfg.Progress = progress

	svc, err := core.NewService(cfg)
	if err != nil {
		flush()
		return nil, nil, err
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", err)
		}
		flush()
	}
	return svc, cleanup, nil
}

// getServiceConfig returns the service configuration with defaults
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
	}
	if configFile != "" {
		path, err := config.ParseConfigPath(configFile)
		if err != nil {
			return core.ServiceConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		cfg.ConfigFile = path
	}
	if cfg.ConfigDir != "" && cfg.DataDir != "" {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "owmods")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "owmods")
	}

	return cfg, nil
}
