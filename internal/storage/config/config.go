package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file inside the config directory
	FileName = "config.yaml"

	DefaultDatabaseURL = "https://ow-mods.github.io/ow-mod-db/database.json"
	DefaultConcurrency = 4

	envPrefix = "OWMODS"
)

// Config holds global application settings
type Config struct {
	OwmlPath      string   `yaml:"owml_path" mapstructure:"owml_path"`
	DatabaseURL   string   `yaml:"database_url" mapstructure:"database_url"`
	WarningsShown []string `yaml:"warnings_shown,omitempty" mapstructure:"warnings_shown"`
	Concurrency   int      `yaml:"concurrency" mapstructure:"concurrency"`
	LogFile       string   `yaml:"log_file,omitempty" mapstructure:"log_file"`
}

// Default returns the settings used when no file exists
func Default() *Config {
	return &Config{
		DatabaseURL: DefaultDatabaseURL,
		Concurrency: DefaultConcurrency,
	}
}

// Load reads configuration from the given directory.
// OWMODS_* environment variables override file values.
func Load(configDir string) (*Config, error) {
	return LoadFile(filepath.Join(configDir, FileName))
}

// LoadFile reads configuration from an explicit file path. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	defaults := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("owml_path", defaults.OwmlPath)
	v.SetDefault("database_url", defaults.DatabaseURL)
	v.SetDefault("warnings_shown", []string{})
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("log_file", "")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: database_url is empty", domain.ErrInvalidConfig)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	cfg.OwmlPath = ExpandPath(cfg.OwmlPath)

	return &cfg, nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	return c.SaveFile(filepath.Join(configDir, FileName))
}

// SaveFile writes configuration to an explicit file path
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ModsDir returns the folder regular mods are installed into
func (c *Config) ModsDir() string {
	return filepath.Join(c.OwmlPath, domain.ModsDirName)
}

// WarningShown reports whether a mod's one-time warning was already displayed
func (c *Config) WarningShown(uniqueName string) bool {
	return slices.Contains(c.WarningsShown, uniqueName)
}

// MarkWarningShown records that a mod's warning was displayed. Returns false if already recorded.
func (c *Config) MarkWarningShown(uniqueName string) bool {
	if c.WarningShown(uniqueName) {
		return false
	}
	c.WarningsShown = append(c.WarningsShown, uniqueName)
	return true
}
