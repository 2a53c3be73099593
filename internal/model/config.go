package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the marketplace HTTP API.
type APIConfig struct {
	// BaseURL is the root URL of the marketplace API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request HTTP timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PollingConfig holds settings for the notification synchronizer.
type PollingConfig struct {
	// IntervalSec is how often (in seconds) to fetch notifications.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`

	// RetryDelaySec is how long to wait before retrying a failed fetch.
	RetryDelaySec int `mapstructure:"retry_delay_sec" yaml:"retry_delay_sec"`

	// MaxFailures is the number of consecutive fetch failures after
	// which polling stops until explicitly restarted.
	MaxFailures int `mapstructure:"max_failures" yaml:"max_failures"`
}

// MutationConfig holds settings for optimistic mutations.
type MutationConfig struct {
	// DebounceMs is the minimum interval between accepted retriggerable
	// mutations (like toggles) for the same target.
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// ArchiveConfig holds settings for the local notification archive.
type ArchiveConfig struct {
	// Path is the SQLite database file location.
	// Empty selects the default under the config directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Polling  PollingConfig  `mapstructure:"polling" yaml:"polling"`
	Mutation MutationConfig `mapstructure:"mutation" yaml:"mutation"`
	Archive  ArchiveConfig  `mapstructure:"archive" yaml:"archive"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/engage/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "engage", "config.yaml")
}

// DefaultArchivePath returns the default location of the notification
// archive database, next to the configuration file.
func DefaultArchivePath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "archive.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			TimeoutSec: 30,
		},
		Polling: PollingConfig{
			IntervalSec:   30,
			RetryDelaySec: 5,
			MaxFailures:   3,
		},
		Mutation: MutationConfig{
			DebounceMs: 500,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("polling.interval_sec", 30)
	v.SetDefault("polling.retry_delay_sec", 5)
	v.SetDefault("polling.max_failures", 3)
	v.SetDefault("mutation.debounce_ms", 500)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("polling", cfg.Polling)
	v.Set("mutation", cfg.Mutation)
	v.Set("archive", cfg.Archive)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
