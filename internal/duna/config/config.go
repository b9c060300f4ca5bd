// Package config loads the CLI configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI harness settings. All fields are optional; the
// engine itself needs no configuration.
type Config struct {
	// SteamPath overrides installation detection with an explicit root or
	// userdata path. The DUNASWAP_STEAM_PATH environment variable takes
	// precedence over this field.
	SteamPath string `yaml:"steam_path"`
	// PollInterval is the process-guard poll cadence used by interactive
	// flows, e.g. "5s".
	PollInterval string `yaml:"poll_interval"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// GetPollInterval parses PollInterval, defaulting to 5 seconds.
func (c *Config) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Load reads the config file at path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			setDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	setDefaults(cfg)
	return cfg, nil
}

// DefaultPath returns the conventional config location under the user's
// config directory.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "dunaswap", "config.yaml")
}

func setDefaults(cfg *Config) {
	if cfg.PollInterval == "" {
		cfg.PollInterval = "5s"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
}
