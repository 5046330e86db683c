// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Player  PlayerConfig           `yaml:"player"`
	Library LibraryConfig          `yaml:"library"`
	State   StateConfig            `yaml:"state"`
	Guards  map[string]GuardConfig `yaml:"guards"`
	Log     LogConfig              `yaml:"log"`
}

// PlayerConfig represents playback behavior configuration.
type PlayerConfig struct {
	RepeatMode          string `yaml:"repeat_mode" default:"none" validate:"oneof=none one all"`
	AutoAdvance         bool   `yaml:"auto_advance"`
	AutoAdvanceDelaySec int    `yaml:"auto_advance_delay_sec" default:"5" validate:"gte=1,lte=3600"`
	ShuffleOnStart      bool   `yaml:"shuffle_on_start"`
}

// LibraryConfig represents the media library configuration.
type LibraryConfig struct {
	ManifestPath string `yaml:"manifest_path"`
}

// StateConfig represents queue persistence configuration.
type StateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty: default location in the XDG data dir
}

// GuardConfig represents an admission guard's configuration.
type GuardConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Output string `yaml:"output" default:"stdout"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("UPNEXT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("UPNEXT_STATE_PATH"); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv("UPNEXT_MANIFEST_PATH"); v != "" {
		c.Library.ManifestPath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateStatePath(); err != nil {
		return err
	}

	return nil
}

// validateStatePath checks that the configured state path can hold a
// database file.
func (c *Config) validateStatePath() error {
	if !c.State.Enabled || c.State.Path == "" {
		return nil
	}

	info, err := os.Stat(c.State.Path)
	if err != nil {
		// The file not existing yet is fine, it is created on first save.
		return nil
	}
	if info.IsDir() {
		return errors.Newf("state path (%s) must be a file, not a directory", c.State.Path)
	}

	return nil
}

// AutoAdvanceDelay returns the still image dwell time as a duration.
func (c *Config) AutoAdvanceDelay() time.Duration {
	return time.Duration(c.Player.AutoAdvanceDelaySec) * time.Second
}

// IsGuardEnabled checks if a guard is enabled.
func (c *Config) IsGuardEnabled(guardName string) bool {
	if g, ok := c.Guards[guardName]; ok {
		return g.Enabled
	}
	return false
}

// GuardSettings returns the settings for a guard.
func (c *Config) GuardSettings(guardName string) map[string]any {
	if g, ok := c.Guards[guardName]; ok {
		return g.Settings
	}
	return nil
}
