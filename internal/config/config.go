// Package config loads audit runtime configuration from YAML files with CLI
// flag precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeoutConfig holds the per-call timeouts for external process probes.
// There is deliberately no global audit deadline; every external call is
// bounded individually.
type TimeoutConfig struct {
	// Install bounds the ecosystem install command.
	Install time.Duration `yaml:"install"`

	// Probe bounds each functionality and claim-verification command.
	Probe time.Duration `yaml:"probe"`

	// Adversarial bounds each hostile-input probe.
	Adversarial time.Duration `yaml:"adversarial"`
}

// HistoryConfig controls the local audit run history.
type HistoryConfig struct {
	// Enabled records completed runs in the history database.
	Enabled bool `yaml:"enabled"`

	// KeepDays is how long to retain run records. 0 keeps forever.
	KeepDays int `yaml:"keep_days"`
}

// Config represents firstrun configuration options.
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written.
	LogDir string `yaml:"log_dir"`

	// ClaudePath is the Claude CLI binary used by the validation pipeline.
	ClaudePath string `yaml:"claude_path"`

	// Timeouts holds the per-call process timeouts.
	Timeouts TimeoutConfig `yaml:"timeouts"`

	// History controls run-history recording.
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LogDir:     ".firstrun/logs",
		ClaudePath: "claude",
		Timeouts: TimeoutConfig{
			Install:     120 * time.Second,
			Probe:       30 * time.Second,
			Adversarial: 10 * time.Second,
		},
		History: HistoryConfig{
			Enabled:  true,
			KeepDays: 90,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file returns defaults without error; a malformed file is an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Durations arrive as strings ("90s") so parse via an intermediate.
	type yamlTimeouts struct {
		Install     string `yaml:"install"`
		Probe       string `yaml:"probe"`
		Adversarial string `yaml:"adversarial"`
	}
	type yamlConfig struct {
		LogLevel   string         `yaml:"log_level"`
		LogDir     string         `yaml:"log_dir"`
		ClaudePath string         `yaml:"claude_path"`
		Timeouts   yamlTimeouts   `yaml:"timeouts"`
		History    *HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.ClaudePath != "" {
		cfg.ClaudePath = yamlCfg.ClaudePath
	}

	parse := func(raw string, dst *time.Duration) error {
		if raw == "" {
			return nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", raw, err)
		}
		*dst = d
		return nil
	}
	if err := parse(yamlCfg.Timeouts.Install, &cfg.Timeouts.Install); err != nil {
		return nil, err
	}
	if err := parse(yamlCfg.Timeouts.Probe, &cfg.Timeouts.Probe); err != nil {
		return nil, err
	}
	if err := parse(yamlCfg.Timeouts.Adversarial, &cfg.Timeouts.Adversarial); err != nil {
		return nil, err
	}

	if yamlCfg.History != nil {
		cfg.History = *yamlCfg.History
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .firstrun/config.yaml in the
// specified directory. A missing directory or file returns defaults.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".firstrun", "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration. Non-nil flag
// values override configuration values.
func (c *Config) MergeWithFlags(logLevel, logDir, claudePath *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if claudePath != nil {
		c.ClaudePath = *claudePath
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Timeouts.Install < 0 || c.Timeouts.Probe < 0 || c.Timeouts.Adversarial < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	if c.History.KeepDays < 0 {
		return fmt.Errorf("history.keep_days must be >= 0, got %d", c.History.KeepDays)
	}
	return nil
}
