package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"killpath/internal/source"
	"killpath/internal/terminate"
)

const (
	defaultListingTimeout = 30 * time.Second
	defaultKillTimeout    = 10 * time.Second
	defaultParallelism    = 4
	defaultLogLevel       = "warn"
	defaultLogFormat      = "console"

	envSource         = "KILLPATH_SOURCE"
	envTerminator     = "KILLPATH_TERMINATOR"
	envListingTimeout = "KILLPATH_LISTING_TIMEOUT"
	envKillTimeout    = "KILLPATH_KILL_TIMEOUT"
	envLogLevel       = "KILLPATH_LOG_LEVEL"
)

// Config aggregates the tunables of a kill run.
type Config struct {
	Source         string
	ListingFile    string
	Terminator     string
	ListingTimeout time.Duration
	KillTimeout    time.Duration
	Parallelism    int
	LogLevel       string
	LogFormat      string

	// Warnings collects ignored environment overrides so they can be logged
	// once the logger exists.
	Warnings []string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source:         source.KindWMIC,
		Terminator:     terminate.DefaultKind(),
		ListingTimeout: defaultListingTimeout,
		KillTimeout:    defaultKillTimeout,
		Parallelism:    defaultParallelism,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
	}
}

// Load builds a Config from an optional YAML file path plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envSource)); v != "" {
		cfg.Source = v
	}
	if v := strings.TrimSpace(os.Getenv(envTerminator)); v != "" {
		cfg.Terminator = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	envDuration(cfg, envListingTimeout, &cfg.ListingTimeout)
	envDuration(cfg, envKillTimeout, &cfg.KillTimeout)
}

func envDuration(cfg *Config, key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	dur, err := time.ParseDuration(v)
	switch {
	case err != nil:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid %s value %q: %v", key, v, err))
	case dur <= 0:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid %s value %q: must be > 0", key, v))
	default:
		*dst = dur
	}
}

type fileConfig struct {
	Source         string `yaml:"source"`
	ListingFile    string `yaml:"listing_file"`
	Terminator     string `yaml:"terminator"`
	ListingTimeout string `yaml:"listing_timeout"`
	KillTimeout    string `yaml:"kill_timeout"`
	Parallelism    int    `yaml:"parallelism"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Source != "" {
		cfg.Source = raw.Source
	}
	if raw.ListingFile != "" {
		cfg.ListingFile = raw.ListingFile
	}
	if raw.Terminator != "" {
		cfg.Terminator = raw.Terminator
	}
	if raw.ListingTimeout != "" {
		dur, err := parsePositive("listing_timeout", raw.ListingTimeout)
		if err != nil {
			return err
		}
		cfg.ListingTimeout = dur
	}
	if raw.KillTimeout != "" {
		dur, err := parsePositive("kill_timeout", raw.KillTimeout)
		if err != nil {
			return err
		}
		cfg.KillTimeout = dur
	}
	if raw.Parallelism < 0 {
		return errors.New("parallelism must be >= 0")
	}
	if raw.Parallelism > 0 {
		cfg.Parallelism = raw.Parallelism
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.LogFormat != "" {
		cfg.LogFormat = raw.LogFormat
	}
	return nil
}

func parsePositive(key, value string) (time.Duration, error) {
	dur, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return dur, nil
}
