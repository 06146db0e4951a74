// Package config loads server settings from an optional YAML file with
// environment variable overrides. Everything has a default; a missing
// config file is not an error.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSchemaURL is the published body schema the file-path checker
// learns its fields from.
const DefaultSchemaURL = "https://raw.githubusercontent.com/Outer-Wilds-New-Horizons/new-horizons/main/NewHorizons/Schemas/body_schema.json"

// Config holds the server settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// SchemaURL is where the body schema is fetched from. Empty disables
	// the file-path checker.
	SchemaURL string `yaml:"schemaUrl"`

	// Watch enables filesystem watching for changes made outside the
	// editor.
	Watch bool `yaml:"watch"`

	// DebounceMs is the watcher debounce window in milliseconds.
	DebounceMs int `yaml:"debounceMs"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:   "info",
		SchemaURL:  DefaultSchemaURL,
		Watch:      true,
		DebounceMs: 100,
	}
}

// Load reads settings from path, then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if _, err := cfg.Level(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides settings from HORIZON_LS_* variables.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("HORIZON_LS_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("HORIZON_LS_SCHEMA_URL"); ok {
		c.SchemaURL = v
	}
	if v, ok := os.LookupEnv("HORIZON_LS_WATCH"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Watch = b
		}
	}
	if v, ok := os.LookupEnv("HORIZON_LS_DEBOUNCE_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DebounceMs = n
		}
	}
}

// Level parses LogLevel into a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Debounce returns the watcher debounce window as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
