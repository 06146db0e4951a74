package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.SchemaURL != DefaultSchemaURL {
		t.Errorf("SchemaURL = %q, want default", cfg.SchemaURL)
	}
	if !cfg.Watch {
		t.Error("Watch should default to true")
	}
	if cfg.DebounceMs != 100 {
		t.Errorf("DebounceMs = %d, want 100", cfg.DebounceMs)
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing file should yield defaults, got %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horizon-ls.yaml")
	content := "logLevel: debug\nwatch: false\ndebounceMs: 250\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Watch {
		t.Error("Watch should be false")
	}
	if cfg.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want 250", cfg.DebounceMs)
	}
	// Unset fields keep their defaults.
	if cfg.SchemaURL != DefaultSchemaURL {
		t.Errorf("SchemaURL = %q, want default", cfg.SchemaURL)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logLevel: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("malformed YAML should be an error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HORIZON_LS_LOG_LEVEL", "warn")
	t.Setenv("HORIZON_LS_SCHEMA_URL", "http://localhost:9999/schema.json")
	t.Setenv("HORIZON_LS_WATCH", "false")
	t.Setenv("HORIZON_LS_DEBOUNCE_MS", "42")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.SchemaURL != "http://localhost:9999/schema.json" {
		t.Errorf("SchemaURL = %q", cfg.SchemaURL)
	}
	if cfg.Watch {
		t.Error("Watch should be overridden to false")
	}
	if cfg.DebounceMs != 42 {
		t.Errorf("DebounceMs = %d, want 42", cfg.DebounceMs)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("HORIZON_LS_LOG_LEVEL", "loud")

	if _, err := Load(""); err == nil {
		t.Error("invalid log level should be an error")
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"

	level, err := cfg.Level()
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level)
	}
}
