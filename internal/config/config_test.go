package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Timeouts.Install != 120*time.Second {
		t.Errorf("Timeouts.Install = %v, want 2m", cfg.Timeouts.Install)
	}
	if cfg.Timeouts.Probe != 30*time.Second {
		t.Errorf("Timeouts.Probe = %v, want 30s", cfg.Timeouts.Probe)
	}
	if cfg.Timeouts.Adversarial != 10*time.Second {
		t.Errorf("Timeouts.Adversarial = %v, want 10s", cfg.Timeouts.Adversarial)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default", cfg.LogLevel)
	}
}

func TestLoadConfigMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `log_level: debug
timeouts:
  probe: 45s
history:
  enabled: false
  keep_days: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Timeouts.Probe != 45*time.Second {
		t.Errorf("Timeouts.Probe = %v, want 45s", cfg.Timeouts.Probe)
	}
	// Unset fields keep their defaults.
	if cfg.Timeouts.Install != 120*time.Second {
		t.Errorf("Timeouts.Install = %v, want default 2m", cfg.Timeouts.Install)
	}
	if cfg.ClaudePath != "claude" {
		t.Errorf("ClaudePath = %q, want default", cfg.ClaudePath)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false from file")
	}
	if cfg.History.KeepDays != 7 {
		t.Errorf("History.KeepDays = %d, want 7", cfg.History.KeepDays)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [not a scalar\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() accepted malformed YAML")
	}
}

func TestLoadConfigBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeouts:\n  probe: soon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() accepted invalid duration")
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "trace"
	dir := "/var/log/firstrun"

	cfg.MergeWithFlags(&level, &dir, nil)

	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want trace", cfg.LogLevel)
	}
	if cfg.LogDir != "/var/log/firstrun" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.ClaudePath != "claude" {
		t.Errorf("ClaudePath = %q, nil flag must not override", cfg.ClaudePath)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted bad log level")
	}

	cfg = DefaultConfig()
	cfg.History.KeepDays = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted negative keep_days")
	}
}

func TestGetFirstrunHomeEnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom-home")
	t.Setenv("FIRSTRUN_HOME", dir)

	home, err := GetFirstrunHome()
	if err != nil {
		t.Fatalf("GetFirstrunHome() error = %v", err)
	}
	if home != dir {
		t.Errorf("home = %q, want %q", home, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("home directory not created: %v", err)
	}
}

func TestGetHistoryDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FIRSTRUN_HOME", dir)

	path, err := GetHistoryDBPath()
	if err != nil {
		t.Fatalf("GetHistoryDBPath() error = %v", err)
	}
	if path != filepath.Join(dir, "history", "runs.db") {
		t.Errorf("path = %q", path)
	}
}
