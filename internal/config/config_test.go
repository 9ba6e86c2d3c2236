package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.MaxRevisits != DefaultMaxRevisits {
		t.Errorf("MaxRevisits = %d, want %d", cfg.Engine.MaxRevisits, DefaultMaxRevisits)
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q", cfg.Inspector.Addr)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
engine:
  maxRevisits: 5
inspector:
  enabled: true
  addr: ":9000"
demo:
  tickInterval: 50ms
log:
  level: debug
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.MaxRevisits != 5 {
		t.Errorf("MaxRevisits = %d, want 5", cfg.Engine.MaxRevisits)
	}
	if !cfg.Inspector.Enabled || cfg.Inspector.Addr != ":9000" {
		t.Errorf("Inspector = %+v", cfg.Inspector)
	}
	if cfg.Demo.TickInterval.Std() != 50*time.Millisecond {
		t.Errorf("TickInterval = %v", cfg.Demo.TickInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Redis.Channel != "weft:sources" {
		t.Errorf("Redis.Channel = %q", cfg.Redis.Channel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"negative revisits", "engine:\n  maxRevisits: -1\n"},
		{"not yaml", "{{{\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Error("want error")
			}
		})
	}
}
