package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/strrl/typerace/internal/level"
	"github.com/strrl/typerace/internal/text"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHistoryPath, "")
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingGlobalConfigUsesDefaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != text.ProviderWikipedia {
		t.Errorf("Provider = %q, want %q", cfg.Provider, text.ProviderWikipedia)
	}
	if cfg.MaxLength != text.DefaultMaxLength {
		t.Errorf("MaxLength = %d, want %d", cfg.MaxLength, text.DefaultMaxLength)
	}
	if cfg.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %s, want %s", cfg.FetchTimeout, DefaultFetchTimeout)
	}
	if len(cfg.Milestones) != len(level.DefaultMilestones) {
		t.Errorf("Milestones = %v, want %v", cfg.Milestones, level.DefaultMilestones)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
	wantHistory := filepath.Join(home, ".local", "state", "typerace", "history.duckdb")
	if cfg.History.Path != wantHistory {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, wantHistory)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Wikipedia.Endpoint != text.DefaultWikipediaEndpoint {
		t.Errorf("Wikipedia.Endpoint = %q", cfg.Wikipedia.Endpoint)
	}
}

func TestLoadReadsGlobalConfig(t *testing.T) {
	home := setupHome(t)
	dir := filepath.Join(home, ".config", "typerace")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("provider = \"static\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != text.ProviderStatic {
		t.Errorf("Provider = %q, want static", cfg.Provider)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	setupHome(t)
	path := writeConfig(t, `
provider = "corpus"
corpus-file = "/tmp/lines.txt"
max-length = 40
fetch-timeout = "2s"
milestones = [10, 20, 30]

[history]
enabled = false
path = "/tmp/races.duckdb"

[log]
level = "debug"
file = "/tmp/typerace.log"

[wikipedia]
endpoint = "http://localhost:9999"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "corpus" || cfg.CorpusFile != "/tmp/lines.txt" {
		t.Errorf("provider = %q, corpus = %q", cfg.Provider, cfg.CorpusFile)
	}
	if cfg.MaxLength != 40 {
		t.Errorf("MaxLength = %d, want 40", cfg.MaxLength)
	}
	if cfg.FetchTimeout != 2*time.Second {
		t.Errorf("FetchTimeout = %s, want 2s", cfg.FetchTimeout)
	}
	if len(cfg.Milestones) != 3 || cfg.Milestones[2] != 30 {
		t.Errorf("Milestones = %v", cfg.Milestones)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled should be false when set in file")
	}
	if cfg.History.Path != "/tmp/races.duckdb" {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/typerace.log" {
		t.Errorf("Log = %+v", cfg.Log)
	}

	opts := cfg.TextOptions()
	if opts.Name != "corpus" || opts.Endpoint != "http://localhost:9999" || opts.MaxLength != 40 {
		t.Errorf("TextOptions() = %+v", opts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setupHome(t)
	path := writeConfig(t, "provider = \"corpus\"\n")
	t.Setenv(EnvProvider, "static")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvHistoryPath, "/tmp/env.duckdb")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "static" {
		t.Errorf("Provider = %q, want static", cfg.Provider)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.History.Path != "/tmp/env.duckdb" {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	setupHome(t)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax", content: "provider = ", want: "parse config file"},
		{name: "unknown key", content: "colour = \"red\"\n", want: "unknown key"},
		{name: "bad length", content: "max-length = 0\n", want: "max-length"},
		{name: "bad timeout", content: "fetch-timeout = \"-1s\"\n", want: "fetch-timeout"},
		{name: "bad milestones", content: "milestones = [5, 1]\n", want: "milestones"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	setupHome(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
