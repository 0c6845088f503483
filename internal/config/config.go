// Package config handles loading typerace's config.toml.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/strrl/typerace/internal/level"
	"github.com/strrl/typerace/internal/paths"
	"github.com/strrl/typerace/internal/text"
)

// Environment variables that override config file values.
const (
	EnvProvider    = "TYPERACE_PROVIDER"
	EnvLogLevel    = "TYPERACE_LOG_LEVEL"
	EnvHistoryPath = "TYPERACE_HISTORY_PATH"
)

// DefaultFetchTimeout bounds how long a round waits for its target line.
const DefaultFetchTimeout = 5 * time.Second

// Config represents the config.toml file.
type Config struct {
	// Provider selects where target lines come from: wikipedia, corpus or static.
	Provider string `toml:"provider"`
	// CorpusFile is used by the corpus provider; the embedded corpus when empty.
	CorpusFile   string        `toml:"corpus-file"`
	MaxLength    int           `toml:"max-length"`
	FetchTimeout time.Duration `toml:"fetch-timeout"`
	// Milestones are the cumulative score thresholds of each level.
	Milestones []uint64  `toml:"milestones"`
	History    History   `toml:"history"`
	Log        Log       `toml:"log"`
	Wikipedia  Wikipedia `toml:"wikipedia"`
}

// History contains race history configuration.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Log contains logging configuration.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Wikipedia contains Wikipedia provider configuration.
type Wikipedia struct {
	Endpoint string `toml:"endpoint"`
}

// Load reads the config file at path, or the global config file when path is
// empty, then applies environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		globalPath, err := paths.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = globalPath
	}

	cfg, meta, err := loadConfigFile(path, explicit)
	if err != nil {
		return nil, err
	}

	if err := applyDefaults(cfg, meta); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func loadConfigFile(path string, mustExist bool) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !mustExist {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}

	return &cfg, meta, nil
}

func applyDefaults(cfg *Config, meta toml.MetaData) error {
	if !meta.IsDefined("provider") {
		cfg.Provider = text.ProviderWikipedia
	}
	if !meta.IsDefined("max-length") {
		cfg.MaxLength = text.DefaultMaxLength
	}
	if !meta.IsDefined("fetch-timeout") {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if !meta.IsDefined("milestones") {
		cfg.Milestones = append([]uint64(nil), level.DefaultMilestones...)
	}
	if !meta.IsDefined("history", "enabled") {
		cfg.History.Enabled = true
	}
	if !meta.IsDefined("history", "path") {
		historyPath, err := paths.DefaultHistoryPath()
		if err != nil {
			return err
		}
		cfg.History.Path = historyPath
	}
	if !meta.IsDefined("log", "level") {
		cfg.Log.Level = "info"
	}
	if !meta.IsDefined("log", "file") {
		logPath, err := paths.DefaultLogPath()
		if err != nil {
			return err
		}
		cfg.Log.File = logPath
	}
	if !meta.IsDefined("wikipedia", "endpoint") {
		cfg.Wikipedia.Endpoint = text.DefaultWikipediaEndpoint
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		cfg.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryPath)); v != "" {
		cfg.History.Path = v
	}
}

// Validate checks values that would otherwise fail later, mid-game.
func (c *Config) Validate() error {
	if c.MaxLength <= 0 {
		return fmt.Errorf("max-length must be positive, got %d", c.MaxLength)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch-timeout must be positive, got %s", c.FetchTimeout)
	}
	if _, err := level.New(c.Milestones); err != nil {
		return fmt.Errorf("milestones: %w", err)
	}
	return nil
}

// TextOptions returns the provider options described by the config.
func (c *Config) TextOptions() text.Options {
	return text.Options{
		Name:      c.Provider,
		Endpoint:  c.Wikipedia.Endpoint,
		File:      c.CorpusFile,
		MaxLength: c.MaxLength,
	}
}
