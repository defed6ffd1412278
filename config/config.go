package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/synth"
)

// Config represents the complete simulator configuration
type Config struct {
	Session SessionConfig `json:"session" yaml:"session"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SessionConfig contains session defaults used when no persisted state
// exists yet.
type SessionConfig struct {
	StartingCapital float64 `json:"starting_capital" yaml:"starting_capital"`
	Asset           string  `json:"asset" yaml:"asset"`
	SpeedMode       string  `json:"speed_mode" yaml:"speed_mode"`
}

// FeedConfig contains live price feed parameters
type FeedConfig struct {
	BaseURL           string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
}

// StoreConfig contains persistence parameters
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// JournalConfig contains trade archive parameters
type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig contains log output parameters
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content; YAML is tried first).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on
// extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Session.StartingCapital <= 0 {
		return fmt.Errorf("session.starting_capital must be positive")
	}
	if !market.Symbol(c.Session.Asset).Valid() {
		return fmt.Errorf("unknown asset: %s", c.Session.Asset)
	}
	if _, err := synth.ParseMode(c.Session.SpeedMode); err != nil {
		return fmt.Errorf("session.speed_mode: %w", err)
	}
	if c.Feed.RequestsPerMinute < 0 {
		return fmt.Errorf("feed.requests_per_minute must not be negative")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	switch c.Journal.Type {
	case "none":
	case "csv", "sqlite":
		if c.Journal.Path == "" {
			return fmt.Errorf("journal.path required for %s type", c.Journal.Type)
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			StartingCapital: 10000,
			Asset:           string(market.BTC),
			SpeedMode:       string(synth.Medium),
		},
		Feed: FeedConfig{
			RequestsPerMinute: 30,
		},
		Store: StoreConfig{
			Path: "./papertrade.db",
		},
		Journal: JournalConfig{
			Type: "sqlite",
			Path: "./papertrade.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotenv loads a .env file when present; a missing file is not an
// error.
func LoadDotenv() {
	_ = godotenv.Load()
}
