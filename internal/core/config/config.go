package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Poll     PollConfig     `koanf:"poll"`
	Provider ProviderConfig `koanf:"provider"`
	History  HistoryConfig  `koanf:"history"`
	Accounts AccountsConfig `koanf:"accounts"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// PollConfig controls the status poll loop.
type PollConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Interval      string `koanf:"interval"` // parsed and validated on startup
	MaxConcurrent int    `koanf:"max_concurrent"`
}

// ProviderConfig points at the external swap status provider.
type ProviderConfig struct {
	Addr    string `koanf:"addr"`
	Timeout string `koanf:"timeout"`
}

// HistoryConfig fixes aggregation policy.
type HistoryConfig struct {
	// Timezone selects the day-bucketing boundary: "utc" or "local".
	Timezone string `koanf:"timezone"`
}

// AccountsConfig points at the account provider's seed file.
type AccountsConfig struct {
	Path string `koanf:"path"`
}

// PollInterval returns the parsed poll interval. Only valid after Validate.
func (c PollConfig) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// ProviderTimeout returns the parsed provider request timeout. Only valid
// after Validate.
func (c ProviderConfig) ProviderTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Location resolves the configured day-bucketing timezone.
func (c HistoryConfig) Location() (*time.Location, error) {
	switch c.Timezone {
	case "utc", "":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	default:
		return nil, fmt.Errorf("invalid history.timezone %q (must be utc or local)", c.Timezone)
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	interval, err := time.ParseDuration(c.Poll.Interval)
	if err != nil {
		return fmt.Errorf("invalid poll.interval %q: %w", c.Poll.Interval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("poll.interval must be > 0")
	}
	if c.Poll.MaxConcurrent <= 0 {
		return fmt.Errorf("poll.max_concurrent must be > 0")
	}

	if c.Poll.Enabled && strings.TrimSpace(c.Provider.Addr) == "" {
		return fmt.Errorf("provider.addr is required when polling is enabled")
	}
	timeout, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return fmt.Errorf("invalid provider.timeout %q: %w", c.Provider.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("provider.timeout must be > 0")
	}

	if _, err := c.History.Location(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Accounts.Path) == "" {
		return fmt.Errorf("accounts.path is required")
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":         8080,
		"server.host":         "0.0.0.0",
		"server.mode":         "release",
		"poll.enabled":        true,
		"poll.interval":       "10s",
		"poll.max_concurrent": 8,
		"provider.addr":       "http://localhost:9090",
		"provider.timeout":    "5s",
		"history.timezone":    "utc",
		"accounts.path":       "./accounts.yaml",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("SWAPHIST_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SWAPHIST_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
