package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds runtime settings for the notekeeper CLI.
type Config struct {
	ServerURL             string
	RequestTimeout        time.Duration
	DetailRefreshInterval time.Duration
	ListRefreshInterval   time.Duration
	AutosaveDelay         time.Duration
	LogLevel              string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.DetailRefreshInterval = 5 * time.Second
	c.ListRefreshInterval = 30 * time.Second
	c.AutosaveDelay = 2 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, the environment, the JSON file at
// configPath (if not empty) and finally the flags of fs that were set
// explicitly. fs may be nil.
func LoadConfig(configPath string, fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, configPath); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url must not be empty")
	}
	for name, d := range map[string]time.Duration{
		"request timeout":         c.RequestTimeout,
		"detail refresh interval": c.DetailRefreshInterval,
		"list refresh interval":   c.ListRefreshInterval,
		"autosave delay":          c.AutosaveDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}
