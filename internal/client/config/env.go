package config

import (
	"fmt"
	"time"
)

const envPrefix = "NOTEKEEPER_"

// parseEnv overlays cfg with NOTEKEEPER_* variables found by lookup.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "SERVER_URL"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"DETAIL_REFRESH_INTERVAL", &cfg.DetailRefreshInterval},
		{"LIST_REFRESH_INTERVAL", &cfg.ListRefreshInterval},
		{"AUTOSAVE_DELAY", &cfg.AutosaveDelay},
	}
	for _, d := range durations {
		v, ok := lookup(envPrefix + d.name)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}
