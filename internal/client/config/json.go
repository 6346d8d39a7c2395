package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerURL             string         `json:"server_url"`
	RequestTimeout        timex.Duration `json:"request_timeout"`
	DetailRefreshInterval timex.Duration `json:"detail_refresh_interval"`
	ListRefreshInterval   timex.Duration `json:"list_refresh_interval"`
	AutosaveDelay         timex.Duration `json:"autosave_delay"`
	LogLevel              string         `json:"log_level"`
}

func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.DetailRefreshInterval, jc.DetailRefreshInterval)
	setDuration(&cfg.ListRefreshInterval, jc.ListRefreshInterval)
	setDuration(&cfg.AutosaveDelay, jc.AutosaveDelay)
	return nil
}

func setDuration(dst *time.Duration, d timex.Duration) {
	if d.Duration != 0 {
		*dst = d.Duration
	}
}
