package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// JsonConfig is the DTO read from the JSON config file. Durations use
// timex.Duration, so both "15m" and integer nanoseconds are accepted.
// Missing fields leave the corresponding Config value unchanged.
type JsonConfig struct {
	HTTPAddr                     string          `json:"http_addr"`
	GRPCAddr                     string          `json:"grpc_addr"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	LogLevel                     string          `json:"log_level"`
	OpenAIAPIKey                 string          `json:"openai_api_key"`
	OpenAIModel                  string          `json:"openai_model"`
	OpenAIBaseURL                string          `json:"openai_base_url"`
	AITimeout                    *timex.Duration `json:"ai_timeout"`
	AIRateLimit                  *float64        `json:"ai_rate_limit"`
	AIBurst                      *int            `json:"ai_burst"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3Bucket                     string          `json:"s3_bucket"`
	S3Region                     string          `json:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
	ExportLinkExpiry             *timex.Duration `json:"export_link_expiry"`
}

// parseJson loads the JSON file at path into cfg. An empty path loads
// nothing.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.GRPCAddr, c.GRPCAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.LogLevel, c.LogLevel)
	setString(&cfg.OpenAIAPIKey, c.OpenAIAPIKey)
	setString(&cfg.OpenAIModel, c.OpenAIModel)
	setString(&cfg.OpenAIBaseURL, c.OpenAIBaseURL)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.AITimeout != nil {
		cfg.AITimeout = c.AITimeout.Duration
	}
	if c.ExportLinkExpiry != nil {
		cfg.ExportLinkExpiry = c.ExportLinkExpiry.Duration
	}
	if c.AIRateLimit != nil {
		cfg.AIRateLimit = *c.AIRateLimit
	}
	if c.AIBurst != nil {
		cfg.AIBurst = *c.AIBurst
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
