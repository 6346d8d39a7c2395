package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "NOTEKEEPER_"

// parseEnv overlays cfg with NOTEKEEPER_* variables and OPENAI_API_KEY.
// Empty values are ignored.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		return v, ok && v != ""
	}

	strs := map[string]*string{
		envPrefix + "HTTP_ADDR":        &cfg.HTTPAddr,
		envPrefix + "GRPC_ADDR":        &cfg.GRPCAddr,
		envPrefix + "DATABASE_DSN":     &cfg.DatabaseDSN,
		envPrefix + "SECRET_KEY":       &cfg.SecretKey,
		envPrefix + "LOG_LEVEL":        &cfg.LogLevel,
		"OPENAI_API_KEY":               &cfg.OpenAIAPIKey,
		envPrefix + "OPENAI_MODEL":     &cfg.OpenAIModel,
		envPrefix + "OPENAI_BASE_URL":  &cfg.OpenAIBaseURL,
		envPrefix + "S3_ROOT_USER":     &cfg.S3RootUser,
		envPrefix + "S3_ROOT_PASSWORD": &cfg.S3RootPassword,
		envPrefix + "S3_BUCKET":        &cfg.S3Bucket,
		envPrefix + "S3_REGION":        &cfg.S3Region,
		envPrefix + "S3_BASE_ENDPOINT": &cfg.S3BaseEndpoint,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		envPrefix + "ACCESS_TOKEN_VALIDITY":  &cfg.AccessTokenValidityDuration,
		envPrefix + "REFRESH_TOKEN_VALIDITY": &cfg.RefreshTokenValidityDuration,
		envPrefix + "AI_TIMEOUT":             &cfg.AITimeout,
		envPrefix + "EXPORT_LINK_EXPIRY":     &cfg.ExportLinkExpiry,
	}
	for name, dst := range durations {
		v, ok := get(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v, ok := get(envPrefix + "AI_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sAI_RATE_LIMIT: %w", envPrefix, err)
		}
		cfg.AIRateLimit = f
	}
	if v, ok := get(envPrefix + "AI_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sAI_BURST: %w", envPrefix, err)
		}
		cfg.AIBurst = n
	}
	return nil
}
