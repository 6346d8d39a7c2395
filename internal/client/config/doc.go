// Package config loads runtime configuration for the notekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional .env file in the working directory, then NOTEKEEPER_*
//     environment variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags bound with BindFlags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "5s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "10s",
//	  "detail_refresh_interval": "5s",
//	  "list_refresh_interval": "30s",
//	  "autosave_delay": "2s",
//	  "log_level": "warn"
//	}
package config
