package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the CLI flags on fs. Defaults shown in help are the
// built-in ones; only flags set explicitly override other sources.
//
//	-a, --server          server base URL
//	    --timeout         request timeout
//	    --detail-refresh  note view refresh interval
//	    --list-refresh    note list refresh interval
//	    --autosave        editor auto-save delay
//	    --log-level       debug, info, warn or error
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP("server", "a", d.ServerURL, "notekeeper server base URL")
	fs.Duration("timeout", d.RequestTimeout, "request timeout")
	fs.Duration("detail-refresh", d.DetailRefreshInterval, "note view refresh interval")
	fs.Duration("list-refresh", d.ListRefreshInterval, "note list refresh interval")
	fs.Duration("autosave", d.AutosaveDelay, "editor auto-save delay")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "server":
			cfg.ServerURL, err = fs.GetString(f.Name)
		case "log-level":
			cfg.LogLevel, err = fs.GetString(f.Name)
		case "timeout":
			cfg.RequestTimeout, err = fs.GetDuration(f.Name)
		case "detail-refresh":
			cfg.DetailRefreshInterval, err = fs.GetDuration(f.Name)
		case "list-refresh":
			cfg.ListRefreshInterval, err = fs.GetDuration(f.Name)
		case "autosave":
			cfg.AutosaveDelay, err = fs.GetDuration(f.Name)
		}
	})
	return err
}
