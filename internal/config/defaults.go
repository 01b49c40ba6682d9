package config

import (
	"runtime"
	"time"

	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

const defaultDebounce = 500 * time.Millisecond

// applyDefaults fills every unset field. It runs after normalization so
// canonical values drive defaults.
func applyDefaults(cfg *Config) {
	// Distinguish between nil slice and explicitly empty slice
	if cfg.DocumentExtensions == nil {
		cfg.DocumentExtensions = append([]string(nil), linkcheck.DefaultDocumentExtensions...)
	}
	if cfg.ImageExtensions == nil {
		cfg.ImageExtensions = append([]string(nil), linkcheck.DefaultImageExtensions...)
	}
	if cfg.Exclude == nil {
		cfg.Exclude = []string{"node_modules", "vendor"}
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = OutputFormatText
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = LogLevelInfo
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = LogFormatText
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce.String()
	}
}
