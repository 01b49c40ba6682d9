package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MDLINKCHECK_"

// loadEnvFiles loads .env and .env.local from dir. Existing process
// environment variables are not overwritten.
func loadEnvFiles(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load environment file").
				WithContext("path", path).
				Build()
		}
	}
	return nil
}

// applyEnvOverrides replaces file values with MDLINKCHECK_* variables.
func applyEnvOverrides(cfg *Config) error {
	if v, ok := lookupEnv("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("CONCURRENCY", v, err)
		}
		cfg.Concurrency = n
	}
	if v, ok := lookupEnv("SORT_REASONS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("SORT_REASONS", v, err)
		}
		cfg.SortReasons = b
	}
	if v, ok := lookupEnv("FORMAT"); ok {
		cfg.Output.Format = OutputFormat(v)
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = LogLevel(v)
	}
	if v, ok := lookupEnv("LOG_FORMAT"); ok {
		cfg.Log.Format = LogFormat(v)
	}
	if v, ok := lookupEnv("EXCLUDE"); ok {
		cfg.Exclude = splitList(v)
	}
	if v, ok := lookupEnv("IGNORE_REASONS"); ok {
		cfg.IgnoreReasons = splitList(v)
	}
	if v, ok := lookupEnv("METRICS_TEXTFILE"); ok {
		cfg.Metrics.Textfile = v
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envError(name, value string, err error) error {
	return errors.WrapError(err, errors.CategoryConfig, "invalid environment override").
		WithContext("variable", EnvPrefix+name).
		WithContext("value", value).
		Build()
}
