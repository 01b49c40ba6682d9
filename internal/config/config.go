package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

// DefaultFilename is the configuration file looked up in the working
// directory when no path is given.
const DefaultFilename = ".mdlinkcheck.yaml"

// Config represents the link checker configuration.
type Config struct {
	DocumentExtensions []string      `yaml:"document_extensions"`
	ImageExtensions    []string      `yaml:"image_extensions"`
	Exclude            []string      `yaml:"exclude"`        // glob patterns skipped during the walk
	IgnoreTargets      []string      `yaml:"ignore_targets"` // regexes matched against raw link targets
	IgnoreReasons      []string      `yaml:"ignore_reasons"`
	Concurrency        int           `yaml:"concurrency"`
	SortReasons        bool          `yaml:"sort_reasons"`
	Output             OutputConfig  `yaml:"output"`
	Log                LogConfig     `yaml:"log"`
	Watch              WatchConfig   `yaml:"watch"`
	Metrics            MetricsConfig `yaml:"metrics"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format OutputFormat `yaml:"format"`
	Color  *bool        `yaml:"color,omitempty"` // nil means detect from the terminal
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Load reads the configuration file at path. An empty path looks for
// DefaultFilename in the working directory and falls back to defaults when it
// does not exist. Environment files next to the configuration are loaded
// first, then MDLINKCHECK_* variables override file values.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFilename
	}
	if err := loadEnvFiles(filepath.Dir(path)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
				WithContext("path", path).
				Build()
		}
	case os.IsNotExist(err) && !explicit:
		slog.Debug("No configuration file, using defaults", "path", path)
	case os.IsNotExist(err):
		return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
			WithContext("path", path).
			Build()
	default:
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read configuration").
			WithContext("path", path).
			Build()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	for _, w := range normalize(cfg) {
		slog.Warn("Configuration normalized", "detail", w)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "configuration validation failed").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// IgnoreTargetPatterns compiles IgnoreTargets.
func (c *Config) IgnoreTargetPatterns() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.IgnoreTargets))
	for _, p := range c.IgnoreTargets {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("ignore_targets: %w", err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// IgnoredReasons parses IgnoreReasons.
func (c *Config) IgnoredReasons() ([]linkcheck.Reason, error) {
	reasons := make([]linkcheck.Reason, 0, len(c.IgnoreReasons))
	for _, raw := range c.IgnoreReasons {
		r, err := linkcheck.ParseReason(raw)
		if err != nil {
			return nil, fmt.Errorf("ignore_reasons: %w", err)
		}
		reasons = append(reasons, r)
	}
	return reasons, nil
}

// DebounceDuration returns the parsed watch debounce interval.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}
