package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

var extensionPattern = regexp.MustCompile(`^\.[a-z0-9][a-z0-9_+\-]*$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DocumentExtensions, validation.Required, validation.Each(validation.Match(extensionPattern))),
		validation.Field(&c.ImageExtensions, validation.Each(validation.Match(extensionPattern))),
		validation.Field(&c.Exclude, validation.Each(validation.By(validGlob))),
		validation.Field(&c.IgnoreTargets, validation.Each(validation.By(validRegexp))),
		validation.Field(&c.IgnoreReasons, validation.Each(validation.By(validReason))),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(1024)),
	); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required, validation.In(OutputFormatText, OutputFormatJSON)),
	)
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
		validation.Field(&c.Format, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.By(validDuration)),
	)
}

func validGlob(value any) error {
	s, _ := value.(string)
	if _, err := filepath.Match(s, ""); err != nil {
		return fmt.Errorf("invalid glob %q", s)
	}
	return nil
}

func validRegexp(value any) error {
	s, _ := value.(string)
	if _, err := regexp.Compile(s); err != nil {
		return fmt.Errorf("invalid regular expression %q", s)
	}
	return nil
}

func validReason(value any) error {
	s, _ := value.(string)
	_, err := linkcheck.ParseReason(s)
	return err
}

func validDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
