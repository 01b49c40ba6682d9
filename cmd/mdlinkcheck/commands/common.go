package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdlinkcheck/internal/config"
)

// ErrFindings is returned by commands that completed but found broken links.
var ErrFindings = errors.New("broken links found")

// Global carries process wide state into commands.
type Global struct {
	Context context.Context
	Stdout  io.Writer
}

func (g *Global) context() context.Context {
	if g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (defaults to .mdlinkcheck.yaml when present)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `help:"Log output format (text or json)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check      CheckCmd   `cmd:"" default:"withargs" help:"Check links in a file or directory"`
	Watch      WatchCmd   `cmd:"" help:"Re-check links whenever documents change"`
	Init       InitCmd    `cmd:"" help:"Write a default configuration file"`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once. The level and
// format are refined by configureLogging once the configuration is loaded.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, level, config.NormalizeLogFormat(c.LogFormat)))
	return nil
}

// loadConfig loads the configuration and applies its logging settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	c.configureLogging(cfg)
	return cfg, nil
}

func (c *CLI) configureLogging(cfg *config.Config) {
	level := cfg.Log.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Log.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	slog.SetDefault(newLogger(os.Stderr, level, format))
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// isColorSupported checks if w is a terminal that accepts color output.
func isColorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	// Check if stdout is a terminal
	if fileInfo, err := f.Stat(); err != nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		return false
	}

	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check TERM environment variable
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
