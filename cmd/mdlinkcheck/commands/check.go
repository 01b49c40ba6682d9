package commands

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdlinkcheck/internal/config"
	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/git"
	"git.home.luguber.info/inful/mdlinkcheck/internal/lint"
	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
	"git.home.luguber.info/inful/mdlinkcheck/internal/logfields"
	"git.home.luguber.info/inful/mdlinkcheck/internal/metrics"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Path        string `arg:"" name:"path" optional:"" default:"." help:"File or directory to check"`
	Format      string `short:"f" help:"Output format (text or json)"`
	ChangedOnly bool   `name:"changed-only" help:"Only check documents changed in the git working tree"`
	SortReasons bool   `name:"sort-reasons" help:"Sort reasons alphabetically instead of discovery order"`
	Concurrency int    `help:"Number of documents checked in parallel (default from config)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run"`
	NoColor     bool   `name:"no-color" help:"Disable colored output"`
}

// checkOptions are the command line overrides shared by check and watch.
type checkOptions struct {
	path        string
	format      string
	changedOnly bool
	sortReasons bool
	concurrency int
	metricsFile string
	noColor     bool
}

func (c *CheckCmd) options() checkOptions {
	return checkOptions{
		path:        c.Path,
		format:      c.Format,
		changedOnly: c.ChangedOnly,
		sortReasons: c.SortReasons,
		concurrency: c.Concurrency,
		metricsFile: c.MetricsFile,
		noColor:     c.NoColor,
	}
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	opts := c.options()
	if err := opts.apply(cfg); err != nil {
		return err
	}
	result, err := runCheck(g.context(), cfg, opts)
	if err != nil {
		return err
	}
	if err := printResult(g, cfg, result); err != nil {
		return err
	}
	if result.HasFindings() {
		return ErrFindings
	}
	return nil
}

// apply merges command line overrides into cfg.
func (o checkOptions) apply(cfg *config.Config) error {
	if o.format != "" {
		format, err := config.ParseOutputFormat(o.format)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid output format").
				WithContext("format", o.format).
				Build()
		}
		cfg.Output.Format = format
	}
	if o.sortReasons {
		cfg.SortReasons = true
	}
	if o.concurrency < 0 {
		return errors.ValidationError("concurrency must not be negative").
			WithContext("concurrency", o.concurrency).
			Build()
	}
	if o.concurrency > 0 {
		cfg.Concurrency = o.concurrency
	}
	if o.metricsFile != "" {
		cfg.Metrics.Textfile = o.metricsFile
	}
	if o.noColor {
		noColor := false
		cfg.Output.Color = &noColor
	}
	return nil
}

// scanRoot returns the absolute root links are resolved against: path itself
// when it is a directory, its parent otherwise.
func scanRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve path").
			WithContext("path", path).
			Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewError(errors.CategoryNotFound, "scan root does not exist").
				WithContext("path", abs).
				Build()
		}
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to stat path").
			WithContext("path", abs).
			Build()
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// runCheck builds the checking pipeline from cfg and runs it over opts.path.
func runCheck(ctx context.Context, cfg *config.Config, opts checkOptions) (*lint.Result, error) {
	logger := slog.Default()
	root, err := scanRoot(opts.path)
	if err != nil {
		return nil, err
	}

	patterns, err := cfg.IgnoreTargetPatterns()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid ignore_targets").Build()
	}
	ignored, err := cfg.IgnoredReasons()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid ignore_reasons").Build()
	}

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		registry *prom.Registry
	)
	if cfg.Metrics.Textfile != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	fs := linkcheck.OSFileSystem{}
	cache := linkcheck.NewSlugCache(fs, recorder)
	resolver := linkcheck.NewResolver(fs, cache, linkcheck.Options{
		Root:               root,
		DocumentExtensions: cfg.DocumentExtensions,
		ImageExtensions:    cfg.ImageExtensions,
	})
	checker := linkcheck.NewChecker(resolver,
		linkcheck.WithIgnoreTargets(patterns...),
		linkcheck.WithIgnoreReasons(ignored...),
		linkcheck.WithSortedReasons(cfg.SortReasons),
		linkcheck.WithRecorder(recorder),
		linkcheck.WithLogger(logger),
	)

	lintCfg := &lint.Config{
		DocumentExtensions: cfg.DocumentExtensions,
		Exclude:            cfg.Exclude,
		Concurrency:        cfg.Concurrency,
	}
	revision := ""
	if opts.changedOnly {
		changed, head, err := changedDocuments(root)
		if err != nil {
			return nil, err
		}
		lintCfg.Only = changed
		revision = head
	}

	linter := lint.NewLinter(checker, cache, lintCfg, lint.WithRecorder(recorder), lint.WithLogger(logger))
	result, err := linter.LintPath(ctx, opts.path)
	if err != nil {
		return nil, err
	}
	result.Revision = revision

	if registry != nil {
		if err := metrics.WriteTextfile(registry, cfg.Metrics.Textfile); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics textfile").
				WithContext("path", cfg.Metrics.Textfile).
				Build()
		}
		logger.Debug("Metrics written", logfields.Path(cfg.Metrics.Textfile))
	}
	return result, nil
}

// changedDocuments returns the files changed in the git working tree that
// contains root, together with the HEAD commit.
func changedDocuments(root string) ([]string, string, error) {
	wt, err := git.OpenWorktree(root)
	if err != nil {
		category := errors.CategoryGit
		if stdErrors.Is(err, git.ErrNotRepository) {
			category = errors.CategoryValidation
		}
		return nil, "", errors.WrapError(err, category, "--changed-only requires a git working tree").
			WithContext("path", root).
			Build()
	}
	changed, err := wt.ChangedFiles()
	if err != nil {
		return nil, "", errors.WrapError(err, errors.CategoryGit, "failed to read git status").
			WithContext("repository", wt.Root()).
			Build()
	}
	if changed == nil {
		changed = []string{}
	}
	head, err := wt.Head()
	if err != nil {
		slog.Debug("Could not resolve HEAD", logfields.Error(err))
	}
	slog.Debug("Changed files", "repository", wt.Root(), "count", len(changed))
	return changed, head, nil
}

// printResult writes result to the command's output in the configured format.
func printResult(g *Global, cfg *config.Config, result *lint.Result) error {
	out := g.stdout()
	useColor := isColorSupported(out)
	if cfg.Output.Color != nil {
		useColor = *cfg.Output.Color
	}
	formatter := lint.NewFormatter(string(cfg.Output.Format), useColor)
	if err := formatter.Format(out, result); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to write report").Build()
	}
	return nil
}
