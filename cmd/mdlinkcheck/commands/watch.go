package commands

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/mdlinkcheck/internal/lint"
	"git.home.luguber.info/inful/mdlinkcheck/internal/logfields"
	"git.home.luguber.info/inful/mdlinkcheck/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Path        string        `arg:"" name:"path" optional:"" default:"." help:"Directory to watch"`
	Format      string        `short:"f" help:"Output format (text or json)"`
	SortReasons bool          `name:"sort-reasons" help:"Sort reasons alphabetically instead of discovery order"`
	Concurrency int           `help:"Number of documents checked in parallel (default from config)"`
	Debounce    time.Duration `help:"Quiet period after the last change before re-checking (default from config)"`
	NoColor     bool          `name:"no-color" help:"Disable colored output"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	opts := checkOptions{
		path:        w.Path,
		format:      w.Format,
		sortReasons: w.SortReasons,
		concurrency: w.Concurrency,
		noColor:     w.NoColor,
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}
	dir, err := scanRoot(w.Path)
	if err != nil {
		return err
	}

	ctx := g.context()
	check := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			slog.Info("Files changed, re-checking", logfields.Documents(len(changed)))
		}
		result, err := runCheck(ctx, cfg, opts)
		if err != nil {
			return err
		}
		return printResult(g, cfg, result)
	}
	if err := check(ctx, nil); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = cfg.DebounceDuration()
	}
	watcher, err := watch.New(watch.Config{
		Root:        dir,
		IsDocument:  func(path string) bool { return lint.IsDocFile(path, cfg.DocumentExtensions) },
		QuietWindow: debounce,
	}, check, slog.Default())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(g.stdout(), "Watching %s for changes (Ctrl+C to stop)\n", dir)
	if err := watcher.Run(ctx); err != nil && !stdErrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
