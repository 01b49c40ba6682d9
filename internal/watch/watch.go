// Package watch re-runs a link check when documents under a directory change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/logfields"
	"git.home.luguber.info/inful/mdlinkcheck/internal/util/sets"
)

// RunFunc is called with the sorted set of paths that changed since the
// previous call.
type RunFunc func(ctx context.Context, changed []string) error

// Config controls which files trigger a run and how bursts are coalesced.
type Config struct {
	Root string

	// IsDocument reports whether writing to a file should trigger a run.
	// Creating, removing or renaming any file or directory always does, since
	// it can add or break link targets.
	IsDocument func(path string) bool

	// QuietWindow is how long the tree must stay unchanged before running.
	QuietWindow time.Duration

	// MaxDelay caps how long a run can be postponed by a steady stream of
	// changes. Defaults to ten quiet windows.
	MaxDelay time.Duration
}

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	cfg    Config
	run    RunFunc
	logger *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// New validates cfg and creates a Watcher.
func New(cfg Config, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	if run == nil {
		return nil, errors.ValidationError("run function is required").Build()
	}
	if cfg.Root == "" {
		return nil, errors.ValidationError("watch root is required").Build()
	}
	if cfg.QuietWindow <= 0 {
		return nil, errors.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * cfg.QuietWindow
	}
	if cfg.IsDocument == nil {
		cfg.IsDocument = func(string) bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, run: run, logger: logger, ready: make(chan struct{})}, nil
}

// Ready is closed once Run has registered every directory.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.cfg.Root); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
			WithContext("path", w.cfg.Root).
			Build()
	}
	w.logger.Info("Watching for changes", logfields.Root(w.cfg.Root))
	w.readyOnce.Do(func() { close(w.ready) })

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
	)
	pending := sets.New[string]()

	fire := func(trigger string) {
		changed := sets.Sorted(pending)
		pending = sets.New[string]()
		quietC, maxC = nil, nil
		quietTimer.Stop()
		maxTimer.Stop()

		w.logger.Debug("Running check", logfields.Event(trigger), logfields.Documents(len(changed)))
		if err := w.run(ctx, changed); err != nil && ctx.Err() == nil {
			w.logger.Error("Check failed", logfields.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return nil

		case <-quietC:
			fire("quiet")

		case <-maxC:
			fire("max_delay")

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(fw, ev) {
				continue
			}
			if len(pending) == 0 {
				resetTimer(maxTimer, w.cfg.MaxDelay)
				maxC = maxTimer.C
			}
			pending.Add(ev.Name)
			resetTimer(quietTimer, w.cfg.QuietWindow)
			quietC = quietTimer.C

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logfields.Error(watchErr))
		}
	}
}

// handleEvent registers new directories and reports whether ev should
// trigger a run.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if isHidden(w.cfg.Root, ev.Name) {
		return false
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addDirsRecursive(fw, ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0:
		return true
	case ev.Op&fsnotify.Write != 0:
		return w.cfg.IsDocument(ev.Name)
	default:
		return false
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return fw.Add(path)
	})
}

func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
