package lint

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdlinkcheck/internal/docmodel"
	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
	"git.home.luguber.info/inful/mdlinkcheck/internal/logfields"
	"git.home.luguber.info/inful/mdlinkcheck/internal/metrics"
	"git.home.luguber.info/inful/mdlinkcheck/internal/util/sets"
)

// Linter checks the links of many documents in parallel.
type Linter struct {
	cfg      Config
	checker  *linkcheck.Checker
	cache    *linkcheck.SlugCache
	recorder metrics.Recorder
	logger   *slog.Logger
}

// LinterOption configures a Linter.
type LinterOption func(*Linter)

// WithRecorder sets the metrics recorder for run level metrics.
func WithRecorder(r metrics.Recorder) LinterOption {
	return func(l *Linter) {
		if r != nil {
			l.recorder = r
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) LinterOption {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLinter creates a linter. Parsed documents are added to cache so links
// into them do not read the file again.
func NewLinter(checker *linkcheck.Checker, cache *linkcheck.SlugCache, cfg *Config, opts ...LinterOption) *Linter {
	l := &Linter{
		checker:  checker,
		cache:    cache,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	if cfg != nil {
		l.cfg = *cfg
	}
	if l.cfg.Concurrency <= 0 {
		l.cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LintPath checks all documents in the given path (file or directory).
func (l *Linter) LintPath(ctx context.Context, path string) (*Result, error) {
	files, err := Walk(path, l.cfg.DocumentExtensions, l.cfg.Exclude)
	if err != nil {
		l.recorder.IncRunResult(metrics.ResultFailed)
		return nil, err
	}
	return l.LintFiles(ctx, files)
}

// LintFiles checks a specific list of files (useful for Git hooks). Files that
// are not documents or no longer exist are skipped.
func (l *Linter) LintFiles(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Root:  l.checker.Resolver().Root(),
	}

	docs := l.selectFiles(files)
	result.FilesTotal = len(docs)
	l.logger.Info("Checking documents",
		logfields.RunID(result.RunID),
		logfields.Root(result.Root),
		logfields.Documents(len(docs)))

	reports := make([]FileReport, len(docs))
	l.recorder.SetConcurrency(l.cfg.Concurrency)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Concurrency)
	for i, path := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			findings, err := l.lintFile(path)
			if err != nil {
				return err
			}
			reports[i] = FileReport{FilePath: path, FoundIssues: findings}
			return nil
		})
	}
	err := g.Wait()
	result.Duration = time.Since(start)
	l.recorder.ObserveRunDuration(result.Duration)
	if err != nil {
		l.recorder.IncRunResult(metrics.ResultFailed)
		l.logger.Error("Link check failed", logfields.RunID(result.RunID), logfields.Error(err))
		return nil, err
	}

	for _, report := range reports {
		if len(report.FoundIssues) > 0 {
			result.Reports = append(result.Reports, report)
		}
	}
	sort.Slice(result.Reports, func(i, j int) bool {
		return result.Reports[i].FilePath < result.Reports[j].FilePath
	})

	if result.HasFindings() {
		l.recorder.IncRunResult(metrics.ResultFindings)
	} else {
		l.recorder.IncRunResult(metrics.ResultClean)
	}
	l.logger.Info("Link check complete",
		logfields.RunID(result.RunID),
		logfields.Documents(result.FilesTotal),
		logfields.Findings(result.FindingCount()),
		logfields.Since(start))
	return result, nil
}

// selectFiles returns the existing documents of files, deduplicated, made
// absolute and restricted to Config.Only when set.
func (l *Linter) selectFiles(files []string) []string {
	var only sets.Set[string]
	if l.cfg.Only != nil {
		only = sets.New[string]()
		for _, path := range l.cfg.Only {
			if abs, err := filepath.Abs(path); err == nil {
				only.Add(abs)
			}
		}
	}

	var selected sets.Ordered[string]
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			continue
		}
		if !IsDocFile(abs, l.cfg.DocumentExtensions) {
			continue
		}
		if only != nil && !only.Has(abs) {
			continue
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		selected.Add(abs)
	}
	return selected.Items()
}

// lintFile loads one document, shares its anchors and checks its links.
func (l *Linter) lintFile(path string) ([]linkcheck.Finding, error) {
	doc, err := docmodel.Load(path)
	if err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			l.logger.Debug("Document disappeared before check", logfields.Path(path))
			return nil, nil
		}
		return nil, err
	}
	if l.cache != nil {
		l.cache.Put(doc)
	}
	findings, err := l.checker.CheckDocument(doc)
	if err != nil {
		return nil, err
	}
	for _, f := range findings {
		l.logger.Debug("Broken link",
			logfields.Path(f.FilePath),
			logfields.Line(f.Line),
			logfields.Link(f.MarkdownLink))
	}
	return findings, nil
}
