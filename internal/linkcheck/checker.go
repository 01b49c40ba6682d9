package linkcheck

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdlinkcheck/internal/docmodel"
	"git.home.luguber.info/inful/mdlinkcheck/internal/logfields"
	"git.home.luguber.info/inful/mdlinkcheck/internal/metrics"
	"git.home.luguber.info/inful/mdlinkcheck/internal/util/sets"
)

// Finding is one link occurrence that failed at least one check.
type Finding struct {
	FilePath     string   `json:"filePath"`
	MarkdownLink string   `json:"markdownLink"`
	Line         int      `json:"line"`
	Reasons      []Reason `json:"reasons"`
}

// Checker runs extraction and resolution for whole documents.
type Checker struct {
	resolver      *Resolver
	ignoreTargets []*regexp.Regexp
	ignoreReasons sets.Set[Reason]
	sortReasons   bool
	recorder      metrics.Recorder
	logger        *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithIgnoreTargets skips links whose raw target matches any pattern.
func WithIgnoreTargets(patterns ...*regexp.Regexp) Option {
	return func(c *Checker) { c.ignoreTargets = append(c.ignoreTargets, patterns...) }
}

// WithIgnoreReasons drops the given reasons from every finding. A finding left
// without reasons is not reported.
func WithIgnoreReasons(reasons ...Reason) Option {
	return func(c *Checker) {
		for _, r := range reasons {
			c.ignoreReasons.Add(r)
		}
	}
}

// WithSortedReasons sorts each finding's reasons alphabetically instead of
// keeping discovery order.
func WithSortedReasons(sorted bool) Option {
	return func(c *Checker) { c.sortReasons = sorted }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Checker) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger used for per-document diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewChecker creates a Checker on top of resolver.
func NewChecker(resolver *Resolver, opts ...Option) *Checker {
	c := &Checker{
		resolver:      resolver,
		ignoreReasons: sets.New[Reason](),
		recorder:      metrics.NoopRecorder{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolver returns the underlying resolver.
func (c *Checker) Resolver() *Resolver { return c.resolver }

// CheckDocument returns the findings of one document in source order.
func (c *Checker) CheckDocument(doc *docmodel.Document) ([]Finding, error) {
	start := time.Now()
	defer func() { c.recorder.ObserveDocumentDuration(time.Since(start)) }()
	c.recorder.IncDocuments()

	directives := doc.Directives()
	if directives.Skip {
		c.logger.Debug("Skipping document", logfields.Path(doc.Path()))
		return nil, nil
	}
	ignore := c.ignoreTargets
	for _, pattern := range directives.IgnoreTargets {
		re, err := regexp.Compile(pattern)
		if err != nil {
			c.logger.Warn("Ignoring invalid frontmatter pattern",
				logfields.Path(doc.Path()),
				logfields.Pattern(pattern),
				logfields.Error(err))
			continue
		}
		ignore = append(ignore[:len(ignore):len(ignore)], re)
	}

	var findings []Finding
	for _, link := range doc.Links() {
		c.recorder.IncLinks(string(link.Kind))
		if matchesAny(ignore, link.Target) {
			continue
		}

		res, err := c.resolver.Resolve(link, doc)
		if err != nil {
			return nil, err
		}
		reasons := c.filterReasons(res.Reasons)
		if len(reasons) == 0 {
			continue
		}
		for _, r := range reasons {
			c.recorder.IncFindingReason(string(r))
		}
		findings = append(findings, Finding{
			FilePath:     doc.Path(),
			MarkdownLink: strings.TrimSpace(link.Literal),
			Line:         doc.LineAt(link.Start),
			Reasons:      reasons,
		})
	}
	return findings, nil
}

func (c *Checker) filterReasons(reasons []Reason) []Reason {
	out := make([]Reason, 0, len(reasons))
	for _, r := range reasons {
		if !c.ignoreReasons.Has(r) {
			out = append(out, r)
		}
	}
	if c.sortReasons {
		SortReasons(out)
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
