package linkcheck

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/mdlinkcheck/internal/docmodel"
	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/markdown"
	"git.home.luguber.info/inful/mdlinkcheck/internal/util/sets"
)

// TargetKind classifies a link target before any filesystem lookup.
type TargetKind string

const (
	KindEmpty      TargetKind = "empty"
	KindWeb        TargetKind = "web"
	KindEmail      TargetKind = "email"
	KindAnchor     TargetKind = "anchor"
	KindFile       TargetKind = "file"
	KindFileAnchor TargetKind = "file_anchor"
)

// Ignored reports whether links of this kind are never resolved.
func (k TargetKind) Ignored() bool {
	return k == KindEmpty || k == KindWeb || k == KindEmail
}

var (
	schemeRe     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+:`)
	emailRe      = regexp.MustCompile(`^[^\s/@:#]+@[^\s/@#]+\.[^\s/@#]+$`)
	windowsAbsRe = regexp.MustCompile(`^(?:[A-Za-z]:[\\/]|\\\\[^\\])`)
)

// DefaultDocumentExtensions are the file types scanned and whose anchors are checked.
var DefaultDocumentExtensions = []string{".md", ".markdown", ".mdown", ".mkd"}

// DefaultImageExtensions are the file types accepted as image link targets.
var DefaultImageExtensions = []string{
	".apng", ".avif", ".bmp", ".gif", ".ico", ".jpeg", ".jpg", ".png", ".svg", ".tif", ".tiff", ".webp",
}

var defaultFileExts = extensionSet(append(slices.Clone(DefaultDocumentExtensions), DefaultImageExtensions...))

// Classify returns the kind of a raw link target using the default document
// and image extensions.
func Classify(target string) TargetKind {
	return classify(target, defaultFileExts)
}

// Classify returns the kind of a raw link target. A bare user@host address
// whose suffix is a configured document or image extension is a file.
func (r *Resolver) Classify(target string) TargetKind {
	return classify(target, r.fileExts)
}

func classify(target string, fileExts sets.Set[string]) TargetKind {
	t := strings.TrimSpace(target)
	lower := strings.ToLower(t)
	switch {
	case t == "":
		return KindEmpty
	case strings.HasPrefix(lower, "mailto:"):
		return KindEmail
	case emailRe.MatchString(t) && !fileExts.Has(strings.ToLower(path.Ext(t))):
		return KindEmail
	case schemeRe.MatchString(t) || strings.HasPrefix(t, "//") || strings.HasPrefix(lower, "www."):
		return KindWeb
	}
	file, _, _, hasAnchor := splitFragment(t)
	switch {
	case stripQuery(file) == "":
		return KindAnchor
	case hasAnchor:
		return KindFileAnchor
	default:
		return KindFile
	}
}

// ResolvedTarget is where a local link points.
type ResolvedTarget struct {
	Path       string // absolute; the linking document for anchor-only links
	Exists     bool
	IsDir      bool
	MatchCount int // sibling stem matches for extensionless targets
	Anchor     string
	HasAnchor  bool
	HashCount  int
}

// Resolution is the outcome of resolving one link occurrence.
type Resolution struct {
	Kind    TargetKind
	Target  ResolvedTarget
	Reasons []Reason
}

// Options configures a Resolver.
type Options struct {
	Root               string
	DocumentExtensions []string
	ImageExtensions    []string
}

// Resolver classifies link targets and checks them against the filesystem and
// anchor tables.
type Resolver struct {
	fs        FileSystem
	cache     *SlugCache
	root      string
	docExts   sets.Set[string]
	imageExts sets.Set[string]
	fileExts  sets.Set[string] // docExts and imageExts
}

// NewResolver creates a Resolver. Empty extension lists fall back to the defaults.
func NewResolver(fs FileSystem, cache *SlugCache, opts Options) *Resolver {
	if fs == nil {
		fs = OSFileSystem{}
	}
	if cache == nil {
		cache = NewSlugCache(fs, nil)
	}
	docExts := opts.DocumentExtensions
	if len(docExts) == 0 {
		docExts = DefaultDocumentExtensions
	}
	imageExts := opts.ImageExtensions
	if len(imageExts) == 0 {
		imageExts = DefaultImageExtensions
	}
	return &Resolver{
		fs:        fs,
		cache:     cache,
		root:      filepath.Clean(opts.Root),
		docExts:   extensionSet(docExts),
		imageExts: extensionSet(imageExts),
		fileExts:  extensionSet(append(slices.Clone(docExts), imageExts...)),
	}
}

// Root returns the scan root absolute links are resolved against.
func (r *Resolver) Root() string { return r.root }

// IsDocument reports whether path has one of the document extensions.
func (r *Resolver) IsDocument(path string) bool {
	return r.docExts.Has(strings.ToLower(filepath.Ext(path)))
}

// Resolve checks one link occurrence of doc. Every applicable reason is
// collected in discovery order. The only error is an unreadable link target
// whose anchors must be checked.
func (r *Resolver) Resolve(link markdown.Link, doc *docmodel.Document) (Resolution, error) {
	target := strings.TrimSpace(link.Target)
	res := Resolution{Kind: r.Classify(target)}
	if res.Kind.Ignored() {
		return res, nil
	}

	var reasons sets.Ordered[Reason]
	if link.Quote == markdown.QuoteSmart {
		reasons.Add(ReasonAnchorTagInvalidQuote)
	}

	filePart, anchor, hashes, hasAnchor := splitFragment(target)
	filePart = stripQuery(filePart)
	res.Target.Anchor = norm.NFC.String(percentDecode(anchor))
	res.Target.HasAnchor = hasAnchor
	res.Target.HashCount = hashes

	if filePart == "" {
		res.Target.Path = doc.Path()
		res.Target.Exists = true
		if res.Target.Anchor != "" {
			checkAnchor(doc.Anchors(), res.Target.Anchor, &reasons)
		}
	} else {
		r.resolveFile(filePart, link.IsImage, doc, &res.Target, &reasons)
		if err := r.resolveAnchor(doc, &res.Target, &reasons); err != nil {
			return res, err
		}
	}

	if hashes >= 2 {
		reasons.Add(ReasonTooManyHashCharacters)
	}
	res.Reasons = reasons.Items()
	return res, nil
}

func (r *Resolver) resolveFile(filePart string, image bool, doc *docmodel.Document, t *ResolvedTarget, reasons *sets.Ordered[Reason]) {
	p := percentDecode(filePart)

	var full string
	switch {
	case windowsAbsRe.MatchString(p):
		reasons.Add(ReasonPotentialWindowsAbsoluteLink)
		p = strings.ReplaceAll(p, `\`, "/")
		full = filepath.Join(doc.Dir(), filepath.FromSlash(strings.TrimLeft(p, "/")))
	case strings.HasPrefix(p, "/"):
		var valid bool
		full, valid = r.resolveAbsolute(p)
		if !valid {
			reasons.Add(ReasonAbsoluteLinkInvalidStartPoint)
		}
	default:
		full = filepath.Join(doc.Dir(), filepath.FromSlash(p))
	}

	if hasBadParentSegment(p) {
		reasons.Add(ReasonBadRelativeLinkSyntax)
	}

	t.Path = full
	last := path.Base(strings.TrimRight(p, "/"))
	switch {
	case strings.HasSuffix(p, "/") || last == "." || last == "..":
		r.checkDirectory(t, reasons)
	case path.Ext(last) == "":
		r.checkExtensionless(image, t, reasons)
	default:
		r.checkWithExtension(image, t, reasons)
	}
}

// resolveAbsolute joins a root-relative link with the scan root. The link is
// valid when walking its segments never climbs above the root and its first
// segment exists directly under the root.
func (r *Resolver) resolveAbsolute(p string) (string, bool) {
	full := filepath.Join(r.root, filepath.FromSlash(p))

	depth := 0
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return full, false
			}
		default:
			depth++
		}
	}

	rel, err := filepath.Rel(r.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return full, false
	}
	if rel == "." {
		return full, true
	}
	first := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	return full, r.fs.Exists(filepath.Join(r.root, first))
}

func (r *Resolver) checkDirectory(t *ResolvedTarget, reasons *sets.Ordered[Reason]) {
	t.Exists = r.fs.Exists(t.Path)
	t.IsDir = t.Exists && r.fs.IsDir(t.Path)
	if !t.Exists {
		reasons.Add(ReasonFileNotFound)
	}
}

func (r *Resolver) checkExtensionless(image bool, t *ResolvedTarget, reasons *sets.Ordered[Reason]) {
	if r.fs.Exists(t.Path) {
		t.Exists = true
		t.IsDir = r.fs.IsDir(t.Path)
		return
	}

	reasons.Add(ReasonMissingFileExtension)
	// An unreadable directory is treated like one without matches.
	matches, _ := r.fs.ListSiblingStems(filepath.Dir(t.Path), filepath.Base(t.Path))
	t.MatchCount = len(matches)
	switch len(matches) {
	case 0:
		reasons.Add(ReasonFileNotFound)
	case 1:
		t.Path = filepath.Join(filepath.Dir(t.Path), matches[0])
		t.Exists = true
		if image && !r.imageExts.Has(strings.ToLower(filepath.Ext(matches[0]))) {
			reasons.Add(ReasonInvalidImageExtensions)
		}
	default:
		reasons.Add(ReasonMultipleMatchingFiles)
	}
}

func (r *Resolver) checkWithExtension(image bool, t *ResolvedTarget, reasons *sets.Ordered[Reason]) {
	t.Exists = r.fs.Exists(t.Path)
	t.IsDir = t.Exists && r.fs.IsDir(t.Path)
	switch {
	case image && !r.imageExts.Has(strings.ToLower(filepath.Ext(t.Path))):
		reasons.Add(ReasonInvalidImageExtensions)
	case !t.Exists:
		reasons.Add(ReasonFileNotFound)
	}
}

// resolveAnchor checks the fragment of a file link against the target's anchor
// table. Only existing documents are checked; fragments on directories and
// other file types are always accepted.
func (r *Resolver) resolveAnchor(doc *docmodel.Document, t *ResolvedTarget, reasons *sets.Ordered[Reason]) error {
	if t.Anchor == "" || !t.Exists || t.IsDir || !r.IsDocument(t.Path) {
		return nil
	}
	if t.Path == doc.Path() {
		checkAnchor(doc.Anchors(), t.Anchor, reasons)
		return nil
	}
	table, err := r.cache.Get(t.Path)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return classified.WithContext("linked_from", doc.Path())
		}
		return err
	}
	checkAnchor(table, t.Anchor, reasons)
	return nil
}

func checkAnchor(table *markdown.AnchorTable, anchor string, reasons *sets.Ordered[Reason]) {
	switch table.Lookup(anchor) {
	case markdown.AnchorFound:
	case markdown.AnchorCaseMismatch:
		reasons.Add(ReasonCaseSensitiveHeaderTag)
	default:
		reasons.Add(ReasonHeaderTagNotFound)
	}
}

// splitFragment splits a target on its first unescaped '#'. anchor excludes
// all leading '#' characters, which are counted in hashes.
func splitFragment(target string) (file, anchor string, hashes int, hasAnchor bool) {
	for i := 0; i < len(target); i++ {
		switch target[i] {
		case '\\':
			if i+1 < len(target) && target[i+1] == '#' {
				i++
			}
		case '#':
			frag := target[i:]
			hashes = len(frag) - len(strings.TrimLeft(frag, "#"))
			return unescapeHash(target[:i]), frag[hashes:], hashes, true
		}
	}
	return unescapeHash(target), "", 0, false
}

func unescapeHash(s string) string {
	return strings.ReplaceAll(s, `\#`, "#")
}

func stripQuery(file string) string {
	if i := strings.IndexByte(file, '?'); i >= 0 {
		return file[:i]
	}
	return file
}

func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// hasBadParentSegment reports a segment made of three or more dots, a
// mistyped "../".
func hasBadParentSegment(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if len(seg) >= 3 && strings.Trim(seg, ".") == "" {
			return true
		}
	}
	return false
}

func extensionSet(exts []string) sets.Set[string] {
	s := sets.New[string]()
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.Add(e)
	}
	return s
}
