// Package docmodel holds the per-document view used during a scan: the raw
// bytes, the masked bytes, frontmatter directives and lazily extracted links
// and anchors.
package docmodel

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/frontmatter"
	"git.home.luguber.info/inful/mdlinkcheck/internal/markdown"
)

// Document is a Markdown file read once at the start of a scan.
//
// It is immutable after Parse; the lazily computed views are safe for
// concurrent use.
type Document struct {
	path       string
	raw        []byte
	masked     []byte
	bodyStart  int // 0 without frontmatter
	directives frontmatter.Directives

	lineStarts []int

	linksOnce sync.Once
	links     []markdown.Link

	anchorsOnce sync.Once
	anchors     *markdown.AnchorTable
}

// Parse builds a Document from content. path should be absolute; it is
// cleaned but not resolved.
//
// A leading YAML frontmatter block is masked so it never yields links or
// headers. Frontmatter that is malformed or unterminated is treated as body
// text rather than reported.
func Parse(path string, content []byte) *Document {
	d := &Document{
		path: filepath.Clean(path),
		raw:  append([]byte(nil), content...),
	}

	fmRaw, body, had, err := frontmatter.Split(d.raw)
	if err == nil && had {
		d.bodyStart = len(d.raw) - len(body)
		if directives, derr := frontmatter.ParseDirectives(fmRaw); derr == nil {
			d.directives = directives
		}
	}

	d.masked = make([]byte, len(d.raw))
	copy(d.masked, d.raw[:d.bodyStart])
	markdown.MaskRange(d.masked, 0, d.bodyStart)
	copy(d.masked[d.bodyStart:], markdown.Mask(d.raw[d.bodyStart:]))

	d.lineStarts = computeLineStarts(d.raw)
	return d
}

// Load reads a file from disk and parses it into a Document.
func Load(path string) (*Document, error) {
	// #nosec G304 -- paths come from the document walker or resolved link targets.
	content, err := os.ReadFile(path)
	if err != nil {
		category := errors.CategoryFileSystem
		if stdErrors.Is(err, os.ErrNotExist) {
			category = errors.CategoryNotFound
		}
		return nil, errors.WrapError(err, category, "failed to read document").
			WithContext("path", path).
			Build()
	}
	return Parse(path, content), nil
}

// Path returns the document's absolute path.
func (d *Document) Path() string { return d.path }

// Dir returns the directory containing the document.
func (d *Document) Dir() string { return filepath.Dir(d.path) }

// Directives returns the checker settings from the document's frontmatter.
func (d *Document) Directives() frontmatter.Directives { return d.directives }

// Links returns the link occurrences in source order.
func (d *Document) Links() []markdown.Link {
	d.linksOnce.Do(func() {
		d.links = markdown.ExtractLinks(d.raw, d.masked)
	})
	out := make([]markdown.Link, len(d.links))
	copy(out, d.links)
	return out
}

// Anchors returns the document's anchor table.
func (d *Document) Anchors() *markdown.AnchorTable {
	d.anchorsOnce.Do(func() {
		d.anchors = markdown.BuildAnchorTable(d.raw, d.masked)
	})
	return d.anchors
}
