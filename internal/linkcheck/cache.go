package linkcheck

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/mdlinkcheck/internal/docmodel"
	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/markdown"
	"git.home.luguber.info/inful/mdlinkcheck/internal/metrics"
)

// SlugCache holds anchor tables keyed by absolute document path. Tables are
// built lazily, the first stored table for a path wins, and entries are never
// invalidated. Concurrent requests for the same path share one load.
type SlugCache struct {
	fs       FileSystem
	recorder metrics.Recorder
	tables   sync.Map // string -> *markdown.AnchorTable
	group    singleflight.Group
}

// NewSlugCache returns an empty cache reading documents through fs.
func NewSlugCache(fs FileSystem, recorder metrics.Recorder) *SlugCache {
	if fs == nil {
		fs = OSFileSystem{}
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &SlugCache{fs: fs, recorder: recorder}
}

// Put stores the anchor table of an already parsed document.
func (c *SlugCache) Put(doc *docmodel.Document) *markdown.AnchorTable {
	actual, _ := c.tables.LoadOrStore(doc.Path(), doc.Anchors())
	return actual.(*markdown.AnchorTable)
}

// Get returns the anchor table for path, reading and parsing the document on
// first use.
func (c *SlugCache) Get(path string) (*markdown.AnchorTable, error) {
	path = filepath.Clean(path)
	if v, ok := c.tables.Load(path); ok {
		c.recorder.IncSlugCache(true)
		return v.(*markdown.AnchorTable), nil
	}
	c.recorder.IncSlugCache(false)

	v, err, _ := c.group.Do(path, func() (any, error) {
		if v, ok := c.tables.Load(path); ok {
			return v, nil
		}
		content, err := c.fs.ReadFile(path)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read link target").
				WithContext("path", path).
				Build()
		}
		return c.Put(docmodel.Parse(path, content)), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*markdown.AnchorTable), nil
}

// Len returns the number of cached tables.
func (c *SlugCache) Len() int {
	n := 0
	c.tables.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
