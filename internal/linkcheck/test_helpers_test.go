package linkcheck

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdlinkcheck/internal/docmodel"
)

// writeTree creates files relative to root. A name ending in "/" creates a directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o750))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func newTestChecker(root string, opts ...Option) *Checker {
	fs := OSFileSystem{}
	resolver := NewResolver(fs, NewSlugCache(fs, nil), Options{Root: root})
	return NewChecker(resolver, opts...)
}

// checkFile loads root/name and returns its findings.
func checkFile(t *testing.T, c *Checker, root, name string) []Finding {
	t.Helper()
	doc, err := docmodel.Load(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	findings, err := c.CheckDocument(doc)
	require.NoError(t, err)
	return findings
}

// reasonsOf checks a single-document tree and returns the reasons of its only
// finding, or nil when there is none.
func reasonsOf(t *testing.T, files map[string]string) []Reason {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	findings := checkFile(t, newTestChecker(root), root, "a.md")
	require.LessOrEqual(t, len(findings), 1, "findings: %+v", findings)
	if len(findings) == 0 {
		return nil
	}
	return findings[0].Reasons
}

// countingFS counts ReadFile calls and can fail them.
type countingFS struct {
	OSFileSystem
	reads atomic.Int32
	fail  error
}

func (f *countingFS) ReadFile(path string) ([]byte, error) {
	f.reads.Add(1)
	if f.fail != nil {
		return nil, f.fail
	}
	return f.OSFileSystem.ReadFile(path)
}

func loadDoc(t *testing.T, root, name string) *docmodel.Document {
	t.Helper()
	doc, err := docmodel.Load(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return doc
}
