package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("skipping permission-dependent test when running as root")
	}
}

// writeDocs creates files relative to root.
func writeDocs(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func newTestLinter(root string, cfg *Config) *Linter {
	fs := linkcheck.OSFileSystem{}
	cache := linkcheck.NewSlugCache(fs, nil)
	resolver := linkcheck.NewResolver(fs, cache, linkcheck.Options{Root: root})
	return NewLinter(linkcheck.NewChecker(resolver), cache, cfg)
}
