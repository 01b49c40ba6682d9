package linkcheck

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FileSystem is the lookup surface the resolver needs. Paths are absolute and
// use the host separator.
type FileSystem interface {
	Exists(path string) bool
	IsDir(path string) bool
	// ListSiblingStems returns the names of regular files in dir whose name
	// without its final extension equals base.
	ListSiblingStems(dir, base string) ([]string, error)
	ReadFile(path string) ([]byte, error)
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OSFileSystem) ListSiblingStems(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	want := norm.NFC.String(base)
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if norm.NFC.String(stem(e.Name())) == want {
			matches = append(matches, e.Name())
		}
	}
	return matches, nil
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- link targets are resolved inside the scanned tree.
	return os.ReadFile(path)
}

// stem strips the final extension from a file name. Dotfiles keep their name.
func stem(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
