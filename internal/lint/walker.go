package lint

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
)

// Walk returns the absolute paths of all documents under root in lexical
// order. Hidden files and directories are skipped, as is anything matching an
// exclude pattern. If root is a file it is returned on its own.
func Walk(root string, exts []string, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve scan root").
			WithContext("path", root).
			Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "scan root does not exist").
				WithContext("path", abs).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat scan root").
			WithContext("path", abs).
			Build()
	}
	if !info.IsDir() {
		return []string{abs}, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == abs {
			return nil
		}

		// Skip hidden directories and files
		if d.Name()[0] == '.' {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil {
			return relErr
		}
		if isExcluded(filepath.ToSlash(rel), d.Name(), exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !IsDocFile(path, exts) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk scan root").
			WithContext("path", abs).
			Build()
	}
	sort.Strings(files)
	return files, nil
}

// isExcluded matches patterns against the slash separated relative path and
// the base name. Files below an excluded directory are never visited since
// the walk skips the directory itself.
func isExcluded(rel, name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
