package git

import (
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when a path is not inside a git working tree.
var ErrNotRepository = stdErrors.New("not a git repository")

// Worktree is an opened git working tree.
type Worktree struct {
	root string
	repo *git.Repository
}

// OpenWorktree opens the repository containing path, searching parent
// directories for the .git directory.
func OpenWorktree(path string) (*Worktree, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stdErrors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}
	return &Worktree{root: wt.Filesystem.Root(), repo: repo}, nil
}

// Root returns the absolute path of the working tree.
func (w *Worktree) Root() string { return w.root }

// ChangedFiles returns absolute paths of files that are modified, added,
// renamed, copied or untracked in the index or working tree. Deleted files
// are left out since there is nothing to check. The result is sorted.
func (w *Worktree) ChangedFiles() ([]string, error) {
	wt, err := w.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	var files []string
	for rel, s := range status {
		if s.Worktree == git.Deleted || (s.Staging == git.Deleted && s.Worktree == git.Unmodified) {
			continue
		}
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		files = append(files, filepath.Join(w.root, filepath.FromSlash(rel)))
	}
	sort.Strings(files)
	return files, nil
}

// Head returns the commit hash HEAD points to, or an empty string for a
// repository without commits.
func (w *Worktree) Head() (string, error) {
	ref, err := w.repo.Head()
	if err != nil {
		if stdErrors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
