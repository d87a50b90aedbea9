// Package git provides adapters for interacting with local Git repositories.
// The scaffolder uses it to stage newly created solution files.
package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// GoGitWorkspace stages files in the repository enclosing a directory.
type GoGitWorkspace struct {
	repo   *git.Repository
	root   string
	logger Logger
}

// OpenWorkspace opens the repository containing path, searching parent
// directories for .git. Returns domain.ErrRepositoryNotFound if there is none.
func OpenWorkspace(path string, log Logger) (*GoGitWorkspace, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no worktree: %w", domain.ErrRepositoryNotFound, path, err)
	}

	return &GoGitWorkspace{
		repo:   repo,
		root:   wt.Filesystem.Root(),
		logger: log,
	}, nil
}

// Root returns the absolute worktree root.
func (w *GoGitWorkspace) Root() string {
	return w.root
}

// Stage adds the given files to the index. Paths may be absolute or relative
// to the worktree root; paths outside the worktree are rejected.
func (w *GoGitWorkspace) Stage(ctx context.Context, paths ...string) error {
	wt, err := w.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, p := range paths {
		rel, err := w.relative(p)
		if err != nil {
			return err
		}
		if _, err := wt.Add(rel); err != nil {
			return fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		w.logger.Debug(ctx, "staged file", map[string]interface{}{
			"path": rel,
		})
	}

	return nil
}

// relative converts p into a slash-separated path inside the worktree.
func (w *GoGitWorkspace) relative(p string) (string, error) {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	root, err := filepath.EvalSymlinks(w.root)
	if err != nil {
		root = w.root
	}
	abs, err := filepath.EvalSymlinks(p)
	if err != nil {
		abs = p
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository at %s", p, w.root)
	}
	return filepath.ToSlash(rel), nil
}
