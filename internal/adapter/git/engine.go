// Package git clones and refreshes the repository under analysis.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goGit "github.com/go-git/go-git/v5"
)

// Engine implements repository cloning backed by go-git.
type Engine struct{}

// NewEngine constructs a Git engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CloneOrUpdate ensures dir contains an up-to-date shallow checkout of url.
// A missing or empty dir is cloned at depth 1. An existing clone is pulled
// when its HEAD trails the remote; an up-to-date clone is left untouched.
// A non-empty directory that is not a git repository is an error, never
// overwritten.
func (e *Engine) CloneOrUpdate(ctx context.Context, url, dir string) error {
	repo, err := goGit.PlainOpen(dir)
	if err == nil {
		return e.refresh(ctx, repo)
	}
	if !errors.Is(err, goGit.ErrRepositoryNotExists) {
		return fmt.Errorf("open repo %s: %w", dir, err)
	}

	if nonEmpty, err := dirNonEmpty(dir); err != nil {
		return err
	} else if nonEmpty {
		return fmt.Errorf("directory %s exists and is not a git repository", dir)
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create clone parent: %w", err)
	}

	_, err = goGit.PlainCloneContext(ctx, dir, false, &goGit.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

// refresh pulls the current branch when the remote has moved past the local
// HEAD.
func (e *Engine) refresh(ctx context.Context, repo *goGit.Repository) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &goGit.PullOptions{
		RemoteName:   "origin",
		SingleBranch: true,
	})
	if err != nil && !errors.Is(err, goGit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

// HeadHash reports the commit hash the checkout in dir points at.
func (e *Engine) HeadHash(dir string) (string, error) {
	repo, err := goGit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open repo %s: %w", dir, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// IsClone reports whether dir holds a git repository.
func (e *Engine) IsClone(dir string) bool {
	_, err := goGit.PlainOpen(dir)
	return err == nil
}

func dirNonEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("inspect %s: %w", dir, err)
	}
	return len(entries) > 0, nil
}
