// Package repository provides filesystem access rooted at a directory.
// All paths are resolved relative to the root; path traversal attempts,
// including symlink-based ones, are blocked.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry describes one regular file under the root.
type Entry struct {
	Path    string // relative to the root
	Size    int64
	ModTime time.Time
}

// Local provides rooted filesystem access.
type Local struct {
	root string
}

// NewLocal creates a Local rooted at the given directory.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Root returns the repository root directory.
func (r *Local) Root() string {
	return r.root
}

// ReadFile reads the contents of a file at the given path.
// The path can be relative to the root or absolute (if within root).
func (r *Local) ReadFile(path string) ([]byte, error) {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return os.ReadFile(resolved)
}

// FileExists checks if a regular file exists at the given path. Returns
// false for directories, permission errors, or traversal attempts.
func (r *Local) FileExists(path string) bool {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// List enumerates the regular files in the given directory (relative to the
// root, "." for the root itself), non-recursively.
func (r *Local) List(dir string) ([]Entry, error) {
	resolved, err := r.resolvePath(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", dir, err)
	}

	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		rel := de.Name()
		if dir != "." && dir != "" {
			rel = filepath.Join(dir, de.Name())
		}
		entries = append(entries, Entry{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Remove deletes a single file under the root.
func (r *Local) Remove(path string) error {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	return os.Remove(resolved)
}

// resolvePath resolves a path and validates it's within the repository root.
// It follows symlinks to prevent bypassing the root directory check and
// returns the real (symlink-resolved) path to prevent TOCTOU attacks.
func (r *Local) resolvePath(path string) (string, error) {
	var resolved string

	if filepath.IsAbs(path) {
		resolved = path
	} else {
		resolved = filepath.Join(r.root, path)
	}

	resolved = filepath.Clean(resolved)

	realRoot, err := filepath.EvalSymlinks(r.root)
	if err != nil {
		realRoot = filepath.Clean(r.root)
	}

	realPath, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
		// File doesn't exist yet; validate the cleaned path instead.
		rel, relErr := filepath.Rel(realRoot, resolved)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path traversal detected")
		}
		return resolved, nil
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected")
	}

	return realPath, nil
}
