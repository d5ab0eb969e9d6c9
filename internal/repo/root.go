// Package repo provides git repository root discovery helpers.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// gitDirName is the filesystem entry that marks a git repository root.
const gitDirName = ".git"

// GitDirEnv names the environment variable that points at the git directory explicitly.
const GitDirEnv = "GIT_DIR"

// ErrRepoNotFound is returned when no git repository root can be discovered.
var ErrRepoNotFound = errors.New("no git repository found")

// Location identifies the repository the inspector runs against.
// GitDir is empty when git should find it from WorkTree.
type Location struct {
	WorkTree string
	GitDir   string
}

// ResolveRootFromCWD resolves the git repository root from the current working directory.
func ResolveRootFromCWD() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return ResolveRoot(cwd)
}

// ResolveRoot resolves the git repository root by walking upward from start.
func ResolveRoot(start string) (string, error) {
	if start == "" {
		return "", fmt.Errorf("%w: provide a start directory or run inside a repo", ErrRepoNotFound)
	}

	absStart, err := canonicalDir(start)
	if err != nil {
		return "", err
	}

	current := absStart
	for {
		found, err := hasGitDir(current)
		if err != nil {
			return "", err
		}
		if found {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("%w from %s; run inside a git repo or initialize one with `git init`", ErrRepoNotFound, absStart)
}

// Resolve returns the repository location for start. An explicit gitDir (or
// GIT_DIR when gitDir is empty) bypasses the upward walk; start is then used
// as the work tree.
func Resolve(start, gitDir string) (Location, error) {
	if strings.TrimSpace(gitDir) == "" {
		gitDir = os.Getenv(GitDirEnv)
	}
	if strings.TrimSpace(gitDir) == "" {
		root, err := ResolveRoot(start)
		if err != nil {
			return Location{}, err
		}
		return Location{WorkTree: root}, nil
	}

	resolvedGitDir, err := ResolveGitDir(gitDir)
	if err != nil {
		return Location{}, err
	}
	if start == "" {
		start = filepath.Dir(resolvedGitDir)
	}
	workTree, err := canonicalDir(start)
	if err != nil {
		return Location{}, err
	}
	return Location{WorkTree: workTree, GitDir: resolvedGitDir}, nil
}

// ResolveGitDir validates an explicitly named git directory.
func ResolveGitDir(gitDir string) (string, error) {
	absGitDir, err := filepath.Abs(gitDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %s: %w", gitDir, err)
	}
	info, err := os.Stat(absGitDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s %s does not exist", ErrRepoNotFound, GitDirEnv, absGitDir)
		}
		return "", fmt.Errorf("stat git dir %s: %w", absGitDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s %s is not a directory", ErrRepoNotFound, GitDirEnv, absGitDir)
	}
	if _, err := os.Stat(filepath.Join(absGitDir, "HEAD")); err != nil {
		return "", fmt.Errorf("%w: %s %s has no HEAD", ErrRepoNotFound, GitDirEnv, absGitDir)
	}
	resolved, err := filepath.EvalSymlinks(absGitDir)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks for %s: %w", absGitDir, err)
	}
	return resolved, nil
}

// canonicalDir returns the absolute, symlink-free directory for path.
// A file path resolves to its parent directory.
func canonicalDir(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %s: %w", path, err)
	}

	absPath, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks for %s: %w", absPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat start path %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return filepath.Dir(absPath), nil
	}
	return absPath, nil
}

// hasGitDir reports whether the directory contains a .git entry.
func hasGitDir(dir string) (bool, error) {
	path := filepath.Join(dir, gitDirName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir() || info.Mode().IsRegular(), nil
}
