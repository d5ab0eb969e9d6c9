// Package testrepos creates throwaway git repositories for tests.
package testrepos

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Author is the user.name configured in every temporary repository.
const Author = "Gitstamp Test"

// TempRepo represents a temporary git repository that can be reused in tests.
type TempRepo struct {
	Root string
}

// New creates a temporary git repository with an initial commit that tests can run against.
func New(tb testing.TB) *TempRepo {
	tb.Helper()
	repo := NewEmpty(tb)
	repo.WriteFile(tb, "README.md", "# Temp Gitstamp Repository\n")
	repo.Commit(tb, "Initial commit", "README.md")
	return repo
}

// NewEmpty creates a temporary git repository with no commits.
func NewEmpty(tb testing.TB) *TempRepo {
	tb.Helper()
	root, err := os.MkdirTemp("", "gitstamp-test-repo-*")
	if err != nil {
		tb.Fatalf("create temp repo directory: %v", err)
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		tb.Fatalf("resolve temp repo directory: %v", err)
	}

	repo := &TempRepo{Root: root}
	tb.Cleanup(func() {
		if cleanupErr := repo.Cleanup(); cleanupErr != nil {
			tb.Fatalf("cleanup temp repo: %v", cleanupErr)
		}
	})

	repo.initialize(tb)
	return repo
}

// RunGit executes git in the repository directory and fails the test if git returns an error.
func (r *TempRepo) RunGit(tb testing.TB, args ...string) string {
	tb.Helper()
	output, err := runGit(r.Root, args...)
	if err != nil {
		tb.Fatalf("git %s failed: %v: %s", strings.Join(args, " "), err, output)
	}
	return output
}

// WriteFile writes content to a repo-relative path, creating parent directories.
func (r *TempRepo) WriteFile(tb testing.TB, rel string, content string) string {
	tb.Helper()
	path := filepath.Join(r.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// RemoveFile deletes a repo-relative path.
func (r *TempRepo) RemoveFile(tb testing.TB, rel string) {
	tb.Helper()
	if err := os.Remove(filepath.Join(r.Root, filepath.FromSlash(rel))); err != nil {
		tb.Fatalf("remove %s: %v", rel, err)
	}
}

// Commit stages paths (all changes when none are given) and commits them.
func (r *TempRepo) Commit(tb testing.TB, message string, paths ...string) string {
	tb.Helper()
	if len(paths) == 0 {
		r.RunGit(tb, "add", "--all")
	} else {
		r.RunGit(tb, append([]string{"add", "--"}, paths...)...)
	}
	r.RunGit(tb, "commit", "-m", message)
	return r.Head(tb)
}

// Tag creates a lightweight tag at HEAD.
func (r *TempRepo) Tag(tb testing.TB, name string) {
	tb.Helper()
	r.RunGit(tb, "tag", name)
}

// Head returns the full commit id of HEAD.
func (r *TempRepo) Head(tb testing.TB) string {
	tb.Helper()
	return strings.TrimSpace(r.RunGit(tb, "rev-parse", "HEAD"))
}

// Cleanup removes the temporary repository root. Missing directories are treated as success.
func (r *TempRepo) Cleanup() error {
	if r == nil || r.Root == "" {
		return nil
	}
	if err := os.RemoveAll(r.Root); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp repo %s: %w", r.Root, err)
	}
	return nil
}

func (r *TempRepo) initialize(tb testing.TB) {
	tb.Helper()
	r.RunGit(tb, "init", "--initial-branch=main")
	r.RunGit(tb, "config", "user.name", Author)
	r.RunGit(tb, "config", "user.email", "test@example.com")
	r.RunGit(tb, "config", "commit.gpgsign", "false")
	r.RunGit(tb, "config", "tag.gpgsign", "false")
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = scrubGitEnv(os.Environ())
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}

// scrubGitEnv drops variables that would point git at another repository.
func scrubGitEnv(env []string) []string {
	kept := env[:0:0]
	for _, entry := range env {
		if strings.HasPrefix(entry, "GIT_DIR=") || strings.HasPrefix(entry, "GIT_WORK_TREE=") {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}
