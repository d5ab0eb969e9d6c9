package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cmtonkinson/gitstamp/internal/repo"
)

// gitRunner runs git against a repository location and returns stdout.
type gitRunner func(loc repo.Location, args ...string) (string, error)

// runGit executes git in the work tree, pointing it at an explicit git
// directory when the location names one.
func runGit(loc repo.Location, args ...string) (string, error) {
	if strings.TrimSpace(loc.WorkTree) == "" {
		return "", errors.New("git work tree is required")
	}
	if len(args) == 0 {
		return "", errors.New("git arguments are required")
	}
	full := args
	if loc.GitDir != "" {
		full = append([]string{"--git-dir=" + loc.GitDir, "--work-tree=" + loc.WorkTree}, args...)
	}
	cmd := exec.Command("git", full...)
	cmd.Dir = loc.WorkTree
	cmd.Env = withoutRepoEnv(os.Environ())
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// withoutRepoEnv drops git variables that would override the location; the
// location already accounts for them.
func withoutRepoEnv(env []string) []string {
	kept := make([]string, 0, len(env))
	for _, entry := range env {
		if strings.HasPrefix(entry, "GIT_DIR=") || strings.HasPrefix(entry, "GIT_WORK_TREE=") {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

// isExitStatus reports whether the error is an exec.ExitError with the given status.
func isExitStatus(err error, status int) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return exitErr.ExitCode() == status
}
