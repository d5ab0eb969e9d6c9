// Package inspect queries git for the provenance carried by a build record.
package inspect

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cmtonkinson/gitstamp/internal/repo"
)

// shortHashLength is the number of leading commit id bytes kept.
const shortHashLength = 10

var (
	// ErrNoCommits is returned when HEAD does not resolve to a commit.
	ErrNoCommits = errors.New("repository has no commits")
	// ErrMissingAuthor is returned when the HEAD commit has no author name.
	ErrMissingAuthor = errors.New("commit has no author name")
	// ErrDescribeUnavailable explains an empty describe result. It is never
	// returned by Describe, only by DescribeDetail.
	ErrDescribeUnavailable = errors.New("no tag reachable from HEAD")
)

// RawMetadata is the provenance collected for one build before encoding.
type RawMetadata struct {
	CommitHash string
	Dirty      bool
	Describe   string
	Author     string
	BuildTime  time.Time
}

// Inspector runs read-only git queries against one repository.
type Inspector struct {
	loc repo.Location
	git gitRunner
}

// New builds an Inspector for the given repository location.
func New(loc repo.Location) (*Inspector, error) {
	if strings.TrimSpace(loc.WorkTree) == "" {
		return nil, errors.New("work tree is required")
	}
	return &Inspector{loc: loc, git: runGit}, nil
}

// Location returns the repository the inspector reads.
func (i *Inspector) Location() repo.Location {
	return i.loc
}

// HeadCommit returns the full commit id HEAD points at.
func (i *Inspector) HeadCommit() (string, error) {
	output, err := i.git(i.loc, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		if isExitStatus(err, 1) {
			return "", fmt.Errorf("resolve head commit in %s: %w", i.loc.WorkTree, ErrNoCommits)
		}
		return "", fmt.Errorf("resolve head commit: %w", err)
	}
	commit := strings.TrimSpace(output)
	if commit == "" {
		return "", fmt.Errorf("resolve head commit in %s: %w", i.loc.WorkTree, ErrNoCommits)
	}
	return commit, nil
}

// ShortHash returns the first 10 bytes of a commit id. Shorter ids are
// returned unchanged.
func ShortHash(commit string) string {
	if len(commit) <= shortHashLength {
		return commit
	}
	return commit[:shortHashLength]
}

// IsDirty reports whether the work tree has modified, added, deleted or
// untracked entries. A failed status query is logged and reported as clean.
// The query never takes index.lock.
func (i *Inspector) IsDirty() bool {
	output, err := i.git(i.loc, "--no-optional-locks", "status", "--porcelain", "--untracked-files=normal")
	if err != nil {
		log.Debug().Err(err).Str("root", i.loc.WorkTree).Msg("git status failed; treating work tree as clean")
		return false
	}
	return strings.TrimSpace(output) != ""
}

// Describe returns `git describe --tags` for HEAD, or "" when no tag is
// reachable.
func (i *Inspector) Describe() string {
	describe, err := i.DescribeDetail()
	if err != nil {
		log.Debug().Err(err).Str("root", i.loc.WorkTree).Msg("tag describe unavailable")
		return ""
	}
	return describe
}

// DescribeDetail is Describe with the reason for an empty result. The error,
// when present, matches ErrDescribeUnavailable.
func (i *Inspector) DescribeDetail() (string, error) {
	output, err := i.git(i.loc, "describe", "--tags")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDescribeUnavailable, err)
	}
	describe := strings.TrimSpace(output)
	if describe == "" {
		return "", ErrDescribeUnavailable
	}
	return describe, nil
}

// LastAuthor returns the author name of commit.
func (i *Inspector) LastAuthor(commit string) (string, error) {
	output, err := i.git(i.loc, "log", "-1", "--no-show-signature", "--format=%an", commit)
	if err != nil {
		return "", fmt.Errorf("read author of %s: %w", ShortHash(commit), err)
	}
	author := strings.TrimSpace(output)
	if author == "" {
		return "", fmt.Errorf("read author of %s: %w", ShortHash(commit), ErrMissingAuthor)
	}
	return author, nil
}

// Collect runs every query in order. now is the build time; it is stored in
// UTC with second precision.
func (i *Inspector) Collect(now time.Time) (RawMetadata, error) {
	commit, err := i.HeadCommit()
	if err != nil {
		return RawMetadata{}, err
	}
	author, err := i.LastAuthor(commit)
	if err != nil {
		return RawMetadata{}, err
	}
	raw := RawMetadata{
		CommitHash: commit,
		Dirty:      i.IsDirty(),
		Describe:   i.Describe(),
		Author:     author,
		BuildTime:  now.UTC().Truncate(time.Second),
	}
	log.Debug().
		Str("root", i.loc.WorkTree).
		Str("commit", raw.CommitHash).
		Bool("dirty", raw.Dirty).
		Str("describe", raw.Describe).
		Str("author", raw.Author).
		Msg("collected repository metadata")
	return raw, nil
}
