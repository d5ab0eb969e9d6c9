// Package buildinfo provides build metadata for the gitstamp CLI.
package buildinfo

import (
	"errors"

	"github.com/cmtonkinson/gitstamp/pkg/record"
)

// Build metadata variables set via linker flags during build.
var (
	// Version is the semantic version string (e.g., "1.2.3").
	Version = "dev"
	// Commit is the git commit SHA (e.g., "8d3f2a1").
	Commit = "unknown"
	// BuiltAt is the build timestamp in RFC3339 format (e.g., "2025-02-14T09:30:00Z").
	BuiltAt = "unknown"
	// Stamp is the hex build record produced by `gitstamp generate --format hex`.
	Stamp = ""
)

// ErrNoStamp is returned by Record when no stamp was linked in.
var ErrNoStamp = errors.New("binary was built without a gitstamp record")

// Record decodes the linked stamp.
func Record() (record.Metadata, error) {
	if Stamp == "" {
		return record.Metadata{}, ErrNoStamp
	}
	rec, err := record.FromHex(Stamp)
	if err != nil {
		return record.Metadata{}, err
	}
	return rec.Metadata()
}

// String returns the formatted version information as expected by the CLI contract.
// Format: "version=<semver> commit=<git-sha> built_at=<rfc3339>"
// followed by " dirty=<bool> describe=<tag>" when a stamp is linked in.
// Commit and built_at fall back to the stamp when not set directly.
func String() string {
	commit := Commit
	builtAt := BuiltAt
	meta, err := Record()
	if err == nil {
		if commit == "unknown" {
			commit = meta.ShortHash
		}
		if builtAt == "unknown" {
			builtAt = meta.CompileTime
		}
	}

	out := "version=" + Version + " commit=" + commit + " built_at=" + builtAt
	if err == nil {
		dirty := "false"
		if meta.Dirty {
			dirty = "true"
		}
		out += " dirty=" + dirty
		if meta.TagDescribe != "" {
			out += " describe=" + meta.TagDescribe
		}
	}
	return out
}
