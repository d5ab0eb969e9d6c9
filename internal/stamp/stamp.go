// Package stamp runs the build-time pipeline: inspect the repository, encode
// the provenance, and assemble the record.
package stamp

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cmtonkinson/gitstamp/internal/inspect"
	"github.com/cmtonkinson/gitstamp/internal/repo"
	"github.com/cmtonkinson/gitstamp/pkg/record"
)

// SourceDateEpochEnv pins the build time for reproducible builds.
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// ErrOverflow is returned in strict mode when any field was truncated.
var ErrOverflow = errors.New("build metadata does not fit the record")

// Options controls one pipeline run.
type Options struct {
	// StartDir is where repository discovery begins. Empty means the
	// current working directory.
	StartDir string
	// GitDir names the git directory explicitly. Empty falls back to GIT_DIR.
	GitDir string
	// StrictOverflow turns truncation notices into a failure.
	StrictOverflow bool
	// Now returns the build time. Defaults to BuildTime.
	Now func() time.Time
}

// Result is the outcome of a successful run.
type Result struct {
	Record    record.Record
	Raw       inspect.RawMetadata
	Location  repo.Location
	Overflows []*record.OverflowError
}

// Build resolves the repository, collects its metadata and assembles the
// record. Inspector failures abort the run.
func Build(opts Options) (Result, error) {
	start := opts.StartDir
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Result{}, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}

	loc, err := repo.Resolve(start, opts.GitDir)
	if err != nil {
		return Result{}, err
	}
	inspector, err := inspect.New(loc)
	if err != nil {
		return Result{}, err
	}

	now := opts.Now
	if now == nil {
		now = BuildTime
	}
	raw, err := inspector.Collect(now())
	if err != nil {
		return Result{}, fmt.Errorf("inspect repository %s: %w", loc.WorkTree, err)
	}

	rec, overflows, err := Encode(raw)
	if err != nil {
		return Result{}, err
	}
	for _, overflow := range overflows {
		log.Warn().
			Str("field", overflow.Field).
			Int("width", overflow.Width).
			Int("length", overflow.Len).
			Msg("value truncated to fit build record")
	}
	if opts.StrictOverflow && len(overflows) > 0 {
		return Result{}, fmt.Errorf("%w: %w", ErrOverflow, joinOverflows(overflows))
	}

	log.Info().
		Str("root", loc.WorkTree).
		Str("commit", inspect.ShortHash(raw.CommitHash)).
		Bool("dirty", raw.Dirty).
		Str("describe", raw.Describe).
		Msg("assembled build record")

	return Result{Record: rec, Raw: raw, Location: loc, Overflows: overflows}, nil
}

// Encode turns collected metadata into a schema 1 record. Truncated fields
// are returned as overflows; the record is valid either way.
func Encode(raw inspect.RawMetadata) (record.Record, []*record.OverflowError, error) {
	rec, err := record.Assemble(record.SchemaV1, record.Fields{
		CompileTime: raw.BuildTime,
		ShortHash:   inspect.ShortHash(raw.CommitHash),
		Dirty:       raw.Dirty,
		TagDescribe: raw.Describe,
		LastAuthor:  raw.Author,
	})
	overflows := record.Overflows(err)
	if err != nil && len(overflows) == 0 {
		return record.Record{}, nil, fmt.Errorf("assemble build record: %w", err)
	}
	return rec, overflows, nil
}

// BuildTime returns SOURCE_DATE_EPOCH when it is set and valid, otherwise the
// current time.
func BuildTime() time.Time {
	if pinned, ok := SourceDateEpoch(os.Getenv(SourceDateEpochEnv)); ok {
		return pinned
	}
	return time.Now().UTC()
}

// SourceDateEpoch parses a SOURCE_DATE_EPOCH value in seconds.
func SourceDateEpoch(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds < 0 {
		log.Warn().Str("value", value).Msg("ignoring invalid " + SourceDateEpochEnv)
		return time.Time{}, false
	}
	return time.Unix(seconds, 0).UTC(), true
}

func joinOverflows(overflows []*record.OverflowError) error {
	errs := make([]error, 0, len(overflows))
	for _, overflow := range overflows {
		errs = append(errs, overflow)
	}
	return errors.Join(errs...)
}
