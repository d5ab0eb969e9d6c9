// Package emit writes a finished build record in a form a Go program can embed.
package emit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cmtonkinson/gitstamp/internal/config"
	"github.com/cmtonkinson/gitstamp/pkg/record"
)

// outputFileMode defines permissions for written records.
const outputFileMode = 0o644

// Embedder renders a record for one embedding mechanism.
type Embedder interface {
	Name() string
	Embed(w io.Writer, rec record.Record) error
}

// Binary writes the raw record, for use with //go:embed.
type Binary struct{}

// Name returns the format name.
func (Binary) Name() string { return config.FormatBinary }

// Embed writes the record bytes unchanged.
func (Binary) Embed(w io.Writer, rec record.Record) error {
	if _, err := w.Write(rec[:]); err != nil {
		return fmt.Errorf("write binary record: %w", err)
	}
	return nil
}

// Hex writes the record as one line of lowercase hex, for
// -ldflags "-X importpath.name=value".
type Hex struct{}

// Name returns the format name.
func (Hex) Name() string { return config.FormatHex }

// Embed writes the hex form followed by a newline.
func (Hex) Embed(w io.Writer, rec record.Record) error {
	if _, err := io.WriteString(w, rec.Hex()+"\n"); err != nil {
		return fmt.Errorf("write hex record: %w", err)
	}
	return nil
}

// Lookup returns the embedder for a configured output.
func Lookup(output config.OutputConfig) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(output.Format)) {
	case config.FormatBinary:
		return Binary{}, nil
	case config.FormatHex:
		return Hex{}, nil
	case config.FormatGo:
		return NewGoSource(output.Package, output.Variable)
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", output.Format, strings.Join(config.KnownFormats(), ", "))
	}
}

// Write renders rec with e to path, or to stdout when path is "-".
// Files are replaced atomically.
func Write(path string, e Embedder, rec record.Record, stdout io.Writer) error {
	if e == nil {
		return errors.New("embedder is required")
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("output path is required")
	}
	if path == config.StdoutPath {
		if stdout == nil {
			stdout = os.Stdout
		}
		return e.Embed(stdout, rec)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := e.Embed(tmp, rec); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(outputFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("format", e.Name()).Msg("wrote build record")
	return nil
}
