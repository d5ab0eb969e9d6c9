package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"strings"
	"text/template"

	"github.com/cmtonkinson/gitstamp/internal/config"
	"github.com/cmtonkinson/gitstamp/pkg/record"
)

var goSourceTemplate = template.Must(template.New("gosource").Parse(`// Code generated by gitstamp. DO NOT EDIT.

package {{.Package}}

// {{.Variable}} is the build provenance record for this binary.
// Decode it with record.Decode({{.Variable}}[:]).
//
//	commit:   {{.ShortHash}}
//	dirty:    {{.Dirty}}
//	describe: {{.Describe}}
//	built:    {{.CompileTime}}
var {{.Variable}} = [{{.Size}}]byte{
{{- range .Rows}}
	{{.}}
{{- end}}
}
`))

// bytesPerRow is the number of byte literals per generated line.
const bytesPerRow = 8

// GoSource writes a Go file declaring the record as a byte array variable.
type GoSource struct {
	pkg      string
	variable string
}

// NewGoSource validates the package and variable names.
func NewGoSource(pkg, variable string) (GoSource, error) {
	if !token.IsIdentifier(pkg) {
		return GoSource{}, fmt.Errorf("invalid Go package name %q", pkg)
	}
	if !token.IsIdentifier(variable) {
		return GoSource{}, fmt.Errorf("invalid Go variable name %q", variable)
	}
	return GoSource{pkg: pkg, variable: variable}, nil
}

// Name returns the format name.
func (GoSource) Name() string { return config.FormatGo }

// Embed renders and gofmts the source file.
func (g GoSource) Embed(w io.Writer, rec record.Record) error {
	meta, err := rec.Metadata()
	if err != nil {
		return fmt.Errorf("render Go source: %w", err)
	}

	var buf bytes.Buffer
	err = goSourceTemplate.Execute(&buf, map[string]any{
		"Package":     g.pkg,
		"Variable":    g.variable,
		"Size":        record.Size,
		"Rows":        byteRows(rec[:]),
		"ShortHash":   meta.ShortHash,
		"Dirty":       meta.Dirty,
		"Describe":    commentSafe(meta.TagDescribe),
		"CompileTime": meta.CompileTime,
	})
	if err != nil {
		return fmt.Errorf("render Go source: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format Go source: %w", err)
	}
	if _, err := w.Write(formatted); err != nil {
		return fmt.Errorf("write Go source: %w", err)
	}
	return nil
}

// byteRows renders b as comma-terminated hex literal rows.
func byteRows(b []byte) []string {
	rows := make([]string, 0, (len(b)+bytesPerRow-1)/bytesPerRow)
	for start := 0; start < len(b); start += bytesPerRow {
		end := min(start+bytesPerRow, len(b))
		cells := make([]string, 0, end-start)
		for _, value := range b[start:end] {
			cells = append(cells, fmt.Sprintf("0x%02x,", value))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return rows
}

// commentSafe keeps a value on one comment line.
func commentSafe(value string) string {
	if value == "" {
		return "(none)"
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, value)
}
