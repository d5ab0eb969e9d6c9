// Package display renders decoded build records for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cmtonkinson/gitstamp/internal/inspect"
	"github.com/cmtonkinson/gitstamp/pkg/record"
)

const labelColumnWidth = 16

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle()

	dirtyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	cleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Row is one labelled line of output.
type Row struct {
	Label string
	Value string
}

// Summary is the renderable form of a decoded record.
type Summary struct {
	Title string
	Rows  []Row
	Dirty bool
}

// FromMetadata builds the summary for a decoded record.
func FromMetadata(meta record.Metadata) Summary {
	rows := []Row{
		{Label: "Schema version", Value: fmt.Sprintf("%d", meta.Schema)},
		{Label: "Compile time", Value: orNone(meta.CompileTime)},
		{Label: "Commit hash", Value: orNone(meta.ShortHash)},
		{Label: "Is dirty build", Value: fmt.Sprintf("%t", meta.Dirty)},
		{Label: "Tag description", Value: orNone(meta.TagDescribe)},
	}
	if parsed, ok := inspect.ParseDescribe(meta.TagDescribe); ok && !parsed.Exact() {
		rows = append(rows, Row{
			Label: "Since tag",
			Value: fmt.Sprintf("%d commit%s after %s", parsed.Distance, plural(parsed.Distance), parsed.Tag),
		})
	}
	rows = append(rows, Row{Label: "Last author", Value: orNone(meta.LastAuthor)})
	return Summary{Title: "Build metadata", Rows: rows, Dirty: meta.Dirty}
}

// FromRaw builds the summary for metadata that has not been encoded yet.
func FromRaw(raw inspect.RawMetadata) Summary {
	return Summary{
		Title: "Repository metadata",
		Rows: []Row{
			{Label: "Commit", Value: orNone(raw.CommitHash)},
			{Label: "Is dirty", Value: fmt.Sprintf("%t", raw.Dirty)},
			{Label: "Describe", Value: orNone(raw.Describe)},
			{Label: "Author", Value: orNone(raw.Author)},
			{Label: "Build time", Value: record.FormatTimestamp(raw.BuildTime)},
		},
		Dirty: raw.Dirty,
	}
}

// String returns the formatted output.
func (s Summary) String() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", labelColumnWidth+24)))
	b.WriteString("\n")

	for _, row := range s.Rows {
		b.WriteString(labelStyle.Render(padRight(row.Label+":", labelColumnWidth)))
		b.WriteString(" ")
		b.WriteString(s.styleFor(row).Render(row.Value))
		b.WriteString("\n")
	}
	return b.String()
}

// styleFor highlights the dirty flag.
func (s Summary) styleFor(row Row) lipgloss.Style {
	if !strings.HasPrefix(row.Label, "Is dirty") {
		return valueStyle
	}
	if s.Dirty {
		return dirtyStyle
	}
	return cleanStyle
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func orNone(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
