// Package config defines the configuration model for gitstamp.
package config

// Config defines the full configuration surface for gitstamp.
type Config struct {
	Output         OutputConfig `json:"output"`
	StrictOverflow bool         `json:"strict_overflow"`
	GitDir         string       `json:"git_dir"`
}

// OutputConfig describes how the finished record is embedded.
type OutputConfig struct {
	Format   string `json:"format"`   // "binary", "go", or "hex"
	Path     string `json:"path"`     // "-" writes to stdout
	Package  string `json:"package"`  // Go package for the "go" format
	Variable string `json:"variable"` // Go variable for the "go" format
}

// Output formats.
const (
	FormatBinary = "binary"
	FormatGo     = "go"
	FormatHex    = "hex"
)

// StdoutPath is the output path that means standard output.
const StdoutPath = "-"

// KnownFormats lists the supported output formats in display order.
func KnownFormats() []string {
	return []string{FormatGo, FormatBinary, FormatHex}
}

// DefaultPath returns the output path used when none is configured.
func DefaultPath(format string) string {
	switch format {
	case FormatBinary:
		return "buildstamp.bin"
	case FormatHex:
		return StdoutPath
	default:
		return "buildstamp_gen.go"
	}
}
