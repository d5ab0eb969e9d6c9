package config

import (
	"go/token"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultFormat   = FormatGo
	defaultPackage  = "main"
	defaultVariable = "buildStamp"
)

// Defaults returns the documented configuration defaults.
//
// Defaults:
// - output.format: "go"
// - output.path: "buildstamp_gen.go" (per-format, see DefaultPath)
// - output.package: "main"
// - output.variable: "buildStamp"
// - strict_overflow: false
// - git_dir: "" (discover from the start directory or GIT_DIR)
func Defaults() Config {
	return Config{
		Output: OutputConfig{
			Format:   defaultFormat,
			Path:     DefaultPath(defaultFormat),
			Package:  defaultPackage,
			Variable: defaultVariable,
		},
	}
}

// ApplyDefaults fills missing or invalid values with documented defaults.
func ApplyDefaults(cfg Config, warn func(string)) Config {
	defaults := Defaults()

	cfg.Output.Format = normalizeFormat(cfg.Output.Format, defaults.Output.Format, "output.format", warn)
	if strings.TrimSpace(cfg.Output.Path) == "" {
		cfg.Output.Path = DefaultPath(cfg.Output.Format)
	}
	cfg.Output.Package = normalizeIdentifier(cfg.Output.Package, defaults.Output.Package, "output.package", warn)
	cfg.Output.Variable = normalizeIdentifier(cfg.Output.Variable, defaults.Output.Variable, "output.variable", warn)
	cfg.GitDir = strings.TrimSpace(cfg.GitDir)
	return cfg
}

// normalizeFormat lowercases the format and falls back when it is unknown.
func normalizeFormat(value string, fallback string, key string, warn func(string)) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return fallback
	}
	if !slices.Contains(KnownFormats(), normalized) {
		emitWarning(warn, "invalid "+key+" "+strconv.Quote(value)+"; using "+strconv.Quote(fallback))
		return fallback
	}
	return normalized
}

// normalizeIdentifier requires a valid Go identifier.
func normalizeIdentifier(value string, fallback string, key string, warn func(string)) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	if !token.IsIdentifier(trimmed) {
		emitWarning(warn, "invalid "+key+" "+strconv.Quote(value)+"; using "+strconv.Quote(fallback))
		return fallback
	}
	return trimmed
}

// emitWarning calls warn when it is set.
func emitWarning(warn func(string), message string) {
	if warn != nil {
		warn(message)
	}
}
