// Package logging configures the global zerolog logger for the gitstamp CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// LevelEnv names the environment variable holding the log level.
const LevelEnv = "GITSTAMP_LOG_LEVEL"

// Init initializes the global logger. GITSTAMP_LOG_LEVEL controls the level:
// debug, info, warn, error (default: info). verbose forces debug.
func Init(verbose bool) {
	InitWriter(os.Stderr, verbose)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, verbose bool) {
	level := ParseLevel(os.Getenv(LevelEnv))
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
