package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestInitWriterLevels(t *testing.T) {
	original := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Setenv(LevelEnv, "warn")
	var buf bytes.Buffer
	InitWriter(&buf, false)

	log.Info().Msg("hidden message")
	log.Warn().Str("field", "short_hash").Msg("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "short_hash") {
		t.Fatalf("expected warn message with field, got %q", out)
	}

	buf.Reset()
	InitWriter(&buf, true)
	log.Debug().Msg("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Fatalf("verbose should enable debug, got %q", buf.String())
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Fatal("buffer should not be a terminal")
	}

	file, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	defer file.Close()
	if isTerminal(file) {
		t.Fatal("regular file should not be a terminal")
	}
}

func TestInitWriterNoColorForFiles(t *testing.T) {
	original := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(originalLevel)
	})
	t.Setenv(LevelEnv, "")

	var buf bytes.Buffer
	InitWriter(&buf, false)
	log.Warn().Msg("plain output")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("non-terminal output should not contain color codes: %q", buf.String())
	}
}
