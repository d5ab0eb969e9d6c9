// Command gitstamp captures git provenance at build time and encodes it into
// a fixed 80 byte build record.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmtonkinson/gitstamp/internal/logging"
	"github.com/cmtonkinson/gitstamp/internal/repo"
)

// Exit codes returned by the CLI.
const (
	exitFailure = 1
	exitUsage   = 2
)

var verboseFlag bool

// rootCmd is the main Cobra command for the gitstamp CLI.
var rootCmd = &cobra.Command{
	Use:   "gitstamp",
	Short: "Embed git provenance into a fixed-size build record",
	Long: `gitstamp reads the current git repository (commit, dirty state, nearest tag,
last author) at build time and writes an 80 byte build record that a program
can embed and decode at runtime without any dependencies.

Examples:
  gitstamp generate                          # buildstamp_gen.go in package main
  gitstamp generate --format binary --out buildstamp.bin
  go build -ldflags "-X main.stamp=$(gitstamp generate --format hex)"
  gitstamp show buildstamp.bin
  gitstamp inspect`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
		}
		return nil
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verboseFlag)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return usageErrorf("a command is required")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	rootCmd.AddCommand(generateCmd, showCmd, inspectCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gitstamp: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// usageError marks failures caused by how the CLI was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exactArgs is cobra.ExactArgs reported as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) || errors.Is(err, repo.ErrRepoNotFound) {
		return exitUsage
	}
	return exitFailure
}
