package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmtonkinson/gitstamp/internal/buildinfo"
	"github.com/cmtonkinson/gitstamp/internal/display"
	"github.com/cmtonkinson/gitstamp/internal/inspect"
	"github.com/cmtonkinson/gitstamp/internal/repo"
	"github.com/cmtonkinson/gitstamp/internal/stamp"
	"github.com/cmtonkinson/gitstamp/pkg/record"
)

var showHexFlag bool

var showCmd = &cobra.Command{
	Use:   "show <file|->",
	Short: "Decode a build record and print its fields",
	Long: `Show decodes a build record written by gitstamp generate. The input is the
raw 80 bytes, or the hex form with --hex. Use - to read from stdin.`,
	Args: exactArgs(1),
	RunE: runShow,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print repository metadata without encoding it",
	Args:  exactArgs(0),
	RunE:  runInspect,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  exactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
	},
}

func init() {
	showCmd.Flags().BoolVar(&showHexFlag, "hex", false, "Input is hex encoded")
	inspectCmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Directory inside the repository (default: current directory)")
	inspectCmd.Flags().StringVar(&gitDirFlag, "git-dir", "", "Path to the git directory (default: $GIT_DIR or discovered)")
}

// runShow decodes and renders one record.
func runShow(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	var rec record.Record
	if showHexFlag {
		rec, err = record.FromHex(string(data))
	} else {
		rec, err = record.FromBytes(data)
	}
	if err != nil {
		return fmt.Errorf("read record %s: %w", args[0], err)
	}

	meta, err := rec.Metadata()
	if err != nil {
		return fmt.Errorf("decode record %s: %w", args[0], err)
	}
	fmt.Fprint(cmd.OutOrStdout(), display.FromMetadata(meta).String())
	return nil
}

// runInspect collects and renders raw metadata.
func runInspect(cmd *cobra.Command, args []string) error {
	start, err := startDir(dirFlag)
	if err != nil {
		return err
	}
	loc, err := repo.Resolve(start, gitDirFlag)
	if err != nil {
		return err
	}
	inspector, err := inspect.New(loc)
	if err != nil {
		return err
	}
	raw, err := inspector.Collect(stamp.BuildTime())
	if err != nil {
		return fmt.Errorf("inspect repository %s: %w", loc.WorkTree, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), display.FromRaw(raw).String())
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
