package main

import (
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cmtonkinson/gitstamp/internal/config"
	"github.com/cmtonkinson/gitstamp/internal/emit"
	"github.com/cmtonkinson/gitstamp/internal/repo"
	"github.com/cmtonkinson/gitstamp/internal/stamp"
)

// generate flags
var (
	dirFlag      string
	gitDirFlag   string
	formatFlag   string
	outFlag      string
	packageFlag  string
	variableFlag string
	strictFlag   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Inspect the repository and write a build record",
	Long: `Generate inspects the repository containing --dir (default: the current
directory) and writes a build record in the configured format:

  go      a Go source file declaring var <var> = [80]byte{...}
  binary  the raw 80 bytes, for //go:embed
  hex     160 hex characters, for -ldflags "-X"

Flags override .gitstamp.json in the repository root, which overrides
~/.config/gitstamp/config.json. The git directory comes from --git-dir, then
$GIT_DIR, then git_dir in the config files.

The output file counts as an untracked change. Commit it or add it to
.gitignore, otherwise the next run records a dirty build.`,
	Args: exactArgs(0),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Directory inside the repository to stamp (default: current directory)")
	generateCmd.Flags().StringVar(&gitDirFlag, "git-dir", "", "Path to the git directory (default: $GIT_DIR or discovered)")
	generateCmd.Flags().StringVarP(&formatFlag, "format", "f", config.FormatGo, "Output format: go, binary or hex")
	generateCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path, or - for stdout (default depends on format)")
	generateCmd.Flags().StringVar(&packageFlag, "package", "main", "Package name for the go format")
	generateCmd.Flags().StringVar(&variableFlag, "var", "buildStamp", "Variable name for the go format")
	generateCmd.Flags().BoolVar(&strictFlag, "strict", false, "Fail when a value has to be truncated")
}

// runGenerate runs the stamp pipeline and writes the record.
func runGenerate(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("format") && !slices.Contains(config.KnownFormats(), strings.ToLower(formatFlag)) {
		return usageErrorf("unknown --format %q (want one of %s)", formatFlag, strings.Join(config.KnownFormats(), ", "))
	}
	start, err := startDir(dirFlag)
	if err != nil {
		return err
	}

	// The repository root only selects the repo config layer; discovery
	// failures are reported by the pipeline below.
	loc, _ := repo.Resolve(start, gitDirFlag)
	cfg, err := config.Load(loc.WorkTree, generateOverrides(cmd), func(msg string) {
		log.Warn().Msg(msg)
	})
	if err != nil {
		return err
	}

	embedder, err := emit.Lookup(cfg.Output)
	if err != nil {
		return err
	}

	result, err := stamp.Build(stamp.Options{
		StartDir:       start,
		GitDir:         selectGitDir(gitDirFlag, os.Getenv(repo.GitDirEnv), cfg.GitDir),
		StrictOverflow: cfg.StrictOverflow,
	})
	if err != nil {
		return err
	}

	if err := emit.Write(cfg.Output.Path, embedder, result.Record, cmd.OutOrStdout()); err != nil {
		return err
	}
	log.Debug().
		Str("format", embedder.Name()).
		Str("path", cfg.Output.Path).
		Msg("build record written")
	return nil
}

// generateOverrides returns the config layer for flags set on the command line.
func generateOverrides(cmd *cobra.Command) config.Layer {
	flags := cmd.Flags()
	var overrides config.Layer
	if flags.Changed("format") {
		overrides.Output.Format = &formatFlag
	}
	if flags.Changed("out") {
		overrides.Output.Path = &outFlag
	}
	if flags.Changed("package") {
		overrides.Output.Package = &packageFlag
	}
	if flags.Changed("var") {
		overrides.Output.Variable = &variableFlag
	}
	if flags.Changed("strict") {
		overrides.StrictOverflow = &strictFlag
	}
	return overrides
}

// selectGitDir orders the git directory sources: flag, then environment,
// then configuration.
func selectGitDir(flagValue, envValue, configured string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if strings.TrimSpace(envValue) != "" {
		return envValue
	}
	return configured
}

// startDir returns dir, or the working directory when dir is empty.
func startDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
