package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmtonkinson/gitstamp/internal/repo"
	"github.com/cmtonkinson/gitstamp/internal/testrepos"
	"github.com/cmtonkinson/gitstamp/pkg/record"
)

// buildCLI compiles the gitstamp binary into a temp directory.
func buildCLI(t *testing.T) string {
	t.Helper()
	binaryPath := filepath.Join(t.TempDir(), "gitstamp-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI binary: %v\n%s", err, output)
	}
	return binaryPath
}

// runCLI runs the binary with an isolated home directory and returns stdout,
// stderr and the exit code.
func runCLI(t *testing.T, binaryPath string, dir string, stdin string, args ...string) (string, string, int) {
	t.Helper()
	return runCLIEnv(t, binaryPath, dir, nil, stdin, args...)
}

// runCLIEnv is runCLI with extra environment entries.
func runCLIEnv(t *testing.T, binaryPath string, dir string, env []string, stdin string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(withoutEnv(os.Environ(), "HOME", repo.GitDirEnv, "GIT_WORK_TREE"), "HOME="+t.TempDir())
	cmd.Env = append(cmd.Env, env...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if !errors.As(err, &exitError) {
			t.Fatalf("Unexpected error type: %v", err)
		}
		exitCode = exitError.ExitCode()
	}
	return stdout.String(), stderr.String(), exitCode
}

func withoutEnv(env []string, keys ...string) []string {
	kept := make([]string, 0, len(env))
	for _, entry := range env {
		drop := false
		for _, key := range keys {
			if strings.HasPrefix(entry, key+"=") {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, entry)
		}
	}
	return kept
}

func TestCLICommands(t *testing.T) {
	binaryPath := buildCLI(t)
	outside := t.TempDir()

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
		expectedError  string
	}{
		{
			name:           "no arguments shows usage",
			args:           []string{},
			expectedExit:   2,
			expectedOutput: "gitstamp [command]",
			expectedError:  "a command is required",
		},
		{
			name:          "unknown command",
			args:          []string{"unknown"},
			expectedExit:  2,
			expectedError: `unknown command "unknown"`,
		},
		{
			name:          "unknown flag",
			args:          []string{"generate", "--bogus"},
			expectedExit:  2,
			expectedError: "unknown flag: --bogus",
		},
		{
			name:          "show requires a path",
			args:          []string{"show"},
			expectedExit:  2,
			expectedError: "accepts 1 arg(s)",
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedExit:   0,
			expectedOutput: "version=dev commit=unknown built_at=unknown",
		},
		{
			name:          "generate outside a repository",
			args:          []string{"generate", "--dir", outside},
			expectedExit:  2,
			expectedError: "no git repository found",
		},
		{
			name:          "generate with unknown format",
			args:          []string{"generate", "--dir", outside, "--format", "yaml"},
			expectedExit:  2,
			expectedError: `unknown --format "yaml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, exitCode := runCLI(t, binaryPath, outside, "", tt.args...)

			// Check exit code
			if exitCode != tt.expectedExit {
				t.Errorf("Expected exit code %d, got %d (stderr %q)", tt.expectedExit, exitCode, stderr)
			}

			// Check expected output
			if tt.expectedOutput != "" && !strings.Contains(stdout, tt.expectedOutput) {
				t.Errorf("Expected output to contain %q, got %q", tt.expectedOutput, stdout)
			}

			// Check expected error
			if tt.expectedError != "" && !strings.Contains(stderr, tt.expectedError) {
				t.Errorf("Expected error to contain %q, got %q", tt.expectedError, stderr)
			}
		})
	}
}

// TestGenerateAndShow verifies a generated record decodes through show.
func TestGenerateAndShow(t *testing.T) {
	binaryPath := buildCLI(t)
	tempRepo := testrepos.New(t)
	tempRepo.Tag(t, "v0.3.0")

	stdout, stderr, exitCode := runCLI(t, binaryPath, tempRepo.Root, "", "generate", "--format", "hex")
	if exitCode != 0 {
		t.Fatalf("generate exit %d: %s", exitCode, stderr)
	}
	rec, err := record.FromHex(stdout)
	if err != nil {
		t.Fatalf("generated hex does not decode: %v (%q)", err, stdout)
	}
	meta, err := rec.Metadata()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.ShortHash != tempRepo.Head(t)[:10] || meta.TagDescribe != "v0.3.0" || meta.Dirty {
		t.Fatalf("unexpected metadata %+v", meta)
	}

	shown, stderr, exitCode := runCLI(t, binaryPath, tempRepo.Root, stdout, "show", "--hex", "-")
	if exitCode != 0 {
		t.Fatalf("show exit %d: %s", exitCode, stderr)
	}
	for _, want := range []string{meta.ShortHash, "v0.3.0", testrepos.Author, "false"} {
		if !strings.Contains(shown, want) {
			t.Errorf("show output missing %q:\n%s", want, shown)
		}
	}
}

// TestGenerateFiles verifies the file formats and the repo config layer.
func TestGenerateFiles(t *testing.T) {
	binaryPath := buildCLI(t)
	tempRepo := testrepos.New(t)

	_, stderr, exitCode := runCLI(t, binaryPath, tempRepo.Root, "", "generate", "--format", "binary")
	if exitCode != 0 {
		t.Fatalf("generate binary exit %d: %s", exitCode, stderr)
	}
	binPath := filepath.Join(tempRepo.Root, "buildstamp.bin")
	if _, err := record.Load(binPath); err != nil {
		t.Fatalf("load %s: %v", binPath, err)
	}

	shown, stderr, exitCode := runCLI(t, binaryPath, tempRepo.Root, "", "show", binPath)
	if exitCode != 0 {
		t.Fatalf("show exit %d: %s", exitCode, stderr)
	}
	if !strings.Contains(shown, "Build metadata") {
		t.Fatalf("show output:\n%s", shown)
	}

	config := fmt.Sprintf(`{"output": {"format": "go", "path": %q, "package": "version", "variable": "Stamp"}}`, "stamp_gen.go")
	tempRepo.WriteFile(t, ".gitstamp.json", config)
	_, stderr, exitCode = runCLI(t, binaryPath, tempRepo.Root, "", "generate")
	if exitCode != 0 {
		t.Fatalf("generate go exit %d: %s", exitCode, stderr)
	}
	src, err := os.ReadFile(filepath.Join(tempRepo.Root, "stamp_gen.go"))
	if err != nil {
		t.Fatalf("read generated source: %v", err)
	}
	for _, want := range []string{"// Code generated by gitstamp. DO NOT EDIT.", "package version", "var Stamp = [80]byte{"} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated source missing %q:\n%s", want, src)
		}
	}
}

// TestGenerateGitDirPrecedence verifies --git-dir beats GIT_DIR, which beats git_dir from config.
func TestGenerateGitDirPrecedence(t *testing.T) {
	binaryPath := buildCLI(t)
	current := testrepos.New(t)
	other := testrepos.New(t)
	other.WriteFile(t, "other.txt", "other\n")
	other.Commit(t, "Diverge from current")

	currentGitDir := filepath.Join(current.Root, ".git")
	otherGitDir := filepath.Join(other.Root, ".git")
	current.WriteFile(t, ".gitstamp.json", fmt.Sprintf(`{"git_dir": %q}`, otherGitDir))

	tests := []struct {
		name string
		env  []string
		args []string
		want string
	}{
		{name: "config only", want: other.Head(t)},
		{name: "environment beats config", env: []string{repo.GitDirEnv + "=" + currentGitDir}, want: current.Head(t)},
		{name: "flag beats environment", env: []string{repo.GitDirEnv + "=" + otherGitDir}, args: []string{"--git-dir", currentGitDir}, want: current.Head(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", "--format", "hex"}, tt.args...)
			stdout, stderr, exitCode := runCLIEnv(t, binaryPath, current.Root, tt.env, "", args...)
			if exitCode != 0 {
				t.Fatalf("generate exit %d: %s", exitCode, stderr)
			}
			rec, err := record.FromHex(stdout)
			if err != nil {
				t.Fatalf("generated hex does not decode: %v (%q)", err, stdout)
			}
			meta, err := rec.Metadata()
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if meta.ShortHash != tt.want[:10] {
				t.Fatalf("short hash = %q, want %q", meta.ShortHash, tt.want[:10])
			}
		})
	}
}

// TestGenerateIgnoredOutputStaysClean verifies repeated runs stay clean once the output is ignored.
func TestGenerateIgnoredOutputStaysClean(t *testing.T) {
	binaryPath := buildCLI(t)
	tempRepo := testrepos.New(t)
	tempRepo.WriteFile(t, ".gitignore", "buildstamp.bin\n")
	tempRepo.Commit(t, "Ignore build record", ".gitignore")

	help, _, exitCode := runCLI(t, binaryPath, tempRepo.Root, "", "generate", "--help")
	if exitCode != 0 || !strings.Contains(help, ".gitignore") {
		t.Fatalf("generate help should mention .gitignore (exit %d):\n%s", exitCode, help)
	}

	binPath := filepath.Join(tempRepo.Root, "buildstamp.bin")
	for run := 1; run <= 2; run++ {
		_, stderr, exitCode := runCLI(t, binaryPath, tempRepo.Root, "", "generate", "--format", "binary")
		if exitCode != 0 {
			t.Fatalf("run %d: generate exit %d: %s", run, exitCode, stderr)
		}
		rec, err := record.Load(binPath)
		if err != nil {
			t.Fatalf("run %d: load: %v", run, err)
		}
		meta, err := rec.Metadata()
		if err != nil {
			t.Fatalf("run %d: decode: %v", run, err)
		}
		if meta.Dirty {
			t.Fatalf("run %d: ignored output should not make the build dirty", run)
		}
	}
}

// TestSelectGitDir verifies the git directory source order.
func TestSelectGitDir(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		env        string
		configured string
		want       string
	}{
		{name: "nothing set", want: ""},
		{name: "config only", configured: "/cfg.git", want: "/cfg.git"},
		{name: "env beats config", env: "/env.git", configured: "/cfg.git", want: "/env.git"},
		{name: "flag beats env", flag: "/flag.git", env: "/env.git", configured: "/cfg.git", want: "/flag.git"},
		{name: "blank env falls through", env: "  ", configured: "/cfg.git", want: "/cfg.git"},
	}
	for _, tt := range tests {
		if got := selectGitDir(tt.flag, tt.env, tt.configured); got != tt.want {
			t.Errorf("%s: selectGitDir = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestShowCorruptRecord verifies bad input exits with status 1.
func TestShowCorruptRecord(t *testing.T) {
	binaryPath := buildCLI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(path, make([]byte, record.Size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	_, stderr, exitCode := runCLI(t, binaryPath, dir, "", "show", path)
	if exitCode != 1 {
		t.Fatalf("exit = %d, want 1 (stderr %q)", exitCode, stderr)
	}
	if !strings.Contains(stderr, "corrupt") {
		t.Fatalf("stderr = %q", stderr)
	}
}

// TestExitCode verifies error classification.
func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "usage", err: usageErrorf("bad"), want: exitUsage},
		{name: "wrapped repo not found", err: fmt.Errorf("resolve: %w", repo.ErrRepoNotFound), want: exitUsage},
		{name: "corrupt record", err: &record.CorruptRecordError{Reason: "header"}, want: exitFailure},
		{name: "other", err: errors.New("boom"), want: exitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}
