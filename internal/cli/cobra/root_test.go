package cobra

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"funcpack/internal/errors"
)

// executeCmd runs the root command with the given args and returns stdout, stderr, and error.
func executeCmd(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Help(t *testing.T) {
	tests := []string{"--help", "-h"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := executeCmd(arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !strings.Contains(stdout, "funcpack") {
				t.Error("expected 'funcpack' in help output")
			}
			if !strings.Contains(stdout, "Available Commands") {
				t.Error("expected 'Available Commands' in help output")
			}
			for _, cmd := range []string{"pack", "doctor", "clean", "completion", "version"} {
				if !strings.Contains(stdout, cmd) {
					t.Errorf("expected '%s' command in help output", cmd)
				}
			}
		})
	}
}

func TestRoot_Version(t *testing.T) {
	tests := []string{"--version", "-v", "version"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := executeCmd(arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, "funcpack") {
				t.Error("expected 'funcpack' in version output")
			}
		})
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	_, _, err := executeCmd("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	// Cobra returns its own error type for unknown commands
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected 'unknown command' in error, got: %v", err)
	}
}

func TestPackCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd("pack", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, flag := range []string{"--project", "--upload"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("expected '%s' flag in pack help output", flag)
		}
	}
}

func TestDoctorCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd("doctor", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "doctor") {
		t.Error("expected 'doctor' in help output")
	}
	if !strings.Contains(stdout, "--project") {
		t.Error("expected '--project' flag in help output")
	}
}

func TestCleanCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd("clean", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "--publish") {
		t.Error("expected '--publish' flag in help output")
	}
}

// TestPackCmd_EmptyProject tests that pack fails cleanly when the current
// directory has nothing to package.
func TestPackCmd_EmptyProject(t *testing.T) {
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore cwd: %v", err)
		}
	})

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}

	_, _, err = executeCmd("pack")
	if err == nil {
		t.Fatal("expected error for an empty project")
	}
	if errors.GetCode(err) != errors.EEmptyPackage {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.EEmptyPackage)
	}
}

func TestDoctorCmd_MissingProject(t *testing.T) {
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore cwd: %v", err)
		}
	})

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}

	_, _, err = executeCmd("doctor", "--project", "does-not-exist")
	if err == nil {
		t.Fatal("expected error for a missing project directory")
	}
	if errors.GetCode(err) != errors.EProjectNotFound {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.EProjectNotFound)
	}
}

// Completion tests

func TestCompletionCmd_Bash(t *testing.T) {
	stdout, _, err := executeCmd("completion", "bash")
	if err != nil {
		t.Fatalf("completion bash failed: %v", err)
	}
	// Check for key bash completion elements
	if !strings.Contains(stdout, "__funcpack") {
		t.Error("bash completion script missing function name")
	}
	if !strings.Contains(stdout, "complete") {
		t.Error("bash completion script missing 'complete' directive")
	}
}

func TestCompletionCmd_Zsh(t *testing.T) {
	stdout, _, err := executeCmd("completion", "zsh")
	if err != nil {
		t.Fatalf("completion zsh failed: %v", err)
	}
	// Check for key zsh completion elements
	if !strings.Contains(stdout, "#compdef") {
		t.Error("zsh completion script missing #compdef directive")
	}
}

func TestCompletionCmd_InvalidShell(t *testing.T) {
	_, _, err := executeCmd("completion", "fish")
	if err == nil {
		t.Fatal("expected error for unsupported shell")
	}
	if errors.GetCode(err) != errors.EUsage {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.EUsage)
	}
}

func TestCompletionCmd_MissingArg(t *testing.T) {
	_, _, err := executeCmd("completion")
	if err == nil {
		t.Fatal("expected error when shell is missing")
	}
}

// Test that global --verbose flag is accessible

func TestGlobalVerboseFlag(t *testing.T) {
	// Reset global opts before test
	globalOpts = GlobalOpts{}

	// Run a command with --verbose
	_, _, _ = executeCmd("--verbose", "version")

	// Check that verbose flag was set
	if !GetGlobalOpts().Verbose {
		t.Error("expected verbose flag to be set")
	}
}
