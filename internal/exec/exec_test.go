package exec

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRealRunner_CapturesStdoutAndStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	r := NewRealRunner()
	res, err := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, RunOpts{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != "out" {
		t.Errorf("stdout = %q, want %q", got, "out")
	}
	if got := strings.TrimSpace(res.Stderr); got != "err" {
		t.Errorf("stderr = %q, want %q", got, "err")
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestRealRunner_NonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	r := NewRealRunner()
	res, err := r.Run(context.Background(), "sh", []string{"-c", "exit 3"}, RunOpts{})
	if err != nil {
		t.Fatalf("Run returned error for non-zero exit: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestRealRunner_MissingBinaryIsAnError(t *testing.T) {
	r := NewRealRunner()
	_, err := r.Run(context.Background(), "funcpack-no-such-binary-zz", nil, RunOpts{})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRealRunner_RespectsDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}

	r := NewRealRunner()
	res, err := r.Run(context.Background(), "sh", []string{"-c", "pwd"}, RunOpts{Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != resolved && got != dir {
		t.Errorf("pwd = %q, want %q", got, resolved)
	}
}
