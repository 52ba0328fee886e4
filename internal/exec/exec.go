// Package exec provides the external-process abstraction for funcpack.
// All installer invocations go through CommandRunner so tests can fake them.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	osexec "os/exec"
)

// CmdResult holds the captured outcome of one process invocation.
// Stderr is captured here and never interleaved into the pipeline's own log.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunOpts contains optional settings for a single Run call.
type RunOpts struct {
	// Dir is the working directory for the process (empty = inherit).
	Dir string

	// Env is appended to the current process environment when non-nil.
	Env []string
}

// CommandRunner runs an external binary to completion.
//
// A non-zero process exit is NOT an error: it is reported via
// CmdResult.ExitCode. The returned error is reserved for failures to run at
// all (binary missing, context cancelled, fork failure).
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)
}

// RealRunner is the os/exec-backed CommandRunner.
type RealRunner struct{}

// NewRealRunner returns a CommandRunner backed by os/exec.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes name with args, blocking until the process exits.
func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if opts.Env != nil {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = nil // /dev/null

	err := cmd.Run()
	result := CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			// The process ran and exited non-zero; that is data, not an error.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Binary missing, context cancelled, or the process never started.
		return result, err
	}

	return result, nil
}
