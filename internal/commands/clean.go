package commands

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"funcpack/internal/errors"
	"funcpack/internal/exec"
	"funcpack/internal/fs"
	"funcpack/internal/workdir"
)

// CleanOpts holds options for the clean command.
type CleanOpts struct {
	// ProjectDir overrides the project root (default: cwd).
	ProjectDir string
	// Publish also removes the publish directory after confirmation.
	Publish bool
}

// Clean removes the build directory left by an interrupted run. With
// --publish it also removes the publish directory, which deletes every
// previously published archive and log, so that path requires a typed
// confirmation read from stdin.
func Clean(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, cwd string, opts CleanOpts, stdin io.Reader, stdout, stderr io.Writer) error {
	target := resolveProjectDir(cwd, opts.ProjectDir)

	info, err := fsys.Stat(target)
	if err != nil || !info.IsDir() {
		return errors.NewWithDetails(errors.EProjectNotFound,
			fmt.Sprintf("project directory %s does not exist or is not a directory", target),
			map[string]string{"project": target})
	}

	mgr := workdir.NewManager(fsys, target)

	if err := mgr.CleanupBuildDir(); err != nil {
		return cleanError("build", err)
	}
	_, _ = fmt.Fprintf(stdout, "removed: %s\n", mgr.BuildDir())

	if !opts.Publish {
		return nil
	}

	_, _ = fmt.Fprintf(stderr, "removing %s deletes all published archives and logs\n", mgr.PublishDir())
	_, _ = fmt.Fprint(stderr, "confirm: type 'publish' to proceed: ")
	input, rerr := bufio.NewReader(stdin).ReadString('\n')
	if strings.TrimSpace(input) != "publish" {
		if rerr != nil {
			return errors.Wrap(errors.EAborted, "failed to read confirmation", rerr)
		}
		return errors.New(errors.EAborted, "confirmation failed; expected 'publish'")
	}

	if err := mgr.RemovePublishDir(); err != nil {
		return cleanError("publish", err)
	}
	_, _ = fmt.Fprintf(stdout, "removed: %s\n", mgr.PublishDir())
	return nil
}

// cleanError keeps the removal-guard violation distinguishable from an
// ordinary removal failure.
func cleanError(what string, err error) error {
	var oe *fs.ErrOutsideRoot
	if stderrors.As(err, &oe) {
		return errors.Wrap(errors.EPathOutsideProject, "refusing to remove a directory outside the project", err)
	}
	return errors.Wrap(errors.ECleanFailed, "failed to remove the "+what+" directory", err)
}
