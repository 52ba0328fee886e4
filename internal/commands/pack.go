// Package commands implements funcpack CLI commands.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"funcpack/internal/artifact"
	"funcpack/internal/config"
	"funcpack/internal/errors"
	"funcpack/internal/exec"
	"funcpack/internal/fs"
	"funcpack/internal/pipeline"
)

// PackOpts holds options for the pack command.
type PackOpts struct {
	// ProjectDir overrides the project root (default: cwd).
	ProjectDir string
	// Upload ships the archive to the configured object store afterwards.
	Upload bool
}

// Pack runs the full packaging pipeline for one project. Progress lines go
// to stderr as they happen; the stable key: value summary goes to stdout.
func Pack(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, cwd string, opts PackOpts, stdout, stderr io.Writer) error {
	target := resolveProjectDir(cwd, opts.ProjectDir)

	deps := pipeline.Deps{FS: fsys, Runner: cr, Echo: stderr}
	if opts.Upload {
		upCfg := config.LoadUploadConfig()
		if !upCfg.Configured() {
			return errors.New(errors.EUploadNotConfigured,
				"upload requested but FUNCPACK_S3_ENDPOINT and FUNCPACK_S3_BUCKET are not set")
		}
		store, err := artifact.NewStore(upCfg)
		if err != nil {
			return errors.Wrap(errors.EUploadNotConfigured, "invalid upload configuration", err)
		}
		deps.Uploader = store
	}

	res, err := pipeline.Run(ctx, pipeline.Options{ProjectRoot: target, Upload: opts.Upload}, deps)
	if err != nil {
		if res.LogPath != "" {
			_, _ = fmt.Fprintf(stderr, "log: %s\n", res.LogPath)
		}
		return err
	}

	writePackOutput(stdout, res)
	return nil
}

// resolveProjectDir applies the optional --project override against cwd.
func resolveProjectDir(cwd, override string) string {
	if override == "" {
		return cwd
	}
	if filepath.IsAbs(override) {
		return override
	}
	return filepath.Join(cwd, override)
}

// writePackOutput writes the stable key: value summary.
// All writes use explicit error ignoring since this is informational output
// where write failures cannot be meaningfully handled.
func writePackOutput(w io.Writer, res pipeline.Result) {
	_, _ = fmt.Fprintf(w, "run_id: %s\n", res.RunID)
	_, _ = fmt.Fprintf(w, "project: %s\n", res.ProjectName)
	_, _ = fmt.Fprintf(w, "archive: %s\n", res.ArchivePath)
	_, _ = fmt.Fprintf(w, "entries: %d\n", res.ArchiveEntries)
	_, _ = fmt.Fprintf(w, "size: %s\n", humanize.IBytes(uint64(res.ArchiveSizeBytes)))
	_, _ = fmt.Fprintf(w, "size_verdict: %s\n", res.Assessment.Verdict)
	_, _ = fmt.Fprintf(w, "install: %s\n", res.Install.Describe())
	_, _ = fmt.Fprintf(w, "files_copied: %d\n", res.Copy.FilesCopied)
	_, _ = fmt.Fprintf(w, "files_excluded: %d\n", res.Copy.FilesExcluded)
	_, _ = fmt.Fprintf(w, "uploaded: %s\n", boolStr(res.Uploaded))
	_, _ = fmt.Fprintf(w, "warnings: %d\n", res.Warnings)
	_, _ = fmt.Fprintf(w, "log: %s\n", res.LogPath)
	_, _ = fmt.Fprintln(w, "status: ok")
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
