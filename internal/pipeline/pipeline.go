// Package pipeline sequences one full packaging run.
//
// Stages run strictly in order: prepare directories, install dependencies,
// copy and filter sources, optimize the footprint, assemble and validate
// the archive, classify its size. Degraded stages log warnings and the run
// continues; only conditions that make the output invalid or impossible
// abort. The build directory is removed and the run log flushed on every
// exit path.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"funcpack/internal/archive"
	"funcpack/internal/buildlog"
	"funcpack/internal/config"
	"funcpack/internal/errors"
	"funcpack/internal/exec"
	"funcpack/internal/filter"
	"funcpack/internal/fs"
	"funcpack/internal/ids"
	"funcpack/internal/installer"
	"funcpack/internal/manifest"
	"funcpack/internal/prune"
	"funcpack/internal/workdir"
)

// Options selects what a run does.
type Options struct {
	ProjectRoot string
	Upload      bool
}

// Uploader ships a finished archive to remote storage.
type Uploader interface {
	UploadArchive(ctx context.Context, project, archivePath string) (uploaded bool, err error)
}

// Deps are the injectable collaborators for a run. Zero values fall back
// to the real filesystem, the real process runner, and the wall clock.
type Deps struct {
	FS       fs.FS
	Runner   exec.CommandRunner
	Uploader Uploader
	Echo     io.Writer
	Now      func() time.Time
}

// Result reports what one run produced.
type Result struct {
	RunID       string
	ProjectName string
	ArchivePath string
	LogPath     string

	ArchiveEntries   int
	ArchiveSizeBytes int64
	Assessment       archive.Assessment

	Install installer.Outcome
	Copy    filter.Result
	Prune   prune.Result

	Uploaded bool
	Warnings int
}

// Run executes a packaging run for opts.ProjectRoot.
func Run(ctx context.Context, opts Options, deps Deps) (res Result, err error) {
	if deps.FS == nil {
		deps.FS = fs.NewRealFS()
	}
	if deps.Runner == nil {
		deps.Runner = exec.NewRealRunner()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	log := buildlog.New(deps.Echo, deps.Now)
	res.RunID = ids.NewRunID()

	root, aerr := filepath.Abs(opts.ProjectRoot)
	if aerr != nil {
		return res, errors.Wrap(errors.EProjectNotFound, "cannot resolve project directory", aerr)
	}
	info, serr := deps.FS.Stat(root)
	if serr != nil || !info.IsDir() {
		return res, errors.NewWithDetails(errors.EProjectNotFound,
			fmt.Sprintf("project directory %s does not exist or is not a directory", root),
			map[string]string{"project": root})
	}

	mgr := workdir.NewManager(deps.FS, root)
	res.ProjectName = mgr.ProjectName()
	log.Infof("run %s: packaging %s", res.RunID, res.ProjectName)

	var archiveName string
	defer func() {
		if err != nil {
			log.Errorf("run %s failed: %v", res.RunID, err)
		}
		if cerr := mgr.CleanupBuildDir(); cerr != nil {
			log.Warnf("failed to remove build directory: %v", cerr)
		}
		if err == nil {
			res.LogPath = filepath.Join(mgr.PublishDir(), buildlog.SuccessLogName(archiveName))
		} else {
			res.LogPath = filepath.Join(mgr.PublishDir(), buildlog.ErrorLogName(deps.Now()))
		}
		res.Warnings = log.WarningCount()
		if ferr := log.Flush(deps.FS, res.LogPath); ferr != nil && deps.Echo != nil {
			_, _ = fmt.Fprintf(deps.Echo, "failed to write run log %s: %v\n", res.LogPath, ferr)
		}
		if pe, ok := errors.AsPackError(err); ok {
			if pe.Details == nil {
				pe.Details = map[string]string{}
			}
			pe.Details["run_id"] = res.RunID
			pe.Details["log"] = res.LogPath
		}
	}()

	if err = mgr.EnsurePublishDir(); err != nil {
		return res, err
	}

	cfg, found, cerr := config.Load(deps.FS, root)
	if cerr != nil {
		return res, cerr
	}
	if found {
		log.Infof("loaded %s", config.ConfigFileName)
	} else {
		log.Infof("no %s found, using the default policy", config.ConfigFileName)
	}

	if err = mgr.PrepareBuildDir(); err != nil {
		return res, err
	}

	ins := installer.New(deps.Runner, deps.FS, log, cfg.Installer, cfg.PrincipalPackages)
	res.Install = ins.Install(ctx, filepath.Join(root, manifest.DefaultFileName), mgr.BuildDir())
	log.Infof("dependency install: %s", res.Install.Describe())

	copier := &filter.Copier{
		Rules:            filter.NewRuleSet(cfg.ExcludeFilePatterns, cfg.ExcludePathPatterns),
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
		Log:              log,
		SkipDirs:         []string{mgr.PublishDir()},
	}
	res.Copy = copier.CopyTree(root, mgr.BuildDir())
	log.Infof("copied %d files, excluded %d (%d from isolation directories, %d over the size ceiling)",
		res.Copy.FilesCopied, res.Copy.FilesExcluded, res.Copy.VenvExcluded, res.Copy.SizeExcluded)

	res.Prune = prune.New(cfg.EssentialServiceNames, log).Optimize(mgr.BuildDir())

	builder := archive.NewBuilder(log)
	if err = builder.VerifyNonEmpty(mgr.BuildDir()); err != nil {
		return res, err
	}

	archiveName = archive.Name(res.ProjectName, deps.Now())
	res.ArchivePath = filepath.Join(mgr.PublishDir(), archiveName)
	if res.ArchiveEntries, err = builder.Build(mgr.BuildDir(), res.ArchivePath); err != nil {
		return res, err
	}
	if res.ArchiveEntries, err = archive.Validate(res.ArchivePath); err != nil {
		return res, err
	}

	stat, sterr := deps.FS.Stat(res.ArchivePath)
	if sterr != nil {
		return res, errors.Wrap(errors.EArchiveInvalid, "cannot stat the produced archive", sterr)
	}
	res.ArchiveSizeBytes = stat.Size()
	res.Assessment = archive.Assess(res.ArchiveSizeBytes, cfg.WarnThresholdBytes, cfg.HardThresholdBytes)
	res.Assessment.LogTo(log)

	if opts.Upload {
		res.Uploaded = uploadArchive(ctx, deps.Uploader, log, res.ProjectName, res.ArchivePath)
	}

	log.Successf("packaged %s as %s (%d entries, %s)",
		res.ProjectName, archiveName, res.ArchiveEntries, humanize.IBytes(uint64(res.ArchiveSizeBytes)))
	return res, nil
}

// uploadArchive is strictly best-effort: any failure is a warning and the
// run still succeeds.
func uploadArchive(ctx context.Context, up Uploader, log *buildlog.Logger, project, archivePath string) bool {
	if up == nil {
		log.Warnf("upload requested but no upload endpoint is configured")
		return false
	}
	uploaded, err := up.UploadArchive(ctx, project, archivePath)
	switch {
	case err != nil:
		log.Warnf("upload failed: %v", err)
		return false
	case uploaded:
		log.Infof("uploaded %s", filepath.Base(archivePath))
		return true
	default:
		log.Infof("upload skipped: the stored archive already matches")
		return false
	}
}
