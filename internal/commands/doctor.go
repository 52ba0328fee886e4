package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"funcpack/internal/config"
	"funcpack/internal/errors"
	"funcpack/internal/exec"
	"funcpack/internal/fs"
	"funcpack/internal/manifest"
	"funcpack/internal/workdir"
)

// DoctorOpts holds options for the doctor command.
type DoctorOpts struct {
	// ProjectDir is the optional --project flag to target a specific project.
	ProjectDir string
}

// DoctorReport holds all the data for doctor output.
type DoctorReport struct {
	ProjectRoot   string
	ConfigPresent bool

	Installer        string
	InstallerVersion string // empty when the installer is not available

	ManifestPresent bool
	ManifestLines   int

	BuildDirStale bool
	PublishDir    string

	UploadConfigured bool
	UploadEndpoint   string
	UploadBucket     string
}

// Doctor validates the project setup and reports the resolved environment.
// A missing installer or manifest is reported, not fatal, because pack
// degrades through those conditions too.
func Doctor(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, cwd string, opts DoctorOpts, stdout, stderr io.Writer) error {
	target := resolveProjectDir(cwd, opts.ProjectDir)

	info, err := fsys.Stat(target)
	if err != nil || !info.IsDir() {
		return errors.NewWithDetails(errors.EProjectNotFound,
			fmt.Sprintf("project directory %s does not exist or is not a directory", target),
			map[string]string{"project": target})
	}

	cfg, found, err := config.Load(fsys, target)
	if err != nil {
		return err
	}

	mgr := workdir.NewManager(fsys, target)
	report := DoctorReport{
		ProjectRoot:   target,
		ConfigPresent: found,
		Installer:     cfg.Installer,
		PublishDir:    mgr.PublishDir(),
	}

	report.InstallerVersion = checkInstaller(ctx, cr, cfg.Installer)

	specs, manifestFound, merr := manifest.Read(fsys, filepath.Join(target, manifest.DefaultFileName))
	report.ManifestPresent = manifestFound && merr == nil
	report.ManifestLines = len(specs)

	if _, serr := fsys.Stat(mgr.BuildDir()); serr == nil {
		report.BuildDirStale = true
	}

	up := config.LoadUploadConfig()
	report.UploadConfigured = up.Configured()
	report.UploadEndpoint = up.Endpoint
	report.UploadBucket = up.Bucket

	writeDoctorOutput(stdout, report)

	if report.InstallerVersion == "" {
		_, _ = fmt.Fprintf(stderr, "warning: %s is not installed or not on PATH; pack will continue without dependency install\n", cfg.Installer)
	}
	if !report.ManifestPresent {
		_, _ = fmt.Fprintf(stderr, "warning: no %s found; pack will package source files only\n", manifest.DefaultFileName)
	}
	if report.BuildDirStale {
		_, _ = fmt.Fprintf(stderr, "warning: stale build directory at %s; the next run will clear it\n", mgr.BuildDir())
	}

	return nil
}

// checkInstaller probes the configured installer binary and returns its
// version line, or empty when the binary is missing or broken.
func checkInstaller(ctx context.Context, cr exec.CommandRunner, binary string) string {
	result, err := cr.Run(ctx, binary, []string{"--version"}, exec.RunOpts{})
	if err != nil || result.ExitCode != 0 {
		return ""
	}
	lines := strings.Split(result.Stdout, "\n")
	return strings.TrimSpace(lines[0])
}

// writeDoctorOutput writes the stable key: value output.
func writeDoctorOutput(w io.Writer, r DoctorReport) {
	_, _ = fmt.Fprintf(w, "project_root: %s\n", r.ProjectRoot)
	_, _ = fmt.Fprintf(w, "config_present: %s\n", boolStr(r.ConfigPresent))

	_, _ = fmt.Fprintf(w, "installer: %s\n", r.Installer)
	if r.InstallerVersion != "" {
		_, _ = fmt.Fprintf(w, "installer_version: %s\n", r.InstallerVersion)
	} else {
		_, _ = fmt.Fprintf(w, "installer_version: (not installed)\n")
	}

	_, _ = fmt.Fprintf(w, "manifest_present: %s\n", boolStr(r.ManifestPresent))
	_, _ = fmt.Fprintf(w, "manifest_lines: %d\n", r.ManifestLines)

	_, _ = fmt.Fprintf(w, "build_dir_stale: %s\n", boolStr(r.BuildDirStale))
	_, _ = fmt.Fprintf(w, "publish_dir: %s\n", r.PublishDir)

	_, _ = fmt.Fprintf(w, "upload_configured: %s\n", boolStr(r.UploadConfigured))
	_, _ = fmt.Fprintf(w, "upload_endpoint: %s\n", r.UploadEndpoint)
	_, _ = fmt.Fprintf(w, "upload_bucket: %s\n", r.UploadBucket)

	_, _ = fmt.Fprintln(w, "status: ok")
}
