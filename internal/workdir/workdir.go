// Package workdir manages the per-run build and publish directories.
//
// The build directory is tool-owned scratch space inside the project root; it
// is cleared before a run starts and removed again when the run ends, on both
// the success and failure paths. The publish directory receives archives and
// run logs and is never cleared implicitly.
package workdir

import (
	"path/filepath"

	"funcpack/internal/errors"
	"funcpack/internal/fs"
)

const (
	DefaultBuildDirName   = ".funcpack-build"
	DefaultPublishDirName = "publish"
)

// Manager computes and maintains the directories for one project.
// ProjectRoot must be absolute so the removal guard can resolve it.
type Manager struct {
	FS          fs.FS
	ProjectRoot string
}

// NewManager creates a Manager for the given project root.
func NewManager(filesystem fs.FS, projectRoot string) *Manager {
	return &Manager{FS: filesystem, ProjectRoot: projectRoot}
}

// ProjectName returns the project folder name used in archive basenames.
func (m *Manager) ProjectName() string {
	return filepath.Base(filepath.Clean(m.ProjectRoot))
}

// BuildDir returns the path of the working directory.
func (m *Manager) BuildDir() string {
	return filepath.Join(m.ProjectRoot, DefaultBuildDirName)
}

// PublishDir returns the path of the output directory.
func (m *Manager) PublishDir() string {
	return filepath.Join(m.ProjectRoot, DefaultPublishDirName)
}

// PrepareBuildDir clears any state left by an unterminated prior run and
// creates the build directory empty.
func (m *Manager) PrepareBuildDir() error {
	if err := fs.SafeRemoveAll(m.BuildDir(), m.ProjectRoot); err != nil {
		return errors.WrapWithDetails(errors.EBuildDirFailed, "failed to clear stale build directory", err,
			map[string]string{"build_dir": m.BuildDir()})
	}
	if err := m.FS.MkdirAll(m.BuildDir(), 0o755); err != nil {
		return errors.WrapWithDetails(errors.EBuildDirFailed, "failed to create build directory", err,
			map[string]string{"build_dir": m.BuildDir()})
	}
	return nil
}

// EnsurePublishDir creates the publish directory if it does not exist.
// Failure here is fatal before any mutation: without a writable publish
// directory neither the archive nor the run log can land anywhere.
func (m *Manager) EnsurePublishDir() error {
	if err := m.FS.MkdirAll(m.PublishDir(), 0o755); err != nil {
		return errors.WrapWithDetails(errors.EPublishDirFailed, "failed to create publish directory", err,
			map[string]string{"publish_dir": m.PublishDir()})
	}
	return nil
}

// CleanupBuildDir removes the build directory through the subpath guard.
// A missing build directory is a no-op.
func (m *Manager) CleanupBuildDir() error {
	return fs.SafeRemoveAll(m.BuildDir(), m.ProjectRoot)
}

// RemovePublishDir removes the publish directory and everything in it.
// Only the explicit clean command calls this.
func (m *Manager) RemovePublishDir() error {
	return fs.SafeRemoveAll(m.PublishDir(), m.ProjectRoot)
}
