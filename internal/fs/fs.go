// Package fs provides the filesystem abstraction for funcpack.
// Small-file reads and writes go through the FS interface so tests can stub
// them; bulk operations (tree copies, zip streaming) work on real paths.
package fs

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// FS is the filesystem interface used by config loading, manifest reading
// and log persistence.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (iofs.FileInfo, error)
	Rename(oldPath, newPath string) error
	Remove(path string) error
	CreateTemp(dir, pattern string) (string, io.WriteCloser, error)
}

// RealFS is the os-backed FS.
type RealFS struct{}

// NewRealFS returns an FS backed by the os package.
func NewRealFS() *RealFS {
	return &RealFS{}
}

func (RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (RealFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (RealFS) Stat(path string) (iofs.FileInfo, error) {
	return os.Stat(path)
}

func (RealFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (RealFS) Remove(path string) error {
	return os.Remove(path)
}

func (RealFS) CreateTemp(dir, pattern string) (string, io.WriteCloser, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partially written file.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpPath, w, err := fsys.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		fsys.Remove(tmpPath)
		return err
	}
	if err := w.Close(); err != nil {
		fsys.Remove(tmpPath)
		return err
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		fsys.Remove(tmpPath)
		return err
	}
	return nil
}
