// Package archive assembles the staged build directory into the final zip
// artifact and validates the result before it is reported as the run's
// output.
package archive

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"funcpack/internal/buildlog"
	"funcpack/internal/errors"
)

// Name returns the archive filename for a project packaged at t,
// <project>_<YYYYMMDD_HHmmss>.zip.
func Name(project string, t time.Time) string {
	return project + "_" + buildlog.Stamp(t) + ".zip"
}

// Builder writes zip archives from a staged build directory.
type Builder struct {
	Log *buildlog.Logger
}

func NewBuilder(log *buildlog.Logger) *Builder {
	return &Builder{Log: log}
}

// VerifyNonEmpty fails when the staged tree holds no files. An empty
// package is never a valid outcome, so this runs before any archive file
// is created. The hints name the usual causes in likelihood order.
func (b *Builder) VerifyNonEmpty(buildDir string) error {
	n := countFiles(buildDir)
	if n > 0 {
		b.Log.Infof("staged %d files for packaging", n)
		return nil
	}
	b.Log.Errorf("nothing to package: the build directory is empty after filtering and optimization")
	b.Log.Errorf("hint: the dependency install may have failed entirely (check warnings above)")
	b.Log.Errorf("hint: the exclusion patterns may have filtered out every source file")
	b.Log.Errorf("hint: source files may have failed to copy into the build directory")
	return errors.NewWithDetails(errors.EEmptyPackage, "no files to package", map[string]string{
		"build_dir": buildDir,
	})
}

// Build compresses every regular file under buildDir into a zip at
// archivePath. Entry names are forward-slash paths relative to buildDir;
// the base directory itself gets no entry. Returns the entry count.
func (b *Builder) Build(buildDir, archivePath string) (int, error) {
	staged, err := stageEntries(buildDir)
	if err != nil {
		return 0, errors.Wrap(errors.EArchiveCreateFailed, "scanning build directory", err)
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return 0, errors.Wrap(errors.EArchiveCreateFailed, "creating output directory", err)
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return 0, errors.Wrap(errors.EArchiveCreateFailed, fmt.Sprintf("creating %s", filepath.Base(archivePath)), err)
	}

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, s := range staged {
		if err := addEntry(zw, s); err != nil {
			_ = zw.Close()
			_ = f.Close()
			_ = os.Remove(archivePath)
			return 0, errors.Wrap(errors.EArchiveCreateFailed, fmt.Sprintf("adding %s", s.Rel), err)
		}
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(archivePath)
		return 0, errors.Wrap(errors.EArchiveCreateFailed, "finalizing archive", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(archivePath)
		return 0, errors.Wrap(errors.EArchiveCreateFailed, "writing archive", err)
	}

	b.Log.Infof("created %s with %d entries", filepath.Base(archivePath), len(staged))
	return len(staged), nil
}

// Validate opens the archive and requires at least one file entry. A path
// that does not exist reports the archive as never created; an unreadable
// or empty archive is reported as invalid. Returns the file entry count.
func Validate(archivePath string) (int, error) {
	if _, err := os.Stat(archivePath); err != nil {
		return 0, errors.Wrap(errors.EArchiveCreateFailed,
			fmt.Sprintf("archive %s was never created", filepath.Base(archivePath)), err)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, errors.Wrap(errors.EArchiveInvalid,
			fmt.Sprintf("archive %s exists but cannot be opened", filepath.Base(archivePath)), err)
	}
	defer zr.Close()

	n := 0
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			n++
		}
	}
	if n == 0 {
		return 0, errors.New(errors.EArchiveInvalid,
			fmt.Sprintf("archive %s exists but contains no entries", filepath.Base(archivePath)))
	}
	return n, nil
}

type stagedFile struct {
	Rel     string // forward-slash path inside the archive
	Abs     string
	Mode    fs.FileMode
	ModTime time.Time
}

// stageEntries lists every regular file under buildDir, sorted by entry
// name for a stable archive layout.
func stageEntries(buildDir string) ([]stagedFile, error) {
	var staged []stagedFile
	err := filepath.WalkDir(buildDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, rerr := filepath.Rel(buildDir, p)
		if rerr != nil {
			return rerr
		}
		s := stagedFile{Rel: filepath.ToSlash(rel), Abs: p, Mode: 0o644, ModTime: time.Now()}
		if info, ierr := d.Info(); ierr == nil {
			s.Mode = info.Mode().Perm()
			s.ModTime = info.ModTime()
		}
		staged = append(staged, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(staged, func(i, j int) bool { return staged[i].Rel < staged[j].Rel })
	return staged, nil
}

func addEntry(zw *zip.Writer, s stagedFile) error {
	h := &zip.FileHeader{Name: s.Rel, Method: zip.Deflate}
	h.SetMode(s.Mode)
	h.Modified = s.ModTime

	w, err := zw.CreateHeader(h)
	if err != nil {
		return err
	}
	in, err := os.Open(s.Abs)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

func countFiles(buildDir string) int {
	n := 0
	_ = filepath.WalkDir(buildDir, func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}
