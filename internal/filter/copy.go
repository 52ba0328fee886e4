package filter

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"funcpack/internal/buildlog"
)

// Result aggregates what the copy stage did.
type Result struct {
	FilesCopied   int
	FilesExcluded int
	VenvExcluded  int   // exclusions attributed to dependency-isolation rules
	SizeExcluded  int   // exclusions due to the per-file size ceiling
	CopyFailures  int   // individual copy failures, logged and tolerated
	BytesCopied   int64
}

// Copier walks the project tree and copies included files into the build
// directory, preserving relative paths.
type Copier struct {
	Rules            RuleSet
	MaxFileSizeBytes int64
	Log              *buildlog.Logger

	// SkipDirs are absolute directories never entered, regardless of rules.
	// The build and publish directories live inside the project root and
	// must not be recursively packaged.
	SkipDirs []string
}

// CopyTree copies projectRoot's included files into buildDir.
//
// Per-file copy failures are warnings, not errors: a partially complete
// package beats a hard failure mid-copy. Unreadable entries are skipped.
func (c *Copier) CopyTree(projectRoot, buildDir string) Result {
	var res Result

	skip := make(map[string]bool, len(c.SkipDirs)+1)
	skip[filepath.Clean(buildDir)] = true
	for _, d := range c.SkipDirs {
		skip[filepath.Clean(d)] = true
	}

	_ = filepath.WalkDir(projectRoot, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == projectRoot {
			return nil
		}
		if d.IsDir() && skip[filepath.Clean(p)] {
			return filepath.SkipDir
		}

		rel, rerr := filepath.Rel(projectRoot, p)
		if rerr != nil {
			return nil
		}
		relSlash := filepath.ToSlash(rel)

		if d.IsDir() {
			if _, ok := c.Rules.MatchesName(d.Name()); ok {
				// The subtree is pruned wholesale; tally it once if it is
				// a dependency-isolation directory.
				if rule, ok := c.Rules.matchPath(relSlash + "/"); ok && rule.VirtualEnv {
					res.VenvExcluded++
				}
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}

		v := c.Rules.Decide(relSlash, info.Size(), c.MaxFileSizeBytes)
		switch v.Decision {
		case Include:
			if cerr := copyFile(p, filepath.Join(buildDir, rel), info.Mode().Perm()); cerr != nil {
				res.CopyFailures++
				c.Log.Warnf("failed to copy %s: %v", relSlash, cerr)
				return nil
			}
			res.FilesCopied++
			res.BytesCopied += info.Size()
		case ExcludeSize:
			res.FilesExcluded++
			res.SizeExcluded++
			c.Log.Infof("excluded %s: %s exceeds the %s per-file ceiling",
				relSlash, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(c.MaxFileSizeBytes)))
		case ExcludePath:
			res.FilesExcluded++
			if v.VirtualEnv {
				res.VenvExcluded++
			}
		case ExcludeGlob:
			res.FilesExcluded++
		}
		return nil
	})

	return res
}

func copyFile(src, dst string, perm iofs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
