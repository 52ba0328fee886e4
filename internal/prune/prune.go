// Package prune shrinks installed dependencies before archiving.
//
// Known-heavy libraries carry content that is never needed at execution
// time: bundled test suites, native-extension build sources, and per-service
// resource data for services the function will never call. Rules are
// data-driven per library prefix; everything here is best-effort and a
// failed removal only costs archive size, never correctness.
package prune

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"funcpack/internal/buildlog"
)

// LibraryRule describes the prune actions for one installed-library prefix.
type LibraryRule struct {
	// Prefix matches top-level directory names in the build directory.
	Prefix string

	// RemoveSubdirs are directory names deleted directly under the library.
	RemoveSubdirs []string

	// RemoveFileExts are extensions of build-time-only source files deleted
	// recursively within the library.
	RemoveFileExts []string

	// ServiceDataDir, when set, names the per-service resource directory
	// whose subdirectories are pruned down to an essential allow-list.
	// Loose files in it (shared endpoint data) are always kept.
	ServiceDataDir string
}

// DefaultLibraryRules covers the heavy dependencies this pipeline was built
// around. The prefixes line up with the principal package configuration.
func DefaultLibraryRules() []LibraryRule {
	return []LibraryRule{
		{Prefix: "pandas", RemoveSubdirs: []string{"tests", "testing"}, RemoveFileExts: []string{".pyx", ".pxd", ".pxi"}},
		{Prefix: "numpy", RemoveSubdirs: []string{"tests"}},
		{Prefix: "boto", ServiceDataDir: "data"},
	}
}

// metadataGlobs are removed everywhere in the build tree, regardless of
// which library owns them.
var metadataGlobs = []string{"*.dist-info", "*.egg-info", "__pycache__"}

// Result aggregates what the optimizer removed.
type Result struct {
	DirsRemoved     int
	FilesRemoved    int
	ServicesPruned  int
	MetadataRemoved int
	BytesFreed      int64
}

// Optimizer applies prune rules to a populated build directory.
type Optimizer struct {
	Rules             []LibraryRule
	EssentialServices []string
	Log               *buildlog.Logger
}

// New creates an Optimizer with the default rule table.
func New(essentialServices []string, log *buildlog.Logger) *Optimizer {
	return &Optimizer{Rules: DefaultLibraryRules(), EssentialServices: essentialServices, Log: log}
}

// Optimize walks the build directory's top-level entries, applies the
// matching library rules, then sweeps package metadata and bytecode caches
// from the whole tree. Absent targets are skipped silently; failed removals
// are logged as warnings and the pass continues.
func (o *Optimizer) Optimize(buildDir string) Result {
	var res Result

	entries, err := os.ReadDir(buildDir)
	if err != nil {
		// nothing installed, nothing to prune
		return res
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, rule := range o.Rules {
			if strings.HasPrefix(name, strings.ToLower(rule.Prefix)) {
				o.applyRule(filepath.Join(buildDir, e.Name()), e.Name(), rule, &res)
			}
		}
	}

	o.sweepMetadata(buildDir, &res)

	if res.BytesFreed > 0 {
		o.Log.Infof("footprint optimization freed %s (%d dirs, %d files, %d service datasets, %d metadata dirs)",
			humanize.IBytes(uint64(res.BytesFreed)), res.DirsRemoved, res.FilesRemoved, res.ServicesPruned, res.MetadataRemoved)
	}
	return res
}

func (o *Optimizer) applyRule(libDir, libName string, rule LibraryRule, res *Result) {
	for _, sub := range rule.RemoveSubdirs {
		target := filepath.Join(libDir, sub)
		if freed, ok := o.removeTree(target); ok {
			res.DirsRemoved++
			res.BytesFreed += freed
			o.Log.Infof("pruned %s/%s", libName, sub)
		}
	}

	if len(rule.RemoveFileExts) > 0 {
		res.FilesRemoved += o.removeFilesByExt(libDir, rule.RemoveFileExts, res)
	}

	if rule.ServiceDataDir != "" {
		o.pruneServiceData(filepath.Join(libDir, rule.ServiceDataDir), libName, res)
	}
}

// pruneServiceData keeps only the essential services' resource directories.
func (o *Optimizer) pruneServiceData(dataDir, libName string, res *Result) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return
	}

	allowed := make(map[string]bool, len(o.EssentialServices))
	for _, s := range o.EssentialServices {
		allowed[strings.ToLower(s)] = true
	}

	pruned := 0
	for _, e := range entries {
		if !e.IsDir() || allowed[strings.ToLower(e.Name())] {
			continue
		}
		if freed, ok := o.removeTree(filepath.Join(dataDir, e.Name())); ok {
			pruned++
			res.BytesFreed += freed
		}
	}
	if pruned > 0 {
		res.ServicesPruned += pruned
		o.Log.Infof("pruned %d non-essential service datasets from %s", pruned, libName)
	}
}

func (o *Optimizer) removeFilesByExt(root string, exts []string, res *Result) int {
	removed := 0
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		for _, want := range exts {
			if ext != want {
				continue
			}
			size := int64(0)
			if info, ierr := d.Info(); ierr == nil {
				size = info.Size()
			}
			if rerr := os.Remove(p); rerr != nil {
				o.Log.Warnf("failed to remove %s: %v", p, rerr)
			} else {
				removed++
				res.BytesFreed += size
			}
			break
		}
		return nil
	})
	return removed
}

// sweepMetadata removes distribution metadata and bytecode caches anywhere
// in the tree.
func (o *Optimizer) sweepMetadata(buildDir string, res *Result) {
	_ = filepath.WalkDir(buildDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || p == buildDir {
			return nil
		}
		for _, glob := range metadataGlobs {
			if ok, _ := path.Match(glob, d.Name()); ok {
				if freed, removed := o.removeTree(p); removed {
					res.MetadataRemoved++
					res.BytesFreed += freed
				}
				return filepath.SkipDir
			}
		}
		return nil
	})
}

// removeTree deletes a directory tree, returning the bytes it held and
// whether anything was removed. A missing target is a silent no-op.
func (o *Optimizer) removeTree(target string) (int64, bool) {
	info, err := os.Lstat(target)
	if err != nil {
		return 0, false
	}
	size := int64(0)
	if info.IsDir() {
		size = treeSize(target)
	} else {
		size = info.Size()
	}
	if err := os.RemoveAll(target); err != nil {
		o.Log.Warnf("failed to remove %s: %v", target, err)
		return 0, false
	}
	return size, true
}

func treeSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, ierr := d.Info(); ierr == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
