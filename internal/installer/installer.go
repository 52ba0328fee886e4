// Package installer resolves the dependency manifest into the build
// directory through an ordered sequence of fallback strategies.
//
// Every strategy is judged by its observed effect on the target directory,
// not by the installer process exit code: a bulk install that exits 0 but
// produces none of the expected principal packages still escalates to the
// next strategy.
package installer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"funcpack/internal/buildlog"
	"funcpack/internal/exec"
	"funcpack/internal/fs"
	"funcpack/internal/manifest"
)

// Strategy names as they appear in outcomes and the run log.
const (
	StrategyBulk       = "bulk"
	StrategyBulkNoDeps = "bulk-no-deps"
	StrategyPerLine    = "per-line"
)

// Outcome is the tagged result of the install stage. The pipeline keeps only
// the final outcome: the first strategy whose effect check passed, or the
// exhausted per-line attempt.
type Outcome struct {
	// Strategy is the name of the attempt that produced this outcome,
	// empty when the stage was skipped or the installer was missing.
	Strategy string

	// StrategyIndex is the 1-based position of that attempt, 0 if none ran.
	StrategyIndex int

	// Detected holds the principal package directories found in the target
	// directory after the final attempt, sorted.
	Detected []string

	// Succeeded reports whether the stage contributed usable dependencies.
	Succeeded bool

	// LinesInstalled and LinesFailed count per-line results (per-line only).
	LinesInstalled int
	LinesFailed    int

	// Skipped is set when no manifest exists.
	Skipped bool

	// InstallerMissing is set when the installer binary could not be run.
	InstallerMissing bool
}

// Installer runs dependency installation against a build directory.
type Installer struct {
	CR         exec.CommandRunner
	FS         fs.FS
	Log        *buildlog.Logger
	Binary     string   // installer binary, e.g. "pip"
	Principals []string // expected principal package name prefixes
}

// New creates an Installer.
func New(cr exec.CommandRunner, filesystem fs.FS, log *buildlog.Logger, binary string, principals []string) *Installer {
	return &Installer{CR: cr, FS: filesystem, Log: log, Binary: binary, Principals: principals}
}

// Install populates targetDir from the manifest at manifestPath.
//
// Failure modes here are degraded-but-continuable by design: a missing
// manifest skips the stage, a missing installer binary logs a warning, and
// per-line failures are counted rather than raised. The caller decides
// nothing; it reads the Outcome.
func (ins *Installer) Install(ctx context.Context, manifestPath, targetDir string) Outcome {
	specs, found, err := manifest.Read(ins.FS, manifestPath)
	if err != nil {
		ins.Log.Warnf("manifest at %s is unreadable (%v); skipping dependency install", manifestPath, err)
		return Outcome{Skipped: true}
	}
	if !found {
		ins.Log.Infof("no manifest at %s; skipping dependency install", manifestPath)
		return Outcome{Skipped: true}
	}
	ins.Log.Infof("installing dependencies from %s (%d specifiers)", manifestPath, len(specs))

	attempts := []struct {
		name string
		args []string
	}{
		{StrategyBulk, []string{"install", "-r", manifestPath, "-t", targetDir, "--upgrade", "--force-reinstall", "--no-cache-dir"}},
		{StrategyBulkNoDeps, []string{"install", "-r", manifestPath, "-t", targetDir, "--upgrade", "--force-reinstall", "--no-cache-dir", "--no-deps"}},
	}

	for i, a := range attempts {
		index := i + 1
		res, err := ins.CR.Run(ctx, ins.Binary, a.args, exec.RunOpts{})
		if err != nil {
			ins.Log.Warnf("package installer %q not available (%v); continuing without dependencies", ins.Binary, err)
			return Outcome{Strategy: a.name, StrategyIndex: index, InstallerMissing: true}
		}
		if res.ExitCode != 0 {
			ins.Log.Warnf("strategy %d (%s) exited with code %d", index, a.name, res.ExitCode)
		}

		detected := DetectPrincipals(targetDir, ins.Principals)
		if len(detected) > 0 {
			ins.Log.Infof("strategy %d (%s) verified: found %s", index, a.name, strings.Join(detected, ", "))
			return Outcome{Strategy: a.name, StrategyIndex: index, Detected: detected, Succeeded: true}
		}
		ins.Log.Warnf("strategy %d (%s) produced no principal packages; escalating", index, a.name)
	}

	return ins.installPerLine(ctx, specs, targetDir)
}

// installPerLine is the last-resort strategy: one installer invocation per
// manifest line, continuing past individual failures.
func (ins *Installer) installPerLine(ctx context.Context, specs []string, targetDir string) Outcome {
	out := Outcome{Strategy: StrategyPerLine, StrategyIndex: 3}

	for _, spec := range specs {
		args := []string{"install", spec, "-t", targetDir, "--no-deps"}
		res, err := ins.CR.Run(ctx, ins.Binary, args, exec.RunOpts{})
		if err != nil {
			ins.Log.Warnf("package installer %q not available (%v); stopping per-line install", ins.Binary, err)
			out.InstallerMissing = true
			break
		}
		if res.ExitCode == 0 {
			out.LinesInstalled++
		} else {
			out.LinesFailed++
			ins.Log.Warnf("dependency line failed: %s (exit %d)", manifest.SpecifierName(spec), res.ExitCode)
		}
	}

	out.Detected = DetectPrincipals(targetDir, ins.Principals)
	out.Succeeded = out.LinesInstalled > 0 || len(out.Detected) > 0
	ins.Log.Infof("per-line install finished: %d ok, %d failed", out.LinesInstalled, out.LinesFailed)
	return out
}

// DetectPrincipals scans the immediate subdirectories of dir and returns the
// names matching any principal package prefix, sorted. Name comparison is
// case-insensitive; pandas.libs and botocore both count for their prefixes.
func DetectPrincipals(dir string, principals []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var detected []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, p := range principals {
			if strings.HasPrefix(name, strings.ToLower(p)) {
				detected = append(detected, e.Name())
				break
			}
		}
	}
	sort.Strings(detected)
	return detected
}

// Describe renders the outcome for the run summary.
func (o Outcome) Describe() string {
	switch {
	case o.Skipped:
		return "skipped (no manifest)"
	case o.InstallerMissing:
		return "installer unavailable"
	case o.Strategy == StrategyPerLine:
		return fmt.Sprintf("%s (%d ok, %d failed)", o.Strategy, o.LinesInstalled, o.LinesFailed)
	case o.Succeeded:
		return o.Strategy
	default:
		return "no packages installed"
	}
}
