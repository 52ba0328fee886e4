// Package filter decides which project files belong in the package and
// copies the included ones into the build directory.
//
// Policy lives in a RuleSet built from configuration; the walk itself is
// mechanism. Exclusion order per file: filename glob, then path substring,
// then the per-file size ceiling. First match wins.
package filter

import (
	"path"
	"strings"
)

// PathRule is one path-substring exclusion. VirtualEnv marks rules that
// denote a dependency-isolation directory; matches against them are tallied
// separately for reporting.
type PathRule struct {
	Substring  string
	VirtualEnv bool
}

// RuleSet is the immutable exclusion policy for one run.
type RuleSet struct {
	FileGlobs []string
	PathRules []PathRule
}

// NewRuleSet builds a RuleSet from configured pattern lists. File globs match
// base names of files and directories; path patterns match anywhere in the
// slash-separated relative path.
func NewRuleSet(fileGlobs, pathPatterns []string) RuleSet {
	rules := make([]PathRule, 0, len(pathPatterns))
	for _, p := range pathPatterns {
		rules = append(rules, PathRule{Substring: p, VirtualEnv: isIsolationPattern(p)})
	}
	return RuleSet{FileGlobs: fileGlobs, PathRules: rules}
}

func isIsolationPattern(p string) bool {
	return strings.Contains(p, "venv") || strings.Contains(p, "site-packages")
}

// Decision classifies one file.
type Decision int

const (
	Include Decision = iota
	ExcludeGlob
	ExcludePath
	ExcludeSize
)

// Verdict is the outcome of Decide, carrying the matched pattern for
// reporting.
type Verdict struct {
	Decision   Decision
	Pattern    string
	VirtualEnv bool
}

// MatchesName reports whether a base name matches any file glob.
// Malformed patterns are ignored.
func (rs RuleSet) MatchesName(name string) (string, bool) {
	for _, g := range rs.FileGlobs {
		ok, err := path.Match(g, name)
		if err == nil && ok {
			return g, true
		}
	}
	return "", false
}

func (rs RuleSet) matchPath(relSlash string) (PathRule, bool) {
	for _, r := range rs.PathRules {
		if strings.Contains(relSlash, r.Substring) {
			return r, true
		}
	}
	return PathRule{}, false
}

// Decide applies the exclusion rules to one candidate file. relSlash is the
// project-relative path with forward slashes; size is the file's byte size.
func (rs RuleSet) Decide(relSlash string, size, maxFileSize int64) Verdict {
	if pat, ok := rs.MatchesName(path.Base(relSlash)); ok {
		return Verdict{Decision: ExcludeGlob, Pattern: pat}
	}
	if rule, ok := rs.matchPath(relSlash); ok {
		return Verdict{Decision: ExcludePath, Pattern: rule.Substring, VirtualEnv: rule.VirtualEnv}
	}
	if maxFileSize > 0 && size > maxFileSize {
		return Verdict{Decision: ExcludeSize}
	}
	return Verdict{Decision: Include}
}
