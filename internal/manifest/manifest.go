// Package manifest reads the project's dependency manifest: a plain-text
// file with one dependency specifier per line (requirements.txt convention).
package manifest

import (
	"os"
	"strings"

	"funcpack/internal/fs"
)

// DefaultFileName is the manifest looked up at the project root.
const DefaultFileName = "requirements.txt"

// Read loads and parses the manifest at path.
// A missing manifest is not an error: found=false and the install stage is
// skipped by the caller.
func Read(fsys fs.FS, path string) ([]string, bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return Parse(data), true, nil
}

// Parse extracts dependency specifiers from manifest text. Blank lines and
// #-prefixed comment lines are ignored; surrounding whitespace is trimmed.
func Parse(data []byte) []string {
	var specs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	return specs
}

// SpecifierName returns the bare package name of a dependency specifier,
// dropping version constraints, extras and environment markers:
// "pandas==2.2.0" -> "pandas", "boto3[crt]>=1.34; python_version>'3.8'" -> "boto3".
func SpecifierName(spec string) string {
	name := spec
	if i := strings.IndexAny(name, ";#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexAny(name, "=<>!~"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
