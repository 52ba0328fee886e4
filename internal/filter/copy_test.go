package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"funcpack/internal/buildlog"
)

func copyTestLogger() *buildlog.Logger {
	return buildlog.New(nil, func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	})
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func treeFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}

func TestCopyTree_AppliesRules(t *testing.T) {
	project := t.TempDir()
	buildDir := filepath.Join(project, ".funcpack-build")

	writeFile(t, filepath.Join(project, "app", "main.py"), 100)
	writeFile(t, filepath.Join(project, "app", "secret.venv", "lib.bin"), 100)
	writeFile(t, filepath.Join(project, "README.md"), 10)
	writeFile(t, filepath.Join(project, "data", "huge.bin"), 600)
	writeFile(t, filepath.Join(project, ".git", "HEAD"), 10)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatalf("mkdir build: %v", err)
	}

	log := copyTestLogger()
	c := &Copier{
		Rules:            testRules(),
		MaxFileSizeBytes: 500,
		Log:              log,
	}
	res := c.CopyTree(project, buildDir)

	got := treeFiles(t, buildDir)
	if len(got) != 1 || got[0] != "app/main.py" {
		t.Errorf("build tree = %v, want [app/main.py]", got)
	}
	if res.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1", res.FilesCopied)
	}
	if res.SizeExcluded != 1 {
		t.Errorf("SizeExcluded = %d, want 1", res.SizeExcluded)
	}
	if res.VenvExcluded == 0 {
		t.Error("VenvExcluded = 0, want at least 1 for app/secret.venv/lib.bin")
	}
	if res.BytesCopied != 100 {
		t.Errorf("BytesCopied = %d, want 100", res.BytesCopied)
	}

	// size exclusions are logged individually with the computed size
	var sizeLine string
	for _, e := range log.Entries() {
		if strings.Contains(e.Message, "huge.bin") {
			sizeLine = e.Message
		}
	}
	if !strings.Contains(sizeLine, "exceeds") {
		t.Errorf("no individual size-exclusion log line, got %q", sizeLine)
	}
}

func TestCopyTree_NeverEntersBuildOrPublishDirs(t *testing.T) {
	project := t.TempDir()
	buildDir := filepath.Join(project, ".funcpack-build")
	publishDir := filepath.Join(project, "publish")

	writeFile(t, filepath.Join(project, "main.py"), 10)
	writeFile(t, filepath.Join(buildDir, "stale.py"), 10)
	writeFile(t, filepath.Join(publishDir, "old_archive.bin"), 10)

	c := &Copier{
		Rules:            testRules(),
		MaxFileSizeBytes: 500,
		Log:              copyTestLogger(),
		SkipDirs:         []string{publishDir},
	}
	res := c.CopyTree(project, buildDir)

	got := treeFiles(t, buildDir)
	for _, f := range got {
		if strings.Contains(f, "stale") || strings.Contains(f, "old_archive") {
			t.Errorf("build or publish content leaked into package: %v", got)
		}
	}
	if res.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1", res.FilesCopied)
	}
}

func TestCopyTree_PreservesNestedPaths(t *testing.T) {
	project := t.TempDir()
	buildDir := filepath.Join(project, ".funcpack-build")

	writeFile(t, filepath.Join(project, "app", "service", "sync.py"), 10)
	writeFile(t, filepath.Join(project, "app", "models", "record.py"), 10)

	c := &Copier{Rules: testRules(), MaxFileSizeBytes: 500, Log: copyTestLogger()}
	res := c.CopyTree(project, buildDir)

	got := treeFiles(t, buildDir)
	want := map[string]bool{"app/service/sync.py": true, "app/models/record.py": true}
	if len(got) != 2 {
		t.Fatalf("build tree = %v", got)
	}
	for _, f := range got {
		if !want[f] {
			t.Errorf("unexpected file %s", f)
		}
	}
	if res.FilesCopied != 2 {
		t.Errorf("FilesCopied = %d, want 2", res.FilesCopied)
	}
}

func TestCopyTree_CopyFailureIsWarningNotFatal(t *testing.T) {
	project := t.TempDir()
	buildDir := filepath.Join(project, ".funcpack-build")

	writeFile(t, filepath.Join(project, "app", "main.py"), 10)
	writeFile(t, filepath.Join(project, "zlast.py"), 10)

	// a regular file where the app/ directory must go forces a copy failure
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatalf("mkdir build: %v", err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "app"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed conflict: %v", err)
	}

	log := copyTestLogger()
	c := &Copier{Rules: testRules(), MaxFileSizeBytes: 500, Log: log}
	res := c.CopyTree(project, buildDir)

	if res.CopyFailures != 1 {
		t.Errorf("CopyFailures = %d, want 1", res.CopyFailures)
	}
	if res.FilesCopied != 1 {
		t.Errorf("FilesCopied = %d, want 1 (run continues past the failure)", res.FilesCopied)
	}
	if log.WarningCount() != 1 {
		t.Errorf("warnings = %d, want 1", log.WarningCount())
	}
}
