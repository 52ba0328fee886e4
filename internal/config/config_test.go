package config

import (
	"io"
	iofs "io/fs"
	"os"
	"strings"
	"testing"

	"funcpack/internal/errors"
	"funcpack/internal/fs"
)

// stubFS is a test stub for the fs.FS interface.
type stubFS struct {
	files map[string][]byte
}

func newStubFS() *stubFS {
	return &stubFS{files: make(map[string][]byte)}
}

func (s *stubFS) ReadFile(path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (s *stubFS) WriteFile(path string, d []byte, p os.FileMode) error { return nil }
func (s *stubFS) MkdirAll(path string, perm os.FileMode) error         { return nil }
func (s *stubFS) Stat(path string) (iofs.FileInfo, error)              { return nil, os.ErrNotExist }
func (s *stubFS) Rename(o, n string) error                             { return nil }
func (s *stubFS) Remove(path string) error                             { return nil }
func (s *stubFS) CreateTemp(dir, pattern string) (string, io.WriteCloser, error) {
	return "", nil, os.ErrPermission
}

// Verify stubFS implements fs.FS interface (compile-time check)
var _ fs.FS = (*stubFS)(nil)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	stub := newStubFS()
	cfg, found, err := Load(stub, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("found = true for missing funcpack.json")
	}
	if cfg.MaxFileSizeBytes != DefaultMaxFileSizeBytes {
		t.Errorf("MaxFileSizeBytes = %d, want %d", cfg.MaxFileSizeBytes, DefaultMaxFileSizeBytes)
	}
	if cfg.Installer != "pip" {
		t.Errorf("Installer = %q, want pip", cfg.Installer)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	stub := newStubFS()
	stub.files["/project/funcpack.json"] = []byte(`{"maxFileSizeBytes": `)
	_, _, err := Load(stub, "/project")
	if err == nil {
		t.Fatal("expected error for invalid json")
	}
	if errors.GetCode(err) != errors.EInvalidConfig {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.EInvalidConfig)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	stub := newStubFS()
	stub.files["/project/funcpack.json"] = []byte(`{"maxArchiveBytes": 1}`)
	_, _, err := Load(stub, "/project")
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "unknown field: maxArchiveBytes") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_StrictTypes(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"string byte count", `{"maxFileSizeBytes": "5MB"}`},
		{"fractional byte count", `{"warnThresholdBytes": 45.5}`},
		{"scalar pattern list", `{"excludeFilePatterns": "*.md"}`},
		{"numeric installer", `{"installer": 3}`},
		{"object service list", `{"essentialServiceNames": {"s3": true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubFS()
			stub.files["/project/funcpack.json"] = []byte(tt.json)
			_, _, err := Load(stub, "/project")
			if err == nil {
				t.Fatal("expected type error")
			}
			if errors.GetCode(err) != errors.EInvalidConfig {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.EInvalidConfig)
			}
		})
	}
}

func TestLoad_WholeFloatAccepted(t *testing.T) {
	stub := newStubFS()
	stub.files["/project/funcpack.json"] = []byte(`{"maxFileSizeBytes": 2097152.0}`)
	cfg, _, err := Load(stub, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxFileSizeBytes != 2097152 {
		t.Errorf("MaxFileSizeBytes = %d, want 2097152", cfg.MaxFileSizeBytes)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	stub := newStubFS()
	stub.files["/project/funcpack.json"] = []byte(`{
		"maxFileSizeBytes": 1048576,
		"principalPackages": ["widgetlib"]
	}`)
	cfg, found, err := Load(stub, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Error("found = false for present funcpack.json")
	}
	if cfg.MaxFileSizeBytes != 1048576 {
		t.Errorf("MaxFileSizeBytes = %d, want 1048576", cfg.MaxFileSizeBytes)
	}
	if len(cfg.PrincipalPackages) != 1 || cfg.PrincipalPackages[0] != "widgetlib" {
		t.Errorf("PrincipalPackages = %v", cfg.PrincipalPackages)
	}
	// untouched keys keep their defaults
	if cfg.WarnThresholdBytes != DefaultWarnThresholdBytes {
		t.Errorf("WarnThresholdBytes = %d, want default", cfg.WarnThresholdBytes)
	}
	if cfg.Installer != "pip" {
		t.Errorf("Installer = %q, want pip", cfg.Installer)
	}
}

func TestLoad_ThresholdOrdering(t *testing.T) {
	stub := newStubFS()
	stub.files["/project/funcpack.json"] = []byte(`{
		"warnThresholdBytes": 52428800,
		"hardThresholdBytes": 47185920
	}`)
	_, _, err := Load(stub, "/project")
	if err == nil {
		t.Fatal("expected error when warn exceeds hard threshold")
	}
	if errors.GetCode(err) != errors.EInvalidConfig {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.EInvalidConfig)
	}
}

func TestLoad_RejectsNonPositiveSizes(t *testing.T) {
	stub := newStubFS()
	stub.files["/project/funcpack.json"] = []byte(`{"maxFileSizeBytes": 0}`)
	if _, _, err := Load(stub, "/project"); err == nil {
		t.Fatal("expected error for zero maxFileSizeBytes")
	}
}

func TestDefault_PolicyContents(t *testing.T) {
	cfg := Default()

	hasPath := func(p string) bool {
		for _, v := range cfg.ExcludePathPatterns {
			if v == p {
				return true
			}
		}
		return false
	}
	hasGlob := func(p string) bool {
		for _, v := range cfg.ExcludeFilePatterns {
			if v == p {
				return true
			}
		}
		return false
	}

	if !hasPath(".venv") {
		t.Error("default path patterns missing .venv")
	}
	if !hasPath("__pycache__") {
		t.Error("default path patterns missing __pycache__")
	}
	if !hasGlob("*.md") {
		t.Error("default file patterns missing *.md")
	}
	if !hasGlob("*.dist-info") {
		t.Error("default file patterns missing *.dist-info")
	}
	if !hasGlob("requirements.txt") || !hasGlob(ConfigFileName) {
		t.Error("the tool's own input files must be excluded by default")
	}
	if cfg.WarnThresholdBytes != 45*1024*1024 || cfg.HardThresholdBytes != 50*1024*1024 {
		t.Errorf("thresholds = %d/%d", cfg.WarnThresholdBytes, cfg.HardThresholdBytes)
	}
	if len(cfg.EssentialServiceNames) == 0 {
		t.Error("default essential services empty")
	}
}
