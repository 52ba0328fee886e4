// Package config handles loading and validation of funcpack configuration.
//
// Project-level packaging policy lives in an optional funcpack.json at the
// project root; upload destinations come from the environment (see env.go).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"funcpack/internal/errors"
	"funcpack/internal/fs"
)

// ConfigFileName is the project-level configuration file.
const ConfigFileName = "funcpack.json"

// Built-in size limits. The warn and hard thresholds mirror the deployment
// target's console upload ceiling.
const (
	DefaultMaxFileSizeBytes   = 5 * 1024 * 1024
	DefaultWarnThresholdBytes = 45 * 1024 * 1024
	DefaultHardThresholdBytes = 50 * 1024 * 1024
)

// Config is the parsed and validated packaging policy for one project.
type Config struct {
	ExcludePathPatterns   []string `json:"excludePathPatterns"`
	ExcludeFilePatterns   []string `json:"excludeFilePatterns"`
	MaxFileSizeBytes      int64    `json:"maxFileSizeBytes"`
	EssentialServiceNames []string `json:"essentialServiceNames"`
	WarnThresholdBytes    int64    `json:"warnThresholdBytes"`
	HardThresholdBytes    int64    `json:"hardThresholdBytes"`
	PrincipalPackages     []string `json:"principalPackages"`
	Installer             string   `json:"installer"`
}

// Default returns the built-in policy used when funcpack.json is missing.
// Provided funcpack.json keys replace the corresponding default wholesale.
func Default() Config {
	return Config{
		ExcludePathPatterns: []string{
			".venv",
			"venv/",
			"site-packages",
			"__pycache__",
			".git/",
			".idea/",
			".vscode/",
			"tests/",
			"docs/",
			"examples/",
			".pytest_cache",
			".mypy_cache",
			".egg-info",
			".dist-info",
			"node_modules/",
		},
		ExcludeFilePatterns: []string{
			// dependency isolation and caches
			".venv", "venv", "__pycache__", ".pytest_cache", ".mypy_cache",
			// test, doc and example directories
			"tests", "test", "docs", "examples",
			// version control and IDE metadata
			".git", ".svn", ".hg", ".idea", ".vscode",
			// packaging metadata
			"*.dist-info", "*.egg-info",
			// bytecode and compiled leftovers
			"*.pyc", "*.pyo",
			// documentation and media
			"*.md", "*.rst", "*.pdf", "*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico",
			// nested archives and binaries
			"*.zip", "*.tar", "*.gz", "*.rar", "*.exe", "*.dll",
			// packaging tool scripts and inputs
			"*.ps1", "*.bat", "*.cmd", "*.sh",
			"requirements.txt", ConfigFileName,
			"*.log",
		},
		MaxFileSizeBytes:      DefaultMaxFileSizeBytes,
		EssentialServiceNames: []string{"s3", "sts", "lambda", "logs"},
		WarnThresholdBytes:    DefaultWarnThresholdBytes,
		HardThresholdBytes:    DefaultHardThresholdBytes,
		PrincipalPackages:     []string{"pandas", "numpy", "boto"},
		Installer:             "pip",
	}
}

// Load reads funcpack.json from the project root.
// If the file is missing, returns defaults with found=false.
// If the file exists but is invalid, returns E_INVALID_CONFIG.
func Load(filesystem fs.FS, projectRoot string) (Config, bool, error) {
	path := filepath.Join(projectRoot, ConfigFileName)

	data, err := filesystem.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), false, nil
		}
		return Config{}, false, errors.Wrap(errors.EInvalidConfig, "failed to read "+ConfigFileName, err)
	}

	// First, unmarshal into raw map for type checking
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, false, errors.New(errors.EInvalidConfig, "invalid json: "+err.Error())
	}

	cfg, err := parseStrict(raw)
	if err != nil {
		return Config{}, false, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, false, err
	}

	return cfg, true, nil
}

// parseStrict overlays the provided fields on the defaults with strict type
// checking. This catches mismatches that Go's json.Unmarshal would silently
// accept or default.
func parseStrict(raw map[string]json.RawMessage) (Config, error) {
	cfg := Default()
	allowedKeys := map[string]bool{
		"excludePathPatterns":   true,
		"excludeFilePatterns":   true,
		"maxFileSizeBytes":      true,
		"essentialServiceNames": true,
		"warnThresholdBytes":    true,
		"hardThresholdBytes":    true,
		"principalPackages":     true,
		"installer":             true,
	}
	for key := range raw {
		if !allowedKeys[key] {
			return Config{}, errors.New(errors.EInvalidConfig, "unknown field: "+key)
		}
	}

	var err error
	if cfg.ExcludePathPatterns, err = parseStringList(raw, "excludePathPatterns", cfg.ExcludePathPatterns); err != nil {
		return Config{}, err
	}
	if cfg.ExcludeFilePatterns, err = parseStringList(raw, "excludeFilePatterns", cfg.ExcludeFilePatterns); err != nil {
		return Config{}, err
	}
	if cfg.EssentialServiceNames, err = parseStringList(raw, "essentialServiceNames", cfg.EssentialServiceNames); err != nil {
		return Config{}, err
	}
	if cfg.PrincipalPackages, err = parseStringList(raw, "principalPackages", cfg.PrincipalPackages); err != nil {
		return Config{}, err
	}
	if cfg.MaxFileSizeBytes, err = parseByteCount(raw, "maxFileSizeBytes", cfg.MaxFileSizeBytes); err != nil {
		return Config{}, err
	}
	if cfg.WarnThresholdBytes, err = parseByteCount(raw, "warnThresholdBytes", cfg.WarnThresholdBytes); err != nil {
		return Config{}, err
	}
	if cfg.HardThresholdBytes, err = parseByteCount(raw, "hardThresholdBytes", cfg.HardThresholdBytes); err != nil {
		return Config{}, err
	}

	if rawInstaller, ok := raw["installer"]; ok {
		var installer string
		if err := json.Unmarshal(rawInstaller, &installer); err != nil {
			return Config{}, errors.New(errors.EInvalidConfig, "installer must be a string")
		}
		cfg.Installer = installer
	}

	return cfg, nil
}

func parseStringList(raw map[string]json.RawMessage, fieldName string, defaultVal []string) ([]string, error) {
	rawVal, ok := raw[fieldName]
	if !ok {
		return defaultVal, nil
	}
	var list []string
	if err := json.Unmarshal(rawVal, &list); err != nil {
		return nil, errors.New(errors.EInvalidConfig, fieldName+" must be an array of strings")
	}
	return list, nil
}

func parseByteCount(raw map[string]json.RawMessage, fieldName string, defaultVal int64) (int64, error) {
	rawVal, ok := raw[fieldName]
	if !ok {
		return defaultVal, nil
	}
	var n int64
	if err := json.Unmarshal(rawVal, &n); err != nil {
		// Check if it's a different type
		var floatVal float64
		if json.Unmarshal(rawVal, &floatVal) == nil {
			if floatVal != float64(int64(floatVal)) {
				return 0, errors.New(errors.EInvalidConfig, fieldName+" must be an integer byte count")
			}
			return int64(floatVal), nil
		}
		return 0, errors.New(errors.EInvalidConfig, fieldName+" must be an integer byte count")
	}
	return n, nil
}

// Validate checks semantic constraints and returns E_INVALID_CONFIG on failure.
func Validate(cfg Config) error {
	if cfg.MaxFileSizeBytes <= 0 {
		return errors.New(errors.EInvalidConfig, "maxFileSizeBytes must be positive")
	}
	if cfg.WarnThresholdBytes <= 0 || cfg.HardThresholdBytes <= 0 {
		return errors.New(errors.EInvalidConfig, "size thresholds must be positive")
	}
	if cfg.WarnThresholdBytes > cfg.HardThresholdBytes {
		return errors.New(errors.EInvalidConfig, "warnThresholdBytes must not exceed hardThresholdBytes")
	}
	if cfg.Installer == "" {
		return errors.New(errors.EInvalidConfig, "installer must be a non-empty string")
	}
	return nil
}
