// Package errors provides error formatting for funcpack CLI output.
package errors

import (
	"io"
	"sort"
	"strings"
)

// PrintOptions controls error output formatting.
type PrintOptions struct {
	// Verbose enables detailed error output with more context keys.
	Verbose bool
}

// Context key whitelist (default mode, in printing order).
var defaultContextKeys = []string{
	"op",
	"run_id",
	"project",
	"manifest",
	"build_dir",
	"publish_dir",
	"archive",
	"strategy",
	"command",
	"exit_code",
	"size",
	"log",
}

// Additional context keys for verbose mode.
var verboseContextKeys = []string{
	"op",
	"run_id",
	"project",
	"manifest",
	"build_dir",
	"publish_dir",
	"archive",
	"strategy",
	"command",
	"exit_code",
	"size",
	"size_bytes",
	"entries",
	"files_copied",
	"files_excluded",
	"log",
	"stderr",
	"hint",
}

// Max chars for single-line context values.
const maxValueLen = 256

// Format formats an error for display without I/O.
// This is a pure function ready for printing; it never reads files.
func Format(err error, opts PrintOptions) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	pe, isPack := AsPackError(err)
	if !isPack {
		// Fallback for non-PackError errors
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	// Line 1: error_code
	sb.WriteString("error_code: ")
	sb.WriteString(string(pe.Code))
	sb.WriteString("\n")

	// Line 2: message
	sb.WriteString(pe.Msg)
	sb.WriteString("\n")

	contextKeys := defaultContextKeys
	if opts.Verbose {
		contextKeys = verboseContextKeys
	}

	printedKeys := make(map[string]bool)
	wroteContext := false

	for _, key := range contextKeys {
		if pe.Details == nil {
			continue
		}
		val, ok := pe.Details[key]
		if !ok || val == "" {
			continue
		}
		// Hint is printed separately at the end.
		if key == "hint" {
			continue
		}
		if !wroteContext {
			sb.WriteString("\n")
			wroteContext = true
		}
		printedKeys[key] = true
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(sanitizeValue(val, maxValueLen))
		sb.WriteString("\n")
	}

	// In verbose mode, print remaining keys under an extra: section.
	if opts.Verbose && pe.Details != nil {
		var extraKeys []string
		for key := range pe.Details {
			if !printedKeys[key] && key != "hint" {
				extraKeys = append(extraKeys, key)
			}
		}
		if len(extraKeys) > 0 {
			sort.Strings(extraKeys)
			sb.WriteString("\nextra:\n")
			for _, key := range extraKeys {
				val := pe.Details[key]
				if val == "" {
					continue
				}
				sb.WriteString("  ")
				sb.WriteString(key)
				sb.WriteString(": ")
				sb.WriteString(sanitizeValue(val, maxValueLen))
				sb.WriteString("\n")
			}
		}
	}

	// Hint line (if present)
	if pe.Details != nil {
		if hint, ok := pe.Details["hint"]; ok && hint != "" {
			sb.WriteString("\nhint: ")
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}

	for _, try := range deriveTryLines(pe) {
		sb.WriteString("try: ")
		sb.WriteString(try)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintWithOptions writes a formatted error to w with the given options.
func PrintWithOptions(w io.Writer, err error, opts PrintOptions) {
	if err == nil {
		return
	}
	_, _ = io.WriteString(w, Format(err, opts))
}

// sanitizeValue sanitizes a value for single-line context output.
// - Trims trailing whitespace first
// - Normalizes CRLF to LF
// - Replaces newlines with literal \n
// - Truncates to maxLen chars
func sanitizeValue(val string, maxLen int) string {
	val = strings.TrimRight(val, " \t\r\n")
	val = strings.ReplaceAll(val, "\r\n", "\n")
	val = strings.ReplaceAll(val, "\n", "\\n")
	if len(val) > maxLen {
		return val[:maxLen] + "…"
	}
	return val
}

// deriveTryLines returns actionable suggestions based on error code.
func deriveTryLines(pe *PackError) []string {
	if pe == nil {
		return nil
	}

	var lines []string

	switch pe.Code {
	case EEmptyPackage:
		lines = append(lines, "funcpack doctor")
	case EUploadNotConfigured:
		lines = append(lines, "set FUNCPACK_S3_ENDPOINT (and credentials) in the environment or .env")
	case EInvalidConfig:
		lines = append(lines, "fix funcpack.json or delete it to use the built-in defaults")
	}

	return lines
}
