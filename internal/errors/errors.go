// Package errors defines the stable error code system for funcpack.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract: scripts and CI match on these.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Input/configuration error codes
	EProjectNotFound Code = "E_PROJECT_NOT_FOUND" // project dir missing or not a directory
	EInvalidConfig   Code = "E_INVALID_CONFIG"    // funcpack.json is present but malformed

	// Environment error codes (abort before any mutation)
	EPublishDirFailed Code = "E_PUBLISH_DIR_FAILED" // publish dir cannot be created or written
	EBuildDirFailed   Code = "E_BUILD_DIR_FAILED"   // build dir cannot be cleared or created

	// Content error codes
	EEmptyPackage Code = "E_EMPTY_PACKAGE" // zero files survive filtering + optimization

	// Artifact error codes
	EArchiveCreateFailed Code = "E_ARCHIVE_CREATE_FAILED" // archive was never created on disk
	EArchiveInvalid      Code = "E_ARCHIVE_INVALID"       // archive exists but is unreadable or has zero entries

	// Command error codes
	ECleanFailed         Code = "E_CLEAN_FAILED"          // clean could not remove a directory
	EPathOutsideProject  Code = "E_PATH_OUTSIDE_PROJECT"  // removal target escapes the project root
	EUploadNotConfigured Code = "E_UPLOAD_NOT_CONFIGURED" // --upload requested without endpoint config
	EAborted             Code = "E_ABORTED"               // user declined or confirmation failed
)

// PackError is the standard error type for funcpack errors.
type PackError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *PackError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PackError) Unwrap() error {
	return e.Cause
}

// ExitCodeError wraps an error with an explicit process exit code.
type ExitCodeError struct {
	Err  error
	Code int
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func (e *ExitCodeError) ExitCode() int {
	return e.Code
}

// WithExitCode wraps err with a specific process exit code.
func WithExitCode(err error, code int) error {
	return &ExitCodeError{Err: err, Code: code}
}

// New creates a new PackError with the given code and message.
func New(code Code, msg string) error {
	return &PackError{Code: code, Msg: msg}
}

// NewWithDetails creates a new PackError with code, message, and details.
// Details map is defensively copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &PackError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new PackError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &PackError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new PackError wrapping an underlying error with details.
// Details map is defensively copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &PackError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a PackError.
func GetCode(err error) Code {
	var pe *PackError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// AsPackError returns (*PackError, true) if err is or wraps a PackError.
func AsPackError(err error) (*PackError, bool) {
	var pe *PackError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// copyDetails returns a defensive copy of the details map, or nil if empty/nil.
func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(interface{ ExitCode() int }); ok {
		return ec.ExitCode()
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var pe *PackError
	if errors.As(err, &pe) {
		_, _ = fmt.Fprintf(w, "error_code: %s\n", pe.Code)
		_, _ = fmt.Fprintln(w, pe.Msg)
	} else {
		// Fallback for non-PackError errors (should not happen in practice)
		_, _ = fmt.Fprintln(w, err.Error())
	}
}
