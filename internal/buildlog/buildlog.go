// Package buildlog collects the run log for a packaging run.
//
// Lines are accumulated in memory and echoed to a writer as they happen; the
// complete log is flushed once, atomically, next to the archive at the end of
// the run. Failed runs flush under a distinct error_* name so a broken run
// never overwrites the log of the last good one.
package buildlog

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"funcpack/internal/fs"
)

// Level classifies a log entry.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelSuccess Level = "SUCCESS"
)

const timeLayout = "2006-01-02 15:04:05"

// stampLayout matches the archive basename stamp.
const stampLayout = "20060102_150405"

// Entry is one recorded log line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Logger accumulates entries in order and mirrors them to Echo.
type Logger struct {
	mu      sync.Mutex
	entries []Entry

	echo io.Writer        // mirror target, may be nil
	now  func() time.Time // injectable clock for deterministic tests
}

// New returns a Logger that echoes each line to echo (nil for silent) and
// stamps entries with now.
func New(echo io.Writer, now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{echo: echo, now: now}
}

// Infof records an INFO entry.
func (l *Logger) Infof(format string, args ...any) {
	l.append(LevelInfo, format, args...)
}

// Warnf records a WARNING entry.
func (l *Logger) Warnf(format string, args ...any) {
	l.append(LevelWarning, format, args...)
}

// Errorf records an ERROR entry.
func (l *Logger) Errorf(format string, args ...any) {
	l.append(LevelError, format, args...)
}

// Successf records a SUCCESS entry.
func (l *Logger) Successf(format string, args ...any) {
	l.append(LevelSuccess, format, args...)
}

func (l *Logger) append(level Level, format string, args ...any) {
	e := Entry{
		Time:    l.now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	echo := l.echo
	l.mu.Unlock()

	if echo != nil {
		fmt.Fprintln(echo, FormatLine(e))
	}
}

// FormatLine renders one entry as a log line.
func FormatLine(e Entry) string {
	return fmt.Sprintf("[%s] | %s | %s", e.Level, e.Time.Format(timeLayout), e.Message)
}

// Entries returns a copy of the recorded entries in order.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// WarningCount returns the number of WARNING entries recorded so far.
func (l *Logger) WarningCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Level == LevelWarning {
			n++
		}
	}
	return n
}

// Render returns the full log as newline-terminated text.
func (l *Logger) Render() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(FormatLine(e))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Flush writes the complete log to path in one atomic step, creating the
// parent directory if needed.
func (l *Logger) Flush(fsys fs.FS, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fs.WriteFileAtomic(fsys, path, l.Render(), 0o644)
}

// SuccessLogName returns the log filename paired with an archive, sharing its
// basename: project_20240101_120000.zip -> project_20240101_120000.log.
func SuccessLogName(archiveName string) string {
	return strings.TrimSuffix(archiveName, filepath.Ext(archiveName)) + ".log"
}

// ErrorLogName returns the log filename for a failed run.
func ErrorLogName(t time.Time) string {
	return "error_" + t.Format(stampLayout) + ".log"
}

// Stamp renders t in the archive-name timestamp format.
func Stamp(t time.Time) string {
	return t.Format(stampLayout)
}
