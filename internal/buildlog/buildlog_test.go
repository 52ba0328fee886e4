package buildlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"funcpack/internal/fs"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestLogger_LineFormat(t *testing.T) {
	var echo bytes.Buffer
	l := New(&echo, fixedClock())

	l.Infof("installing dependencies from %s", "requirements.txt")

	want := "[INFO] | 2024-03-15 10:30:00 | installing dependencies from requirements.txt\n"
	if echo.String() != want {
		t.Errorf("echo = %q, want %q", echo.String(), want)
	}
}

func TestLogger_EntriesInOrder(t *testing.T) {
	l := New(nil, fixedClock())
	l.Infof("one")
	l.Warnf("two")
	l.Errorf("three")
	l.Successf("four")

	entries := l.Entries()
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	wantLevels := []Level{LevelInfo, LevelWarning, LevelError, LevelSuccess}
	wantMsgs := []string{"one", "two", "three", "four"}
	for i, e := range entries {
		if e.Level != wantLevels[i] || e.Message != wantMsgs[i] {
			t.Errorf("entry %d = %s %q, want %s %q", i, e.Level, e.Message, wantLevels[i], wantMsgs[i])
		}
	}
}

func TestLogger_WarningCount(t *testing.T) {
	l := New(nil, fixedClock())
	l.Infof("ok")
	l.Warnf("careful")
	l.Warnf("careful again")

	if got := l.WarningCount(); got != 2 {
		t.Errorf("WarningCount = %d, want 2", got)
	}
}

func TestLogger_FlushWritesAllLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publish", "project_20240315_103000.log")

	l := New(nil, fixedClock())
	l.Infof("starting")
	l.Successf("done")

	if err := l.Flush(fs.NewRealFS(), path); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "[INFO] | ") || !strings.HasSuffix(lines[0], "| starting") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[SUCCESS] | ") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestLogger_EntriesReturnsCopy(t *testing.T) {
	l := New(nil, fixedClock())
	l.Infof("original")

	got := l.Entries()
	got[0].Message = "mutated"

	if l.Entries()[0].Message != "original" {
		t.Error("Entries exposed internal slice")
	}
}

func TestSuccessLogName(t *testing.T) {
	got := SuccessLogName("my_project_20240315_103000.zip")
	want := "my_project_20240315_103000.log"
	if got != want {
		t.Errorf("SuccessLogName = %q, want %q", got, want)
	}
}

func TestErrorLogName(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	got := ErrorLogName(ts)
	want := "error_20240315_103000.log"
	if got != want {
		t.Errorf("ErrorLogName = %q, want %q", got, want)
	}
}

func TestStamp(t *testing.T) {
	ts := time.Date(2024, 12, 1, 23, 59, 58, 0, time.UTC)
	if got := Stamp(ts); got != "20241201_235958" {
		t.Errorf("Stamp = %q", got)
	}
}
