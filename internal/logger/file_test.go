package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/firstrun/internal/models"
)

func TestFileLoggerWritesRunLog(t *testing.T) {
	dir := t.TempDir()
	fl, err := NewFileLogger(dir, "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	fl.LogPhaseStart(models.PhaseFirstImpressions)
	fl.LogPhaseComplete(models.PhaseResult{
		Phase:    models.PhaseFirstImpressions,
		Success:  true,
		Scored:   true,
		Score:    8.0,
		Duration: 300 * time.Millisecond,
		Notes:    []string{"README found"},
	})
	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(fl.Path())
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"Audit Run Log", "first_impressions", "score 8.0", "README found"} {
		if !strings.Contains(out, want) {
			t.Errorf("run log missing %q", want)
		}
	}
}

func TestFileLoggerLatestSymlink(t *testing.T) {
	dir := t.TempDir()

	fl1, err := NewFileLogger(dir, "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	fl1.Close()

	// A second run must repoint the symlink without failing.
	fl2, err := NewFileLogger(dir, "info")
	if err != nil {
		t.Fatalf("second NewFileLogger() error = %v", err)
	}
	fl2.LogInfo("second run")
	fl2.Close()

	link := filepath.Join(dir, "latest.log")
	dest, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("latest.log is not a symlink: %v", err)
	}
	if dest != filepath.Base(fl2.Path()) {
		t.Errorf("latest.log points at %q, want %q", dest, filepath.Base(fl2.Path()))
	}

	data, err := os.ReadFile(link)
	if err != nil {
		t.Fatalf("read through symlink: %v", err)
	}
	if !strings.Contains(string(data), "second run") {
		t.Error("latest.log does not resolve to the most recent run")
	}
}

func TestFileLoggerLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	fl, err := NewFileLogger(dir, "warn")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	fl.LogInfo("quiet")
	fl.LogWarn("loud")
	fl.Close()

	data, _ := os.ReadFile(fl.Path())
	out := string(data)
	if strings.Contains(out, "quiet") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn message missing at warn level")
	}
}
