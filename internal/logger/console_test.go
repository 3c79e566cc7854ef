package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrison/firstrun/internal/models"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		configured string
		message    string
		logFn      func(*ConsoleLogger)
		want       bool
	}{
		{"info", "debug suppressed", func(cl *ConsoleLogger) { cl.LogDebug("debug suppressed") }, false},
		{"info", "info shown", func(cl *ConsoleLogger) { cl.LogInfo("info shown") }, true},
		{"info", "error shown", func(cl *ConsoleLogger) { cl.LogError("error shown") }, true},
		{"error", "warn suppressed", func(cl *ConsoleLogger) { cl.LogWarn("warn suppressed") }, false},
		{"trace", "trace shown", func(cl *ConsoleLogger) { cl.LogTrace("trace shown") }, true},
		{"debug", "debug shown", func(cl *ConsoleLogger) { cl.LogDebug("debug shown") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.configured+"/"+tt.message, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.configured)
			tt.logFn(cl)

			got := strings.Contains(buf.String(), tt.message)
			if got != tt.want {
				t.Errorf("message %q logged = %v, want %v (output: %q)", tt.message, got, tt.want, buf.String())
			}
		})
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "shouting")

	cl.LogDebug("hidden")
	cl.LogInfo("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at default level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message missing at default level")
	}
}

func TestNilWriterDiscards(t *testing.T) {
	cl := NewConsoleLogger(nil, "info")
	// Must not panic.
	cl.LogInfo("dropped")
	cl.LogPhaseStart(models.PhaseInstallation)
}

func TestLogPhaseComplete(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogPhaseComplete(models.PhaseResult{
		Phase:    models.PhaseFunctionality,
		Success:  true,
		Scored:   true,
		Score:    7.5,
		Duration: 1200 * time.Millisecond,
		RedFlags: []models.RedFlag{{Severity: models.SeverityLow, Category: "x", Title: "y"}},
	})

	out := buf.String()
	for _, want := range []string{"functionality", "complete", "7.5", "1 flag"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogPhaseCompleteFailure(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogPhaseComplete(models.PhaseResult{Phase: models.PhaseInstallation, Success: false})

	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("output %q missing failure marker", buf.String())
	}
}

func TestLogAuditSummary(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogAuditSummary(&models.AuditSession{
		Target: "/tmp/widget",
		Score:  6.8,
		Grade:  "C",
		Validation: &models.ValidationResult{
			Status:     models.ValidationValidated,
			Confidence: 0.83,
		},
	})

	out := buf.String()
	for _, want := range []string{"/tmp/widget", "6.8", "C", "validated", "0.83"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary %q missing %q", out, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{5 * time.Second, "5.0s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
