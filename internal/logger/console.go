// Package logger provides logging implementations for audit execution.
//
// Loggers report phase progress and the final summary. Implementations are
// thread-safe and support console and file destinations with level filtering.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/firstrun/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger receives audit progress events. The orchestrator drives it; the
// NoOpLogger satisfies it for tests.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogPhaseStart(phase models.PhaseName)
	LogPhaseComplete(result models.PhaseResult)
	LogAuditSummary(session *models.AuditSession)
}

// ConsoleLogger logs audit progress to a writer with timestamps and thread
// safety. All output is prefixed with [HH:MM:SS] timestamps. It supports log
// level filtering, and color output is automatically enabled when writing to
// a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// io.Writer. If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); empty or
// invalid levels default to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates
// it. Returns "info" for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// shouldLog returns true if messageLevel >= the configured level.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorizeLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.writer.Write([]byte(formatted))
}

func colorizeLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	}
	return level
}

// LogPhaseStart logs the start of an audit phase at INFO level.
// Format: "[HH:MM:SS] Starting phase <name>"
func (cl *ConsoleLogger) LogPhaseStart(phase models.PhaseName) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	name := string(phase)
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(name)
	}
	fmt.Fprintf(cl.writer, "[%s] Starting phase %s\n", ts, name)
}

// LogPhaseComplete logs the completion of an audit phase at INFO level.
// Format: "[HH:MM:SS] <name> complete: score 7.5, 2 flags (1.2s)"
func (cl *ConsoleLogger) LogPhaseComplete(result models.PhaseResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	name := string(result.Phase)
	outcome := "complete"
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(name)
		if result.Success {
			outcome = color.New(color.FgGreen).Sprint(outcome)
		} else {
			outcome = color.New(color.FgRed).Sprint("failed")
		}
	} else if !result.Success {
		outcome = "failed"
	}

	detail := ""
	if result.Scored {
		detail = fmt.Sprintf(": score %.1f", result.Score)
	}
	if n := len(result.RedFlags); n > 0 {
		label := "flags"
		if n == 1 {
			label = "flag"
		}
		if detail == "" {
			detail = ":"
		} else {
			detail += ","
		}
		detail += fmt.Sprintf(" %d %s", n, label)
	}

	fmt.Fprintf(cl.writer, "[%s] %s %s%s (%s)\n", ts, name, outcome, detail, formatDuration(result.Duration))
}

// LogAuditSummary logs the final audit summary at INFO level.
func (cl *ConsoleLogger) LogAuditSummary(session *models.AuditSession) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var output string
	if cl.colorOutput {
		header := color.New(color.Bold).Sprint("=== Audit Summary ===")
		output = fmt.Sprintf("[%s] %s\n", ts, header)
		output += fmt.Sprintf("[%s] Target: %s\n", ts, session.Target)

		scoreText := fmt.Sprintf("Score: %.1f (%s)", session.Score, session.Grade)
		if session.Score >= 6 {
			scoreText = color.New(color.FgGreen).Sprint(scoreText)
		} else {
			scoreText = color.New(color.FgYellow).Sprint(scoreText)
		}
		output += fmt.Sprintf("[%s] %s\n", ts, scoreText)

		if n := len(session.RedFlags); n > 0 {
			flagText := color.New(color.FgRed).Sprintf("Red flags: %d", n)
			output += fmt.Sprintf("[%s] %s\n", ts, flagText)
		} else {
			output += fmt.Sprintf("[%s] Red flags: 0\n", ts)
		}
	} else {
		output = fmt.Sprintf("[%s] === Audit Summary ===\n", ts)
		output += fmt.Sprintf("[%s] Target: %s\n", ts, session.Target)
		output += fmt.Sprintf("[%s] Score: %.1f (%s)\n", ts, session.Score, session.Grade)
		output += fmt.Sprintf("[%s] Red flags: %d\n", ts, len(session.RedFlags))
	}

	if session.Validation != nil {
		output += fmt.Sprintf("[%s] Validation: %s (confidence %.2f)\n", ts, session.Validation.Status, session.Validation.Confidence)
	}

	cl.writer.Write([]byte(output))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		minutes := remainder / time.Minute
		seconds := (remainder % time.Minute) / time.Second
		if minutes == 0 && seconds == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		if seconds == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string) {}

func (n *NoOpLogger) LogDebug(message string) {}

func (n *NoOpLogger) LogInfo(message string) {}

func (n *NoOpLogger) LogWarn(message string) {}

func (n *NoOpLogger) LogError(message string) {}

func (n *NoOpLogger) LogPhaseStart(phase models.PhaseName) {}

func (n *NoOpLogger) LogPhaseComplete(result models.PhaseResult) {}

func (n *NoOpLogger) LogAuditSummary(session *models.AuditSession) {}
