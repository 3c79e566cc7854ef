package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/firstrun/internal/models"
)

// FileLogger logs audit events to files under a log directory. It creates a
// timestamped per-run log file and maintains a latest.log symlink pointing
// to the most recent run. It is thread-safe and supports level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// DefaultLogDir is the log location relative to the audited path.
const DefaultLogDir = ".firstrun/logs"

// NewFileLogger creates a FileLogger writing under logDir at the given
// level. The directory is created if it does not exist.
func NewFileLogger(logDir, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== Audit Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the current run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

// LogPhaseStart logs the start of an audit phase at INFO level.
func (fl *FileLogger) LogPhaseStart(phase models.PhaseName) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Starting phase %s\n", time.Now().Format("15:04:05"), phase))
}

// LogPhaseComplete logs the completion of an audit phase at INFO level,
// including its notes and errors for later inspection.
func (fl *FileLogger) LogPhaseComplete(result models.PhaseResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := time.Now().Format("15:04:05")
	status := "complete"
	if !result.Success {
		status = "failed"
	}

	message := fmt.Sprintf("[%s] %s %s", ts, result.Phase, status)
	if result.Scored {
		message += fmt.Sprintf(": score %.1f", result.Score)
	}
	message += fmt.Sprintf(", %d flags, duration %.1fs\n", len(result.RedFlags), result.Duration.Seconds())

	for _, note := range result.Notes {
		message += fmt.Sprintf("[%s]   note: %s\n", ts, note)
	}
	for _, errMsg := range result.Errors {
		message += fmt.Sprintf("[%s]   error: %s\n", ts, errMsg)
	}

	fl.writeRunLog(message)
}

// LogAuditSummary logs the final audit summary at INFO level.
func (fl *FileLogger) LogAuditSummary(session *models.AuditSession) {
	if !fl.shouldLog("info") {
		return
	}

	ts := time.Now().Format("15:04:05")
	message := fmt.Sprintf(
		"\n[%s] === AUDIT SUMMARY ===\n"+
			"[%s] Target:    %s\n"+
			"[%s] Score:     %.1f (%s)\n"+
			"[%s] Red flags: %d\n",
		ts, ts, session.Target, ts, session.Score, session.Grade, ts, len(session.RedFlags),
	)
	if session.Validation != nil {
		message += fmt.Sprintf("[%s] Validation: %s (confidence %.2f)\n", ts, session.Validation.Status, session.Validation.Confidence)
	}
	message += fmt.Sprintf("[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))

	fl.writeRunLog(message)
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write so tail -f sees progress live.
		fl.runLog.Sync()
	}
}
