package runner

import (
	"context"
	"runtime"
	"testing"
	"time"
)

// TestRunCleanExit verifies a zero exit is captured with its stdout.
func TestRunCleanExit(t *testing.T) {
	skipOnWindows(t)

	outcome := New().Run(context.Background(), Spec{
		Path:    "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
		Timeout: 10 * time.Second,
	})

	if !outcome.Succeeded() {
		t.Fatalf("outcome = %+v, want clean exit", outcome)
	}
	if outcome.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", outcome.Stdout, "out\n")
	}
	if outcome.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", outcome.Stderr, "err\n")
	}
}

// TestRunNonZeroExit verifies the exit code is observed, not conflated with
// spawn failure.
func TestRunNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	outcome := New().Run(context.Background(), Spec{
		Path:    "sh",
		Args:    []string{"-c", "exit 3"},
		Timeout: 10 * time.Second,
	})

	if !outcome.FailedCleanly() {
		t.Fatalf("outcome = %+v, want observed non-zero exit", outcome)
	}
	if *outcome.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", *outcome.ExitCode)
	}
}

// TestRunSpawnFailure verifies an unresolvable binary yields a nil exit code
// rather than an error.
func TestRunSpawnFailure(t *testing.T) {
	outcome := New().Run(context.Background(), Spec{
		Path:    "definitely-not-a-real-binary-4f1b",
		Timeout: 5 * time.Second,
	})

	if outcome.Completed() {
		t.Errorf("ExitCode = %v, want nil for spawn failure", *outcome.ExitCode)
	}
	if outcome.TimedOut {
		t.Error("TimedOut = true, want false for spawn failure")
	}
}

// TestRunTimeout verifies the deadline kills the process and reports a nil
// exit code with TimedOut set.
func TestRunTimeout(t *testing.T) {
	skipOnWindows(t)

	start := time.Now()
	outcome := New().Run(context.Background(), Spec{
		Path:    "sleep",
		Args:    []string{"30"},
		Timeout: 200 * time.Millisecond,
	})

	if outcome.Completed() {
		t.Errorf("ExitCode = %v, want nil on timeout", *outcome.ExitCode)
	}
	if !outcome.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %v, timeout did not bound the call", elapsed)
	}
}

// TestRunStdinClosed verifies a child reading stdin sees EOF instead of
// hanging until the deadline.
func TestRunStdinClosed(t *testing.T) {
	skipOnWindows(t)

	outcome := New().Run(context.Background(), Spec{
		Path:    "sh",
		Args:    []string{"-c", "cat"},
		Timeout: 10 * time.Second,
	})

	if !outcome.Succeeded() {
		t.Fatalf("outcome = %+v, want immediate EOF exit", outcome)
	}
	if outcome.TimedOut {
		t.Error("cat against closed stdin should not time out")
	}
}

// TestAvailable checks PATH resolution helpers.
func TestAvailable(t *testing.T) {
	skipOnWindows(t)

	if !Available("sh") {
		t.Error("Available(sh) = false, want true")
	}
	if Available("definitely-not-a-real-binary-4f1b") {
		t.Error("Available() = true for nonexistent binary")
	}
	if Resolve("sh") == "" {
		t.Error("Resolve(sh) = empty")
	}
	if Resolve("definitely-not-a-real-binary-4f1b") != "" {
		t.Error("Resolve() non-empty for nonexistent binary")
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}
