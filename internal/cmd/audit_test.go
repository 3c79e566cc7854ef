package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/firstrun/internal/models"
)

// newTestTarget builds a minimal audit target with only a short README so
// no external processes get spawned during the run.
func newTestTarget(t *testing.T) string {
	t.Helper()
	target := t.TempDir()
	readme := "# widget\n\nA tiny tool.\n"
	if err := os.WriteFile(filepath.Join(target, "README.md"), []byte(readme), 0o644); err != nil {
		t.Fatal(err)
	}
	return target
}

// runAudit executes the audit command with isolated home and log dirs.
func runAudit(t *testing.T, extraArgs ...string) (string, error) {
	t.Helper()
	t.Setenv("FIRSTRUN_HOME", t.TempDir())

	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	args := append([]string{"audit", "--log-dir", t.TempDir()}, extraArgs...)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAuditCommandMissingTarget(t *testing.T) {
	_, err := runAudit(t, filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("Expected an error for a missing target directory")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Error should name the missing target, got: %v", err)
	}
}

func TestAuditCommandWritesReport(t *testing.T) {
	target := newTestTarget(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	output, err := runAudit(t, "--output", reportPath, "--no-history", target)
	if err != nil {
		t.Fatalf("Audit should succeed on a bare directory: %v\noutput: %s", err, output)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Report file should exist: %v", err)
	}

	var session models.AuditSession
	if err := json.Unmarshal(data, &session); err != nil {
		t.Fatalf("Report should be valid JSON: %v", err)
	}

	if len(session.PhaseResults) != len(models.PhaseOrder) {
		t.Errorf("Expected %d phase results, got %d", len(models.PhaseOrder), len(session.PhaseResults))
	}
	if session.Grade == "" {
		t.Error("Session should carry a grade")
	}
	if session.Validation != nil {
		t.Error("Validation was not requested, result should be absent")
	}
	if !strings.Contains(output, "Report written to:") {
		t.Errorf("Output should confirm the report path, got: %s", output)
	}
}

func TestAuditCommandValidateWithoutClaude(t *testing.T) {
	target := newTestTarget(t)

	// A claude path that cannot resolve forces the offline reviewer, which
	// keeps the pipeline deterministic.
	output, err := runAudit(t,
		"--validate",
		"--claude-path", "firstrun-no-such-binary-2b9e",
		"--no-history",
		target)
	if err != nil {
		t.Fatalf("Audit with validation should succeed: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "offline reviewer") {
		t.Errorf("Output should warn about the missing claude CLI, got: %s", output)
	}

	// The pipeline ran, so its artifact lands under the target.
	artifactDir := filepath.Join(target, ".firstrun", "validation")
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		t.Fatalf("Validation artifact directory should exist: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one artifact, got %d", len(entries))
	}
}

func TestAuditCommandRecordsHistory(t *testing.T) {
	target := newTestTarget(t)
	home := t.TempDir()
	t.Setenv("FIRSTRUN_HOME", home)

	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"audit", "--log-dir", t.TempDir(), target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Audit should succeed: %v\noutput: %s", err, buf.String())
	}

	listCmd := NewRootCommand()
	listBuf := new(bytes.Buffer)
	listCmd.SetOut(listBuf)
	listCmd.SetErr(listBuf)
	listCmd.SetArgs([]string{"history", "list"})
	if err := listCmd.Execute(); err != nil {
		t.Fatalf("History list should succeed: %v", err)
	}

	listing := listBuf.String()
	if !strings.Contains(listing, filepath.Base(target)) {
		t.Errorf("History listing should include the audited target, got: %s", listing)
	}
}

func TestAuditCommandRejectsBadLogLevel(t *testing.T) {
	target := newTestTarget(t)
	_, err := runAudit(t, "--log-level", "shouting", target)
	if err == nil {
		t.Fatal("Expected an error for an invalid log level")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Error should name the configuration problem, got: %v", err)
	}
}
