package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"history"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryListEmpty(t *testing.T) {
	t.Setenv("FIRSTRUN_HOME", t.TempDir())

	output, err := runHistory(t, "list")
	if err != nil {
		t.Fatalf("History list should succeed on an empty database: %v", err)
	}
	if !strings.Contains(output, "No recorded runs.") {
		t.Errorf("Expected empty-history message, got: %s", output)
	}
}

func TestHistoryPruneUnlimitedRetention(t *testing.T) {
	t.Setenv("FIRSTRUN_HOME", t.TempDir())

	output, err := runHistory(t, "prune", "--keep-days", "0")
	if err != nil {
		t.Fatalf("History prune should succeed: %v", err)
	}
	if !strings.Contains(output, "nothing to prune") {
		t.Errorf("Expected unlimited-retention message, got: %s", output)
	}
}

func TestHistoryPruneEmptyDatabase(t *testing.T) {
	t.Setenv("FIRSTRUN_HOME", t.TempDir())

	output, err := runHistory(t, "prune", "--keep-days", "30")
	if err != nil {
		t.Fatalf("History prune should succeed on an empty database: %v", err)
	}
	if !strings.Contains(output, "Pruned 0 run(s)") {
		t.Errorf("Expected zero-pruned message, got: %s", output)
	}
}
