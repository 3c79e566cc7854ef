package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/firstrun/internal/docscan"
	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/runner"
)

type fakeRunner struct {
	calls []runner.Spec
	fn    func(runner.Spec) models.CommandOutcome
}

func (f *fakeRunner) Run(_ context.Context, spec runner.Spec) models.CommandOutcome {
	f.calls = append(f.calls, spec)
	return f.fn(spec)
}

func exitWith(code int) models.CommandOutcome {
	return models.CommandOutcome{ExitCode: &code}
}

// writeExecutable drops an executable stub at rel under a temp dir.
func writeExecutable(t *testing.T, dir, rel string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestDiscoverTreeRoot verifies convention-based discovery at the tree root.
func TestDiscoverTreeRoot(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "widget")

	inv := Discover(dir, "widget", nil)
	if inv == nil {
		t.Fatal("Discover() = nil, want tree-root invocation")
	}
	if inv.Source != "tree root" {
		t.Errorf("Source = %q, want tree root", inv.Source)
	}
}

// TestDiscoverNothing verifies a miss returns nil rather than a guess.
func TestDiscoverNothing(t *testing.T) {
	if inv := Discover(t.TempDir(), "no-such-tool-9d2c", nil); inv != nil {
		t.Errorf("Discover() = %+v, want nil", inv)
	}
}

// TestInvocationCommand verifies base args are preserved ahead of probe args.
func TestInvocationCommand(t *testing.T) {
	inv := &Invocation{Path: "node", BaseArgs: []string{"cli.js"}}
	path, args := inv.Command("--help")
	if path != "node" {
		t.Errorf("path = %q, want node", path)
	}
	if len(args) != 2 || args[0] != "cli.js" || args[1] != "--help" {
		t.Errorf("args = %v, want [cli.js --help]", args)
	}
}

// TestPhaseNoBinary verifies the 0/0 bound: nothing discovered means score
// exactly 0, not NaN.
func TestPhaseNoBinary(t *testing.T) {
	fake := &fakeRunner{fn: func(runner.Spec) models.CommandOutcome { return exitWith(0) }}

	result, inv := NewPhase(fake).Run(context.Background(), t.TempDir(), "no-such-tool-9d2c", nil, nil)

	if inv != nil {
		t.Errorf("invocation = %+v, want nil", inv)
	}
	if result.Score != 0 {
		t.Errorf("Score = %.2f, want exactly 0", result.Score)
	}
	if len(fake.calls) != 0 {
		t.Errorf("runner invoked %d times with no binary, want 0", len(fake.calls))
	}
}

// TestPhaseAllCommandsSucceed verifies the full-matrix happy path:
// rate 1.0 x 7 + 2 bonus = 9.
func TestPhaseAllCommandsSucceed(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "widget")
	fake := &fakeRunner{fn: func(runner.Spec) models.CommandOutcome { return exitWith(0) }}

	result, inv := NewPhase(fake).Run(context.Background(), dir, "widget", nil, nil)

	if inv == nil {
		t.Fatal("binary not discovered")
	}
	if len(fake.calls) != len(commandMatrix) {
		t.Errorf("probed %d commands, want %d", len(fake.calls), len(commandMatrix))
	}
	if result.Score != 9 {
		t.Errorf("Score = %.2f, want 9", result.Score)
	}

	findings := result.Findings.(*Findings)
	if findings.SuccessRate != 1.0 {
		t.Errorf("SuccessRate = %v, want 1.0", findings.SuccessRate)
	}
}

// TestPhaseTimeoutsAreNotSuccess pins the unified null-exit policy: a probe
// that cannot be observed to exit never counts as a success.
func TestPhaseTimeoutsAreNotSuccess(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "widget")
	fake := &fakeRunner{fn: func(runner.Spec) models.CommandOutcome {
		return models.CommandOutcome{TimedOut: true}
	}}

	result, _ := NewPhase(fake).Run(context.Background(), dir, "widget", nil, nil)

	if result.Score != 0 {
		t.Errorf("Score = %.2f, want 0 when every probe times out", result.Score)
	}
	findings := result.Findings.(*Findings)
	if findings.Succeeded != 0 {
		t.Errorf("Succeeded = %d, want 0", findings.Succeeded)
	}
}

// TestPhaseMissingFeaturePenalty verifies documented features with no
// succeeding command subtract 0.5 each.
func TestPhaseMissingFeaturePenalty(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "widget")

	docs := &docscan.Scan{
		Content: strings.Join([]string{
			"# widget", "",
			"## Features", "",
			"- init scaffolding for new projects",
			"- teleportation of widgets",
			"",
		}, "\n"),
		Sections: map[string]bool{"features": true},
	}

	// Only --help, --version, bare, and init succeed: 4/12.
	fake := &fakeRunner{fn: func(spec runner.Spec) models.CommandOutcome {
		tail := ""
		if len(spec.Args) > 0 {
			tail = spec.Args[len(spec.Args)-1]
		}
		switch tail {
		case "--help", "--version", "", "init":
			return exitWith(0)
		default:
			return exitWith(1)
		}
	}}

	result, _ := NewPhase(fake).Run(context.Background(), dir, "widget", nil, docs)

	findings := result.Findings.(*Findings)
	if len(findings.DocumentedFeats) != 2 {
		t.Fatalf("DocumentedFeats = %v, want 2", findings.DocumentedFeats)
	}
	// "init scaffolding" matches the succeeded init command; teleportation
	// matches nothing.
	if len(findings.MissingFeats) != 1 || !strings.Contains(findings.MissingFeats[0], "teleportation") {
		t.Errorf("MissingFeats = %v, want only the teleportation feature", findings.MissingFeats)
	}

	// 4/12 x 7 - 0.5 = 2.8333 - 0.5; no bonus below 70%.
	want := 4.0/12.0*7 - 0.5
	if diff := result.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Score = %v, want %v", result.Score, want)
	}
}

// TestExtractFeaturesNoSection verifies extraction is nil-safe and bounded to
// the Features section.
func TestExtractFeaturesNoSection(t *testing.T) {
	if feats := extractFeatures(nil); feats != nil {
		t.Errorf("extractFeatures(nil) = %v, want nil", feats)
	}

	docs := &docscan.Scan{
		Content:  "## Usage\n\n- not a feature\n",
		Sections: map[string]bool{"usage": true},
	}
	if feats := extractFeatures(docs); feats != nil {
		t.Errorf("extractFeatures() = %v, want nil without a Features section", feats)
	}
}
