package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/runner"
)

// fakeRunner scripts command outcomes for phase tests.
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

func markTarget(t *testing.T, marker string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, marker), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// TestDetectOrder verifies the first marker in table order wins.
func TestDetectOrder(t *testing.T) {
	dir := t.TempDir()
	for _, m := range []string{"Makefile", "package.json"} {
		if err := os.WriteFile(filepath.Join(dir, m), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	eco := Detect(dir)
	if eco == nil || eco.Name != "node" {
		t.Fatalf("Detect() = %+v, want node (package.json outranks Makefile)", eco)
	}

	if Detect(t.TempDir()) != nil {
		t.Error("Detect() found an ecosystem in an empty dir")
	}
}

// TestDetectNonInstallable verifies requirements.txt maps to an ecosystem
// with no install step.
func TestDetectNonInstallable(t *testing.T) {
	eco := Detect(markTarget(t, "requirements.txt"))
	if eco == nil {
		t.Fatal("Detect() = nil, want python-requirements")
	}
	if eco.Installable() {
		t.Errorf("Installable() = true for %s, want false", eco.Name)
	}
}

// TestPhaseNoMarkers verifies a bare tree scores 0 with a note, not an error.
func TestPhaseNoMarkers(t *testing.T) {
	fake := &fakeRunner{fn: func(runner.Spec) models.CommandOutcome { return exitWith(0) }}
	phase := NewPhase(fake)

	result, eco := phase.Run(context.Background(), t.TempDir(), "widget")

	if !result.Success {
		t.Error("no markers must not fail the phase")
	}
	if result.Score != 0 {
		t.Errorf("Score = %.2f, want 0", result.Score)
	}
	if eco != nil {
		t.Errorf("eco = %+v, want nil", eco)
	}
	if len(fake.calls) != 0 {
		t.Errorf("runner invoked %d times for a markerless tree, want 0", len(fake.calls))
	}
	if len(result.Notes) == 0 {
		t.Error("not-attempted install must carry an explanatory note")
	}
	if result.Scored {
		t.Error("not-attempted install must be excluded from the weighted average")
	}
}

// TestPhaseMissingPrerequisite verifies a missing build tool short-circuits
// with score 0 and the tool named.
func TestPhaseMissingPrerequisite(t *testing.T) {
	fake := &fakeRunner{fn: func(runner.Spec) models.CommandOutcome { return exitWith(0) }}
	phase := NewPhase(fake)
	phase.lookPath = func(string) bool { return false }

	result, _ := phase.Run(context.Background(), markTarget(t, "package.json"), "widget")

	if result.Score != 0 {
		t.Errorf("Score = %.2f, want 0", result.Score)
	}
	findings := result.Findings.(*Findings)
	if len(findings.MissingTools) != 1 || findings.MissingTools[0] != "npm" {
		t.Errorf("MissingTools = %v, want [npm]", findings.MissingTools)
	}
	if findings.Attempted {
		t.Error("install attempted despite missing prerequisite")
	}
}

// TestPhaseFastCleanInstall verifies the score formula on the happy path:
// base 7 + 2 fast bonus, no warnings.
func TestPhaseFastCleanInstall(t *testing.T) {
	fake := &fakeRunner{fn: func(spec runner.Spec) models.CommandOutcome {
		out := exitWith(0)
		out.Duration = 2 * time.Second
		return out
	}}
	phase := NewPhase(fake)
	phase.lookPath = func(string) bool { return true }

	result, eco := phase.Run(context.Background(), markTarget(t, "package.json"), "widget")

	if eco == nil || eco.Name != "node" {
		t.Fatalf("eco = %+v, want node", eco)
	}
	if result.Score != 9 {
		t.Errorf("Score = %.2f, want 9 (base 7 + fast bonus 2)", result.Score)
	}

	// Last call must be the install itself, in the target directory.
	last := fake.calls[len(fake.calls)-1]
	if last.Path != "npm" || last.Args[0] != "install" {
		t.Errorf("install spec = %+v, want npm install", last)
	}
	if last.Timeout != InstallTimeout {
		t.Errorf("install timeout = %v, want %v", last.Timeout, InstallTimeout)
	}
}

// TestPhaseWarningsAndSlowness verifies the warning and slow-install
// penalties combine: 7 + 0 bonus − 1 slow − 0.5 warnings = 5.5.
func TestPhaseWarningsAndSlowness(t *testing.T) {
	fake := &fakeRunner{fn: func(spec runner.Spec) models.CommandOutcome {
		if spec.Args != nil && spec.Args[0] == "--version" {
			return exitWith(0)
		}
		out := exitWith(0)
		out.Duration = 90 * time.Second
		out.Stderr = "npm WARN deprecated left-pad@1.0.0\n"
		return out
	}}
	phase := NewPhase(fake)
	phase.lookPath = func(string) bool { return true }

	result, _ := phase.Run(context.Background(), markTarget(t, "package.json"), "widget")

	if result.Score != 5.5 {
		t.Errorf("Score = %.2f, want 5.5", result.Score)
	}
	findings := result.Findings.(*Findings)
	if len(findings.Warnings) == 0 {
		t.Error("deprecation warning not collected")
	}
}

// TestPhaseInstallFailure verifies an outright failure scores 0 and captures
// stderr as a non-fatal error.
func TestPhaseInstallFailure(t *testing.T) {
	fake := &fakeRunner{fn: func(spec runner.Spec) models.CommandOutcome {
		if len(spec.Args) > 0 && spec.Args[0] == "--version" {
			return exitWith(0)
		}
		out := exitWith(1)
		out.Stderr = "npm ERR! missing script: prepare"
		return out
	}}
	phase := NewPhase(fake)
	phase.lookPath = func(name string) bool { return name == "npm" }

	result, _ := phase.Run(context.Background(), markTarget(t, "package.json"), "widget")

	if result.Score != 0 {
		t.Errorf("Score = %.2f, want 0 on failure", result.Score)
	}
	if !result.Scored {
		t.Error("a failed attempt earns a real zero, not an exclusion")
	}
	if !result.Success {
		t.Error("install failure is a finding, not a phase error")
	}
	if len(result.Errors) == 0 {
		t.Error("stderr not captured into result errors")
	}
}
