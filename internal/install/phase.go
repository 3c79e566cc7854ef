package install

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/runner"
	"github.com/harrison/firstrun/internal/score"
)

// InstallTimeout bounds the install command itself. Prerequisite checks are
// trivial invocations and get a much tighter bound.
const (
	InstallTimeout  = 120 * time.Second
	prereqTimeout   = 10 * time.Second
	baseScore       = 7.0
	fastBonusUnder  = 10 * time.Second
	okBonusUnder    = 30 * time.Second
	slowPenaltyOver = 60 * time.Second
	warningPenalty  = 0.5
)

// Findings is the installation phase payload.
type Findings struct {
	Ecosystem    *Ecosystem    `json:"ecosystem,omitempty"`
	Attempted    bool          `json:"attempted"`
	Installed    bool          `json:"installed"`
	MissingTools []string      `json:"missing_tools,omitempty"`
	InstallTime  time.Duration `json:"install_time"`
	BinaryOnPath bool          `json:"binary_on_path"`
	BinaryName   string        `json:"binary_name,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Phase implements the installation audit step.
type Phase struct {
	Runner runner.Runner

	// Timeout bounds the install command. Zero means InstallTimeout.
	Timeout time.Duration

	// lookPath overrides PATH resolution in tests.
	lookPath func(string) bool
}

// NewPhase returns an installation phase backed by the given runner.
func NewPhase(r runner.Runner) *Phase {
	return &Phase{Runner: r, lookPath: runner.Available}
}

// Run detects the ecosystem, verifies prerequisites, attempts the install,
// and verifies the resulting binary resolves on the search path.
//
// binaryName is the conventional binary name for the target (its directory
// basename), used for the PATH check and handed to later phases.
func (p *Phase) Run(ctx context.Context, target, binaryName string) (*models.PhaseResult, *Ecosystem) {
	start := time.Now()
	result := &models.PhaseResult{
		Phase:  models.PhaseInstallation,
		Scored: true,
	}
	findings := &Findings{BinaryName: binaryName}
	result.Findings = findings

	finish := func(s float64) *models.PhaseResult {
		result.Score = score.Clamp(s)
		result.Duration = time.Since(start)
		return result
	}

	// A not-attempted install produces no score at all, so the aggregator
	// excludes this phase instead of averaging in a zero. A failed attempt
	// below is different: that earns a real zero.
	eco := Detect(target)
	findings.Ecosystem = eco
	if eco == nil {
		result.Success = true
		result.Scored = false
		result.Notes = append(result.Notes,
			"no ecosystem markers found - cannot attempt installation")
		return finish(0), nil
	}
	if !eco.Installable() {
		result.Success = true
		result.Scored = false
		result.Notes = append(result.Notes, fmt.Sprintf(
			"ecosystem %q (marker %s) has no known install step - not attempted",
			eco.Name, eco.Marker))
		return finish(0), eco
	}

	// Verify the build tool before attempting the install; a missing
	// prerequisite short-circuits with the tool named rather than a
	// confusing spawn failure.
	if !p.toolPresent(ctx, eco.Tool) {
		findings.MissingTools = append(findings.MissingTools, eco.Tool)
		result.Success = true
		result.Scored = false
		result.Notes = append(result.Notes, fmt.Sprintf(
			"prerequisite %q not available - install not attempted", eco.Tool))
		return finish(0), eco
	}

	findings.Attempted = true
	outcome := p.Runner.Run(ctx, runner.Spec{
		Path:    eco.InstallArgs[0],
		Args:    eco.InstallArgs[1:],
		Dir:     target,
		Timeout: p.installTimeout(),
	})
	findings.InstallTime = outcome.Duration

	if !outcome.Succeeded() {
		result.Success = true
		if outcome.TimedOut {
			result.Notes = append(result.Notes, fmt.Sprintf(
				"install command %q timed out after %s",
				strings.Join(eco.InstallArgs, " "), p.installTimeout()))
		} else {
			result.Notes = append(result.Notes, fmt.Sprintf(
				"install command %q failed", strings.Join(eco.InstallArgs, " ")))
		}
		if msg := strings.TrimSpace(outcome.Stderr); msg != "" {
			result.Errors = append(result.Errors, truncate(msg, 500))
		}
		return finish(0), eco
	}

	findings.Installed = true
	findings.Warnings = collectWarnings(outcome)
	findings.BinaryOnPath = binaryName != "" && p.lookPath(binaryName)
	if !findings.BinaryOnPath {
		findings.Warnings = append(findings.Warnings, fmt.Sprintf(
			"binary %q not resolvable on PATH after install", binaryName))
	}

	s := baseScore
	switch {
	case outcome.Duration < fastBonusUnder:
		s += 2
	case outcome.Duration < okBonusUnder:
		s += 1
	}
	if outcome.Duration > slowPenaltyOver {
		s -= 1
	}
	if len(findings.Warnings) > 0 {
		s -= warningPenalty
	}

	result.Success = true
	return finish(s), eco
}

func (p *Phase) installTimeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return InstallTimeout
}

// toolPresent verifies a build tool with a trivial invocation, falling back
// to plain PATH resolution when the version probe cannot complete.
func (p *Phase) toolPresent(ctx context.Context, tool string) bool {
	if !p.lookPath(tool) {
		return false
	}
	outcome := p.Runner.Run(ctx, runner.Spec{
		Path:    tool,
		Args:    []string{"--version"},
		Timeout: prereqTimeout,
	})
	// Some tools reject --version but are present; existence on PATH is
	// the deciding signal, the invocation just catches broken installs.
	return outcome.Completed() || p.lookPath(tool)
}

// collectWarnings extracts warning lines from install output.
func collectWarnings(outcome models.CommandOutcome) []string {
	var warnings []string
	for _, line := range strings.Split(outcome.Stderr+"\n"+outcome.Stdout, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "warn") || strings.Contains(lower, "deprecated") {
			warnings = append(warnings, truncate(strings.TrimSpace(line), 200))
		}
		if len(warnings) >= 10 {
			break
		}
	}
	return warnings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
