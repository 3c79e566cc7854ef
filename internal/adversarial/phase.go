// Package adversarial probes the audited binary with deliberately hostile
// inputs and inspects help and version output quality. The phase produces
// red flags and notes only; its findings feed the aggregate flag penalty
// rather than a standalone score.
package adversarial

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/probe"
	"github.com/harrison/firstrun/internal/runner"
)

// ProbeTimeout bounds each adversarial probe. These are failure-path
// invocations; a healthy tool rejects them near-instantly.
const ProbeTimeout = 10 * time.Second

// hostileProbe is one entry of the fixed probe sequence.
type hostileProbe struct {
	name string
	args []string

	// severity applied when the probe is not handled well. The
	// missing-value probe escalates separately on an unobservable exit.
	severity models.Severity
}

// probeSequence is fixed; the nonexistent-file and unwritable-target probes
// get their paths filled in per run.
var probeSequence = []hostileProbe{
	{name: "unknown subcommand", args: []string{"definitely-not-a-command"}, severity: models.SeverityMedium},
	{name: "unknown flag", args: []string{"--definitely-not-a-flag"}, severity: models.SeverityMedium},
	{name: "missing flag value", args: []string{"--output"}, severity: models.SeverityMedium},
	{name: "nonexistent input file", args: nil, severity: models.SeverityMedium},
	{name: "unwritable output target", args: nil, severity: models.SeverityMedium},
}

// ProbeResult records one hostile probe.
type ProbeResult struct {
	Name    string                `json:"name"`
	Args    []string              `json:"args"`
	Outcome models.CommandOutcome `json:"outcome"`
	Handled bool                  `json:"handled"`
}

// Findings is the error-handling phase payload.
type Findings struct {
	Probes       []ProbeResult   `json:"probes,omitempty"`
	HelpPresent  bool            `json:"help_present"`
	HelpSections map[string]bool `json:"help_sections,omitempty"`
}

// Phase implements the error-handling audit step.
type Phase struct {
	Runner runner.Runner

	// Timeout bounds each hostile probe. Zero means ProbeTimeout.
	Timeout time.Duration
}

// NewPhase returns an adversarial phase backed by the given runner.
func NewPhase(r runner.Runner) *Phase {
	return &Phase{Runner: r}
}

func (p *Phase) probeTimeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return ProbeTimeout
}

// Run executes the hostile probe sequence and the help-quality probe against
// the discovered binary. A nil invocation (no binary found) yields a single
// note and no flags - there is nothing to probe.
func (p *Phase) Run(ctx context.Context, target string, inv *probe.Invocation) *models.PhaseResult {
	start := time.Now()
	result := &models.PhaseResult{
		Phase:   models.PhaseErrorHandling,
		Success: true,
	}

	if inv == nil {
		result.Notes = append(result.Notes,
			"no binary discovered - error-handling probes skipped")
		result.Duration = time.Since(start)
		return result
	}

	findings := &Findings{}
	result.Findings = findings

	for _, hp := range probeSequence {
		args := hp.args
		switch hp.name {
		case "nonexistent input file":
			args = []string{filepath.Join(target, "no-such-input-file-2b9e.txt")}
		case "unwritable output target":
			args = []string{"--output", "/proc/1/root/denied/out.txt"}
		}

		path, full := inv.Command(args...)
		outcome := p.Runner.Run(ctx, runner.Spec{
			Path:    path,
			Args:    full,
			Dir:     target,
			Timeout: p.probeTimeout(),
		})

		// Handled well means the tool rejected the input: a non-zero exit
		// with something on stderr. Anything else on a deliberately invalid
		// input is a defect.
		handled := outcome.FailedCleanly() && strings.TrimSpace(outcome.Stderr) != ""
		findings.Probes = append(findings.Probes, ProbeResult{
			Name: hp.name, Args: args, Outcome: outcome, Handled: handled,
		})
		if handled {
			continue
		}

		severity := hp.severity
		description := fmt.Sprintf("tool did not reject invalid input (%s)", hp.name)
		if !outcome.Completed() {
			description = fmt.Sprintf("tool hung or crashed without an observable exit (%s)", hp.name)
			if hp.name == "missing flag value" {
				// A hang on a flag missing its value usually means the tool
				// blocked waiting for input a fresh user never typed.
				severity = models.SeverityHigh
			}
		}

		result.RedFlags = append(result.RedFlags, models.RedFlag{
			Severity:    severity,
			Category:    "error-handling",
			Title:       fmt.Sprintf("Poor handling of %s", hp.name),
			Description: description,
			Evidence:    probeEvidence(args, outcome),
			Fix:         "exit non-zero with a clear message on stderr when given invalid input",
		})
	}

	p.probeHelp(ctx, target, inv, result, findings)

	result.Duration = time.Since(start)
	return result
}

// helpSections are the sections a useful --help output carries, with the
// accepted spellings for each.
var helpSections = map[string][]string{
	"usage":   {"usage"},
	"options": {"options", "flags"},
	"example": {"example"},
}

// probeHelp greps --help output for usage/options/example sections. A tool
// with no --help at all is a critical flag; each individual missing section
// is low.
func (p *Phase) probeHelp(ctx context.Context, target string, inv *probe.Invocation, result *models.PhaseResult, findings *Findings) {
	path, full := inv.Command("--help")
	outcome := p.Runner.Run(ctx, runner.Spec{
		Path:    path,
		Args:    full,
		Dir:     target,
		Timeout: p.probeTimeout(),
	})

	helpText := outcome.Stdout
	if strings.TrimSpace(helpText) == "" {
		helpText = outcome.Stderr
	}
	findings.HelpPresent = outcome.Succeeded() && strings.TrimSpace(helpText) != ""

	if !findings.HelpPresent {
		result.RedFlags = append(result.RedFlags, models.RedFlag{
			Severity:    models.SeverityCritical,
			Category:    "usability",
			Title:       "No --help output",
			Description: "the tool produces no usable help text, leaving a fresh user with no way in",
			Evidence:    probeEvidence(full, outcome),
			Fix:         "implement --help with usage, options, and example sections",
		})
		return
	}

	lower := strings.ToLower(helpText)
	findings.HelpSections = make(map[string]bool, len(helpSections))
	for section, spellings := range helpSections {
		present := false
		for _, s := range spellings {
			if strings.Contains(lower, s) {
				present = true
				break
			}
		}
		findings.HelpSections[section] = present
		if present {
			continue
		}
		result.RedFlags = append(result.RedFlags, models.RedFlag{
			Severity:    models.SeverityLow,
			Category:    "usability",
			Title:       fmt.Sprintf("Help output missing %s section", section),
			Description: fmt.Sprintf("--help output has no recognizable %s section", section),
			Fix:         fmt.Sprintf("add a %s section to the help text", section),
		})
	}
}

// probeEvidence formats a probe invocation and its outcome as evidence lines.
func probeEvidence(args []string, outcome models.CommandOutcome) []string {
	exit := "none (did not exit)"
	if outcome.ExitCode != nil {
		exit = fmt.Sprintf("%d", *outcome.ExitCode)
	}
	evidence := []string{
		fmt.Sprintf("args: %s", strings.Join(args, " ")),
		fmt.Sprintf("exit code: %s", exit),
	}
	if s := strings.TrimSpace(outcome.Stderr); s != "" {
		evidence = append(evidence, fmt.Sprintf("stderr: %.200s", s))
	} else {
		evidence = append(evidence, "stderr: (empty)")
	}
	return evidence
}
