package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/docscan"
	"github.com/harrison/firstrun/internal/install"
	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/runner"
	"github.com/harrison/firstrun/internal/score"
)

// ProbeTimeout bounds each functionality probe.
const ProbeTimeout = 30 * time.Second

// commandMatrix is the fixed set of invocations tried against the tool.
var commandMatrix = [][]string{
	{"--help"},
	{"--version"},
	{}, // bare invocation
	{"init"},
	{"build"},
	{"test"},
	{"run"},
	{"status"},
	{"list"},
	{"info"},
	{"--verbose"},
	{"--dry-run"},
}

// CommandResult records one matrix entry's outcome.
type CommandResult struct {
	Args    []string              `json:"args"`
	Outcome models.CommandOutcome `json:"outcome"`
	Success bool                  `json:"success"`
}

// Findings is the functionality phase payload.
type Findings struct {
	Binary          *Invocation     `json:"binary,omitempty"`
	Commands        []CommandResult `json:"commands,omitempty"`
	Tested          int             `json:"tested"`
	Succeeded       int             `json:"succeeded"`
	SuccessRate     float64         `json:"success_rate"`
	DocumentedFeats []string        `json:"documented_features,omitempty"`
	MissingFeats    []string        `json:"missing_features,omitempty"`
}

// Phase implements the functionality audit step.
type Phase struct {
	Runner runner.Runner

	// Timeout bounds each probe. Zero means ProbeTimeout.
	Timeout time.Duration
}

// NewPhase returns a functionality phase backed by the given runner.
func NewPhase(r runner.Runner) *Phase {
	return &Phase{Runner: r}
}

func (p *Phase) probeTimeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return ProbeTimeout
}

// Run discovers the binary, executes the command matrix, and diffs documented
// features against demonstrated commands. Returns the discovered invocation
// for reuse by the verification and error-handling phases (nil when no binary
// was found).
func (p *Phase) Run(ctx context.Context, target, binaryName string, eco *install.Ecosystem, docs *docscan.Scan) (*models.PhaseResult, *Invocation) {
	start := time.Now()
	result := &models.PhaseResult{
		Phase:   models.PhaseFunctionality,
		Success: true,
		Scored:  true,
	}
	findings := &Findings{}
	result.Findings = findings

	inv := Discover(target, binaryName, eco)
	findings.Binary = inv
	if inv == nil {
		result.Notes = append(result.Notes,
			"could not discover an executable for the tool - nothing to probe")
		result.Score = 0
		result.Duration = time.Since(start)
		return result, nil
	}

	succeededArgs := make(map[string]bool)
	for _, args := range commandMatrix {
		path, full := inv.Command(args...)
		outcome := p.Runner.Run(ctx, runner.Spec{
			Path:    path,
			Args:    full,
			Dir:     target,
			Timeout: p.probeTimeout(),
		})

		// Only an observed zero exit counts as success; an unobservable
		// exit is a non-finding, never a pass.
		success := outcome.Succeeded()
		findings.Commands = append(findings.Commands, CommandResult{
			Args:    args,
			Outcome: outcome,
			Success: success,
		})
		findings.Tested++
		if success {
			findings.Succeeded++
			for _, a := range args {
				succeededArgs[strings.TrimLeft(a, "-")] = true
			}
		}
	}

	findings.DocumentedFeats = extractFeatures(docs)
	for _, feat := range findings.DocumentedFeats {
		if !featureDemonstrated(feat, succeededArgs) {
			findings.MissingFeats = append(findings.MissingFeats, feat)
		}
	}
	for _, feat := range findings.MissingFeats {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"documented feature not demonstrated by any succeeding command: %s", feat))
	}

	result.Score = phaseScore(findings)
	findings.SuccessRate = successRate(findings)
	result.Duration = time.Since(start)
	return result, inv
}

// successRate is succeeded/tested, zero when nothing was tested.
func successRate(f *Findings) float64 {
	if f.Tested == 0 {
		return 0
	}
	return float64(f.Succeeded) / float64(f.Tested)
}

// phaseScore applies the functionality formula: rate x 7,+2 at >=90% or +1 at
// >=70%, -0.5 per missing feature, clamped. Zero tested commands yields 0.
func phaseScore(f *Findings) float64 {
	if f.Tested == 0 {
		return 0
	}
	rate := successRate(f)

	s := rate * 7
	switch {
	case rate >= 0.9:
		s += 2
	case rate >= 0.7:
		s += 1
	}
	s -= 0.5 * float64(len(f.MissingFeats))
	return score.Clamp(s)
}

// extractFeatures pulls bullet items from the documentation's Features
// section. Pattern-based and inherently approximate.
func extractFeatures(docs *docscan.Scan) []string {
	if docs == nil || !docs.HasSection("features") {
		return nil
	}

	var features []string
	inFeatures := false
	for _, line := range strings.Split(docs.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			inFeatures = strings.Contains(strings.ToLower(trimmed), "features")
			continue
		}
		if !inFeatures {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			feat := strings.TrimSpace(strings.TrimLeft(trimmed, "-* "))
			if feat != "" {
				features = append(features, feat)
			}
		}
	}
	return features
}

// featureDemonstrated reports whether a documented feature matches any
// command that succeeded, by word overlap with the matrix vocabulary.
func featureDemonstrated(feature string, succeeded map[string]bool) bool {
	lower := strings.ToLower(feature)
	for word := range succeeded {
		if word != "" && strings.Contains(lower, word) {
			return true
		}
	}
	// The bare invocation succeeding demonstrates nothing nameable, and
	// generic prose features have no command to match.
	return false
}
