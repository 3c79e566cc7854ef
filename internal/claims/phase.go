package claims

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/docscan"
	"github.com/harrison/firstrun/internal/fileutil"
	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/probe"
	"github.com/harrison/firstrun/internal/runner"
	"github.com/harrison/firstrun/internal/score"
)

// VerifyTimeout bounds each claim-verification invocation.
const VerifyTimeout = 30 * time.Second

// NeutralScore is returned when the documentation yields no checkable
// claims: their absence is not itself a defect.
const NeutralScore = 5.0

// Verdict is the outcome of verifying one claim.
type Verdict string

const (
	// VerdictVerified means the claim checked out.
	VerdictVerified Verdict = "verified"

	// VerdictUnverified means the claim could not be checked. Feature
	// claims land here permanently by design.
	VerdictUnverified Verdict = "unverified"

	// VerdictMismatch means the claim was checked and observed behavior
	// contradicted the documentation.
	VerdictMismatch Verdict = "mismatch"
)

// Verification pairs a claim with its verdict.
type Verification struct {
	Claim   Claim   `json:"claim"`
	Verdict Verdict `json:"verdict"`
	Detail  string  `json:"detail,omitempty"`
}

// Findings is the verification phase payload.
type Findings struct {
	Claims     []Verification `json:"claims,omitempty"`
	Total      int            `json:"total"`
	Verified   int            `json:"verified"`
	Mismatches int            `json:"mismatches"`
}

// Phase implements the claim-verification audit step.
type Phase struct {
	Runner runner.Runner

	// Timeout bounds each verification command. Zero means VerifyTimeout.
	Timeout time.Duration
}

// NewPhase returns a verification phase backed by the given runner.
func NewPhase(r runner.Runner) *Phase {
	return &Phase{Runner: r}
}

func (p *Phase) verifyTimeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return VerifyTimeout
}

// Run extracts claims from the scanned documentation and verifies each by
// its type's strategy. A nil docs scan or a docless tree yields the neutral
// score.
func (p *Phase) Run(ctx context.Context, target string, docs *docscan.Scan, inv *probe.Invocation) *models.PhaseResult {
	start := time.Now()
	result := &models.PhaseResult{
		Phase:   models.PhaseVerification,
		Success: true,
		Scored:  true,
	}
	findings := &Findings{}
	result.Findings = findings

	var doc string
	if docs != nil {
		doc = docs.Content
	}
	extracted := Extract(doc)
	findings.Total = len(extracted)
	if findings.Total == 0 {
		result.Notes = append(result.Notes,
			"no checkable claims extracted from documentation - neutral score")
		result.Score = NeutralScore
		result.Duration = time.Since(start)
		return result
	}

	for _, claim := range extracted {
		v := p.verify(ctx, target, claim, inv)
		findings.Claims = append(findings.Claims, v)
		switch v.Verdict {
		case VerdictVerified:
			findings.Verified++
		case VerdictMismatch:
			findings.Mismatches++
			result.Notes = append(result.Notes, fmt.Sprintf(
				"documentation mismatch: %s (%s)", claim.Text, v.Detail))
		}
	}

	result.Score = phaseScore(findings)
	result.Duration = time.Since(start)
	return result
}

// phaseScore applies the verification formula: rate x 8, +2 at a perfect
// rate or +1 at >=90%, -1.5 per accuracy mismatch, clamped.
func phaseScore(f *Findings) float64 {
	rate := float64(f.Verified) / float64(f.Total)

	s := rate * 8
	switch {
	case rate >= 1.0:
		s += 2
	case rate >= 0.9:
		s += 1
	}
	s -= 1.5 * float64(f.Mismatches)
	return score.Clamp(s)
}

// verify dispatches one claim to its type's strategy.
func (p *Phase) verify(ctx context.Context, target string, claim Claim, inv *probe.Invocation) Verification {
	v := Verification{Claim: claim}

	switch claim.Type {
	case ClaimVersion:
		v.Verdict, v.Detail = p.verifyVersion(ctx, target, claim, inv)
	case ClaimCommand:
		v.Verdict, v.Detail = p.verifyCommand(ctx, target, claim)
	case ClaimConfig:
		if fileutil.Exists(filepath.Join(target, claim.Subject)) {
			v.Verdict = VerdictVerified
		} else {
			v.Verdict = VerdictUnverified
			v.Detail = "config file not present in the tree"
		}
	default:
		// Feature claims stay unverified by design.
		v.Verdict = VerdictUnverified
		v.Detail = "natural-language feature claims are not automatically checkable"
	}
	return v
}

// verifyVersion runs --version and substring-matches the documented string.
func (p *Phase) verifyVersion(ctx context.Context, target string, claim Claim, inv *probe.Invocation) (Verdict, string) {
	if inv == nil {
		return VerdictUnverified, "no binary to query for a version"
	}
	path, args := inv.Command("--version")
	outcome := p.Runner.Run(ctx, runner.Spec{
		Path: path, Args: args, Dir: target, Timeout: p.verifyTimeout(),
	})
	if !outcome.Completed() {
		return VerdictUnverified, "--version did not complete"
	}
	observed := strings.TrimSpace(outcome.Stdout + " " + outcome.Stderr)
	if strings.Contains(observed, claim.Subject) {
		return VerdictVerified, ""
	}
	return VerdictMismatch, fmt.Sprintf("documented %q, --version reported %.100q", claim.Subject, observed)
}

// verifyCommand executes the documented example literally and checks exit
// status. Shell metacharacters make an example unexecutable here; those stay
// unverified rather than spawning a shell on untrusted input.
func (p *Phase) verifyCommand(ctx context.Context, target string, claim Claim) (Verdict, string) {
	fields := strings.Fields(claim.Subject)
	if len(fields) == 0 {
		return VerdictUnverified, "empty command"
	}
	if strings.ContainsAny(claim.Subject, "|&;<>$`") {
		return VerdictUnverified, "example uses shell syntax and was not executed"
	}
	// Install commands were exercised by the installation phase already.
	if isInstallInvocation(fields) {
		return VerdictUnverified, "install command, covered by the installation phase"
	}
	if !runner.Available(fields[0]) {
		return VerdictUnverified, fmt.Sprintf("%q not on the search path", fields[0])
	}

	outcome := p.Runner.Run(ctx, runner.Spec{
		Path: fields[0], Args: fields[1:], Dir: target, Timeout: p.verifyTimeout(),
	})
	switch {
	case outcome.Succeeded():
		return VerdictVerified, ""
	case outcome.FailedCleanly():
		return VerdictMismatch, fmt.Sprintf("documented example exited %d", *outcome.ExitCode)
	default:
		return VerdictUnverified, "example did not complete"
	}
}

// isInstallInvocation recognizes package-manager install examples.
func isInstallInvocation(fields []string) bool {
	if len(fields) < 2 {
		return false
	}
	switch fields[0] {
	case "npm", "pip", "pip3", "cargo", "go", "brew", "gem", "apt", "apt-get":
		return fields[1] == "install" || fields[1] == "get"
	}
	return false
}
