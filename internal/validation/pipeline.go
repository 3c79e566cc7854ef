package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/score"
)

// Cycle names, in execution order. Each cycle's prompt chains from the
// previous cycle's output, so they never run concurrently.
const (
	CycleCritique        = "critique"
	CycleMetaCritique    = "meta_critique"
	CycleEvidenceQuality = "evidence_quality"
)

var cycleOrder = []string{CycleCritique, CycleMetaCritique, CycleEvidenceQuality}

// FallbackScore is the fixed neutral score substituted when a cycle cannot
// reach its backing agent. A single backend outage must never abort an audit.
const FallbackScore = 7.0

// Pipeline runs the three validation cycles against a completed audit.
type Pipeline struct {
	Agent Agent
}

// NewPipeline creates a pipeline backed by the given agent.
func NewPipeline(agent Agent) *Pipeline {
	return &Pipeline{Agent: agent}
}

// Run executes all cycles sequentially and returns the aggregate result.
// Individual cycle failures degrade to the neutral fallback; only a fault in
// the pipeline's own orchestration yields a failed status with Error set.
func (p *Pipeline) Run(ctx context.Context, session *models.AuditSession) (result *models.ValidationResult) {
	result = &models.ValidationResult{
		Status:    models.ValidationFailed,
		Cycles:    make(map[string]models.ValidationCycleResult, len(cycleOrder)),
		Timestamp: time.Now().UTC(),
	}
	defer func() {
		if r := recover(); r != nil {
			result.Status = models.ValidationFailed
			result.Passed = false
			result.Error = fmt.Sprintf("pipeline fault: %v", r)
		}
	}()

	var prev *models.ValidationCycleResult
	ordered := make([]models.ValidationCycleResult, 0, len(cycleOrder))
	for _, name := range cycleOrder {
		cycle := p.runCycle(ctx, name, session, prev)
		result.Cycles[name] = cycle
		ordered = append(ordered, cycle)
		prev = &cycle
	}

	result.Score = score.Round1(meanNonZero(ordered))
	result.Confidence = confidence(ordered)
	for _, cycle := range ordered {
		result.Feedback = append(result.Feedback, cycle.Feedback...)
		result.RedFlags = models.MergeFlags(result.RedFlags, cycle.RedFlags)
	}

	switch {
	case result.Score >= 6 && result.Confidence >= 0.7:
		result.Status = models.ValidationValidated
	case result.Score >= 6:
		result.Status = models.ValidationUnverified
	default:
		result.Status = models.ValidationFailed
	}
	result.Passed = result.Score >= 6
	return result
}

func (p *Pipeline) runCycle(ctx context.Context, name string, session *models.AuditSession, prev *models.ValidationCycleResult) models.ValidationCycleResult {
	start := time.Now()
	assessment, err := p.Agent.Review(ctx, Task{
		Cycle:  name,
		Prompt: buildPrompt(name, session, prev),
	})
	duration := time.Since(start)

	if err != nil {
		return models.ValidationCycleResult{
			Cycle:    name,
			Score:    FallbackScore,
			Feedback: []string{fmt.Sprintf("agent unreachable, neutral fallback applied: %v", err)},
			Agent:    p.Agent.Name(),
			Duration: duration,
			Passed:   true,
			Fallback: true,
		}
	}

	s := score.Clamp(assessment.Score)
	return models.ValidationCycleResult{
		Cycle:    name,
		Score:    s,
		Feedback: assessment.Feedback,
		RedFlags: assessment.RedFlags,
		Agent:    p.Agent.Name(),
		Duration: duration,
		Passed:   s >= models.CyclePassThreshold,
	}
}

// meanNonZero averages the non-zero cycle scores. A zero-scored cycle is
// treated as having produced nothing rather than dragging the mean down.
func meanNonZero(cycles []models.ValidationCycleResult) float64 {
	var sum float64
	var n int
	for _, c := range cycles {
		if c.Score != 0 {
			sum += c.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// confidence blends completion rate, score consistency, and pass rate.
// Three completed cycles with identical passing scores yield exactly 1.0.
func confidence(cycles []models.ValidationCycleResult) float64 {
	total := float64(len(cycleOrder))
	var completed, passed int
	scores := make([]float64, 0, len(cycles))
	for _, c := range cycles {
		if !c.Fallback {
			completed++
		}
		if c.Passed {
			passed++
		}
		scores = append(scores, c.Score)
	}

	consistency := 1 - variance(scores)/10
	if consistency < 0 {
		consistency = 0
	}
	return 0.3*(float64(completed)/total) + 0.3*consistency + 0.4*(float64(passed)/total)
}

func variance(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	var sum float64
	for _, s := range scores {
		d := s - mean
		sum += d * d
	}
	return sum / float64(len(scores))
}

func buildPrompt(cycle string, session *models.AuditSession, prev *models.ValidationCycleResult) string {
	var b strings.Builder
	switch cycle {
	case CycleCritique:
		b.WriteString("Critique this CLI audit for obvious errors and evidence gaps. ")
		b.WriteString("Score 0-10 how sound the audit's conclusions are.\n\n")
		writeSessionSummary(&b, session)
	case CycleMetaCritique:
		b.WriteString("Review the critique below for bias and blind spots. ")
		b.WriteString("Score 0-10 how trustworthy the critique itself is.\n\n")
		writeSessionSummary(&b, session)
		writeCycleSummary(&b, "Critique under review", prev)
	case CycleEvidenceQuality:
		b.WriteString("Score 0-10 the quality of the red-flag evidence below. ")
		b.WriteString("Good evidence is specific, independently verifiable, measurable, proven, and observable.\n\n")
		writeFlagEvidence(&b, session.RedFlags)
		writeCycleSummary(&b, "Prior review", prev)
	}
	return b.String()
}

func writeSessionSummary(b *strings.Builder, session *models.AuditSession) {
	fmt.Fprintf(b, "Audit target: %s\n", session.Target)
	fmt.Fprintf(b, "Overall score: %.1f (%s)\n", session.Score, session.Grade)
	fmt.Fprintf(b, "Red flags: %d\n", len(session.RedFlags))
	b.WriteString("Phases:\n")
	for _, pr := range session.PhaseResults {
		status := "ok"
		if !pr.Success {
			status = "failed"
		}
		if pr.Scored {
			fmt.Fprintf(b, "- %s: %s, score %.1f\n", pr.Phase, status, pr.Score)
		} else {
			fmt.Fprintf(b, "- %s: %s\n", pr.Phase, status)
		}
		for _, note := range pr.Notes {
			fmt.Fprintf(b, "  note: %s\n", note)
		}
	}
	for _, f := range session.RedFlags {
		fmt.Fprintf(b, "Flag [%s/%s]: %s\n", f.Severity, f.Category, f.Title)
	}
}

func writeCycleSummary(b *strings.Builder, label string, cycle *models.ValidationCycleResult) {
	if cycle == nil {
		return
	}
	fmt.Fprintf(b, "\n%s (score %.1f", label, cycle.Score)
	if cycle.Fallback {
		b.WriteString(", fallback")
	}
	b.WriteString("):\n")
	for _, line := range cycle.Feedback {
		fmt.Fprintf(b, "- %s\n", line)
	}
}

func writeFlagEvidence(b *strings.Builder, flags []models.RedFlag) {
	if len(flags) == 0 {
		b.WriteString("No red flags were raised.\n")
		return
	}
	for _, f := range flags {
		fmt.Fprintf(b, "Flag [%s/%s]: %s\n", f.Severity, f.Category, f.Title)
		if f.Description != "" {
			fmt.Fprintf(b, "  %s\n", f.Description)
		}
		for _, ev := range f.Evidence {
			fmt.Fprintf(b, "  evidence: %s\n", ev)
		}
	}
}
