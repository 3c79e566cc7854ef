package models

import (
	"fmt"
	"time"
)

// AuditConfig is the caller-supplied configuration for one audit run.
// It is passed into the orchestrator at construction and scoped to a single
// invocation; there is no process-wide audit state.
type AuditConfig struct {
	// OutputPath is the destination for the rendered report hand-off.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path"`

	// Validate enables the three-cycle validation pipeline.
	Validate bool `json:"validate" yaml:"validate"`

	// Tier is the caller's plan label, echoed into the report.
	Tier string `json:"tier,omitempty" yaml:"tier"`

	// Verbose enables detailed progress output.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// DomainContext is free-text context consumed only by documentation
	// generation downstream, never by the core's logic.
	DomainContext string `json:"domain_context,omitempty" yaml:"domain_context"`
}

// AuditSession identifies one audit run and carries everything the external
// report renderer needs. The orchestrator is its sole writer for the
// session's duration; once returned to the caller it is immutable.
type AuditSession struct {
	ID     string      `json:"id"`
	Target string      `json:"target"`
	Config AuditConfig `json:"config"`

	// PhaseResults holds one entry per executed phase, in execution order.
	PhaseResults []PhaseResult `json:"phase_results"`

	// RedFlags is the merged, deduplicated flag list across all phases.
	RedFlags []RedFlag `json:"red_flags"`

	Score float64 `json:"score"`
	Grade string  `json:"grade"`

	// Validation is nil when the pipeline did not run; its Status is
	// "skipped" when it was declined by configuration or the gate.
	Validation *ValidationResult `json:"validation,omitempty"`

	CompletedAt time.Time `json:"completed_at"`
}

// Result returns the result for the named phase, or nil if the phase did not
// run.
func (s *AuditSession) Result(phase PhaseName) *PhaseResult {
	for i := range s.PhaseResults {
		if s.PhaseResults[i].Phase == phase {
			return &s.PhaseResults[i]
		}
	}
	return nil
}

// Validate checks the session's structural invariants.
func (s *AuditSession) Validate() error {
	if s.Target == "" {
		return fmt.Errorf("target is required")
	}
	if s.Score < 0 || s.Score > 10 {
		return fmt.Errorf("score %.2f outside [0,10]", s.Score)
	}
	seen := make(map[dedupeKey]bool, len(s.RedFlags))
	for _, f := range s.RedFlags {
		key := dedupeKey{category: f.Category, title: f.Title}
		if seen[key] {
			return fmt.Errorf("duplicate red flag %s/%s", f.Category, f.Title)
		}
		seen[key] = true
	}
	return nil
}
