// Package models defines the core data types shared across the audit engine:
// sessions, phase results, red flags, command outcomes, and validation results.
package models

import (
	"fmt"
	"time"
)

// PhaseName identifies one of the six fixed audit phases.
type PhaseName string

// The six audit phases, in execution order.
const (
	PhaseFirstImpressions PhaseName = "first_impressions"
	PhaseInstallation     PhaseName = "installation"
	PhaseFunctionality    PhaseName = "functionality"
	PhaseVerification     PhaseName = "verification"
	PhaseErrorHandling    PhaseName = "error_handling"
	PhaseStaticAnalysis   PhaseName = "static_analysis"
)

// PhaseOrder lists all phases in the order the orchestrator runs them.
var PhaseOrder = []PhaseName{
	PhaseFirstImpressions,
	PhaseInstallation,
	PhaseFunctionality,
	PhaseVerification,
	PhaseErrorHandling,
	PhaseStaticAnalysis,
}

// ScoredPhases maps the four phases that contribute a numeric score to their
// aggregation weights. The error-handling and static-analysis phases contribute
// red flags only.
var ScoredPhases = map[PhaseName]float64{
	PhaseFirstImpressions: 0.15,
	PhaseInstallation:     0.25,
	PhaseFunctionality:    0.35,
	PhaseVerification:     0.15,
}

// PhaseResult captures the outcome of a single phase invocation.
// It is created once per invocation and never mutated after return.
type PhaseResult struct {
	Phase    PhaseName     `json:"phase"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`

	// Score is the phase's numeric sub-score in [0,10]. Scored is false for
	// phases that produce no score (error handling, static analysis) and for
	// phases that failed before scoring.
	Score  float64 `json:"score"`
	Scored bool    `json:"scored"`

	// Findings holds the phase-specific payload. The concrete type is owned
	// by the phase's package and tagged by Phase.
	Findings any `json:"findings,omitempty"`

	// RedFlags are defects raised by this phase. The orchestrator merges
	// them across phases with (category, title) deduplication.
	RedFlags []RedFlag `json:"red_flags,omitempty"`

	// Notes are informational observations surfaced to the report.
	Notes []string `json:"notes,omitempty"`

	// Errors collects non-fatal error strings encountered during execution.
	Errors []string `json:"errors,omitempty"`
}

// Validate checks the result's structural invariants.
func (r *PhaseResult) Validate() error {
	if r.Phase == "" {
		return fmt.Errorf("phase name is required")
	}
	if r.Scored && (r.Score < 0 || r.Score > 10) {
		return fmt.Errorf("phase %s score %.2f outside [0,10]", r.Phase, r.Score)
	}
	return nil
}
