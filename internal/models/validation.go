package models

import (
	"fmt"
	"time"
)

// ValidationStatus tags the outcome of the validation pipeline.
type ValidationStatus string

const (
	ValidationValidated  ValidationStatus = "validated"
	ValidationUnverified ValidationStatus = "unverified"
	ValidationFailed     ValidationStatus = "failed"
	ValidationSkipped    ValidationStatus = "skipped"
)

// CyclePassThreshold is the score at which an individual cycle passes.
const CyclePassThreshold = 5.0

// ValidationCycleResult is the outcome of one validation cycle.
type ValidationCycleResult struct {
	Cycle    string        `json:"cycle"`
	Score    float64       `json:"score"`
	Feedback []string      `json:"feedback,omitempty"`
	RedFlags []RedFlag     `json:"red_flags,omitempty"`
	Agent    string        `json:"agent"`
	Duration time.Duration `json:"duration"`
	Passed   bool          `json:"passed"`

	// Fallback marks a cycle that could not reach its backing agent and
	// returned the fixed neutral result instead.
	Fallback bool `json:"fallback,omitempty"`
}

// ValidationResult is the aggregate outcome of the three-cycle pipeline.
type ValidationResult struct {
	Passed   bool             `json:"passed"`
	Score    float64          `json:"score"`
	Feedback []string         `json:"feedback,omitempty"`
	RedFlags []RedFlag        `json:"red_flags,omitempty"`
	Status   ValidationStatus `json:"status"`

	// Cycles is keyed by cycle name.
	Cycles map[string]ValidationCycleResult `json:"cycles,omitempty"`

	// Confidence is in [0,1]: how much to trust Score, derived from
	// completion rate, score consistency, and per-cycle pass rate.
	Confidence float64 `json:"confidence"`

	Timestamp time.Time `json:"timestamp"`

	// Error is set only when the pipeline's own orchestration faulted,
	// never for an individual cycle falling back.
	Error string `json:"error,omitempty"`
}

// Validate checks the result's structural invariants.
func (v *ValidationResult) Validate() error {
	switch v.Status {
	case ValidationValidated, ValidationUnverified, ValidationFailed, ValidationSkipped:
	default:
		return fmt.Errorf("invalid validation status %q", v.Status)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %.3f outside [0,1]", v.Confidence)
	}
	if v.Score < 0 || v.Score > 10 {
		return fmt.Errorf("score %.2f outside [0,10]", v.Score)
	}
	return nil
}
