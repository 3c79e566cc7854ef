package executor

import (
	"math"

	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/score"
)

// Red-flag penalty: 0.1 per flag, capped at 2 points.
const (
	flagPenaltyStep = 0.1
	flagPenaltyCap  = 2.0
)

// FinalScore aggregates the scored phases into one number. Weights are
// renormalized over the phases that actually produced a score, so a skipped
// or failed phase is excluded rather than dragging the average to zero. The
// red-flag penalty is subtracted afterwards, then the result is rounded to
// one decimal and clamped.
func FinalScore(results []models.PhaseResult, flagCount int) float64 {
	var weightSum, weighted float64
	for _, r := range results {
		weight, scored := models.ScoredPhases[r.Phase]
		if !scored || !r.Scored {
			continue
		}
		weightSum += weight
		weighted += weight * r.Score
	}
	if weightSum == 0 {
		return 0
	}

	avg := weighted / weightSum
	penalty := math.Min(float64(flagCount)*flagPenaltyStep, flagPenaltyCap)
	return score.Round1(score.Clamp(avg - penalty))
}
