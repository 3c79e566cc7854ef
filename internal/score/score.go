// Package score holds the scoring primitives shared by every audit phase and
// the aggregator: the [0,10] clamp, one-decimal rounding, and the fixed
// score-to-letter grade mapping consumed by the external renderer.
package score

import "math"

// Clamp bounds a phase or aggregate score to [0,10]. Every scoring formula
// passes through this, so no input magnitude can leak an out-of-range score.
func Clamp(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// Round1 rounds to one decimal place.
func Round1(s float64) float64 {
	return math.Round(s*10) / 10
}

// Grade maps a final score onto the fixed letter scale.
func Grade(s float64) string {
	switch {
	case s >= 9:
		return "A+"
	case s >= 8:
		return "A"
	case s >= 7:
		return "B"
	case s >= 6:
		return "C"
	case s >= 4:
		return "D"
	default:
		return "F"
	}
}
