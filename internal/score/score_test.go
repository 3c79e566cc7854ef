package score

import (
	"math"
	"testing"
)

// TestClamp verifies the [0,10] bound holds for any input magnitude.
func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 7.3, 7.3},
		{"negative", -4.2, 0},
		{"above ten", 15.1, 10},
		{"zero", 0, 0},
		{"ten", 10, 10},
		{"nan", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 10},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestRound1 verifies one-decimal rounding.
func TestRound1(t *testing.T) {
	if got := Round1(7.555555); got != 7.6 {
		t.Errorf("Round1(7.555555) = %v, want 7.6", got)
	}
	if got := Round1(7.54); got != 7.5 {
		t.Errorf("Round1(7.54) = %v, want 7.5", got)
	}
}

// TestGrade verifies the fixed step function and its boundaries.
func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, "A+"}, {9, "A+"}, {8.9, "A"}, {8, "A"},
		{7.9, "B"}, {7, "B"}, {6.5, "C"}, {6, "C"},
		{5.9, "D"}, {4, "D"}, {3.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
