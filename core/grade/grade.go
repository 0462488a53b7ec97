// Package grade maps percentages to letter grades and aggregates marks
// for single students and whole classes.
//
// Every function is pure: inputs are never mutated and bad numbers are
// coerced rather than rejected, so none of them fails.
package grade

import (
	"math"
	"sort"
	"strings"
)

// Threshold is a grade band: any percentage >= Min (and below the next band) earns Grade.
type Threshold struct {
	Min   float64 `json:"min"`
	Grade string  `json:"grade"`
}

const (
	fallbackGrade = "F"
	unknownGrade  = "?"
)

// DefaultThresholds returns the default grading table.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Min: 90, Grade: "A"},
		{Min: 80, Grade: "B"},
		{Min: 70, Grade: "C"},
		{Min: 60, Grade: "D"},
		{Min: 0, Grade: "F"},
	}
}

// NormalizeThresholds returns a cleaned copy of ths sorted by Min descending,
// with mins clamped into [0, 100], blank grades replaced by "?", one band per Min
// (the first one wins) and a 0 floor that reuses the lowest band's grade.
//
// A nil table means DefaultThresholds; an empty one normalizes to [{0 F}].
func NormalizeThresholds(ths []Threshold) []Threshold {
	if ths == nil {
		ths = DefaultThresholds()
	}

	list := make([]Threshold, len(ths))
	copy(list, ths)
	sort.SliceStable(list, func(i, j int) bool { return sortKey(list[i].Min) > sortKey(list[j].Min) })

	cleaned := make([]Threshold, 0, len(list)+1)
	hasFloor := false
	for _, t := range list {
		t.Min = clamp(t.Min)
		t.Grade = strings.TrimSpace(t.Grade)
		if t.Grade == "" {
			t.Grade = unknownGrade
		}
		if t.Min == 0 {
			hasFloor = true
		}
		cleaned = append(cleaned, t)
	}
	if !hasFloor {
		floor := fallbackGrade
		if n := len(cleaned); n > 0 {
			floor = cleaned[n-1].Grade
		}
		cleaned = append(cleaned, Threshold{Min: 0, Grade: floor})
	}

	unique := make([]Threshold, 0, len(cleaned))
	seen := make(map[float64]bool, len(cleaned))
	for _, t := range cleaned {
		if !seen[t.Min] {
			unique = append(unique, t)
			seen[t.Min] = true
		}
	}
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Min > unique[j].Min })
	return unique
}

// CalculateGrade returns the grade of the first band whose Min <= pct.
// pct is clamped into [0, 100]; NaN counts as 0.
func CalculateGrade(pct float64, ths []Threshold) string {
	return gradeOf(clamp(pct), NormalizeThresholds(ths))
}

func gradeOf(pct float64, normalized []Threshold) string {
	for _, t := range normalized {
		if pct >= t.Min {
			return t.Grade
		}
	}
	if n := len(normalized); n > 0 {
		return normalized[n-1].Grade
	}
	return fallbackGrade
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(100, x))
}

func sortKey(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return x
}
