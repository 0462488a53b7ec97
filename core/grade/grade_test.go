package grade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeThresholds(t *testing.T) {
	tests := []struct {
		name string
		ths  []Threshold
		want []Threshold
	}{
		{name: "nil uses defaults", ths: nil, want: DefaultThresholds()},
		{name: "empty gets F floor", ths: []Threshold{}, want: []Threshold{{0, "F"}}},
		{name: "floor reuses lowest grade", ths: []Threshold{{50, "X"}}, want: []Threshold{{50, "X"}, {0, "X"}}},
		{
			name: "unsorted input",
			ths:  []Threshold{{0, "F"}, {75, "B"}, {50, "C"}, {90, "A"}},
			want: []Threshold{{90, "A"}, {75, "B"}, {50, "C"}, {0, "F"}},
		},
		{
			name: "clamped mins",
			ths:  []Threshold{{150, "A+"}, {-10, "Z"}},
			want: []Threshold{{100, "A+"}, {0, "Z"}},
		},
		{
			name: "blank grades",
			ths:  []Threshold{{80, "  "}, {0, " F "}},
			want: []Threshold{{80, "?"}, {0, "F"}},
		},
		{
			name: "duplicate mins keep first",
			ths:  []Threshold{{80, "B"}, {80, "B2"}, {0, "F"}},
			want: []Threshold{{80, "B"}, {0, "F"}},
		},
		{
			name: "clamping collapses to one band",
			ths:  []Threshold{{120, "S"}, {100, "A"}},
			want: []Threshold{{100, "S"}, {0, "A"}},
		},
		{name: "NaN min becomes floor", ths: []Threshold{{math.NaN(), "N"}}, want: []Threshold{{0, "N"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeThresholds(tt.ths))
		})
	}
}

func TestNormalizeThresholds_doesNotMutateInput(t *testing.T) {
	ths := []Threshold{{0, " f "}, {90, "A"}}
	_ = NormalizeThresholds(ths)
	assert.Equal(t, []Threshold{{0, " f "}, {90, "A"}}, ths)
}

func TestNormalizeThresholds_invariants(t *testing.T) {
	inputs := [][]Threshold{
		nil,
		{},
		{{50, "X"}},
		{{10, "a"}, {10, "b"}, {200, ""}, {-3, "c"}},
		{{99.5, "A"}, {math.Inf(1), "S"}, {math.Inf(-1), "Z"}},
	}
	for _, in := range inputs {
		out := NormalizeThresholds(in)
		assert.NotEmpty(t, out)
		assert.Equal(t, float64(0), out[len(out)-1].Min, "last band must be the 0 floor")
		seen := make(map[float64]bool)
		for i, th := range out {
			assert.GreaterOrEqual(t, th.Min, float64(0))
			assert.LessOrEqual(t, th.Min, float64(100))
			assert.NotEmpty(t, th.Grade)
			assert.False(t, seen[th.Min], "duplicate min %v", th.Min)
			seen[th.Min] = true
			if i > 0 {
				assert.Greater(t, out[i-1].Min, th.Min)
			}
		}
	}
}

func TestCalculateGrade(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		ths  []Threshold
		want string
	}{
		{name: "exact A", pct: 90, want: "A"},
		{name: "just below A", pct: 89.999, want: "B"},
		{name: "B", pct: 80, want: "B"},
		{name: "C", pct: 75, want: "C"},
		{name: "D", pct: 60, want: "D"},
		{name: "zero", pct: 0, want: "F"},
		{name: "negative", pct: -5, want: "F"},
		{name: "over 100", pct: 150, want: "A"},
		{name: "NaN", pct: math.NaN(), want: "F"},
		{name: "+Inf", pct: math.Inf(1), want: "A"},
		{name: "-Inf", pct: math.Inf(-1), want: "F"},
		{name: "custom table", pct: 55, ths: []Threshold{{50, "Pass"}, {0, "Fail"}}, want: "Pass"},
		{name: "custom table without floor", pct: 10, ths: []Threshold{{50, "X"}}, want: "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateGrade(tt.pct, tt.ths))
		})
	}
}

func TestCalculateGrade_monotonic(t *testing.T) {
	rank := map[string]int{"F": 0, "D": 1, "C": 2, "B": 3, "A": 4}
	prev := rank[CalculateGrade(0, nil)]
	for p := 0.0; p <= 100; p += 0.25 {
		cur := rank[CalculateGrade(p, nil)]
		assert.GreaterOrEqual(t, cur, prev, "pct %v", p)
		prev = cur
	}
}
