package grade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func marks(scores ...float64) []SubjectMark {
	out := make([]SubjectMark, 0, len(scores))
	for _, s := range scores {
		out = append(out, SubjectMark{Score: s})
	}
	return out
}

func TestComputeStudentAggregates(t *testing.T) {
	tests := []struct {
		name string
		opts StudentOptions
		want StudentAggregate
	}{
		{
			name: "no marks",
			opts: StudentOptions{},
			want: StudentAggregate{Grade: "F"},
		},
		{
			name: "two subjects",
			opts: StudentOptions{Marks: marks(80, 60)},
			want: StudentAggregate{Total: 140, Average: 70, Percentage: 70, Grade: "C", MaxTotal: 200},
		},
		{
			name: "custom max per subject",
			opts: StudentOptions{Marks: marks(45, 45), MaxPerSubject: 50},
			want: StudentAggregate{Total: 90, Average: 45, Percentage: 90, Grade: "A", MaxTotal: 100},
		},
		{
			name: "zero max falls back to 100",
			opts: StudentOptions{Marks: marks(50), MaxPerSubject: 0},
			want: StudentAggregate{Total: 50, Average: 50, Percentage: 50, Grade: "F", MaxTotal: 100},
		},
		{
			name: "negative max falls back to 100",
			opts: StudentOptions{Marks: marks(65), MaxPerSubject: -20},
			want: StudentAggregate{Total: 65, Average: 65, Percentage: 65, Grade: "D", MaxTotal: 100},
		},
		{
			name: "NaN max falls back to 100",
			opts: StudentOptions{Marks: marks(65), MaxPerSubject: math.NaN()},
			want: StudentAggregate{Total: 65, Average: 65, Percentage: 65, Grade: "D", MaxTotal: 100},
		},
		{
			name: "non-finite scores count as zero",
			opts: StudentOptions{Marks: marks(math.NaN(), math.Inf(1), 100)},
			want: StudentAggregate{Total: 100, Average: 100.0 / 3, Percentage: 100.0 / 3, Grade: "F", MaxTotal: 300},
		},
		{
			name: "custom thresholds",
			opts: StudentOptions{Marks: marks(50), Thresholds: []Threshold{{50, "P"}, {0, "NP"}}},
			want: StudentAggregate{Total: 50, Average: 50, Percentage: 50, Grade: "P", MaxTotal: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStudentAggregates(tt.opts)
			assert.Equal(t, tt.want.Grade, got.Grade)
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9)
			assert.InDelta(t, tt.want.Average, got.Average, 1e-9)
			assert.InDelta(t, tt.want.Percentage, got.Percentage, 1e-9)
			assert.InDelta(t, tt.want.MaxTotal, got.MaxTotal, 1e-9)
		})
	}
}

func TestAggregateClassPerformance(t *testing.T) {
	tests := []struct {
		name     string
		students []StudentMarks
		want     ClassAggregate
	}{
		{
			name: "no students",
			want: ClassAggregate{AvgGrade: "F", Distribution: map[string]int{}},
		},
		{
			name: "mixed class",
			students: []StudentMarks{
				{StudentID: "s1", Marks: marks(95, 85)}, // 90 A
				{StudentID: "s2", Marks: marks(80, 60)}, // 70 C
				{StudentID: "s3", Marks: marks(40)},     // 40 F
				{StudentID: "s4"},                       // 0 F
			},
			want: ClassAggregate{AvgPercentage: 50, AvgGrade: "F", Distribution: map[string]int{"A": 1, "C": 1, "F": 2}, Count: 4},
		},
		{
			name: "average grade is regraded",
			students: []StudentMarks{
				{StudentID: "s1", Marks: marks(100)},
				{StudentID: "s2", Marks: marks(70)},
			},
			want: ClassAggregate{AvgPercentage: 85, AvgGrade: "B", Distribution: map[string]int{"A": 1, "C": 1}, Count: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateClassPerformance(tt.students, ClassOptions{})
			assert.Equal(t, tt.want.AvgGrade, got.AvgGrade)
			assert.Equal(t, tt.want.Distribution, got.Distribution)
			assert.Equal(t, tt.want.Count, got.Count)
			assert.InDelta(t, tt.want.AvgPercentage, got.AvgPercentage, 1e-9)

			var sum int
			for _, n := range got.Distribution {
				sum += n
			}
			assert.Equal(t, got.Count, sum)
		})
	}
}
