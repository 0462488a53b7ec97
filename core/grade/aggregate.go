package grade

import "math"

const defaultMaxPerSubject = 100

// SubjectMark is one subject score of a student.
type SubjectMark struct {
	SubjectID   string  `json:"subjectId,omitempty"`
	SubjectName string  `json:"subjectName,omitempty"`
	Score       float64 `json:"score"`
}

type StudentOptions struct {
	Marks         []SubjectMark
	MaxPerSubject float64 // <= 0 or non-finite means 100
	Thresholds    []Threshold
}

type StudentAggregate struct {
	Total      float64 `json:"total"`
	Average    float64 `json:"average"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	MaxTotal   float64 `json:"maxTotal"`
}

// ComputeStudentAggregates sums a student's marks and grades the resulting percentage.
// Non-finite scores count as 0. No marks yields zeros and the floor grade.
func ComputeStudentAggregates(opts StudentOptions) StudentAggregate {
	maxPer := opts.MaxPerSubject
	if maxPer <= 0 || math.IsNaN(maxPer) || math.IsInf(maxPer, 0) {
		maxPer = defaultMaxPerSubject
	}

	n := float64(len(opts.Marks))
	var agg StudentAggregate
	agg.MaxTotal = n * maxPer
	for _, m := range opts.Marks {
		agg.Total += finite(m.Score)
	}
	if n > 0 {
		agg.Average = agg.Total / n
	}
	if agg.MaxTotal > 0 {
		agg.Percentage = agg.Total / agg.MaxTotal * 100
	}
	agg.Grade = CalculateGrade(agg.Percentage, opts.Thresholds)
	return agg
}

// StudentMarks groups the marks of one student for class aggregation.
type StudentMarks struct {
	StudentID string        `json:"studentId"`
	Marks     []SubjectMark `json:"marks"`
}

type ClassOptions struct {
	Thresholds []Threshold
}

type ClassAggregate struct {
	AvgPercentage float64        `json:"avgPercentage"`
	AvgGrade      string         `json:"avgGrade"`
	Distribution  map[string]int `json:"distribution"`
	Count         int            `json:"count"`
}

// AggregateClassPerformance averages the students' percentages (each computed
// with 100 marks per subject) and counts how many students earned each grade.
// AvgGrade is the grade of the average percentage, not the most frequent grade.
func AggregateClassPerformance(students []StudentMarks, opts ClassOptions) ClassAggregate {
	agg := ClassAggregate{Distribution: make(map[string]int)}
	var pctSum float64
	for _, s := range students {
		sa := ComputeStudentAggregates(StudentOptions{Marks: s.Marks, Thresholds: opts.Thresholds})
		pctSum += sa.Percentage
		agg.Count++
		agg.Distribution[sa.Grade]++
	}
	if agg.Count > 0 {
		agg.AvgPercentage = pctSum / float64(agg.Count)
	}
	agg.AvgGrade = CalculateGrade(agg.AvgPercentage, opts.Thresholds)
	return agg
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
