package report

import (
	"math"
	"strconv"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/grade"
	"github.com/trezcool/ams/core/record"
)

// MissingScore is shown for a student without a mark in the subject.
const MissingScore = "-"

var (
	subjectHeaders = []string{"Roll Number", "Student Name", "Score"}
	overallHeaders = []string{"Roll Number", "Student Name", "Total", "Average", "Percentage", "Grade"}
)

type SubjectRow struct {
	StudentID  string   `json:"studentId"`
	RollNumber string   `json:"rollNumber"`
	Name       string   `json:"name"`
	Score      *float64 `json:"score"` // nil when no mark was entered
}

// ScoreText renders the score, MissingScore when absent.
func (r SubjectRow) ScoreText() string {
	if r.Score == nil {
		return MissingScore
	}
	return formatNumber(*r.Score)
}

type OverallRow struct {
	StudentID  string  `json:"studentId"`
	RollNumber string  `json:"rollNumber"`
	Name       string  `json:"name"`
	Total      float64 `json:"total"`      // rounded to an integer
	Average    float64 `json:"average"`    // 2 dp
	Percentage float64 `json:"percentage"` // 2 dp
	Grade      string  `json:"grade"`
}

// SubjectRows lists every student with their mark in subjectID, in student order.
// Marks of unknown students are ignored; the last mark of a student wins.
// No subject yields no rows.
func SubjectRows(students []record.Student, marks []record.Mark, subjectID string) []SubjectRow {
	if subjectID == "" {
		return []SubjectRow{}
	}
	scores := make(map[string]float64, len(students))
	known := studentSet(students)
	for _, mk := range marks {
		if mk.SubjectID == subjectID && known[mk.StudentID] {
			scores[mk.StudentID] = finite(mk.Score)
		}
	}

	rows := make([]SubjectRow, 0, len(students))
	for _, s := range students {
		row := SubjectRow{StudentID: s.ID, RollNumber: s.RollNumber, Name: s.Name}
		if score, ok := scores[s.ID]; ok {
			row.Score = &score
		}
		rows = append(rows, row)
	}
	return rows
}

// OverallRows aggregates every student's marks across subjects.
// nil thresholds grade with the default table.
func OverallRows(students []record.Student, marks []record.Mark, thresholds []grade.Threshold) []OverallRow {
	byStudent := marksByStudent(students, marks)
	rows := make([]OverallRow, 0, len(students))
	for _, s := range students {
		agg := grade.ComputeStudentAggregates(grade.StudentOptions{Marks: byStudent[s.ID], Thresholds: thresholds})
		rows = append(rows, OverallRow{
			StudentID:  s.ID,
			RollNumber: s.RollNumber,
			Name:       s.Name,
			Total:      math.Round(agg.Total),
			Average:    core.Round2(agg.Average),
			Percentage: core.Round2(agg.Percentage),
			Grade:      agg.Grade,
		})
	}
	return rows
}

// ClassPerformance aggregates the class section as a whole.
func ClassPerformance(students []record.Student, marks []record.Mark, thresholds []grade.Threshold) grade.ClassAggregate {
	byStudent := marksByStudent(students, marks)
	sm := make([]grade.StudentMarks, 0, len(students))
	for _, s := range students {
		sm = append(sm, grade.StudentMarks{StudentID: s.ID, Marks: byStudent[s.ID]})
	}
	return grade.AggregateClassPerformance(sm, grade.ClassOptions{Thresholds: thresholds})
}

func SubjectTable(rows []SubjectRow) Table {
	t := Table{Headers: subjectHeaders, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.RollNumber, r.Name, r.ScoreText()})
	}
	return t
}

func OverallTable(rows []OverallRow) Table {
	t := Table{Headers: overallHeaders, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.RollNumber,
			r.Name,
			formatNumber(r.Total),
			formatNumber(r.Average),
			formatNumber(r.Percentage),
			r.Grade,
		})
	}
	return t
}

// SubjectFilename names a subject export, "all" standing in for no subject.
func SubjectFilename(subjectID string) string {
	if subjectID == "" {
		subjectID = "all"
	}
	return "results_subject_" + subjectID + ".csv"
}

// OverallFilename names an overall export, "exam" standing in for no exam.
func OverallFilename(examID string) string {
	if examID == "" {
		examID = "exam"
	}
	return "results_overall_" + examID + ".csv"
}

func marksByStudent(students []record.Student, marks []record.Mark) map[string][]grade.SubjectMark {
	byStudent := make(map[string][]grade.SubjectMark, len(students))
	for _, s := range students {
		byStudent[s.ID] = []grade.SubjectMark{}
	}
	for _, mk := range marks {
		if _, ok := byStudent[mk.StudentID]; ok {
			byStudent[mk.StudentID] = append(byStudent[mk.StudentID], grade.SubjectMark{SubjectID: mk.SubjectID, Score: finite(mk.Score)})
		}
	}
	return byStudent
}

func studentSet(students []record.Student) map[string]bool {
	set := make(map[string]bool, len(students))
	for _, s := range students {
		set[s.ID] = true
	}
	return set
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// formatNumber prints the shortest representation, without exponent.
func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
