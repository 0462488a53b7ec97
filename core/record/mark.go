package record

import (
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/grade"
)

const (
	MinScore = 0
	MaxScore = 100
)

// ErrExamAndSubjectRequired blocks a marks save with no exam or subject selected.
var ErrExamAndSubjectRequired = errors.New("Please select Exam and Subject.")

type Mark struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId"`
	SubjectID string  `json:"subjectId"`
	ExamID    string  `json:"examId,omitempty"`
	Class     string  `json:"class,omitempty"`
	Section   string  `json:"section,omitempty"`
	Score     float64 `json:"score"`
}

func (m Mark) RecordID() string { return m.ID }

func (m Mark) WithID(id string) Mark {
	m.ID = id
	return m
}

func NormalizeMark(r Raw, idx int) Mark {
	return Mark{
		ID:        r.Str("", "id", "markId"),
		StudentID: r.Str("", "studentId"),
		SubjectID: r.Str("", "subjectId"),
		ExamID:    r.Str("", "examId"),
		Class:     r.Str("", "class", "klass"),
		Section:   r.Str("", "section"),
		Score:     r.Num("score"),
	}
}

type MarkQuery struct {
	ExamID  string `json:"examId" query:"examId"`
	Class   string `json:"class" query:"class"`
	Section string `json:"section" query:"section"`
}

type MarkEntry struct {
	StudentID string  `json:"studentId" validate:"required"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
	MarkID    string  `json:"markId,omitempty"`
}

// MarkBatch is one subject's marks for a class section in an exam.
type MarkBatch struct {
	ExamID    string      `json:"examId"`
	Class     string      `json:"class" validate:"required"`
	Section   string      `json:"section" validate:"required"`
	SubjectID string      `json:"subjectId"`
	Entries   []MarkEntry `json:"entries" validate:"dive"`
}

func NormalizeMarkBatch(r Raw) MarkBatch {
	b := MarkBatch{
		ExamID:    r.Str("", "examId"),
		Class:     r.Str("", "class", "klass"),
		Section:   r.Str("", "section"),
		SubjectID: r.Str("", "subjectId"),
	}
	b.Entries = NormalizeAll(r["entries"], func(e Raw, _ int) MarkEntry {
		return MarkEntry{
			StudentID: e.Str("", "studentId"),
			Score:     e.Num("score"),
			MarkID:    e.Str("", "markId", "id"),
		}
	})
	return b
}

// Validate fails fast with ErrExamAndSubjectRequired before checking the entries.
func (b MarkBatch) Validate() error {
	if core.CleanString(b.ExamID) == "" || core.CleanString(b.SubjectID) == "" {
		return core.NewValidationError(ErrExamAndSubjectRequired)
	}
	return check(b)
}

// Marks expands the batch into individual marks.
func (b MarkBatch) Marks() []Mark {
	out := make([]Mark, 0, len(b.Entries))
	for _, e := range b.Entries {
		out = append(out, Mark{
			ID:        e.MarkID,
			StudentID: e.StudentID,
			SubjectID: b.SubjectID,
			ExamID:    b.ExamID,
			Class:     b.Class,
			Section:   b.Section,
			Score:     e.Score,
		})
	}
	return out
}

// ValidScore reports whether score may be entered on a marks sheet.
func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// StudentReport is one student's aggregated result for an exam.
type StudentReport struct {
	StudentID  string              `json:"studentId"`
	ExamID     string              `json:"examId"`
	Marks      []grade.SubjectMark `json:"marks"`
	Total      float64             `json:"total"`
	Average    float64             `json:"average"`
	Percentage float64             `json:"percentage"`
	Grade      string              `json:"grade"`
}

// BuildStudentReport aggregates marks with the default grading table.
func BuildStudentReport(studentID, examID string, marks []grade.SubjectMark) StudentReport {
	if marks == nil {
		marks = []grade.SubjectMark{}
	}
	agg := grade.ComputeStudentAggregates(grade.StudentOptions{Marks: marks})
	return StudentReport{
		StudentID:  studentID,
		ExamID:     examID,
		Marks:      marks,
		Total:      agg.Total,
		Average:    agg.Average,
		Percentage: agg.Percentage,
		Grade:      agg.Grade,
	}
}

func NormalizeStudentReport(r Raw) StudentReport {
	rep := StudentReport{
		StudentID:  r.Str("", "studentId"),
		ExamID:     r.Str("", "examId"),
		Total:      r.Num("total"),
		Average:    r.Num("average"),
		Percentage: r.Num("percentage"),
		Grade:      r.Str("F", "grade"),
	}
	rep.Marks = NormalizeAll(r["marks"], func(m Raw, _ int) grade.SubjectMark {
		return grade.SubjectMark{
			SubjectID:   m.Str("", "subjectId"),
			SubjectName: m.Str("", "subjectName"),
			Score:       m.Num("score"),
		}
	})
	return rep
}
