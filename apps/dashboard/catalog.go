package dashboard

import (
	"context"
	"sync"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
)

// Section defaults of the marks, attendance and results filters.
const (
	DefaultClass   = "10"
	DefaultSection = "A"
)

// examCatalog holds the exam and subject pickers of a filter bar.
// Loading failures leave a picker empty.
type examCatalog struct {
	mu       sync.RWMutex
	exams    []record.Exam
	subjects []record.Subject
}

func (c *examCatalog) load(ctx context.Context, api record.API, logger core.Logger) {
	exams, err := api.Exams().List(ctx)
	if err != nil && logger != nil {
		logger.Debug("loading exams", err)
	}
	subjects, err := api.ListSubjects(ctx)
	if err != nil && logger != nil {
		logger.Debug("loading subjects", err)
	}

	c.mu.Lock()
	c.exams, c.subjects = exams, subjects
	c.mu.Unlock()
}

func (c *examCatalog) Exams() []record.Exam {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]record.Exam(nil), c.exams...)
}

func (c *examCatalog) Subjects() []record.Subject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]record.Subject(nil), c.subjects...)
}

// SectionFilter selects the class section, exam and subject a page works on.
type SectionFilter struct {
	Class     string `json:"class"`
	Section   string `json:"section"`
	ExamID    string `json:"examId"`
	SubjectID string `json:"subjectId"`
}

func DefaultSectionFilter() SectionFilter {
	return SectionFilter{Class: DefaultClass, Section: DefaultSection}
}

func (f SectionFilter) clean() SectionFilter {
	f.Class = core.CleanString(f.Class)
	f.Section = core.CleanString(f.Section)
	f.ExamID = core.CleanString(f.ExamID)
	f.SubjectID = core.CleanString(f.SubjectID)
	return f
}

func (f SectionFilter) markQuery() record.MarkQuery {
	return record.MarkQuery{ExamID: f.ExamID, Class: f.Class, Section: f.Section}
}
