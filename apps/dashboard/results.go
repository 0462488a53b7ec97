package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/grade"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/report"
)

const loadResultsFailedText = "Failed to load results"

// ResultsView reports an exam's marks for one class section.
type ResultsView struct {
	examCatalog

	api        record.API
	thresholds []grade.Threshold
	logger     core.Logger

	mu       sync.Mutex
	filter   SectionFilter
	students []record.Student
	marks    []record.Mark
	errMsg   string
}

func newResultsView(api record.API, thresholds []grade.Threshold, logger core.Logger) *ResultsView {
	return &ResultsView{
		api:        api,
		thresholds: thresholds,
		logger:     logger,
		filter:     DefaultSectionFilter(),
	}
}

func (v *ResultsView) LoadCatalog(ctx context.Context) { v.load(ctx, v.api, v.logger) }

func (v *ResultsView) Filter() SectionFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// SetFilter selects another report and loads it. Changing the subject alone
// needs no request.
func (v *ResultsView) SetFilter(ctx context.Context, f SectionFilter) error {
	f = f.clean()
	v.mu.Lock()
	prev := v.filter
	v.filter = f
	v.mu.Unlock()

	prev.SubjectID = f.SubjectID
	if prev == f && v.Loaded() {
		return nil
	}
	return v.Load(ctx)
}

// Load fetches the section's students and their marks in the selected exam.
// Nothing is fetched until a class and an exam are selected; a blank section
// reports the whole class.
func (v *ResultsView) Load(ctx context.Context) error {
	f := v.Filter()
	if f.Class == "" || f.ExamID == "" {
		return nil
	}

	students, err := v.api.ListClassStudents(ctx, f.Class, f.Section)
	if err == nil {
		var marks []record.Mark
		if marks, err = v.api.ListMarks(ctx, f.markQuery()); err == nil {
			v.mu.Lock()
			v.students, v.marks, v.errMsg = students, marks, ""
			v.mu.Unlock()
			return nil
		}
	}

	v.mu.Lock()
	v.errMsg = loadResultsFailedText
	v.mu.Unlock()
	return errors.Wrap(err, "loading results")
}

// Loaded reports whether a report is on screen.
func (v *ResultsView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.students != nil
}

func (v *ResultsView) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *ResultsView) data() ([]record.Student, []record.Mark, SectionFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.students, v.marks, v.filter
}

// SubjectRows is the selected subject's table, empty without a subject.
func (v *ResultsView) SubjectRows() []report.SubjectRow {
	students, marks, f := v.data()
	return report.SubjectRows(students, marks, f.SubjectID)
}

// OverallRows aggregates every subject per student.
func (v *ResultsView) OverallRows() []report.OverallRow {
	students, marks, _ := v.data()
	return report.OverallRows(students, marks, v.thresholds)
}

// Performance aggregates the section as a whole.
func (v *ResultsView) Performance() grade.ClassAggregate {
	students, marks, _ := v.data()
	return report.ClassPerformance(students, marks, v.thresholds)
}

// SubjectCSV exports the subject table; it returns the download filename and content.
func (v *ResultsView) SubjectCSV() (string, string) {
	return report.SubjectFilename(v.Filter().SubjectID), report.SubjectTable(v.SubjectRows()).CSV()
}

// OverallCSV exports the overall table; it returns the download filename and content.
func (v *ResultsView) OverallCSV() (string, string) {
	return report.OverallFilename(v.Filter().ExamID), report.OverallTable(v.OverallRows()).CSV()
}
