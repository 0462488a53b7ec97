package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
	"github.com/trezcool/ams/core/record"
)

const loadMarksFailedText = "Failed to load data"

// MarkCell is one student's entry on the marks sheet.
type MarkCell struct {
	Score  *float64 `json:"score"` // nil while the input is blank
	MarkID string   `json:"markId,omitempty"`
}

// MarkSheet maps student ids to their entry.
type MarkSheet map[string]MarkCell

func (s MarkSheet) Clone() MarkSheet {
	out := make(MarkSheet, len(s))
	for k, v := range s {
		if v.Score != nil {
			score := *v.Score
			v.Score = &score
		}
		out[k] = v
	}
	return out
}

// syncMarkIDs copies the mark ids of a save reply onto the entries still on the sheet.
func syncMarkIDs(current, saved MarkSheet) MarkSheet {
	for id, cell := range saved {
		if cur, ok := current[id]; ok && cell.MarkID != "" {
			cur.MarkID = cell.MarkID
			current[id] = cur
		}
	}
	return current
}

// MarksView is the marks entry sheet of one class section, exam and subject.
type MarksView struct {
	examCatalog

	api    record.API
	logger core.Logger
	sheet  *optimistic.Value[MarkSheet]

	mu       sync.Mutex
	filter   SectionFilter
	students []record.Student
	loading  bool
}

func newMarksView(api record.API, logger core.Logger) *MarksView {
	return &MarksView{
		api:    api,
		logger: logger,
		sheet: optimistic.NewValue(MarkSheet{}, optimistic.ValueOptions[MarkSheet]{
			Entity: "marks",
			Clone:  MarkSheet.Clone,
			Merge:  syncMarkIDs,
		}),
		filter: DefaultSectionFilter(),
	}
}

func (v *MarksView) LoadCatalog(ctx context.Context) { v.load(ctx, v.api, v.logger) }

func (v *MarksView) Filter() SectionFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// SetFilter selects another sheet and loads it.
func (v *MarksView) SetFilter(ctx context.Context, f SectionFilter) error {
	v.mu.Lock()
	v.filter = f.clean()
	v.mu.Unlock()
	return v.Load(ctx)
}

// Load fetches the students of the section and, once an exam is selected, their
// marks in the selected subject (every subject when none is).
func (v *MarksView) Load(ctx context.Context) error {
	f := v.Filter()
	if f.Class == "" || f.Section == "" {
		return nil
	}
	v.setLoading(true)
	defer v.setLoading(false)
	v.sheet.SetErr("")

	students, err := v.api.ListClassStudents(ctx, f.Class, f.Section)
	if err != nil {
		v.sheet.SetErr(loadMarksFailedText)
		return errors.Wrap(err, "listing section students")
	}
	var marks []record.Mark
	if f.ExamID != "" {
		if marks, err = v.api.ListMarks(ctx, f.markQuery()); err != nil {
			v.sheet.SetErr(loadMarksFailedText)
			return errors.Wrap(err, "listing marks")
		}
	}

	sheet := make(MarkSheet, len(marks))
	for _, mk := range marks {
		if f.SubjectID == "" || mk.SubjectID == f.SubjectID {
			score := mk.Score
			sheet[mk.StudentID] = MarkCell{Score: &score, MarkID: mk.ID}
		}
	}

	v.mu.Lock()
	v.students = students
	v.mu.Unlock()
	v.sheet.Set(sheet)
	return nil
}

// Rows are the students of the loaded section.
func (v *MarksView) Rows() []record.Student {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]record.Student(nil), v.students...)
}

func (v *MarksView) Sheet() MarkSheet { return v.sheet.Get() }

// Score returns the entered score of a student.
func (v *MarksView) Score(studentID string) (float64, bool) {
	cell, ok := v.sheet.Get()[studentID]
	if !ok || cell.Score == nil {
		return 0, false
	}
	return *cell.Score, true
}

// SetScore enters a score; values outside [0,100] are ignored and reported false.
func (v *MarksView) SetScore(studentID string, score float64) bool {
	if !record.ValidScore(score) {
		return false
	}
	v.sheet.Edit(func(s MarkSheet) MarkSheet {
		cell := s[studentID]
		cell.Score = &score
		s[studentID] = cell
		return s
	})
	return true
}

// ClearScore blanks a student's input, keeping the mark id for the next save.
func (v *MarksView) ClearScore(studentID string) {
	v.sheet.Edit(func(s MarkSheet) MarkSheet {
		if cell, ok := s[studentID]; ok {
			cell.Score = nil
			s[studentID] = cell
		}
		return s
	})
}

// Reset blanks every input.
func (v *MarksView) Reset() { v.sheet.Set(MarkSheet{}) }

func (v *MarksView) Err() string { return v.sheet.Err() }

func (v *MarksView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *MarksView) Saving() bool { return v.sheet.Pending() > 0 }

func (v *MarksView) OnChange(fn func()) { v.sheet.OnChange(fn) }

func (v *MarksView) Close() { v.sheet.Close() }

// Save upserts the sheet's entries of the listed students in one batch. The
// sheet keeps its edits on success and gains the mark ids the server assigned;
// a failed save restores it. Without an exam and a subject nothing is sent.
func (v *MarksView) Save(ctx context.Context) (*optimistic.Mutation, error) {
	f := v.Filter()
	students := v.Rows()
	batch := record.MarkBatch{ExamID: f.ExamID, Class: f.Class, Section: f.Section, SubjectID: f.SubjectID}

	check := batch
	check.Entries = markEntries(v.sheet.Get(), students)
	if err := check.Validate(); err != nil {
		v.sheet.SetErr(err.Error())
		return nil, err
	}

	return v.sheet.Save(ctx, func(ctx context.Context, s MarkSheet) (MarkSheet, error) {
		b := batch
		b.Entries = markEntries(s, students)
		saved, err := v.api.UpsertMarks(ctx, b)
		if err != nil {
			return nil, err
		}
		out := make(MarkSheet, len(saved.Entries))
		for _, e := range saved.Entries {
			out[e.StudentID] = MarkCell{MarkID: e.MarkID}
		}
		return out, nil
	}), nil
}

// markEntries lists the sheet entries of the given students in their order.
// Blank scores are sent as 0.
func markEntries(s MarkSheet, students []record.Student) []record.MarkEntry {
	entries := make([]record.MarkEntry, 0, len(s))
	for _, st := range students {
		cell, ok := s[st.ID]
		if !ok {
			continue
		}
		e := record.MarkEntry{StudentID: st.ID, MarkID: cell.MarkID}
		if cell.Score != nil {
			e.Score = *cell.Score
		}
		entries = append(entries, e)
	}
	return entries
}

func (v *MarksView) setLoading(loading bool) {
	v.mu.Lock()
	v.loading = loading
	v.mu.Unlock()
}
