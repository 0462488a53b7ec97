package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
	"github.com/trezcool/ams/core/record"
)

const loadAttendanceFailedText = "Failed to load attendance"

// AttendanceView is the daily register of one class section.
type AttendanceView struct {
	api    record.API
	logger core.Logger
	sheet  *optimistic.Value[record.AttendanceSheet]

	mu    sync.Mutex
	query record.AttendanceQuery
}

func newAttendanceView(api record.API, logger core.Logger) *AttendanceView {
	q := record.AttendanceQuery{Date: record.Today(), Class: DefaultClass, Section: DefaultSection}
	return &AttendanceView{
		api:    api,
		logger: logger,
		sheet: optimistic.NewValue(record.AttendanceSheet{AttendanceQuery: q}, optimistic.ValueOptions[record.AttendanceSheet]{
			Entity: "attendance",
			Clone:  record.AttendanceSheet.Clone,
		}),
		query: q,
	}
}

func (v *AttendanceView) Query() record.AttendanceQuery {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// SetQuery selects another register and loads it.
func (v *AttendanceView) SetQuery(ctx context.Context, q record.AttendanceQuery) error {
	q.Date = core.CleanString(q.Date)
	q.Class = core.CleanString(q.Class)
	q.Section = core.CleanString(q.Section)
	if err := q.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
	return v.Load(ctx)
}

// Load fetches the register; a register never saved lists the section all present.
func (v *AttendanceView) Load(ctx context.Context) error {
	q := v.Query()
	v.sheet.SetErr("")
	sheet, err := v.api.GetAttendance(ctx, q)
	if err != nil {
		v.sheet.SetErr(loadAttendanceFailedText)
		return errors.Wrap(err, "loading attendance")
	}
	sheet.AttendanceQuery = q
	v.sheet.Set(sheet)
	return nil
}

func (v *AttendanceView) Sheet() record.AttendanceSheet { return v.sheet.Get() }

// Toggle flips a student between present and absent.
func (v *AttendanceView) Toggle(studentID string) {
	v.sheet.Edit(func(s record.AttendanceSheet) record.AttendanceSheet {
		for i := range s.Entries {
			if s.Entries[i].StudentID == studentID {
				s.Entries[i].Present = !s.Entries[i].Present
			}
		}
		return s
	})
}

func (v *AttendanceView) Err() string { return v.sheet.Err() }

func (v *AttendanceView) Saving() bool { return v.sheet.Pending() > 0 }

func (v *AttendanceView) OnChange(fn func()) { v.sheet.OnChange(fn) }

func (v *AttendanceView) Close() { v.sheet.Close() }

// Save sends the whole register; a failed save restores it.
func (v *AttendanceView) Save(ctx context.Context) (*optimistic.Mutation, error) {
	if err := v.sheet.Get().Validate(); err != nil {
		return nil, err
	}
	return v.sheet.Save(ctx, v.api.SaveAttendance), nil
}
