package dummydb

import (
	"context"

	"github.com/trezcool/ams/core/grade"
	"github.com/trezcool/ams/core/record"
)

type recordsAPI struct {
	db *DB
}

var _ record.API = (*recordsAPI)(nil) // interface compliance check

func NewRecordsAPI(db *DB) record.API {
	return &recordsAPI{db: db}
}

func (api *recordsAPI) Health(context.Context) record.HealthStatus {
	return record.HealthStatus{OK: true, Data: map[string]interface{}{"status": "ok", "storage": "memory"}}
}

type resource[T identified[T]] struct {
	t    *table[T]
	kind string
	id   func(kind string) string
}

func (r resource[T]) List(context.Context) ([]T, error) {
	return r.t.all(), nil
}

// Create always assigns a fresh id, the client's provisional one is discarded.
func (r resource[T]) Create(_ context.Context, rec T) (T, error) {
	rec = rec.WithID(r.id(r.kind))
	r.t.insert(rec)
	return rec, nil
}

func (r resource[T]) Update(_ context.Context, id string, rec T) (T, error) {
	return r.t.replace(id, rec)
}

func (r resource[T]) Delete(_ context.Context, id string) error {
	return r.t.remove(id)
}

func (api *recordsAPI) Students() record.Resource[record.Student] {
	return resource[record.Student]{t: api.db.students, kind: "student", id: api.db.opts.IDFunc}
}

func (api *recordsAPI) Classes() record.Resource[record.Class] {
	return classResource{resource: resource[record.Class]{t: api.db.classes, kind: "class", id: api.db.opts.IDFunc}, db: api.db}
}

func (api *recordsAPI) Exams() record.Resource[record.Exam] {
	return resource[record.Exam]{t: api.db.exams, kind: "exam", id: api.db.opts.IDFunc}
}

func (api *recordsAPI) Courses() record.Resource[record.Course] {
	return resource[record.Course]{t: api.db.courses, kind: "course", id: api.db.opts.IDFunc}
}

// classResource drops the class's subject assignments along with it.
type classResource struct {
	resource[record.Class]
	db *DB
}

func (r classResource) Delete(ctx context.Context, id string) error {
	if err := r.resource.Delete(ctx, id); err != nil {
		return err
	}
	r.db.classSubjects.Lock()
	delete(r.db.classSubjects.byClass, id)
	r.db.classSubjects.Unlock()
	return nil
}

func (api *recordsAPI) ListSubjects(context.Context) ([]record.Subject, error) {
	api.db.catalog.RLock()
	defer api.db.catalog.RUnlock()
	return append([]record.Subject{}, api.db.catalog.subjects...), nil
}

func (api *recordsAPI) ListTeachers(context.Context) ([]record.Teacher, error) {
	api.db.catalog.RLock()
	defer api.db.catalog.RUnlock()
	return append([]record.Teacher{}, api.db.catalog.teachers...), nil
}

// ListClassStudents matches every section of the class when section is blank.
func (api *recordsAPI) ListClassStudents(_ context.Context, class, section string) ([]record.Student, error) {
	return api.db.students.filter(func(s record.Student) bool {
		return sameText(s.Class, class) && (section == "" || sameText(s.Section, section))
	}), nil
}

// ListMarks ignores blank query fields.
func (api *recordsAPI) ListMarks(_ context.Context, q record.MarkQuery) ([]record.Mark, error) {
	return api.db.marks.filter(func(m record.Mark) bool {
		return (q.ExamID == "" || m.ExamID == q.ExamID) &&
			(q.Class == "" || sameText(m.Class, q.Class)) &&
			(q.Section == "" || sameText(m.Section, q.Section))
	}), nil
}

// UpsertMarks updates the mark of each entry, matched by mark id or by
// exam+subject+student, and creates the missing ones. The reply carries every
// entry's mark id.
func (api *recordsAPI) UpsertMarks(_ context.Context, batch record.MarkBatch) (record.MarkBatch, error) {
	t := api.db.marks
	t.Lock()
	defer t.Unlock()

	out := batch
	out.Entries = make([]record.MarkEntry, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		idx := -1
		if e.MarkID != "" {
			idx = t.indexOf(e.MarkID)
		}
		if idx < 0 {
			for i, m := range t.rows {
				if m.ExamID == batch.ExamID && m.SubjectID == batch.SubjectID && m.StudentID == e.StudentID {
					idx = i
					break
				}
			}
		}

		mark := record.Mark{
			StudentID: e.StudentID,
			SubjectID: batch.SubjectID,
			ExamID:    batch.ExamID,
			Class:     batch.Class,
			Section:   batch.Section,
			Score:     e.Score,
		}
		if idx >= 0 {
			mark.ID = t.rows[idx].ID
			t.rows[idx] = mark
		} else {
			mark.ID = api.db.opts.MarkIDFunc(e.StudentID)
			t.rows = append(t.rows, mark)
		}
		e.MarkID = mark.ID
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}

func (api *recordsAPI) DeleteMark(_ context.Context, id string) error {
	return api.db.marks.remove(id)
}

// StudentReport aggregates the student's marks in the exam with the default grading.
func (api *recordsAPI) StudentReport(ctx context.Context, studentID, examID string) (record.StudentReport, error) {
	subjects, _ := api.ListSubjects(ctx)
	marks := api.db.marks.filter(func(m record.Mark) bool {
		return m.StudentID == studentID && (examID == "" || m.ExamID == examID)
	})
	sm := make([]grade.SubjectMark, 0, len(marks))
	for _, m := range marks {
		mark := grade.SubjectMark{SubjectID: m.SubjectID, Score: m.Score}
		if sub := record.FindSubject(subjects, m.SubjectID); sub != nil {
			mark.SubjectName = sub.Name
		}
		sm = append(sm, mark)
	}
	return record.BuildStudentReport(studentID, examID, sm), nil
}

// GetAttendance returns the saved register, or a fresh one with the class
// section all present.
func (api *recordsAPI) GetAttendance(ctx context.Context, q record.AttendanceQuery) (record.AttendanceSheet, error) {
	api.db.attendance.RLock()
	sheet, ok := api.db.attendance.sheets[q.Key()]
	api.db.attendance.RUnlock()
	if ok {
		return sheet.Clone(), nil
	}
	students, err := api.ListClassStudents(ctx, q.Class, q.Section)
	if err != nil {
		return record.AttendanceSheet{}, err
	}
	return record.NewAttendanceSheet(q, students), nil
}

func (api *recordsAPI) SaveAttendance(_ context.Context, sheet record.AttendanceSheet) (record.AttendanceSheet, error) {
	api.db.attendance.Lock()
	defer api.db.attendance.Unlock()
	api.db.attendance.sheets[sheet.Key()] = sheet.Clone()
	return sheet.Clone(), nil
}
