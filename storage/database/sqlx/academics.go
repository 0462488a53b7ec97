package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core/grade"
	"github.com/trezcool/ams/core/record"
)

type classSubjects struct {
	db      *sqlx.DB
	classID string
}

func (api *recordsAPI) ClassSubjects(classID string) record.Resource[record.ClassSubject] {
	return &classSubjects{db: api.db, classID: classID}
}

const selectClassSubjects = `SELECT cs.id, cs.class_id, cs.subject_id, s.name AS subject_name,
		COALESCE(cs.teacher_id, '') AS teacher_id, COALESCE(t.name, '') AS teacher_name
	FROM class_subjects cs
	JOIN subjects s ON s.id = cs.subject_id
	LEFT JOIN teachers t ON t.id = cs.teacher_id`

func (cs *classSubjects) List(ctx context.Context) ([]record.ClassSubject, error) {
	list := []record.ClassSubject{}
	q := selectClassSubjects + " WHERE cs.class_id = $1 ORDER BY cs.created_at, cs.id"
	if err := cs.db.SelectContext(ctx, &list, q, cs.classID); err != nil {
		return nil, errors.Wrap(err, "selecting class subjects")
	}
	return list, nil
}

func (cs *classSubjects) get(ctx context.Context, id string) (record.ClassSubject, error) {
	var rec record.ClassSubject
	q := selectClassSubjects + " WHERE cs.class_id = $1 AND cs.id = $2"
	if err := cs.db.GetContext(ctx, &rec, q, cs.classID, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return rec, record.ErrNotFound
		}
		return rec, errors.Wrap(err, "selecting class subject")
	}
	return rec, nil
}

// Create assigns a subject once per class; unknown classes or subjects are not found.
func (cs *classSubjects) Create(ctx context.Context, rec record.ClassSubject) (record.ClassSubject, error) {
	id := newID()
	_, err := cs.db.ExecContext(ctx,
		"INSERT INTO class_subjects (id, class_id, subject_id, teacher_id) VALUES ($1, $2, $3, $4)",
		id, cs.classID, rec.SubjectID, nullString(rec.TeacherID),
	)
	switch pqCode(err) {
	case "":
		if err != nil {
			return record.ClassSubject{}, errors.Wrap(err, "inserting class subject")
		}
	case uniqueViolation:
		return record.ClassSubject{}, record.ErrConflict
	case foreignKeyViolation:
		return record.ClassSubject{}, record.ErrNotFound
	default:
		return record.ClassSubject{}, errors.Wrap(err, "inserting class subject")
	}
	return cs.get(ctx, id)
}

// Update changes the teacher only; a blank teacher unassigns.
func (cs *classSubjects) Update(ctx context.Context, id string, rec record.ClassSubject) (record.ClassSubject, error) {
	res, err := cs.db.ExecContext(ctx,
		"UPDATE class_subjects SET teacher_id = $1 WHERE class_id = $2 AND id = $3",
		nullString(rec.TeacherID), cs.classID, id,
	)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return record.ClassSubject{}, record.ErrNotFound
		}
		return record.ClassSubject{}, errors.Wrap(err, "updating class subject")
	}
	if err := mustAffect(res); err != nil {
		return record.ClassSubject{}, err
	}
	return cs.get(ctx, id)
}

func (cs *classSubjects) Delete(ctx context.Context, id string) error {
	res, err := cs.db.ExecContext(ctx, "DELETE FROM class_subjects WHERE class_id = $1 AND id = $2", cs.classID, id)
	if err != nil {
		return errors.Wrap(err, "deleting class subject")
	}
	return mustAffect(res)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ListMarks ignores blank filters.
func (api *recordsAPI) ListMarks(ctx context.Context, q record.MarkQuery) ([]record.Mark, error) {
	marks := []record.Mark{}
	query := `SELECT id, student_id, subject_id, exam_id, class, section, score FROM marks
		WHERE ($1 = '' OR exam_id = $1) AND ($2 = '' OR class = $2) AND ($3 = '' OR section = $3)
		ORDER BY created_at, id`
	if err := api.db.SelectContext(ctx, &marks, query, q.ExamID, q.Class, q.Section); err != nil {
		return nil, errors.Wrap(err, "selecting marks")
	}
	return marks, nil
}

// UpsertMarks updates entries by mark id, then by exam+subject+student, and
// inserts the rest, all in one transaction.
func (api *recordsAPI) UpsertMarks(ctx context.Context, batch record.MarkBatch) (record.MarkBatch, error) {
	tx, err := api.db.BeginTxx(ctx, nil)
	if err != nil {
		return record.MarkBatch{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	out := batch
	out.Entries = make([]record.MarkEntry, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		id, err := upsertMark(ctx, tx, batch, e)
		if err != nil {
			return record.MarkBatch{}, err
		}
		e.MarkID = id
		out.Entries = append(out.Entries, e)
	}
	if err := tx.Commit(); err != nil {
		return record.MarkBatch{}, errors.Wrap(err, "committing marks")
	}
	return out, nil
}

func upsertMark(ctx context.Context, tx *sqlx.Tx, batch record.MarkBatch, e record.MarkEntry) (string, error) {
	var id string
	if e.MarkID != "" {
		err := tx.QueryRowxContext(ctx,
			`UPDATE marks SET student_id = $2, subject_id = $3, exam_id = $4, class = $5, section = $6, score = $7
			WHERE id = $1 RETURNING id`,
			e.MarkID, e.StudentID, batch.SubjectID, batch.ExamID, batch.Class, batch.Section, e.Score,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if errors.Cause(err) != sql.ErrNoRows {
			return "", errors.Wrap(err, "updating mark")
		}
	}
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO marks (id, student_id, subject_id, exam_id, class, section, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (exam_id, subject_id, student_id)
		DO UPDATE SET class = EXCLUDED.class, section = EXCLUDED.section, score = EXCLUDED.score
		RETURNING id`,
		newID(), e.StudentID, batch.SubjectID, batch.ExamID, batch.Class, batch.Section, e.Score,
	).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "inserting mark")
	}
	return id, nil
}

func (api *recordsAPI) DeleteMark(ctx context.Context, id string) error {
	res, err := api.db.ExecContext(ctx, "DELETE FROM marks WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	return mustAffect(res)
}

// StudentReport aggregates the student's marks in the exam, every exam when examID is blank.
func (api *recordsAPI) StudentReport(ctx context.Context, studentID, examID string) (record.StudentReport, error) {
	marks := []grade.SubjectMark{}
	q := `SELECT m.subject_id, COALESCE(s.name, '') AS subject_name, m.score
		FROM marks m LEFT JOIN subjects s ON s.id = m.subject_id
		WHERE m.student_id = $1 AND ($2 = '' OR m.exam_id = $2)
		ORDER BY m.created_at, m.id`
	if err := api.db.SelectContext(ctx, &marks, q, studentID, examID); err != nil {
		return record.StudentReport{}, errors.Wrap(err, "selecting student marks")
	}
	return record.BuildStudentReport(studentID, examID, marks), nil
}

// GetAttendance returns the saved register, or a fresh one with the class
// section all present.
func (api *recordsAPI) GetAttendance(ctx context.Context, q record.AttendanceQuery) (record.AttendanceSheet, error) {
	entries := []record.AttendanceEntry{}
	query := `SELECT student_id, name, present FROM attendance
		WHERE date = $1 AND class = $2 AND section = $3 ORDER BY position`
	if err := api.db.SelectContext(ctx, &entries, query, q.Date, q.Class, q.Section); err != nil {
		return record.AttendanceSheet{}, errors.Wrap(err, "selecting attendance")
	}
	if len(entries) > 0 {
		return record.AttendanceSheet{AttendanceQuery: q, Entries: entries}, nil
	}
	students, err := api.ListClassStudents(ctx, q.Class, q.Section)
	if err != nil {
		return record.AttendanceSheet{}, err
	}
	return record.NewAttendanceSheet(q, students), nil
}

// SaveAttendance replaces the register of the sheet's date and class section.
func (api *recordsAPI) SaveAttendance(ctx context.Context, sheet record.AttendanceSheet) (record.AttendanceSheet, error) {
	tx, err := api.db.BeginTxx(ctx, nil)
	if err != nil {
		return record.AttendanceSheet{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM attendance WHERE date = $1 AND class = $2 AND section = $3",
		sheet.Date, sheet.Class, sheet.Section,
	); err != nil {
		return record.AttendanceSheet{}, errors.Wrap(err, "clearing attendance")
	}
	for i, e := range sheet.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attendance (date, class, section, student_id, name, present, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sheet.Date, sheet.Class, sheet.Section, e.StudentID, e.Name, e.Present, i,
		); err != nil {
			return record.AttendanceSheet{}, errors.Wrap(err, "inserting attendance")
		}
	}
	if err := tx.Commit(); err != nil {
		return record.AttendanceSheet{}, errors.Wrap(err, "committing attendance")
	}
	return sheet.Clone(), nil
}
