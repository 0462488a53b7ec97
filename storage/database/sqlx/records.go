// Package sqlxrepos is the Postgres implementation of the Records API and the
// user repository.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core/record"
)

type recordsAPI struct {
	db *sqlx.DB
}

var _ record.API = (*recordsAPI)(nil) // interface compliance check

// NewRecordsAPI serves the Records API from Postgres. Records map to columns
// through their JSON names in snake case (rollNumber -> roll_number).
func NewRecordsAPI(db *sqlx.DB) record.API {
	rdb := sqlx.NewDb(db.DB, db.DriverName())
	rdb.Mapper = reflectx.NewMapperTagFunc("json", strings.ToLower, snakeCase)
	return &recordsAPI{db: rdb}
}

// snakeCase converts a camelCase tag to snake_case.
func snakeCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newID() string { return uuid.NewString() }

// Postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pqCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

func (api *recordsAPI) Health(ctx context.Context) record.HealthStatus {
	if err := api.db.PingContext(ctx); err != nil {
		return record.HealthStatus{OK: false, Error: err.Error()}
	}
	return record.HealthStatus{OK: true, Data: map[string]interface{}{"status": "ok", "storage": "postgres"}}
}

type identified[T any] interface {
	RecordID() string
	WithID(id string) T
}

// table is a plain CRUD table whose rows are listed in creation order.
type table[T identified[T]] struct {
	db      *sqlx.DB
	name    string
	entity  string
	columns []string // id excluded
}

func (t table[T]) List(ctx context.Context) ([]T, error) {
	recs := []T{}
	q := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY created_at, id", strings.Join(t.columns, ", "), t.name)
	if err := t.db.SelectContext(ctx, &recs, q); err != nil {
		return nil, errors.Wrapf(err, "selecting %ss", t.entity)
	}
	return recs, nil
}

func (t table[T]) Create(ctx context.Context, rec T) (T, error) {
	rec = rec.WithID(newID())
	q := fmt.Sprintf(
		"INSERT INTO %s (id, %s) VALUES (:id, :%s)",
		t.name, strings.Join(t.columns, ", "), strings.Join(t.columns, ", :"),
	)
	if _, err := t.db.NamedExecContext(ctx, q, rec); err != nil {
		var zero T
		if pqCode(err) == uniqueViolation {
			return zero, record.ErrConflict
		}
		return zero, errors.Wrapf(err, "inserting %s", t.entity)
	}
	return rec, nil
}

func (t table[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	rec = rec.WithID(id)
	sets := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		sets = append(sets, col+" = :"+col)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", t.name, strings.Join(sets, ", "))
	res, err := t.db.NamedExecContext(ctx, q, rec)
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "updating %s", t.entity)
	}
	if err := mustAffect(res); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (t table[T]) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrapf(err, "deleting %s", t.entity)
	}
	return mustAffect(res)
}

// mustAffect turns a statement that touched no row into record.ErrNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (api *recordsAPI) Students() record.Resource[record.Student] {
	return table[record.Student]{
		db: api.db, name: "students", entity: "student",
		columns: []string{"name", "email", "class", "section", "roll_number", "status"},
	}
}

// Classes cascade to their subject assignments on delete.
func (api *recordsAPI) Classes() record.Resource[record.Class] {
	return table[record.Class]{
		db: api.db, name: "classes", entity: "class",
		columns: []string{"name", "grade_level", "description"},
	}
}

func (api *recordsAPI) Exams() record.Resource[record.Exam] {
	return table[record.Exam]{
		db: api.db, name: "exams", entity: "exam",
		columns: []string{"name", "term", "start_date", "end_date"},
	}
}

func (api *recordsAPI) Courses() record.Resource[record.Course] {
	return table[record.Course]{
		db: api.db, name: "courses", entity: "course",
		columns: []string{"code", "title", "instructor", "enrolled"},
	}
}

func (api *recordsAPI) ListSubjects(ctx context.Context) ([]record.Subject, error) {
	subjects := []record.Subject{}
	if err := api.db.SelectContext(ctx, &subjects, "SELECT id, name FROM subjects ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}

func (api *recordsAPI) ListTeachers(ctx context.Context) ([]record.Teacher, error) {
	teachers := []record.Teacher{}
	if err := api.db.SelectContext(ctx, &teachers, "SELECT id, name, email FROM teachers ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	return teachers, nil
}

// ListClassStudents lists a class section, the whole class when section is blank.
func (api *recordsAPI) ListClassStudents(ctx context.Context, class, section string) ([]record.Student, error) {
	students := []record.Student{}
	q := `SELECT id, name, email, class, section, roll_number, status FROM students
		WHERE class = $1 AND ($2 = '' OR section = $2)
		ORDER BY created_at, id`
	if err := api.db.SelectContext(ctx, &students, q, class, section); err != nil {
		return nil, errors.Wrap(err, "selecting class students")
	}
	return students, nil
}
