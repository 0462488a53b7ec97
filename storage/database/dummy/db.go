// Package dummydb is an in-memory implementation of the Records API and the
// user repository. Data lives as long as the process.
package dummydb

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

type (
	DB struct {
		opts Options

		students      *table[record.Student]
		classes       *table[record.Class]
		exams         *table[record.Exam]
		courses       *table[record.Course]
		classSubjects *classSubjectTable
		marks         *table[record.Mark]
		attendance    *attendanceTable
		catalog       *catalog
		user          *userTable
	}

	// Options tunes identifier generation and seed data.
	Options struct {
		// IDFunc returns a fresh id for a record of the given kind ("student", "mark"...).
		IDFunc func(kind string) string
		// MarkIDFunc names marks created by UpsertMarks, IDFunc("mark") when nil.
		MarkIDFunc func(studentID string) string
		Subjects   []record.Subject
		Teachers   []record.Teacher
		Courses    []record.Course
	}

	catalog struct {
		sync.RWMutex
		subjects []record.Subject
		teachers []record.Teacher
	}

	classSubjectTable struct {
		sync.RWMutex
		byClass map[string][]record.ClassSubject
	}

	attendanceTable struct {
		sync.RWMutex
		sheets map[string]record.AttendanceSheet
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

// UUIDs is the default IDFunc.
func UUIDs(string) string { return uuid.NewString() }

func Open(opts Options) (*DB, error) {
	if opts.IDFunc == nil {
		opts.IDFunc = UUIDs
	}
	if opts.MarkIDFunc == nil {
		idFunc := opts.IDFunc
		opts.MarkIDFunc = func(string) string { return idFunc("mark") }
	}

	db := &DB{
		opts:          opts,
		students:      newTable[record.Student](),
		classes:       newTable[record.Class](),
		exams:         newTable[record.Exam](),
		courses:       newTable[record.Course](opts.Courses...),
		classSubjects: &classSubjectTable{byClass: make(map[string][]record.ClassSubject)},
		marks:         newTable[record.Mark](),
		attendance:    &attendanceTable{sheets: make(map[string]record.AttendanceSheet)},
		catalog: &catalog{
			subjects: append([]record.Subject(nil), opts.Subjects...),
			teachers: append([]record.Teacher(nil), opts.Teachers...),
		},
		user: &userTable{table: make(map[string]*user.User)},
	}
	return db, nil
}

type identified[T any] interface {
	RecordID() string
	WithID(id string) T
}

// table keeps rows in insertion order.
type table[T identified[T]] struct {
	sync.RWMutex
	rows []T
}

func newTable[T identified[T]](seed ...T) *table[T] {
	return &table[T]{rows: append([]T(nil), seed...)}
}

func (t *table[T]) all() []T {
	t.RLock()
	defer t.RUnlock()
	return append(make([]T, 0, len(t.rows)), t.rows...)
}

func (t *table[T]) filter(keep func(T) bool) []T {
	t.RLock()
	defer t.RUnlock()
	out := make([]T, 0)
	for _, row := range t.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) indexOf(id string) int {
	for i, row := range t.rows {
		if row.RecordID() == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) insert(row T) {
	t.Lock()
	defer t.Unlock()
	t.rows = append(t.rows, row)
}

func (t *table[T]) replace(id string, row T) (T, error) {
	t.Lock()
	defer t.Unlock()
	idx := t.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, record.ErrNotFound
	}
	row = row.WithID(id)
	t.rows[idx] = row
	return row, nil
}

func (t *table[T]) remove(id string) error {
	t.Lock()
	defer t.Unlock()
	idx := t.indexOf(id)
	if idx < 0 {
		return record.ErrNotFound
	}
	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	return nil
}

func sameText(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
