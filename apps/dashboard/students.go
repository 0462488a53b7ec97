package dashboard

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
	"github.com/trezcool/ams/core/record"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var (
	ErrUnknownSortField = errors.New("unknown sort field")

	studentSortFields = []string{"name", "class", "section", "rollNumber"}
)

// StudentsView lists students with search, sorting and an add/edit form.
type StudentsView struct {
	listView[record.Student]

	mu      sync.Mutex
	query   string
	sortBy  string
	sortDir string
}

func newStudentsView(api record.API, logger core.Logger) *StudentsView {
	return &StudentsView{
		listView: listView[record.Student]{list: optimistic.NewList[record.Student](api.Students(), optimistic.Options[record.Student]{
			Entity: "student",
			Logger: logger,
		})},
		sortBy:  "name",
		sortDir: SortAsc,
	}
}

func (v *StudentsView) SetQuery(q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

// SetSort orders the rows by field ("name", "class", "section" or "rollNumber").
// Any dir other than SortDesc sorts ascending.
func (v *StudentsView) SetSort(field, dir string) error {
	if !slices.Contains(studentSortFields, field) {
		return errors.Wrap(ErrUnknownSortField, field)
	}
	if dir != SortDesc {
		dir = SortAsc
	}
	v.mu.Lock()
	v.sortBy, v.sortDir = field, dir
	v.mu.Unlock()
	return nil
}

// Sort returns the current sort field and direction.
func (v *StudentsView) Sort() (string, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sortBy, v.sortDir
}

// Rows are the students matching the query, sorted.
func (v *StudentsView) Rows() []record.Student {
	v.mu.Lock()
	q, ord := v.query, core.Ordering{Field: v.sortBy, Ascending: v.sortDir == SortAsc}
	v.mu.Unlock()

	rows := record.SearchStudents(v.Items(), q)
	record.SortStudents(rows, []core.Ordering{ord})
	return rows
}

// Create validates the form against the loaded students, then adds it.
// Invalid forms return a validation error and reach no store.
func (v *StudentsView) Create(ctx context.Context, s record.Student) (*optimistic.Mutation, error) {
	s = s.Clean()
	s.ID = ""
	if err := s.Validate(v.Items()); err != nil {
		return nil, err
	}
	return v.list.Create(ctx, s), nil
}

func (v *StudentsView) Update(ctx context.Context, s record.Student) (*optimistic.Mutation, error) {
	s = s.Clean()
	if err := s.Validate(v.Items()); err != nil {
		return nil, err
	}
	return v.list.Update(ctx, s), nil
}
