package dashboard

import (
	"context"
	"sync"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
	"github.com/trezcool/ams/core/record"
)

type CoursesView struct {
	listView[record.Course]

	mu    sync.Mutex
	query string
}

func newCoursesView(api record.API, logger core.Logger) *CoursesView {
	return &CoursesView{
		listView: listView[record.Course]{list: optimistic.NewList[record.Course](api.Courses(), optimistic.Options[record.Course]{
			Entity: "course",
			Logger: logger,
		})},
	}
}

func (v *CoursesView) SetQuery(q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

// Rows are the courses whose title or code contains the query.
func (v *CoursesView) Rows() []record.Course {
	v.mu.Lock()
	q := v.query
	v.mu.Unlock()
	return filter(v.Items(), q, func(c record.Course) []string { return []string{c.Title, c.Code} })
}

// Create requires a code and a title; new courses show first.
func (v *CoursesView) Create(ctx context.Context, c record.Course) (*optimistic.Mutation, error) {
	c = c.Clean()
	c.ID = ""
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return v.list.Create(ctx, c), nil
}
