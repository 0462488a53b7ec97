package dashboard

import (
	"context"
	"sync"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
	"github.com/trezcool/ams/core/record"
)

type ExamsView struct {
	listView[record.Exam]

	mu    sync.Mutex
	query string
}

func newExamsView(api record.API, logger core.Logger) *ExamsView {
	return &ExamsView{
		listView: listView[record.Exam]{list: optimistic.NewList[record.Exam](api.Exams(), optimistic.Options[record.Exam]{
			Entity:       "exam",
			TempIDPrefix: "exam",
			Logger:       logger,
		})},
	}
}

func (v *ExamsView) SetQuery(q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

// Rows are the exams whose name or term contains the query.
func (v *ExamsView) Rows() []record.Exam {
	v.mu.Lock()
	q := v.query
	v.mu.Unlock()
	return filter(v.Items(), q, func(e record.Exam) []string { return []string{e.Name, e.Term} })
}

func (v *ExamsView) Create(ctx context.Context, e record.Exam) (*optimistic.Mutation, error) {
	e = e.Clean()
	e.ID = ""
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return v.list.Create(ctx, e), nil
}

func (v *ExamsView) Update(ctx context.Context, e record.Exam) (*optimistic.Mutation, error) {
	e = e.Clean()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return v.list.Update(ctx, e), nil
}
