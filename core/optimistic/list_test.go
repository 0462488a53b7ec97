package optimistic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID   string
	Name string
}

func (i item) RecordID() string      { return i.ID }
func (i item) WithID(id string) item { i.ID = id; return i }

func ids(items []item) (out []string) {
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

var errBoom = errors.New("boom")

type fakeStore struct {
	listFn   func() ([]item, error)
	createFn func(item) (item, error)
	updateFn func(string, item) (item, error)
	deleteFn func(string) error
}

func (s *fakeStore) List(context.Context) ([]item, error) {
	if s.listFn == nil {
		return nil, errBoom
	}
	return s.listFn()
}

func (s *fakeStore) Create(_ context.Context, rec item) (item, error) { return s.createFn(rec) }

func (s *fakeStore) Update(_ context.Context, id string, rec item) (item, error) {
	return s.updateFn(id, rec)
}

func (s *fakeStore) Delete(_ context.Context, id string) error { return s.deleteFn(id) }

func newTestList(store *fakeStore, items ...item) *List[item] {
	l := NewList[item](store, Options[item]{Entity: "student"})
	l.Replace(items)
	return l
}

func TestList_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("temp record then server id", func(t *testing.T) {
		gate := make(chan struct{})
		l := newTestList(&fakeStore{createFn: func(rec item) (item, error) {
			<-gate
			return item{ID: "srv-1", Name: rec.Name}, nil
		}})

		m := l.Create(ctx, item{Name: "Ann"})
		items := l.Items()
		if assert.Len(t, items, 1) {
			assert.True(t, strings.HasPrefix(items[0].ID, "tmp-"), items[0].ID)
			assert.Equal(t, m.ID, items[0].ID)
		}
		assert.Equal(t, 1, l.Pending())
		assert.Equal(t, Applying, m.State())
		assert.Nil(t, m.Err())

		close(gate)
		assert.NoError(t, m.Wait(ctx))
		assert.Equal(t, []item{{ID: "srv-1", Name: "Ann"}}, l.Items())
		assert.Equal(t, Settled, m.State())
		assert.Equal(t, 0, l.Pending())
		assert.Empty(t, l.Err())
	})

	t.Run("keeps temp id when server returns none", func(t *testing.T) {
		l := newTestList(&fakeStore{createFn: func(item) (item, error) { return item{}, nil }})
		m := l.Create(ctx, item{Name: "Ann"})
		assert.NoError(t, m.Wait(ctx))
		assert.Equal(t, []string{m.ID}, ids(l.Items()))
	})

	t.Run("prepends", func(t *testing.T) {
		l := newTestList(&fakeStore{createFn: func(item) (item, error) { return item{ID: "c"}, nil }}, item{ID: "a"}, item{ID: "b"})
		assert.NoError(t, l.Create(ctx, item{}).Wait(ctx))
		assert.Equal(t, []string{"c", "a", "b"}, ids(l.Items()))
	})

	t.Run("failure reverts and reports", func(t *testing.T) {
		l := newTestList(&fakeStore{createFn: func(item) (item, error) { return item{}, errBoom }})
		m := l.Create(ctx, item{Name: "Ann"})
		err := m.Wait(ctx)
		assert.True(t, errors.Is(err, errBoom), err)
		assert.Empty(t, l.Items())
		assert.Equal(t, "Failed to create student", l.Err())
		assert.Equal(t, Reverted, m.State())
	})

	t.Run("failure reloads", func(t *testing.T) {
		l := newTestList(&fakeStore{
			createFn: func(item) (item, error) { return item{}, errBoom },
			listFn:   func() ([]item, error) { return []item{{ID: "x"}}, nil },
		})
		assert.Error(t, l.Create(ctx, item{}).Wait(ctx))
		assert.Equal(t, []string{"x"}, ids(l.Items()))
		assert.Equal(t, "Failed to create student", l.Err())
	})

	t.Run("custom merge", func(t *testing.T) {
		l := NewList[item](&fakeStore{createFn: func(item) (item, error) { return item{ID: "s", Name: "server"}, nil }},
			Options[item]{Entity: "student", Merge: func(local, created item) item { return created }})
		assert.NoError(t, l.Create(ctx, item{Name: "local"}).Wait(ctx))
		assert.Equal(t, []item{{ID: "s", Name: "server"}}, l.Items())
	})
}

func TestList_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces in place", func(t *testing.T) {
		l := newTestList(&fakeStore{updateFn: func(id string, rec item) (item, error) { return rec, nil }},
			item{ID: "a", Name: "A"}, item{ID: "b", Name: "B"})
		m := l.Update(ctx, item{ID: "a", Name: "A2"})
		assert.Equal(t, []item{{ID: "a", Name: "A2"}, {ID: "b", Name: "B"}}, l.Items())
		assert.NoError(t, m.Wait(ctx))
		assert.Equal(t, []item{{ID: "a", Name: "A2"}, {ID: "b", Name: "B"}}, l.Items())
	})

	t.Run("failure restores", func(t *testing.T) {
		l := newTestList(&fakeStore{updateFn: func(string, item) (item, error) { return item{}, errBoom }},
			item{ID: "a", Name: "A"})
		assert.Error(t, l.Update(ctx, item{ID: "a", Name: "A2"}).Wait(ctx))
		assert.Equal(t, []item{{ID: "a", Name: "A"}}, l.Items())
		assert.Equal(t, "Failed to update student", l.Err())
	})

	t.Run("unknown record", func(t *testing.T) {
		l := newTestList(&fakeStore{})
		m := l.Update(ctx, item{ID: "nope"})
		assert.Equal(t, ErrNotFound, m.Wait(ctx))
		assert.Equal(t, Rejected, m.State())
	})
}

func TestList_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes then reverts on failure", func(t *testing.T) {
		gate := make(chan struct{})
		l := newTestList(&fakeStore{deleteFn: func(string) error {
			<-gate
			return errBoom
		}}, item{ID: "a"}, item{ID: "b"})

		m := l.Delete(ctx, "a")
		assert.Equal(t, []string{"b"}, ids(l.Items()))
		close(gate)
		assert.Error(t, m.Wait(ctx))
		assert.Equal(t, []string{"a", "b"}, ids(l.Items()))
		assert.Equal(t, "Failed to delete student", l.Err())
	})

	t.Run("success", func(t *testing.T) {
		l := newTestList(&fakeStore{deleteFn: func(string) error { return nil }}, item{ID: "a"}, item{ID: "b"})
		assert.NoError(t, l.Delete(ctx, "b").Wait(ctx))
		assert.Equal(t, []string{"a"}, ids(l.Items()))
	})
}

func TestList_concurrentMutations(t *testing.T) {
	tests := []struct {
		name    string
		items   []string
		deleted string
		want    []string
	}{
		{name: "head record", items: []string{"a", "b"}, deleted: "a", want: []string{"srv-c", "a", "b"}},
		{name: "tail record", items: []string{"a", "b"}, deleted: "b", want: []string{"srv-c", "a", "b"}},
		{name: "only record", items: []string{"a"}, deleted: "a", want: []string{"srv-c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			deleteGate := make(chan struct{})
			createGate := make(chan struct{})
			var items []item
			for _, id := range tt.items {
				items = append(items, item{ID: id})
			}
			l := newTestList(&fakeStore{
				deleteFn: func(string) error {
					<-deleteGate
					return errBoom
				},
				createFn: func(rec item) (item, error) {
					<-createGate
					return item{ID: "srv-c"}, nil
				},
			}, items...)

			del := l.Delete(ctx, tt.deleted)
			cre := l.Create(ctx, item{Name: "C"})
			assert.Equal(t, 2, l.Pending())

			close(createGate)
			assert.NoError(t, cre.Wait(ctx))
			close(deleteGate)
			assert.Error(t, del.Wait(ctx))

			// the failed delete is undone in place, keeping the confirmed create first
			assert.Equal(t, tt.want, ids(l.Items()))
			assert.Equal(t, "Failed to delete student", l.Err())
		})
	}
}

func TestList_Close(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	l := newTestList(&fakeStore{createFn: func(item) (item, error) {
		<-gate
		return item{ID: "srv-1"}, nil
	}})

	var mu sync.Mutex
	var changes int
	l.OnChange(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	m := l.Create(ctx, item{})
	before := l.Items()
	l.Close()
	close(gate)

	assert.ErrorIs(t, m.Wait(ctx), ErrClosed)
	assert.Equal(t, Discarded, m.State())
	assert.Equal(t, before, l.Items())

	mu.Lock()
	assert.Equal(t, 1, changes)
	mu.Unlock()

	assert.Equal(t, Rejected, l.Create(ctx, item{}).State())
}

func TestList_Load(t *testing.T) {
	ctx := context.Background()

	l := newTestList(&fakeStore{listFn: func() ([]item, error) { return []item{{ID: "a"}}, nil }})
	v := l.Version()
	assert.NoError(t, l.Load(ctx))
	assert.Equal(t, []string{"a"}, ids(l.Items()))
	assert.Greater(t, l.Version(), v)

	l = newTestList(&fakeStore{})
	assert.Error(t, l.Load(ctx))
	assert.Equal(t, "Failed to load students", l.Err())
	l.ClearErr()
	assert.Empty(t, l.Err())
}
