package dashboard

import (
	"context"
	"strings"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
)

// listView is the state shared by the pages listing one collection.
type listView[T optimistic.Record[T]] struct {
	list *optimistic.List[T]
}

// Items returns every loaded record, unfiltered.
func (v *listView[T]) Items() []T { return v.list.Items() }

// Err is the message of the last failed load or mutation.
func (v *listView[T]) Err() string { return v.list.Err() }

func (v *listView[T]) ClearErr() { v.list.ClearErr() }

// Saving reports whether a mutation is in flight.
func (v *listView[T]) Saving() bool { return v.list.Pending() > 0 }

func (v *listView[T]) OnChange(fn func()) { v.list.OnChange(fn) }

func (v *listView[T]) Reload(ctx context.Context) error { return v.list.Load(ctx) }

// Close unmounts the page; requests still in flight settle without effect.
func (v *listView[T]) Close() { v.list.Close() }

func (v *listView[T]) Delete(ctx context.Context, id string) *optimistic.Mutation {
	return v.list.Delete(ctx, id)
}

// matches reports whether any field contains the lowered, trimmed query q.
func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func filter[T any](items []T, query string, fields func(T) []string) []T {
	q := core.CleanString(query, true /* lower */)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if matches(q, fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}
