// Package optimistic keeps view state ahead of the Records API: changes are
// applied locally first, then confirmed or rolled back when the request settles.
package optimistic

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
)

// Record is an entity held by a List.
type Record[T any] interface {
	RecordID() string
	WithID(id string) T
}

// Store is the remote side of a List.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, rec T) (T, error)
	Delete(ctx context.Context, id string) error
}

type Options[T any] struct {
	// Entity names a single record in error messages, e.g. "student".
	Entity string
	// Plural names the collection, Entity+"s" when blank.
	Plural string
	// TempIDPrefix defaults to "tmp".
	TempIDPrefix string
	// Merge builds the confirmed record from the optimistic one and the server reply
	// of a create. The default keeps local with the server id (if any).
	Merge func(local, created T) T
	// NoReload skips the reload that follows a failed mutation.
	NoReload bool
	Logger   core.Logger
}

// List is an ordered collection of records mutated optimistically.
// It is safe for concurrent use.
type List[T Record[T]] struct {
	store Store[T]
	opts  Options[T]

	mu       sync.Mutex
	items    []T
	version  uint64
	prepends int
	errMsg   string
	pending  int
	closed   bool
	onChange func()
}

func NewList[T Record[T]](store Store[T], opts Options[T]) *List[T] {
	if opts.Plural == "" {
		opts.Plural = opts.Entity + "s"
	}
	if opts.TempIDPrefix == "" {
		opts.TempIDPrefix = "tmp"
	}
	if opts.Merge == nil {
		opts.Merge = func(local, created T) T {
			if id := created.RecordID(); id != "" {
				return local.WithID(id)
			}
			return local
		}
	}
	return &List[T]{store: store, opts: opts}
}

// OnChange registers fn to be called after every state change.
func (l *List[T]) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Items returns a copy of the current records.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Get returns the record with the given id.
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Err returns the user-visible message of the last failure, "" when none.
func (l *List[T]) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

// SetErr replaces the user-visible error message.
func (l *List[T]) SetErr(msg string) {
	l.mu.Lock()
	l.errMsg = msg
	l.mu.Unlock()
	l.changed()
}

func (l *List[T]) ClearErr() { l.SetErr("") }

// Pending returns the number of requests in flight.
func (l *List[T]) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Version increases on every change of the records.
func (l *List[T]) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Close detaches the list from its view: settlements arriving later are ignored.
func (l *List[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.onChange = nil
	l.mu.Unlock()
}

// Closed reports whether Close was called.
func (l *List[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Load replaces the records with the store's.
func (l *List[T]) Load(ctx context.Context) error {
	items, err := l.store.List(ctx)
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		l.errMsg = fmt.Sprintf("Failed to load %s", l.opts.Plural)
		l.mu.Unlock()
		l.changed()
		return errors.Wrapf(err, "loading %s", l.opts.Plural)
	}
	l.items = slices.Clone(items)
	l.version++
	l.mu.Unlock()
	l.changed()
	return nil
}

// Replace sets the records without contacting the store.
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	l.items = slices.Clone(items)
	l.version++
	l.mu.Unlock()
	l.changed()
}

// Create prepends rec under a temporary id and sends it to the store.
func (l *List[T]) Create(ctx context.Context, rec T) *Mutation {
	tempID := core.TempID(l.opts.TempIDPrefix)
	rec = rec.WithID(tempID)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return rejected(OpCreate, tempID, ErrClosed)
	}
	m := newMutation(OpCreate, tempID)
	snapshot := l.begin(m, func() {
		l.items = slices.Insert(l.items, 0, rec)
		l.prepends++
	})
	l.mu.Unlock()
	l.changed()

	go func() {
		created, err := l.store.Create(ctx, rec)
		l.settle(ctx, m, snapshot, err,
			func() {
				if i := l.indexOf(tempID); i >= 0 {
					l.items[i] = l.opts.Merge(l.items[i], created)
				}
			},
			func() {
				if i := l.indexOf(tempID); i >= 0 {
					l.items = slices.Delete(l.items, i, i+1)
				}
			},
		)
	}()
	return m
}

// Update replaces the record sharing rec's id in place and sends it to the store.
func (l *List[T]) Update(ctx context.Context, rec T) *Mutation {
	id := rec.RecordID()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return rejected(OpUpdate, id, ErrClosed)
	}
	idx := l.indexOf(id)
	if idx < 0 {
		l.mu.Unlock()
		return rejected(OpUpdate, id, ErrNotFound)
	}
	old := l.items[idx]
	m := newMutation(OpUpdate, id)
	snapshot := l.begin(m, func() { l.items[idx] = rec })
	l.mu.Unlock()
	l.changed()

	go func() {
		_, err := l.store.Update(ctx, id, rec)
		l.settle(ctx, m, snapshot, err,
			func() {},
			func() {
				if i := l.indexOf(id); i >= 0 {
					l.items[i] = old
				}
			},
		)
	}()
	return m
}

// Delete removes the record with the given id and asks the store to do the same.
func (l *List[T]) Delete(ctx context.Context, id string) *Mutation {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return rejected(OpDelete, id, ErrClosed)
	}
	idx := l.indexOf(id)
	if idx < 0 {
		l.mu.Unlock()
		return rejected(OpDelete, id, ErrNotFound)
	}
	old := l.items[idx]
	var prevID, nextID string
	if idx > 0 {
		prevID = l.items[idx-1].RecordID()
	}
	if idx+1 < len(l.items) {
		nextID = l.items[idx+1].RecordID()
	}
	prepends := l.prepends
	m := newMutation(OpDelete, id)
	snapshot := l.begin(m, func() { l.items = slices.Delete(l.items, idx, idx+1) })
	l.mu.Unlock()
	l.changed()

	go func() {
		err := l.store.Delete(ctx, id)
		l.settle(ctx, m, snapshot, err,
			func() {},
			func() {
				if l.indexOf(id) < 0 {
					at := l.reinsertIndex(idx+l.prepends-prepends, prevID, nextID) // past later creates
					l.items = slices.Insert(l.items, at, old)
				}
			},
		)
	}()
	return m
}

// begin snapshots the records, applies the local change and marks m in flight.
// l.mu must be held.
func (l *List[T]) begin(m *Mutation, apply func()) []T {
	snapshot := slices.Clone(l.items)
	apply()
	l.version++
	m.version = l.version
	l.pending++
	l.errMsg = ""
	return snapshot
}

// settle finalizes m. On failure the snapshot is restored when nothing else
// touched the records since m applied; otherwise only m's own change is undone.
func (l *List[T]) settle(ctx context.Context, m *Mutation, snapshot []T, err error, confirm, undo func()) {
	l.mu.Lock()
	l.pending--
	if l.closed {
		l.mu.Unlock()
		m.finish(Discarded, firstErr(err, ErrClosed))
		return
	}

	if err == nil {
		confirm()
		l.version++
		l.mu.Unlock()
		l.changed()
		m.finish(Settled, nil)
		return
	}

	if l.version == m.version {
		l.items = snapshot
	} else {
		undo()
	}
	l.version++
	l.errMsg = fmt.Sprintf("Failed to %s %s", m.Op, l.opts.Entity)
	l.mu.Unlock()
	l.changed()

	if !l.opts.NoReload {
		l.reload(ctx)
	}
	m.finish(Reverted, errors.Wrapf(err, "%s %s", m.Op, l.opts.Entity))
}

// reload refreshes the records after a failure. Its own failure is silent and
// its result is dropped while other mutations are in flight.
func (l *List[T]) reload(ctx context.Context) {
	items, err := l.store.List(ctx)
	if err != nil {
		if l.opts.Logger != nil {
			l.opts.Logger.Debug("reloading "+l.opts.Plural+" after failed mutation", err)
		}
		return
	}

	l.mu.Lock()
	if l.closed || l.pending > 0 {
		l.mu.Unlock()
		return
	}
	l.items = slices.Clone(items)
	l.version++
	l.mu.Unlock()
	l.changed()
}

// reinsertIndex is where a record deleted from idx goes back: before its old
// successor, else after its old predecessor, else at idx. l.mu must be held.
func (l *List[T]) reinsertIndex(idx int, prevID, nextID string) int {
	if nextID != "" {
		if i := l.indexOf(nextID); i >= 0 {
			return i
		}
	}
	if prevID != "" {
		if i := l.indexOf(prevID); i >= 0 {
			return i + 1
		}
	}
	return min(idx, len(l.items))
}

func (l *List[T]) indexOf(id string) int {
	return slices.IndexFunc(l.items, func(rec T) bool { return rec.RecordID() == id })
}

func (l *List[T]) changed() {
	l.mu.Lock()
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
