package optimistic

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

type ValueOptions[T any] struct {
	// Entity names the value in error messages, e.g. "marks".
	Entity string
	// Clone deep copies a value; values are shared when nil.
	Clone func(T) T
	// Merge folds the server reply of a save into the current value.
	// The default replaces the value with the reply.
	Merge func(current, saved T) T
}

// Value is a single document (a marks sheet, an attendance register) edited
// locally and saved in bulk. A failed save restores the pre-save backup.
type Value[T any] struct {
	opts ValueOptions[T]

	mu       sync.Mutex
	val      T
	version  uint64
	errMsg   string
	pending  int
	closed   bool
	onChange func()
}

func NewValue[T any](initial T, opts ValueOptions[T]) *Value[T] {
	if opts.Clone == nil {
		opts.Clone = func(v T) T { return v }
	}
	if opts.Merge == nil {
		opts.Merge = func(_, saved T) T { return saved }
	}
	return &Value[T]{opts: opts, val: opts.Clone(initial)}
}

func (v *Value[T]) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Get returns a copy of the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts.Clone(v.val)
}

// Set replaces the value locally.
func (v *Value[T]) Set(val T) {
	v.Edit(func(T) T { return val })
}

// Edit applies fn to a copy of the value and keeps the result.
func (v *Value[T]) Edit(fn func(T) T) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.val = fn(v.opts.Clone(v.val))
	v.version++
	v.mu.Unlock()
	v.changed()
}

func (v *Value[T]) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *Value[T]) SetErr(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
	v.changed()
}

func (v *Value[T]) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending
}

func (v *Value[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.onChange = nil
	v.mu.Unlock()
}

// Save sends the current value with send. On success the reply is merged into
// the value; on failure the backup taken here is restored unless the value was
// edited while the request was in flight.
func (v *Value[T]) Save(ctx context.Context, send func(context.Context, T) (T, error)) *Mutation {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return rejected(OpSave, v.opts.Entity, ErrClosed)
	}
	backup := v.opts.Clone(v.val)
	m := newMutation(OpSave, v.opts.Entity)
	m.version = v.version
	v.pending++
	v.errMsg = ""
	v.mu.Unlock()
	v.changed()

	go func() {
		saved, err := send(ctx, v.opts.Clone(backup))

		v.mu.Lock()
		v.pending--
		if v.closed {
			v.mu.Unlock()
			m.finish(Discarded, firstErr(err, ErrClosed))
			return
		}
		if err != nil {
			if v.version == m.version {
				v.val = backup
			}
			v.version++
			v.errMsg = fmt.Sprintf("Failed to save %s", v.opts.Entity)
			v.mu.Unlock()
			v.changed()
			m.finish(Reverted, errors.Wrapf(err, "saving %s", v.opts.Entity))
			return
		}
		v.val = v.opts.Merge(v.val, saved)
		v.version++
		v.mu.Unlock()
		v.changed()
		m.finish(Settled, nil)
	}()
	return m
}

func (v *Value[T]) changed() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}
