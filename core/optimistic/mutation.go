package optimistic

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is reported by mutations started on, or settled after, a closed list.
	ErrClosed = errors.New("view closed")
	// ErrNotFound is reported when updating or deleting a record the list does not hold.
	ErrNotFound = errors.New("record not found")
)

// Op is the kind of change a Mutation applies.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpSave   Op = "save"
)

// State is the lifecycle of a Mutation: Idle, Applying, then exactly one final
// state. Mutations leave Idle as soon as a list starts them; a list as a whole
// is idle while its Pending count is zero.
type State int32

const (
	Idle      State = iota // not started
	Applying               // applied locally, request in flight
	Settled                // request succeeded
	Reverted               // request failed, local change rolled back
	Discarded              // the owning list was closed, result ignored
	Rejected               // never applied (unknown record, closed list)
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Applying:
		return "applying"
	case Settled:
		return "settled"
	case Reverted:
		return "reverted"
	case Discarded:
		return "discarded"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Mutation tracks one optimistic change until its request settles.
type Mutation struct {
	Op Op
	ID string // target record; the temporary id for creates

	version uint64 // list version right after the local apply
	state   int32
	err     error
	done    chan struct{}
}

func newMutation(op Op, id string) *Mutation {
	return &Mutation{Op: op, ID: id, state: int32(Applying), done: make(chan struct{})}
}

func rejected(op Op, id string, err error) *Mutation {
	m := newMutation(op, id)
	m.finish(Rejected, err)
	return m
}

func (m *Mutation) finish(s State, err error) {
	m.err = err
	atomic.StoreInt32(&m.state, int32(s))
	close(m.done)
}

// Done is closed once the mutation reached its final state.
func (m *Mutation) Done() <-chan struct{} { return m.done }

// State returns the current lifecycle state.
func (m *Mutation) State() State { return State(atomic.LoadInt32(&m.state)) }

// Err returns the request error once done, nil before.
func (m *Mutation) Err() error {
	select {
	case <-m.done:
		return m.err
	default:
		return nil
	}
}

// Wait blocks until the mutation is done or ctx expires.
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
