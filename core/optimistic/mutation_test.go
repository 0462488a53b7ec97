package optimistic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Applying, "applying"},
		{Settled, "settled"},
		{Reverted, "reverted"},
		{Discarded, "discarded"},
		{Rejected, "rejected"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestMutation_lifecycle(t *testing.T) {
	assert.Equal(t, Idle, new(Mutation).State())

	gate := make(chan struct{})
	l := newTestList(&fakeStore{deleteFn: func(string) error {
		<-gate
		return nil
	}}, item{ID: "a"})
	assert.Equal(t, 0, l.Pending())

	m := l.Delete(context.Background(), "a")
	assert.Equal(t, Applying, m.State())
	assert.Equal(t, 1, l.Pending())

	close(gate)
	assert.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, Settled, m.State())
	assert.Equal(t, 0, l.Pending())

	assert.Equal(t, Rejected, l.Delete(context.Background(), "a").State())
}
