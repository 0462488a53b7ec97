package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core/user"
)

func TestStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	bolt, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() failed: %v", err)
	}
	defer bolt.Close()

	tests := []struct {
		name  string
		store user.Store
	}{
		{name: "bolt", store: bolt},
		{name: "memory", store: NewMemoryStore()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := tt.store.Get("k")
			assert.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, tt.store.Set("k", "v1"))
			assert.NoError(t, tt.store.Set("k", "v2"))
			v, ok, err := tt.store.Get("k")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)

			assert.NoError(t, tt.store.Delete("k"))
			assert.NoError(t, tt.store.Delete("missing"))
			_, ok, _ = tt.store.Get("k")
			assert.False(t, ok)
		})
	}
}

type nopAuthAPI struct{}

func (nopAuthAPI) Login(context.Context, user.Credentials) (user.AuthResult, error) {
	return user.AuthResult{Token: "tok", User: &user.User{ID: "u1", Email: "a@b.co", Role: user.RoleAdmin}}, nil
}

func (nopAuthAPI) Register(context.Context, user.NewUser) (user.AuthResult, error) {
	return user.AuthResult{}, nil
}

func (nopAuthAPI) Me(context.Context, string) (user.User, error) {
	return user.User{}, nil
}

func TestBoltStore_sessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	bolt, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() failed: %v", err)
	}
	s := user.NewSession(bolt, nopAuthAPI{}, nil)
	assert.NoError(t, s.Login(context.Background(), "a@b.co", "pwd"))
	assert.NoError(t, bolt.Close())

	bolt, err = OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() failed: %v", err)
	}
	defer bolt.Close()
	s = user.NewSession(bolt, nopAuthAPI{}, nil)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.HasRole(user.RoleAdmin))
}
