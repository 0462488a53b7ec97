package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core"
)

type memRepo struct {
	sync.Mutex
	users map[string]User
}

func newMemRepo() *memRepo { return &memRepo{users: make(map[string]User)} }

func (r *memRepo) CreateUser(_ context.Context, usr User) (User, error) {
	r.Lock()
	defer r.Unlock()
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *memRepo) GetUserByID(_ context.Context, id string) (User, error) {
	r.Lock()
	defer r.Unlock()
	if usr, ok := r.users[id]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (User, error) {
	r.Lock()
	defer r.Unlock()
	for _, usr := range r.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memRepo) UpdateUser(_ context.Context, usr User) (User, error) {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.users[usr.ID]; !ok {
		return User{}, ErrNotFound
	}
	r.users[usr.ID] = usr
	return usr, nil
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	usr, err := svc.Register(ctx, NewUser{Name: "Jane Doe", Email: "Jane@School.test", Password: "k8#Lm2qZ"})
	assert.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "jane@school.test", usr.Email)
	assert.Equal(t, RoleTeacher, usr.Role)
	assert.NoError(t, usr.CheckPassword("k8#Lm2qZ"))

	tests := []struct {
		name      string
		nu        NewUser
		wantField string
		wantMsg   string
	}{
		{name: "duplicate email", nu: NewUser{Name: "J", Email: "jane@school.test", Password: "k8#Lm2qZ"}, wantField: "email", wantMsg: ErrEmailExists.Error()},
		{name: "missing name", nu: NewUser{Email: "x@school.test", Password: "k8#Lm2qZ"}, wantField: "name", wantMsg: "name is required"},
		{name: "bad role", nu: NewUser{Name: "X", Email: "x@school.test", Password: "k8#Lm2qZ", Role: "student"}, wantField: "role"},
		{name: "short password", nu: NewUser{Name: "X", Email: "x@school.test", Password: "a1"}, wantField: "password", wantMsg: pwdMinLenText},
		{name: "whitespace", nu: NewUser{Name: "X", Email: "x@school.test", Password: "abc 12345"}, wantField: "password", wantMsg: pwdNoSpaceText},
		{name: "all numeric", nu: NewUser{Name: "X", Email: "x@school.test", Password: "12345678"}, wantField: "password", wantMsg: pwdNotAllNumText},
		{name: "letters only", nu: NewUser{Name: "X", Email: "x@school.test", Password: "abcdefgh"}, wantField: "password", wantMsg: pwdComplexityText},
		{name: "similar to email", nu: NewUser{Name: "X", Email: "marcopolo@school.test", Password: "marcopolo1"}, wantField: "password", wantMsg: pwdAttrSimText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.nu)
			fields := core.FieldErrors(err)
			if assert.Contains(t, fields, tt.wantField) && tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			}
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())
	_, err := svc.Register(ctx, NewUser{Name: "Jane Doe", Email: "jane@school.test", Password: "k8#Lm2qZ", Role: RoleAdmin})
	assert.NoError(t, err)

	usr, err := svc.Authenticate(ctx, Credentials{Email: " JANE@school.test", Password: "k8#Lm2qZ"})
	assert.NoError(t, err)
	assert.True(t, usr.IsAdmin())

	_, err = svc.Authenticate(ctx, Credentials{Email: "jane@school.test", Password: "wrong"})
	assert.Equal(t, ErrInvalidCredential, err)
	_, err = svc.Authenticate(ctx, Credentials{Email: "who@school.test", Password: "k8#Lm2qZ"})
	assert.Equal(t, ErrInvalidCredential, err)
	_, err = svc.Authenticate(ctx, Credentials{})
	assert.True(t, core.IsValidationError(err))
}

func TestService_UpsertAdmin(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	created, err := svc.UpsertAdmin(ctx, "Root", "Root@school.test", "x", RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, "root@school.test", created.Email)

	updated, err := svc.UpsertAdmin(ctx, "", "root@school.test", "y", RoleTeacher)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Root", updated.Name)
	assert.Equal(t, RoleTeacher, updated.Role)
	assert.NoError(t, updated.CheckPassword("y"))
	assert.Len(t, repo.users, 1)
}
