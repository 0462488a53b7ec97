// Package localapi serves the Records API from memory when no backend is
// configured (client-only mode).
package localapi

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
	dummydb "github.com/trezcool/ams/storage/database/dummy"
)

const HealthMessage = "No API base configured. Using client-only mode."

// API is the client-only Records API. Records get provisional "tmp-" ids and
// marks "tmp-<studentId>-<unix millis>" ones.
type API struct {
	record.API
	users *user.Service

	mu     sync.RWMutex
	tokens map[string]string // token -> user id
}

var (
	_ record.API   = (*API)(nil)
	_ user.AuthAPI = (*API)(nil)
)

func New() *API {
	db, _ := dummydb.Open(dummydb.Options{
		IDFunc: func(kind string) string {
			if kind == "classSubject" {
				return core.TempID("csub")
			}
			return core.TempID("tmp")
		},
		MarkIDFunc: func(studentID string) string {
			return "tmp-" + studentID + "-" + strconv.FormatInt(core.NowFunc().UnixMilli(), 10)
		},
		Subjects: record.DefaultSubjects(),
		Teachers: record.DefaultTeachers(),
		Courses:  record.SeedCourses(),
	})
	return &API{
		API:    dummydb.NewRecordsAPI(db),
		users:  user.NewService(dummydb.NewUserRepository(db)),
		tokens: make(map[string]string),
	}
}

func (api *API) Health(context.Context) record.HealthStatus {
	return record.HealthStatus{OK: true, Message: HealthMessage}
}

// Login signs in an account registered in this process.
func (api *API) Login(ctx context.Context, creds user.Credentials) (user.AuthResult, error) {
	usr, err := api.users.Authenticate(ctx, creds)
	if err != nil {
		return user.AuthResult{}, err
	}
	return api.issue(usr), nil
}

func (api *API) Register(ctx context.Context, nu user.NewUser) (user.AuthResult, error) {
	usr, err := api.users.Register(ctx, nu)
	if err != nil {
		return user.AuthResult{}, err
	}
	return api.issue(usr), nil
}

func (api *API) Me(ctx context.Context, token string) (user.User, error) {
	api.mu.RLock()
	id, ok := api.tokens[token]
	api.mu.RUnlock()
	if !ok {
		return user.User{}, user.ErrUnauthenticated
	}
	usr, err := api.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "loading profile")
	}
	return usr, nil
}

func (api *API) issue(usr user.User) user.AuthResult {
	token := uuid.NewString()
	api.mu.Lock()
	api.tokens[token] = usr.ID
	api.mu.Unlock()
	return user.AuthResult{Token: token, User: &usr}
}
