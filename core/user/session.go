package user

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
)

// Keys of the persisted session.
const (
	TokenKey = "ams_auth_token"
	UserKey  = "ams_auth_user"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrForbidden       = errors.New("permission denied")
)

type (
	// Store is the key-value capability a Session persists into.
	Store interface {
		Get(key string) (value string, ok bool, err error)
		Set(key, value string) error
		Delete(key string) error
	}

	// AuthAPI is the remote side of a Session.
	AuthAPI interface {
		Login(ctx context.Context, creds Credentials) (AuthResult, error)
		Register(ctx context.Context, nu NewUser) (AuthResult, error)
		Me(ctx context.Context, token string) (User, error)
	}
)

// Session owns the signed-in token and profile and keeps them persisted in a Store.
// It is safe for concurrent use.
type Session struct {
	store  Store
	api    AuthAPI
	logger core.Logger

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool
}

// NewSession restores a previously persisted session, if any.
// Unreadable entries are treated as absent.
func NewSession(store Store, api AuthAPI, logger core.Logger) *Session {
	s := &Session{store: store, api: api, logger: logger}
	if token, ok, err := store.Get(TokenKey); err == nil && ok {
		s.token = token
	} else if err != nil {
		s.warn("reading persisted token", err)
	}
	if raw, ok, err := store.Get(UserKey); err == nil && ok {
		var usr User
		if err := json.Unmarshal([]byte(raw), &usr); err == nil {
			s.user = &usr
		} else {
			s.warn("decoding persisted user", err)
		}
	} else if err != nil {
		s.warn("reading persisted user", err)
	}
	return s
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in profile.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated requires both a token and a profile.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Loading reports whether a login or profile fetch is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) HasRole(role string) bool {
	usr, ok := s.User()
	return ok && usr.HasRole(role)
}

// Bootstrap fetches the profile when a token was restored without one.
// A rejected token signs the session out.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.mu.RLock()
	token, hasUser := s.token, s.user != nil
	s.mu.RUnlock()
	if token == "" || hasUser {
		return nil
	}
	_, err := s.fetchProfile(ctx, token)
	return err
}

// Login exchanges credentials for a token and profile.
func (s *Session) Login(ctx context.Context, email, password string) error {
	creds := Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)
	res, err := s.api.Login(ctx, creds)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	s.set(res.Token, res.User)
	return nil
}

// Register creates an account; the session signs in when a token comes back.
func (s *Session) Register(ctx context.Context, nu NewUser) error {
	nu.Clean()
	if nu.PasswordConfirm != "" && nu.PasswordConfirm != nu.Password {
		return core.NewValidationError(errors.New("Passwords do not match."),
			core.FieldError{Field: "password_confirm", Error: "Passwords do not match."})
	}

	s.setLoading(true)
	defer s.setLoading(false)
	res, err := s.api.Register(ctx, nu)
	if err != nil {
		return errors.Wrap(err, "registering")
	}
	if res.Token != "" {
		s.set(res.Token, res.User)
	}
	return nil
}

func (s *Session) Logout() {
	s.set("", nil)
}

// RefreshProfile reloads the profile. A rejected token signs the session out.
func (s *Session) RefreshProfile(ctx context.Context) (*User, error) {
	token := s.Token()
	if token == "" {
		return nil, nil
	}
	return s.fetchProfile(ctx, token)
}

func (s *Session) fetchProfile(ctx context.Context, token string) (*User, error) {
	s.setLoading(true)
	defer s.setLoading(false)
	usr, err := s.api.Me(ctx, token)
	if err != nil {
		s.replace(token, "", nil)
		return nil, errors.Wrap(err, "fetching profile")
	}
	if !s.replace(token, token, &usr) { // signed out or in again meanwhile
		return nil, ErrUnauthenticated
	}
	return &usr, nil
}

// replace sets the session only while it still holds the token from.
func (s *Session) replace(from, token string, usr *User) bool {
	s.mu.Lock()
	if s.token != from {
		s.mu.Unlock()
		return false
	}
	s.token = token
	s.user = usr
	s.mu.Unlock()
	s.persist(token, usr)
	return true
}

func (s *Session) set(token string, usr *User) {
	s.mu.Lock()
	s.token = token
	s.user = usr
	s.mu.Unlock()
	s.persist(token, usr)
}

func (s *Session) persist(token string, usr *User) {
	var err error
	if token != "" {
		err = s.store.Set(TokenKey, token)
	} else {
		err = s.store.Delete(TokenKey)
	}
	if err != nil {
		s.warn("persisting token", err)
	}

	if usr != nil {
		var raw []byte
		if raw, err = json.Marshal(usr); err == nil {
			err = s.store.Set(UserKey, string(raw))
		}
	} else {
		err = s.store.Delete(UserKey)
	}
	if err != nil {
		s.warn("persisting user", err)
	}
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, err)
	}
}

// RequireRole gates a page: the session must be signed in and, when roles are
// given, hold one of them.
func RequireRole(s *Session, roles ...string) error {
	if !s.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if s.HasRole(role) {
			return nil
		}
	}
	return ErrForbidden
}
