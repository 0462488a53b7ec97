package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
)

var (
	// errors
	ErrNotFound          = errors.New("user not found")
	ErrEmailExists       = errors.New("a user with this email already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
)

type (
	// Repository stores accounts for the development Records API.
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates and stores a new account.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}

	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate returns the account matching the credentials.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	if err := creds.Validate(); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredential
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err := usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredential
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// UpsertAdmin creates or updates an account with the given role and password,
// bypassing the password policy. Used by the admin CLI.
func (svc *Service) UpsertAdmin(ctx context.Context, name, email, pwd, role string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	isNew := false
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, errors.Wrap(err, "finding user by email")
		}
		isNew = true
		usr = User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now().UTC()}
	}
	if name = core.CleanString(name); name != "" {
		usr.Name = name
	}
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if isNew {
		return svc.repo.CreateUser(ctx, usr)
	}
	return svc.repo.UpdateUser(ctx, usr)
}
