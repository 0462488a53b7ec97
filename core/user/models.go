package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/ams/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher}

	Roles = []Role{
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Teacher", Value: RoleTeacher},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is the public profile of an account; PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"-"` // UTC
	UpdatedAt    time.Time `json:"-"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// HasRole is an exact role match.
func (u User) HasRole(role string) bool {
	return u.Role != "" && u.Role == role
}

func (u User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"omitempty,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=admin teacher"`
}

// Clean trims the form and defaults the role to teacher.
func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleTeacher
	}
}

func (nu *NewUser) Validate() error {
	nu.Clean()
	return core.Validate.Struct(nu)
}

// Credentials is a login form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}

// AuthResult is what login and registration return.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
