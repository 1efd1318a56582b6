package domain

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// Role decides which operations a user may perform.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrMissingID    = errors.New("user id is required")
	ErrEmptyName    = errors.New("user name is required")
	ErrInvalidEmail = errors.New("email must be a valid address")
	ErrInvalidRole  = errors.New("role must be user or admin")
)

// User is the profile of an applicant or administrator as known to the API.
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  Role
}

// NewUser builds a profile ensuring required invariants. An empty role defaults to user.
func NewUser(id uuid.UUID, name, email string, role Role) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrMissingID
	}
	user := &User{ID: id}
	if err := user.SetName(name); err != nil {
		return nil, err
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleUser
	}
	if err := user.SetRole(role); err != nil {
		return nil, err
	}
	return user, nil
}

// SetName trims and validates the display name.
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	return nil
}

// SetEmail validates the address. Empty is allowed for identities that carry none.
func (u *User) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return ErrInvalidEmail
		}
	}
	u.Email = email
	return nil
}

// SetRole validates the role enum.
func (u *User) SetRole(role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u.Role = role
	return nil
}

// IsAdmin reports whether the user manages the catalog.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
