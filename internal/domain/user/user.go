package user

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound        = errors.New("user: not found")
	ErrExists          = errors.New("user: username already taken")
	ErrMissingUsername = errors.New("user: username is required")
	ErrMissingPassword = errors.New("user: password is required")
	ErrInvalidRole     = errors.New("user: unknown role")
	ErrInvalidPassword = errors.New("user: invalid password")
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCustomer }

// User is an account keyed by username. Only the bcrypt hash of the password is
// ever stored.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// New creates a user with a freshly hashed password. An empty role defaults to
// customer.
func New(username, password string, role Role) (*User, error) {
	if username == "" {
		return nil, ErrMissingUsername
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CheckPassword compares the candidate against the stored hash. bcrypt performs
// the comparison in constant time.
func (u *User) CheckPassword(candidate string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Clone returns a copy safe for callers to mutate.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
