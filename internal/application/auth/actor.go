package auth

import (
	"errors"

	"github.com/leafy-market/leafy-backend/internal/domain/user"
)

var (
	ErrUnauthenticated    = errors.New("auth: authentication required")
	ErrPermissionDenied   = errors.New("auth: admin role required")
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
)

// Actor is the identity behind a request: an authenticated user or the guest.
type Actor struct {
	Username string
	Role     user.Role
}

// Guest is the anonymous actor used for unauthenticated requests.
func Guest() Actor {
	return Actor{Username: "", Role: user.RoleCustomer}
}

func (a Actor) IsGuest() bool { return a.Username == "" }
func (a Actor) IsAdmin() bool { return a.Role == user.RoleAdmin }

// RequireAdmin is the single mutation gate for batch and order-status changes.
func (a Actor) RequireAdmin() error {
	if a.IsGuest() {
		return ErrUnauthenticated
	}
	if !a.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}
