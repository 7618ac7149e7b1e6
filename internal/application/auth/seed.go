package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/leafy-market/leafy-backend/internal/domain/user"
)

// SeedAdmin ensures the configured admin account exists. An already-present
// account is left untouched, so a rotated config password does not overwrite a
// live credential.
func SeedAdmin(ctx context.Context, users user.Repository, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	admin, err := user.New(username, password, user.RoleAdmin)
	if err != nil {
		return fmt.Errorf("auth: seed admin: %w", err)
	}
	if err := users.Insert(ctx, admin); err != nil && !errors.Is(err, user.ErrExists) {
		return fmt.Errorf("auth: seed admin: %w", err)
	}
	return nil
}
