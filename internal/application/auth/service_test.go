package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafy-market/leafy-backend/internal/domain/user"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/memory"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/token"
)

func newTestService(t *testing.T) (*Service, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	return NewService(users, token.NewManager("test-secret", 0), nil), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, user.RoleCustomer, session.Role, "registration always yields a customer")
	assert.NotEmpty(t, session.Token)

	again, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, again.Role)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, user.ErrExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, user.ErrMissingUsername)

	_, err = svc.Register(ctx, "bob", "")
	assert.ErrorIs(t, err, user.ErrMissingPassword)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	// Unknown users and wrong passwords are indistinguishable to the caller.
	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestActorFromToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	actor, err := svc.ActorFromToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", actor.Username)
	assert.False(t, actor.IsGuest())

	actor, err = svc.ActorFromToken("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.True(t, actor.IsGuest())

	actor, err = svc.ActorFromToken("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.True(t, actor.IsGuest())
}

func TestSeedAdmin(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	require.NoError(t, SeedAdmin(ctx, users, "admin", "hunter2"))

	session, err := svc.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, session.Role)

	// Seeding twice is a no-op, the existing account wins.
	require.NoError(t, SeedAdmin(ctx, users, "admin", "changed"))
	_, err = svc.Login(ctx, "admin", "hunter2")
	assert.NoError(t, err)

	// Missing credentials skip seeding entirely.
	require.NoError(t, SeedAdmin(ctx, users, "", ""))
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, Guest().RequireAdmin(), ErrUnauthenticated)

	alice := Actor{Username: "alice", Role: user.RoleCustomer}
	assert.ErrorIs(t, alice.RequireAdmin(), ErrPermissionDenied)

	root := Actor{Username: "root", Role: user.RoleAdmin}
	assert.NoError(t, root.RequireAdmin())
}

func TestPasswordsAreHashed(t *testing.T) {
	svc, users := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	stored, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.NotContains(t, stored.PasswordHash, "s3cret")
	assert.NoError(t, stored.CheckPassword("s3cret"))
	assert.ErrorIs(t, stored.CheckPassword("S3cret"), user.ErrInvalidPassword)
}
