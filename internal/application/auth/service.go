package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/leafy-market/leafy-backend/internal/domain/user"
	"github.com/leafy-market/leafy-backend/internal/observability"
	"github.com/leafy-market/leafy-backend/internal/observability/logctx"
)

// TokenIssuer mints and checks bearer tokens. The signing mechanism lives in
// infrastructure; the service only cares about the identity round-trip.
type TokenIssuer interface {
	Issue(username string, role user.Role) (string, error)
	Verify(token string) (username string, role user.Role, err error)
}

type Service struct {
	users  user.Repository
	tokens TokenIssuer
	log    observability.Logger
}

func NewService(users user.Repository, tokens TokenIssuer, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		log:    logger.With(observability.F("component", "auth_service")),
	}
}

// Session is the result of a successful login or registration.
type Session struct {
	Username string
	Role     user.Role
	Token    string
}

// Login checks credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	logger := logctx.FromOr(ctx, s.log)

	u, err := s.users.Get(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		logger.Info("login_failed", observability.F("username", username), observability.F("reason", "unknown_user"))
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}

	if err := u.CheckPassword(password); err != nil {
		logger.Info("login_failed", observability.F("username", username), observability.F("reason", "bad_password"))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Username, u.Role)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}

	logger.Info("login_ok", observability.F("username", u.Username), observability.F("role", string(u.Role)))
	return &Session{Username: u.Username, Role: u.Role, Token: token}, nil
}

// Register creates a customer account and logs it in. Role defaults to
// customer; the admin account is seeded at startup, not registered.
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	logger := logctx.FromOr(ctx, s.log)

	u, err := user.New(username, password, user.RoleCustomer)
	if err != nil {
		return nil, err
	}

	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, user.ErrExists) {
			return nil, user.ErrExists
		}
		return nil, fmt.Errorf("auth: insert user: %w", err)
	}

	token, err := s.tokens.Issue(u.Username, u.Role)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}

	logger.Info("user_registered", observability.F("username", u.Username))
	return &Session{Username: u.Username, Role: u.Role, Token: token}, nil
}

// ActorFromToken resolves a bearer token to an actor. An empty or invalid token
// yields the guest actor together with ErrUnauthenticated; callers on mixed
// endpoints may ignore the error and proceed as guest.
func (s *Service) ActorFromToken(token string) (Actor, error) {
	if token == "" {
		return Guest(), ErrUnauthenticated
	}
	username, role, err := s.tokens.Verify(token)
	if err != nil {
		return Guest(), ErrUnauthenticated
	}
	return Actor{Username: username, Role: role}, nil
}
