package memory

import (
	"context"
	"sync"

	domain "github.com/leafy-market/leafy-backend/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
	}
}

func (r *UserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	_ = ctx
	if u == nil || u.Username == "" {
		return domain.ErrMissingUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Username]; exists {
		return domain.ErrExists
	}
	r.users[u.Username] = u.Clone()
	return nil
}
