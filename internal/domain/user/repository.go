package user

import "context"

type Repository interface {
	Get(ctx context.Context, username string) (*User, error)
	Insert(ctx context.Context, u *User) error
}
