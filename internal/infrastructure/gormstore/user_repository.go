package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/leafy-market/leafy-backend/internal/domain/user"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).First(&row, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gormstore: get user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	if u == nil || u.Username == "" {
		return domain.ErrMissingUsername
	}
	row := toUserRow(u)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return fmt.Errorf("gormstore: insert user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrExists
	}
	return nil
}
