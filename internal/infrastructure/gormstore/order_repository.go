package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/leafy-market/leafy-backend/internal/domain/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("gormstore: order id is required")
	}
	row := toOrderRow(o)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return fmt.Errorf("gormstore: insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gormstore: get order: %w", err)
	}
	return row.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&orderRow{}).Order("order_date DESC")
	switch {
	case f.All:
	case f.UserID != "":
		q = q.Where("user_id = ?", f.UserID)
	case f.Phone != "":
		q = q.Where("phone = ?", f.Phone)
	case f.OrderID != "":
		q = q.Where("id = ?", f.OrderID)
	default:
		return []*domain.Order{}, nil
	}

	var rows []orderRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list orders: %w", err)
	}
	out := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, at time.Time) (*domain.Order, error) {
	res := r.db.WithContext(ctx).
		Model(&orderRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "last_updated": at})
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, id)
}
