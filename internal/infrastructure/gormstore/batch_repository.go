package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/leafy-market/leafy-backend/internal/domain/batch"
)

type BatchRepository struct {
	db *gorm.DB
}

func (r *BatchRepository) Get(ctx context.Context, id int64) (*domain.Batch, error) {
	var row batchRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gormstore: get batch: %w", err)
	}
	return row.toDomain(), nil
}

func (r *BatchRepository) List(ctx context.Context) ([]*domain.Batch, error) {
	var rows []batchRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list batches: %w", err)
	}
	out := make([]*domain.Batch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *BatchRepository) Insert(ctx context.Context, b *domain.Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&batchRow{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return fmt.Errorf("gormstore: next batch id: %w", err)
		}
		b.ID = maxID + 1
		// gorm writes defaulted columns back and needs an addressable row.
		row := toBatchRow(b)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("gormstore: insert batch: %w", err)
		}
		return nil
	})
}

func (r *BatchRepository) ReplaceAll(ctx context.Context, batches []*domain.Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&batchRow{}).Error; err != nil {
			return fmt.Errorf("gormstore: clear batches: %w", err)
		}
		for _, b := range batches {
			row := toBatchRow(b)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("gormstore: insert batch %d: %w", b.ID, err)
			}
		}
		return nil
	})
}

func (r *BatchRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&batchRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("gormstore: delete batch: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementIfSufficient issues a single conditional update so concurrent
// placements cannot drive stock negative: the WHERE clause carries the stock
// check and the database serializes the row write.
func (r *BatchRepository) DecrementIfSufficient(ctx context.Context, id int64, amount int) (bool, error) {
	if amount <= 0 {
		return false, domain.ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).
		Model(&batchRow{}).
		Where("id = ? AND stock >= ?", id, amount).
		UpdateColumn("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return false, fmt.Errorf("gormstore: decrement stock: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *BatchRepository) Restock(ctx context.Context, id int64, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).
		Model(&batchRow{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("CASE WHEN stock + ? > quantity THEN quantity ELSE stock + ? END", amount, amount))
	if res.Error != nil {
		return fmt.Errorf("gormstore: restock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
