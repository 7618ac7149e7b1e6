package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	"github.com/leafy-market/leafy-backend/internal/domain/batch"
	"github.com/leafy-market/leafy-backend/internal/observability"
	"github.com/leafy-market/leafy-backend/internal/observability/logctx"
)

var ErrValidation = errors.New("catalog: invalid input")

// Service owns batch inventory management and the customer-facing catalog view.
// Mutations go through the admin gate; reads are open to everyone.
type Service struct {
	repo           batch.Repository
	maturationDays int
	log            observability.Logger
	now            func() time.Time
}

func NewService(repo batch.Repository, maturationDays int, logger observability.Logger) *Service {
	if maturationDays <= 0 {
		maturationDays = batch.DefaultMaturationDays
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		repo:           repo,
		maturationDays: maturationDays,
		log:            logger.With(observability.F("component", "catalog_service")),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// List returns the raw batch collection, as the admin dashboard consumes it.
func (s *Service) List(ctx context.Context) ([]*batch.Batch, error) {
	return s.repo.List(ctx)
}

// Visible derives the customer catalog: batches with stock, growth progress for
// batches still maturing, orderability gated on readiness.
func (s *Service) Visible(ctx context.Context) ([]batch.DisplayEntry, error) {
	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return batch.VisibleCatalog(batches, s.now(), s.maturationDays), nil
}

// Search applies the storefront search/filter/sort pipeline.
func (s *Service) Search(ctx context.Context, term string, status batch.StatusFilter, key batch.SortKey) ([]batch.DisplayEntry, error) {
	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return batch.FilterAndSort(batches, term, status, key, s.now(), s.maturationDays), nil
}

// BatchInput is a batch as supplied by the admin surface.
type BatchInput struct {
	ID           int64
	Name         string
	PlantDate    time.Time
	Quantity     int
	Stock        int
	ReadyForSale bool
}

// ReplaceAll swaps the whole batch collection. Names default, the stock
// invariant is enforced, and ids must be unique and positive.
func (s *Service) ReplaceAll(ctx context.Context, actor auth.Actor, inputs []BatchInput) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	seen := make(map[int64]struct{}, len(inputs))
	batches := make([]*batch.Batch, 0, len(inputs))
	for _, in := range inputs {
		b := &batch.Batch{
			ID:           in.ID,
			Name:         in.Name,
			PlantDate:    in.PlantDate,
			Quantity:     in.Quantity,
			Stock:        in.Stock,
			ReadyForSale: in.ReadyForSale,
			CreatedAt:    s.now(),
		}
		if b.Name == "" {
			b.Name = batch.DefaultName
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: batch %d: %w", ErrValidation, in.ID, err)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: batch %d: %w", ErrValidation, b.ID, batch.ErrDuplicateID)
		}
		seen[b.ID] = struct{}{}
		batches = append(batches, b)
	}

	if err := s.repo.ReplaceAll(ctx, batches); err != nil {
		return fmt.Errorf("catalog: replace: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("batches_replaced",
		observability.F("actor", actor.Username),
		observability.F("count", len(batches)),
	)
	return nil
}

// Create adds a single batch, letting the repository assign the next id. Stock
// starts at the full quantity.
func (s *Service) Create(ctx context.Context, actor auth.Actor, name string, plantDate time.Time, quantity int) (*batch.Batch, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, batch.ErrInvalidQuantity)
	}
	if name == "" {
		name = batch.DefaultName
	}

	b := &batch.Batch{
		Name:      name,
		PlantDate: plantDate,
		Quantity:  quantity,
		Stock:     quantity,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("catalog: insert: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("batch_created",
		observability.F("actor", actor.Username),
		observability.F("batch_id", b.ID),
		observability.F("quantity", b.Quantity),
	)
	return b, nil
}

// Delete hard-deletes a batch. Existing orders keep their batch reference.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id int64) (*batch.Batch, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, batch.ErrInvalidID)
	}

	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("catalog: delete: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("batch_deleted",
		observability.F("actor", actor.Username),
		observability.F("batch_id", id),
	)
	return b, nil
}
