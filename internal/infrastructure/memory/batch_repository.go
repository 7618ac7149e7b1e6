package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/leafy-market/leafy-backend/internal/domain/batch"
)

// BatchRepository is the in-memory batch gateway. The mutex makes
// DecrementIfSufficient a true conditional atomic: the check and the write
// happen under one critical section.
type BatchRepository struct {
	mu      sync.RWMutex
	batches map[int64]*domain.Batch
	lastID  int64
}

func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[int64]*domain.Batch),
	}
}

func (r *BatchRepository) Get(ctx context.Context, id int64) (*domain.Batch, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.batches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *BatchRepository) List(ctx context.Context) ([]*domain.Batch, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Batch, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *BatchRepository) Insert(ctx context.Context, b *domain.Batch) error {
	_ = ctx
	if b == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Ids grow monotonically above every id ever used, so a deleted id is
	// never handed out again.
	next := r.lastID + 1
	for id := range r.batches {
		if id >= next {
			next = id + 1
		}
	}
	b.ID = next
	r.lastID = next
	r.batches[next] = b.Clone()
	return nil
}

func (r *BatchRepository) ReplaceAll(ctx context.Context, batches []*domain.Batch) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.batches = make(map[int64]*domain.Batch, len(batches))
	for _, b := range batches {
		if b == nil {
			continue
		}
		r.batches[b.ID] = b.Clone()
		if b.ID > r.lastID {
			r.lastID = b.ID
		}
	}
	return nil
}

func (r *BatchRepository) Delete(ctx context.Context, id int64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.batches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.batches, id)
	return nil
}

func (r *BatchRepository) DecrementIfSufficient(ctx context.Context, id int64, amount int) (bool, error) {
	_ = ctx
	if amount <= 0 {
		return false, domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if b.Stock < amount {
		return false, nil
	}
	b.Stock -= amount
	return true, nil
}

func (r *BatchRepository) Restock(ctx context.Context, id int64, amount int) error {
	_ = ctx
	if amount <= 0 {
		return domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Stock += amount
	if b.Stock > b.Quantity {
		b.Stock = b.Quantity
	}
	return nil
}
