package batch

import "context"

// Repository is the persistence gateway for batches. DecrementIfSufficient must
// be atomic at the storage layer: callers never check stock with a separate read
// before writing.
type Repository interface {
	Get(ctx context.Context, id int64) (*Batch, error)
	List(ctx context.Context) ([]*Batch, error)
	// Insert assigns the next id (monotonically above every id ever used) and stores the batch.
	Insert(ctx context.Context, b *Batch) error
	// ReplaceAll swaps the whole collection, as driven by the admin surface.
	ReplaceAll(ctx context.Context, batches []*Batch) error
	Delete(ctx context.Context, id int64) error
	// DecrementIfSufficient atomically consumes stock. It reports false, without
	// mutating anything, when fewer than amount units remain.
	DecrementIfSufficient(ctx context.Context, id int64, amount int) (bool, error)
	// Restock returns units to a batch. Used to compensate a decrement whose
	// order could not be persisted.
	Restock(ctx context.Context, id int64, amount int) error
}
