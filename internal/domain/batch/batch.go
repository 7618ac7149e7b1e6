package batch

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound          = errors.New("batch: not found")
	ErrInvalidQuantity   = errors.New("batch: quantity must be greater than zero")
	ErrInvalidStock      = errors.New("batch: stock must be between zero and quantity")
	ErrInvalidID         = errors.New("batch: id must be a positive integer")
	ErrDuplicateID       = errors.New("batch: duplicate id")
	ErrInsufficientStock = errors.New("batch: insufficient stock")
)

// DefaultName is the species label applied when a batch is created without one.
const DefaultName = "Bibit Cabai"

// Batch is a cohort of seedlings planted together, tracked as one inventory unit.
// Quantity is the original count snapshot at creation and never changes; Stock is
// the sellable remainder. ReadyForSale is toggled only by explicit admin action
// and is independent of both stock and age.
type Batch struct {
	ID           int64
	Name         string
	PlantDate    time.Time
	Quantity     int
	Stock        int
	ReadyForSale bool
	CreatedAt    time.Time
}

// Validate checks the stock invariant for batches supplied by the admin surface,
// which may carry a stock below the original quantity.
func (b *Batch) Validate() error {
	if b.ID <= 0 {
		return ErrInvalidID
	}
	if b.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < 0 || b.Stock > b.Quantity {
		return ErrInvalidStock
	}
	return nil
}

// AgeDays returns the whole days elapsed since planting. Day 0 is the planting
// day itself. A future plant date yields a negative age; callers decide whether
// that matters.
func (b *Batch) AgeDays(now time.Time) int {
	return int(math.Floor(now.Sub(b.PlantDate).Hours() / 24))
}

// Clone returns a copy safe for callers to mutate.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
