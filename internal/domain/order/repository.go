package order

import (
	"context"
	"time"
)

// ListFilter scopes an order listing. Exactly one of the modes applies: All for
// admins, UserID for authenticated customers, Phone or OrderID for guest lookup
// by exact match.
type ListFilter struct {
	All     bool
	UserID  string
	Phone   string
	OrderID string
}

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// List returns orders matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	// UpdateStatus persists a status already validated against the lifecycle
	// graph, stamping LastUpdated with at.
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (*Order, error)
}
