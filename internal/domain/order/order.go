package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrConflict        = errors.New("order: already exists")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
	ErrMissingContact  = errors.New("order: phone, address, delivery and payment are required")
	ErrInvalidDelivery = errors.New("order: delivery must be pickup or deliver")
)

// GuestUserID tags orders placed without authentication.
const GuestUserID = "guest"

// Delivery methods accepted on an order.
const (
	DeliveryPickup  = "pickup"
	DeliveryDeliver = "deliver"
)

// Order records one purchase against a batch. TotalPrice is computed once at
// creation and never recomputed; BatchID is not re-validated at read time, so a
// deleted batch leaves a dangling reference by design of the storefront.
type Order struct {
	ID          string
	UserID      string
	BatchID     int64
	Quantity    int
	Phone       string
	Address     string
	Delivery    string
	Payment     string
	Status      Status
	OrderDate   time.Time
	TotalPrice  int64
	LastUpdated time.Time
}

// Contact carries the customer-supplied order metadata.
type Contact struct {
	Phone    string
	Address  string
	Delivery string
	Payment  string
}

// New builds a pending order. unitPrice is in currency minor units per seedling.
func New(id, userID string, batchID int64, quantity int, contact Contact, unitPrice int64, now time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if contact.Phone == "" || contact.Address == "" || contact.Delivery == "" || contact.Payment == "" {
		return nil, ErrMissingContact
	}
	if contact.Delivery != DeliveryPickup && contact.Delivery != DeliveryDeliver {
		return nil, ErrInvalidDelivery
	}
	if userID == "" {
		userID = GuestUserID
	}
	return &Order{
		ID:          id,
		UserID:      userID,
		BatchID:     batchID,
		Quantity:    quantity,
		Phone:       contact.Phone,
		Address:     contact.Address,
		Delivery:    contact.Delivery,
		Payment:     contact.Payment,
		Status:      StatusPending,
		OrderDate:   now,
		TotalPrice:  int64(quantity) * unitPrice,
		LastUpdated: now,
	}, nil
}

// IsGuest reports whether the order was placed without authentication.
func (o *Order) IsGuest() bool { return o.UserID == GuestUserID }

// Clone returns a copy safe for callers to mutate.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
