package order

import "time"

// OrderPlacedEvent is a domain event emitted after an order is durably stored.
// It feeds the best-effort notification side-channel; delivery failures never
// touch the order itself.
type OrderPlacedEvent struct {
	OrderID    string
	UserID     string
	Guest      bool
	BatchID    int64
	Quantity   int
	Phone      string
	Address    string
	Delivery   string
	Payment    string
	TotalPrice int64
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Guest:      o.IsGuest(),
		BatchID:    o.BatchID,
		Quantity:   o.Quantity,
		Phone:      o.Phone,
		Address:    o.Address,
		Delivery:   o.Delivery,
		Payment:    o.Payment,
		TotalPrice: o.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}
