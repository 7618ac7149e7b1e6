package order

import "context"

type IDGenerator interface {
	NewID() string
}

// Notifier delivers an outbound message about an order. Best effort: failures
// are logged by the caller and never affect the order.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
