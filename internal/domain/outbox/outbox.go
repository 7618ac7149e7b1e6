// Package outbox defines the event ports that decouple order placement from
// its side effects, such as the Telegram shop notification.
package outbox

import "context"

// Event is any domain event with a name identifier. Order placement publishes
// order.OrderPlacedEvent through these ports.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
