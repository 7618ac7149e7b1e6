package order

import (
	"context"
	"fmt"
	"time"

	domain "github.com/leafy-market/leafy-backend/internal/domain/order"
	domoutbox "github.com/leafy-market/leafy-backend/internal/domain/outbox"
	"github.com/leafy-market/leafy-backend/internal/observability"
)

const (
	notifyPeer     = "telegram"
	notifyEndpoint = "sendMessage"
	notifyTimeout  = 5 * time.Second
)

// NotifyWorker listens for placed orders and pushes a summary to the outbound
// notifier. Delivery is at-most-once and best effort: any failure is logged and
// dropped, never retried against the order.
type NotifyWorker struct {
	subscriber domoutbox.Subscriber
	notifier   Notifier

	log          observability.Logger
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewNotifyWorker(subscriber domoutbox.Subscriber, notifier Notifier, tel observability.Telemetry) *NotifyWorker {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &NotifyWorker{
		subscriber:   subscriber,
		notifier:     notifier,
		log:          tel.Logger().With(observability.F("component", "notify_worker")),
		extCounter:   tel.Counter(observability.MExternalRequests),
		extHistogram: tel.Histogram(observability.MExternalRequestDuration),
	}
}

func (w *NotifyWorker) Start() {
	if w.subscriber == nil || w.notifier == nil {
		return
	}
	w.subscriber.Subscribe(domain.OrderPlacedEvent{}.EventName(), w.handle)
}

func (w *NotifyWorker) handle(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domain.OrderPlacedEvent)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	start := time.Now()
	outcome := "success"
	err := w.notifier.Notify(ctx, formatOrderMessage(evt))
	if err != nil {
		outcome = "error"
		w.log.Warn("order_notification_failed",
			observability.F("order_id", evt.OrderID),
			observability.F("error", err.Error()),
		)
	}

	w.extCounter.Add(1,
		observability.L("peer", notifyPeer),
		observability.L("endpoint", notifyEndpoint),
		observability.L("outcome", outcome),
	)
	w.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", notifyPeer),
		observability.L("endpoint", notifyEndpoint),
	)

	// The order already succeeded; swallow the notification error.
	return nil
}

func formatOrderMessage(e domain.OrderPlacedEvent) string {
	userType := "User Terdaftar"
	if e.Guest {
		userType = "Guest Order"
	}
	return fmt.Sprintf(
		"🛒 Pesanan Baru #%s:\n👤 %s: %s\n🌱 Batch: %d\n📦 Jumlah: %d bibit\n📞 Telepon: %s\n🏠 Alamat: %s\n🚚 Pengiriman: %s\n💰 Pembayaran: %s\n💵 Total: Rp %d",
		e.OrderID, userType, e.UserID, e.BatchID, e.Quantity, e.Phone, e.Address, e.Delivery, e.Payment, e.TotalPrice,
	)
}
