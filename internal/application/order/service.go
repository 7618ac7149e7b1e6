package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	domain "github.com/leafy-market/leafy-backend/internal/domain/order"
	domoutbox "github.com/leafy-market/leafy-backend/internal/domain/outbox"
	"github.com/leafy-market/leafy-backend/internal/observability"
	"github.com/leafy-market/leafy-backend/internal/observability/logctx"
)

const (
	useCasePlaceOrder   = "order.place"
	useCaseUpdateStatus = "order.update_status"
	spanPrefix          = "UC."
	publishTimeout      = 300 * time.Millisecond
)

var (
	ErrValidation = errors.New("order: invalid input")
	ErrRepository = errors.New("order: repository failure")
)

// Service owns the order lifecycle: placement coupled to an atomic stock
// decrement, admin status transitions, and policy-scoped listing.
type Service struct {
	orders    domain.Repository
	batches   dombatch.Repository
	ids       IDGenerator
	publisher domoutbox.Publisher
	unitPrice int64
	tel       observability.Telemetry

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}

	now func() time.Time
}

func NewService(
	orders domain.Repository,
	batches dombatch.Repository,
	ids IDGenerator,
	publisher domoutbox.Publisher,
	unitPrice int64,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Service{
		orders:       orders,
		batches:      batches,
		ids:          ids,
		publisher:    publisher,
		unitPrice:    unitPrice,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", "order_service")),
		reqCounter:   tel.Counter(observability.MUsecaseRequests),
		durHistogram: tel.Histogram(observability.MUsecaseDuration),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrderInput carries everything the storefront collects for one order.
type PlaceOrderInput struct {
	BatchID  int64
	Quantity int
	Phone    string
	Address  string
	Delivery string
	Payment  string
}

// PlaceOrder consumes stock and records the order as one unit: the decrement is
// atomic at the gateway, and if the order insert fails the stock is returned
// before the error propagates.
func (s *Service) PlaceOrder(ctx context.Context, actor auth.Actor, in PlaceOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCasePlaceOrder))

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"PlaceOrder",
		attribute.Int64("order.batch_id", in.BatchID),
		attribute.Int("order.quantity", in.Quantity),
	)
	start := s.now()
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
		s.reqCounter.Add(1,
			observability.L("use_case", useCasePlaceOrder),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCasePlaceOrder),
		)
	}()

	if in.BatchID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, dombatch.ErrInvalidID)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrInvalidQuantity)
	}

	contact := domain.Contact{
		Phone:    in.Phone,
		Address:  in.Address,
		Delivery: in.Delivery,
		Payment:  in.Payment,
	}

	entity, derr := domain.New(s.ids.NewID(), actor.Username, in.BatchID, in.Quantity, contact, s.unitPrice, s.now())
	if derr != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, derr)
	}

	if _, err := s.batches.Get(ctx, in.BatchID); err != nil {
		return nil, err
	}

	ok, err := s.batches.DecrementIfSufficient(ctx, in.BatchID, in.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: decrement: %w", ErrRepository, err)
	}
	if !ok {
		return nil, dombatch.ErrInsufficientStock
	}

	if err := s.orders.Insert(ctx, entity); err != nil {
		// Stock was already consumed; give it back so the failed placement is
		// not observable in the inventory.
		if rerr := s.batches.Restock(ctx, in.BatchID, in.Quantity); rerr != nil {
			logger.Error("restock_compensation_failed",
				observability.F("batch_id", in.BatchID),
				observability.F("quantity", in.Quantity),
				observability.F("error", rerr.Error()),
			)
		}
		return nil, fmt.Errorf("%w: insert order: %w", ErrRepository, err)
	}

	s.publish(ctx, logger, entity)

	logger.Info("order_placed",
		observability.F("order_id", entity.ID),
		observability.F("user_id", entity.UserID),
		observability.F("batch_id", entity.BatchID),
		observability.F("quantity", entity.Quantity),
		observability.F("total_price", entity.TotalPrice),
	)
	span.SetAttributes(attribute.String("order.id", entity.ID))
	return entity, nil
}

// publish hands the placed order to the event bus for the notification
// side-channel. Bounded and best effort.
func (s *Service) publish(ctx context.Context, logger observability.Logger, o *domain.Order) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, domain.NewOrderPlacedEvent(o)); err != nil {
		logger.Warn("order_event_publish_failed",
			observability.F("order_id", o.ID),
			observability.F("error", err.Error()),
		)
	}
}

// UpdateStatus moves an order along the lifecycle graph. Admin only; the target
// status must be in the fixed set and reachable from the current one.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID, rawStatus string) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseUpdateStatus))

	start := s.now()
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		s.reqCounter.Add(1,
			observability.L("use_case", useCaseUpdateStatus),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseUpdateStatus),
		)
	}()

	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrValidation)
	}

	next, perr := domain.ParseStatus(rawStatus)
	if perr != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, perr)
	}

	current, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := current.TransitionTo(next, at); err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, next, at)
	if err != nil {
		return nil, fmt.Errorf("%w: update status: %w", ErrRepository, err)
	}

	logger.Info("order_status_updated",
		observability.F("order_id", orderID),
		observability.F("status", string(next)),
		observability.F("actor", actor.Username),
	)
	return updated, nil
}

// Lookup narrows a guest's order search: exact phone or exact order id.
type Lookup struct {
	Phone   string
	OrderID string
}

// ListForActor applies the access policy to order listing: admins see all,
// authenticated customers see their own, guests get exact-match lookup only.
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, lookup Lookup) ([]*domain.Order, error) {
	var filter domain.ListFilter
	switch {
	case actor.IsAdmin():
		filter.All = true
	case !actor.IsGuest():
		filter.UserID = actor.Username
	case lookup.Phone != "":
		filter.Phone = lookup.Phone
	case lookup.OrderID != "":
		filter.OrderID = lookup.OrderID
	default:
		// No enumeration path for guests.
		return []*domain.Order{}, nil
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrRepository, err)
	}
	return orders, nil
}
