package order

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	domain "github.com/leafy-market/leafy-backend/internal/domain/order"
	domoutbox "github.com/leafy-market/leafy-backend/internal/domain/outbox"
	domuser "github.com/leafy-market/leafy-backend/internal/domain/user"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/memory"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "ord-" + strconv.Itoa(s.n)
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
	err    error
}

func (p *capturingPublisher) Publish(ctx context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// failingOrderRepo rejects inserts to exercise the compensation path.
type failingOrderRepo struct {
	domain.Repository
}

func (f *failingOrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	return errors.New("disk full")
}

func newTestService(t *testing.T, stock int) (*Service, *memory.BatchRepository, *memory.OrderRepository, *capturingPublisher) {
	t.Helper()
	batches := memory.NewBatchRepository()
	require.NoError(t, batches.Insert(context.Background(), &dombatch.Batch{
		Name:      dombatch.DefaultName,
		PlantDate: time.Now().UTC().AddDate(0, 0, -20),
		Quantity:  stock,
		Stock:     stock,
	}))

	orders := memory.NewOrderRepository()
	pub := &capturingPublisher{}
	svc := NewService(orders, batches, &seqIDs{}, pub, 5000, nil)
	return svc, batches, orders, pub
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		BatchID:  1,
		Quantity: 3,
		Phone:    "08123456789",
		Address:  "Jl. Mawar 1",
		Delivery: domain.DeliveryPickup,
		Payment:  "cash",
	}
}

func admin() auth.Actor {
	return auth.Actor{Username: "root", Role: domuser.RoleAdmin}
}

func customer(name string) auth.Actor {
	return auth.Actor{Username: name, Role: domuser.RoleCustomer}
}

func TestPlaceOrder(t *testing.T) {
	svc, batches, orders, pub := newTestService(t, 10)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, customer("alice"), validInput())
	require.NoError(t, err)

	assert.Equal(t, "alice", placed.UserID)
	assert.Equal(t, domain.StatusPending, placed.Status)
	assert.Equal(t, int64(15000), placed.TotalPrice)

	b, err := batches.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, b.Stock)

	stored, err := orders.Get(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, stored.ID)

	assert.Equal(t, 1, pub.count())
}

func TestPlaceOrderGuest(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)

	placed, err := svc.PlaceOrder(context.Background(), auth.Guest(), validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.GuestUserID, placed.UserID)
	assert.True(t, placed.IsGuest())
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	svc, batches, _, pub := newTestService(t, 2)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, auth.Guest(), validInput())
	assert.ErrorIs(t, err, dombatch.ErrInsufficientStock)

	b, err := batches.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Stock, "refused order leaves stock untouched")
	assert.Zero(t, pub.count(), "refused order emits no event")
}

func TestPlaceOrderUnknownBatch(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)

	in := validInput()
	in.BatchID = 42
	_, err := svc.PlaceOrder(context.Background(), auth.Guest(), in)
	assert.ErrorIs(t, err, dombatch.ErrNotFound)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*PlaceOrderInput)
	}{
		{"zero quantity", func(in *PlaceOrderInput) { in.Quantity = 0 }},
		{"negative batch id", func(in *PlaceOrderInput) { in.BatchID = -1 }},
		{"missing phone", func(in *PlaceOrderInput) { in.Phone = "" }},
		{"missing address", func(in *PlaceOrderInput) { in.Address = "" }},
		{"unknown delivery", func(in *PlaceOrderInput) { in.Delivery = "drone" }},
		{"missing payment", func(in *PlaceOrderInput) { in.Payment = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.PlaceOrder(ctx, auth.Guest(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPlaceOrderCompensatesOnInsertFailure(t *testing.T) {
	svc, batches, _, pub := newTestService(t, 10)
	svc.orders = &failingOrderRepo{}
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, auth.Guest(), validInput())
	assert.ErrorIs(t, err, ErrRepository)

	b, err := batches.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, b.Stock, "consumed stock is returned when the insert fails")
	assert.Zero(t, pub.count())
}

func TestPlaceOrderToleratesPublishFailure(t *testing.T) {
	svc, _, orders, pub := newTestService(t, 10)
	pub.err = errors.New("bus down")
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, auth.Guest(), validInput())
	require.NoError(t, err, "notification trouble never fails the order")

	_, err = orders.Get(ctx, placed.ID)
	require.NoError(t, err)
}

func TestPlaceOrderConcurrentOversell(t *testing.T) {
	svc, batches, orders, _ := newTestService(t, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := validInput()
			in.Quantity = 1
			_, _ = svc.PlaceOrder(ctx, auth.Guest(), in)
		}()
	}
	wg.Wait()

	b, err := batches.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Stock)

	placed, err := orders.List(ctx, domain.ListFilter{All: true})
	require.NoError(t, err)
	assert.Len(t, placed, 10, "exactly stock many orders are accepted")
}

func TestUpdateStatus(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, auth.Guest(), validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, admin(), placed.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	updated, err = svc.UpdateStatus(ctx, admin(), placed.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	_, err = svc.UpdateStatus(ctx, admin(), placed.ID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateStatusPolicy(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, auth.Guest(), validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, auth.Guest(), placed.ID, "processing")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = svc.UpdateStatus(ctx, customer("mallory"), placed.ID, "processing")
	assert.ErrorIs(t, err, auth.ErrPermissionDenied)
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, admin(), "", "processing")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, admin(), "missing", "shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, admin(), "missing", "processing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelDoesNotRestock(t *testing.T) {
	svc, batches, _, _ := newTestService(t, 10)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, auth.Guest(), validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, admin(), placed.ID, "cancelled")
	require.NoError(t, err)

	b, err := batches.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, b.Stock, "cancellation keeps the stock consumed")
}

func TestListForActor(t *testing.T) {
	svc, _, _, _ := newTestService(t, 10)
	ctx := context.Background()

	aliceOrder, err := svc.PlaceOrder(ctx, customer("alice"), validInput())
	require.NoError(t, err)

	guestIn := validInput()
	guestIn.Quantity = 1
	guestIn.Phone = "08999"
	guestOrder, err := svc.PlaceOrder(ctx, auth.Guest(), guestIn)
	require.NoError(t, err)

	all, err := svc.ListForActor(ctx, admin(), Lookup{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListForActor(ctx, customer("alice"), Lookup{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, aliceOrder.ID, mine[0].ID)

	// Customer lookup params are ignored; the identity scope wins.
	mine, err = svc.ListForActor(ctx, customer("alice"), Lookup{Phone: "08999"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, aliceOrder.ID, mine[0].ID)

	byPhone, err := svc.ListForActor(ctx, auth.Guest(), Lookup{Phone: "08999"})
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, guestOrder.ID, byPhone[0].ID)

	byID, err := svc.ListForActor(ctx, auth.Guest(), Lookup{OrderID: guestOrder.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)

	none, err := svc.ListForActor(ctx, auth.Guest(), Lookup{})
	require.NoError(t, err)
	assert.Empty(t, none, "a guest without lookup parameters sees nothing")
}
