package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	appcatalog "github.com/leafy-market/leafy-backend/internal/application/catalog"
	apporder "github.com/leafy-market/leafy-backend/internal/application/order"
	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/id"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/memory"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/token"
)

type testEnv struct {
	router  *gin.Engine
	batches *memory.BatchRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	batches := memory.NewBatchRepository()
	orders := memory.NewOrderRepository()
	users := memory.NewUserRepository()

	authSvc := auth.NewService(users, token.NewManager("test-secret", time.Hour), nil)
	require.NoError(t, auth.SeedAdmin(context.Background(), users, "admin", "hunter2"))

	catalogSvc := appcatalog.NewService(batches, 14, nil)
	orderSvc := apporder.NewService(orders, batches, id.NewUUIDGenerator(), nil, 5000, nil)

	h := NewHandler(catalogSvc, orderSvc, authSvc, nil, nil)
	return &testEnv{router: h.Router(), batches: batches}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) seedReadyBatch(t *testing.T, stock int) int64 {
	t.Helper()
	b := &dombatch.Batch{
		Name:         dombatch.DefaultName,
		PlantDate:    time.Now().UTC().AddDate(0, 0, -20),
		Quantity:     stock,
		Stock:        stock,
		ReadyForSale: true,
	}
	require.NoError(t, e.batches.Insert(context.Background(), b))
	return b.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestStatusWithoutProber(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"memory"`)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	tok := env.login(t, "admin", "hunter2")

	w := env.do(t, http.MethodGet, "/user", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = env.do(t, http.MethodPost, "/login", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout is an acknowledgement, valid token or not.
	w = env.do(t, http.MethodPost, "/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"customer"`)

	w = env.do(t, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCatalogHidesUnsellable(t *testing.T) {
	env := newTestEnv(t)
	env.seedReadyBatch(t, 10)
	// Zero stock never reaches the catalog.
	require.NoError(t, env.batches.Insert(context.Background(), &dombatch.Batch{
		Name: dombatch.DefaultName, PlantDate: time.Now().UTC(), Quantity: 5, Stock: 0,
	}))

	w := env.do(t, http.MethodGet, "/batches", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []catalogEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Orderable)
}

func TestCatalogSortAppliesWhenRequested(t *testing.T) {
	env := newTestEnv(t)
	// Insertion order is oldest planting first, so store order and the
	// newest-first sort disagree.
	require.NoError(t, env.batches.Insert(context.Background(), &dombatch.Batch{
		Name: dombatch.DefaultName, PlantDate: time.Now().UTC().AddDate(0, 0, -30),
		Quantity: 10, Stock: 10, ReadyForSale: true,
	}))
	require.NoError(t, env.batches.Insert(context.Background(), &dombatch.Batch{
		Name: dombatch.DefaultName, PlantDate: time.Now().UTC().AddDate(0, 0, -1),
		Quantity: 10, Stock: 10,
	}))

	fetch := func(query string) []catalogEntryResponse {
		w := env.do(t, http.MethodGet, "/batches"+query, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var entries []catalogEntryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 2)
		return entries
	}

	// An explicit sort always goes through the sorting path.
	entries := fetch("?sort=newest")
	assert.Equal(t, int64(2), entries[0].ID)
	assert.Equal(t, int64(1), entries[1].ID)

	entries = fetch("?sort=oldest")
	assert.Equal(t, int64(1), entries[0].ID)

	// Without query knobs the catalog keeps store order.
	entries = fetch("")
	assert.Equal(t, int64(1), entries[0].ID)
}

func TestCreateBatch(t *testing.T) {
	env := newTestEnv(t)
	payload := gin.H{"plantDate": "2026-03-01", "quantity": 25}

	w := env.do(t, http.MethodPost, "/batch", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := env.login(t, "admin", "hunter2")
	w = env.do(t, http.MethodPost, "/batch", tok, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool          `json:"success"`
		Batch   batchResponse `json:"batch"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Batch.ID)
	assert.Equal(t, dombatch.DefaultName, resp.Batch.Name)
	assert.Equal(t, 25, resp.Batch.Stock)

	w = env.do(t, http.MethodPost, "/batch", tok, gin.H{"plantDate": "not-a-date", "quantity": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceBatchesRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	payload := []gin.H{{"id": 1, "plantDate": "2026-03-01", "quantity": 10, "stock": 10}}

	w := env.do(t, http.MethodPost, "/batches", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := env.login(t, "admin", "hunter2")
	w = env.do(t, http.MethodPost, "/batches", tok, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":1`)

	// Admins read the raw collection back, zero stock included.
	w = env.do(t, http.MethodGet, "/batches", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var raw []batchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "2026-03-01", raw[0].PlantDate)
}

func TestDeleteBatch(t *testing.T) {
	env := newTestEnv(t)
	batchID := env.seedReadyBatch(t, 10)
	tok := env.login(t, "admin", "hunter2")

	w := env.do(t, http.MethodDelete, "/batches/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodDelete, "/batches/1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := env.batches.Get(context.Background(), batchID)
	assert.ErrorIs(t, err, dombatch.ErrNotFound)

	w = env.do(t, http.MethodDelete, "/batches/notanumber", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderGuest(t *testing.T) {
	env := newTestEnv(t)
	batchID := env.seedReadyBatch(t, 10)

	w := env.do(t, http.MethodPost, "/order", "", gin.H{
		"batchId":  batchID,
		"quantity": 2,
		"phone":    "08123",
		"address":  "Jl. Mawar 1",
		"delivery": "pickup",
		"payment":  "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success  bool          `json:"success"`
		OrderID  string        `json:"orderId"`
		UserType string        `json:"userType"`
		Order    orderResponse `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "guest", resp.UserType)
	assert.Equal(t, int64(10000), resp.Order.TotalPrice)
}

func TestPlaceOrderRejectsBadPayload(t *testing.T) {
	env := newTestEnv(t)
	batchID := env.seedReadyBatch(t, 10)

	w := env.do(t, http.MethodPost, "/order", "", gin.H{
		"batchId":  batchID,
		"quantity": 1,
		"phone":    "08123",
		"address":  "Jl. Mawar 1",
		"delivery": "teleport",
		"payment":  "cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	batchID := env.seedReadyBatch(t, 1)

	w := env.do(t, http.MethodPost, "/order", "", gin.H{
		"batchId":  batchID,
		"quantity": 5,
		"phone":    "08123",
		"address":  "Jl. Mawar 1",
		"delivery": "pickup",
		"payment":  "cash",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderListingScopes(t *testing.T) {
	env := newTestEnv(t)
	batchID := env.seedReadyBatch(t, 10)

	place := func(bearer, phone string) string {
		w := env.do(t, http.MethodPost, "/order", bearer, gin.H{
			"batchId":  batchID,
			"quantity": 1,
			"phone":    phone,
			"address":  "Jl. Mawar 1",
			"delivery": "deliver",
			"payment":  "transfer",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			OrderID string `json:"orderId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.OrderID
	}

	env.do(t, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw"})
	aliceTok := env.login(t, "alice", "pw")
	aliceOrder := place(aliceTok, "08111")
	guestOrder := place("", "08222")

	list := func(bearer, query string) []orderResponse {
		w := env.do(t, http.MethodGet, "/orders"+query, bearer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []orderResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	adminTok := env.login(t, "admin", "hunter2")
	assert.Len(t, list(adminTok, ""), 2)

	mine := list(aliceTok, "")
	require.Len(t, mine, 1)
	assert.Equal(t, aliceOrder, mine[0].ID)

	assert.Empty(t, list("", ""), "guests cannot enumerate orders")

	byPhone := list("", "?phone=08222")
	require.Len(t, byPhone, 1)
	assert.Equal(t, guestOrder, byPhone[0].ID)

	byID := list("", "?orderId="+guestOrder)
	require.Len(t, byID, 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	batchID := env.seedReadyBatch(t, 10)

	w := env.do(t, http.MethodPost, "/order", "", gin.H{
		"batchId":  batchID,
		"quantity": 1,
		"phone":    "08123",
		"address":  "Jl. Mawar 1",
		"delivery": "pickup",
		"payment":  "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var placed struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))

	w = env.do(t, http.MethodPut, "/orders/"+placed.OrderID, "", gin.H{"status": "processing"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := env.login(t, "admin", "hunter2")
	w = env.do(t, http.MethodPut, "/orders/"+placed.OrderID, tok, gin.H{"status": "processing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"processing"`)

	w = env.do(t, http.MethodPut, "/orders/"+placed.OrderID, tok, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, "/orders/"+placed.OrderID, tok, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/orders/missing", tok, gin.H{"status": "processing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/batches", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
