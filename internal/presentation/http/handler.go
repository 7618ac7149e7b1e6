package httppresentation

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	appcatalog "github.com/leafy-market/leafy-backend/internal/application/catalog"
	apporder "github.com/leafy-market/leafy-backend/internal/application/order"
	"github.com/leafy-market/leafy-backend/internal/observability"
)

// StatusProber reports persistence connectivity for the status endpoint. The
// memory backend has nothing to probe and passes nil.
type StatusProber interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	catalog *appcatalog.Service
	orders  *apporder.Service
	auth    *auth.Service
	prober  StatusProber
	log     observability.Logger
	tel     observability.Telemetry
}

func NewHandler(
	catalogSvc *appcatalog.Service,
	orderSvc *apporder.Service,
	authSvc *auth.Service,
	prober StatusProber,
	tel observability.Telemetry,
) *Handler {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Handler{
		catalog: catalogSvc,
		orders:  orderSvc,
		auth:    authSvc,
		prober:  prober,
		log:     tel.Logger().With(observability.F("component", "http_server")),
		tel:     tel,
	}
}

// Router assembles the gin engine with the full middleware chain and routes.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(Observability(h.log, h.tel))
	r.Use(ResolveActor(h.auth))

	r.GET("/health", h.handleHealth)
	r.GET("/status", h.handleStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/login", h.handleLogin)
	r.POST("/register", h.handleRegister)
	r.POST("/logout", h.handleLogout)
	r.GET("/user", RequireAuth(), h.handleUser)

	r.GET("/batches", h.handleListBatches)
	r.POST("/batch", RequireAdmin(), h.handleCreateBatch)
	r.POST("/batches", RequireAdmin(), h.handleReplaceBatches)
	r.DELETE("/batches/:id", RequireAdmin(), h.handleDeleteBatch)

	r.GET("/orders", h.handleListOrders)
	r.POST("/order", h.handlePlaceOrder)
	r.PUT("/orders/:orderId", RequireAdmin(), h.handleUpdateOrderStatus)

	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleStatus(c *gin.Context) {
	status := "healthy"
	database := "connected"
	if h.prober != nil {
		if err := h.prober.Ping(c.Request.Context()); err != nil {
			status = "degraded"
			database = "disconnected"
		}
	} else {
		database = "memory"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
