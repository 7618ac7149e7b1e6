package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/leafy-market/leafy-backend/internal/application/auth"
	appcatalog "github.com/leafy-market/leafy-backend/internal/application/catalog"
	apporder "github.com/leafy-market/leafy-backend/internal/application/order"
	"github.com/leafy-market/leafy-backend/internal/config"
	dombatch "github.com/leafy-market/leafy-backend/internal/domain/batch"
	domorder "github.com/leafy-market/leafy-backend/internal/domain/order"
	domuser "github.com/leafy-market/leafy-backend/internal/domain/user"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/gormstore"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/id"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/memory"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/notify/telegram"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/observability/oteltrace"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/observability/prometrics"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/observability/telemetry"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/observability/zaplogger"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/outbox"
	"github.com/leafy-market/leafy-backend/internal/infrastructure/token"
	"github.com/leafy-market/leafy-backend/internal/observability"
	httppresentation "github.com/leafy-market/leafy-backend/internal/presentation/http"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	baseLogger := zaplogger.New(
		observability.F("service", cfg.App.Name),
		observability.F("env", cfg.App.Env),
	)
	defer func() { _ = baseLogger.Sync() }()

	tel := buildTelemetry(baseLogger)
	logger := tel.Logger()

	// Persistence. Memory for dev, gorm (sqlite or postgres) otherwise.
	var (
		batchRepo dombatch.Repository
		orderRepo domorder.Repository
		userRepo  domuser.Repository
		prober    httppresentation.StatusProber
	)
	switch cfg.Store.Driver {
	case "memory", "":
		batchRepo = memory.NewBatchRepository()
		orderRepo = memory.NewOrderRepository()
		userRepo = memory.NewUserRepository()
	default:
		store, err := gormstore.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			logger.Error("store_open_failed", observability.F("driver", cfg.Store.Driver), observability.F("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
		batchRepo = store.Batches()
		orderRepo = store.Orders()
		userRepo = store.Users()
		prober = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := auth.SeedAdmin(ctx, userRepo, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Error("admin_seed_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	var notifier apporder.Notifier = telegram.Nop{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	}
	notifyWorker := apporder.NewNotifyWorker(bus, notifier, tel)
	notifyWorker.Start()

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(userRepo, tokens, logger)
	catalogService := appcatalog.NewService(batchRepo, cfg.Catalog.MaturationDays, logger)
	orderService := apporder.NewService(orderRepo, batchRepo, id.NewUUIDGenerator(), bus, cfg.Pricing.UnitPrice, tel)

	handler := httppresentation.NewHandler(catalogService, orderService, authService, prober, tel)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

func buildTelemetry(logger observability.Logger) observability.Telemetry {
	metrics := prometrics.New("leafy", "")

	counters := map[string]observability.Counter{
		observability.MUsecaseRequests: metrics.Counter(
			observability.MUsecaseRequests,
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: metrics.Counter(
			observability.MHTTPRequests,
			"Total number of HTTP requests served.",
			"method", "route", "status",
		),
		observability.MExternalRequests: metrics.Counter(
			observability.MExternalRequests,
			"Total number of calls to external peers.",
			"peer", "endpoint", "outcome",
		),
	}
	histograms := map[string]observability.Histogram{
		observability.MUsecaseDuration: metrics.Histogram(
			observability.MUsecaseDuration,
			"Duration of use case execution in seconds.",
			nil,
			"use_case",
		),
		observability.MHTTPRequestDuration: metrics.Histogram(
			observability.MHTTPRequestDuration,
			"Duration of HTTP request handling in seconds.",
			nil,
			"method", "route", "status",
		),
		observability.MExternalRequestDuration: metrics.Histogram(
			observability.MExternalRequestDuration,
			"Duration of external peer calls in seconds.",
			nil,
			"peer", "endpoint",
		),
	}

	return telemetry.New(oteltrace.New("leafy"), logger, counters, histograms)
}
