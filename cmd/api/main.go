package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glowcall/glowcall-backend/api/routes"
	"github.com/glowcall/glowcall-backend/internal/address"
	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/catalog"
	"github.com/glowcall/glowcall-backend/internal/customers"
	"github.com/glowcall/glowcall-backend/internal/finance"
	"github.com/glowcall/glowcall-backend/internal/intake"
	"github.com/glowcall/glowcall-backend/internal/invoices"
	"github.com/glowcall/glowcall-backend/internal/notifications"
	"github.com/glowcall/glowcall-backend/internal/vendors"
	"github.com/glowcall/glowcall-backend/pkg/config"
	"github.com/glowcall/glowcall-backend/pkg/db"
	"github.com/glowcall/glowcall-backend/pkg/instance"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/metrics"
	"github.com/glowcall/glowcall-backend/pkg/migrate"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	conn := dbClient.DB()
	publisher := outbox.NewService(outbox.NewRepository(conn), logg)
	bookingRepo := bookings.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	addressRepo := address.NewRepository(conn)

	events, err := bookingevents.NewService(bookingevents.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create booking events service", err)
		os.Exit(1)
	}

	resolver, err := address.NewResolver(addressRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create address resolver", err)
		os.Exit(1)
	}

	intakeService, err := intake.NewService(intake.ServiceParams{
		Bookings:  bookingRepo,
		Catalog:   catalog.NewRepository(conn),
		Customers: customerRepo,
		Addresses: resolver,
		Tx:        dbClient,
		Events:    events,
		Outbox:    publisher,
		Metrics:   bookingMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create intake service", err)
		os.Exit(1)
	}

	taxRate, commissionRate := cfg.Finance.Rates()
	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Repo:         invoices.NewRepository(conn),
		Bookings:     bookingRepo,
		Customers:    customerRepo,
		Addresses:    addressRepo,
		Engine:       finance.NewEngine(finance.Rates{TaxRate: taxRate, CommissionRate: commissionRate}),
		Tx:           dbClient,
		Events:       events,
		Outbox:       publisher,
		NumberPrefix: cfg.Invoice.NumberPrefix,
		IssuerName:   cfg.Invoice.IssuerName,
		Metrics:      bookingMetrics,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}

	dispatcher, err := notifications.NewDispatcher(dbClient, publisher, bookingMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:       bookingRepo,
		Vendors:    vendors.NewRepository(conn),
		Tx:         dbClient,
		Events:     events,
		Outbox:     publisher,
		Dispatcher: dispatcher,
		Invoices:   invoiceService,
		Metrics:    bookingMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Idempotency:    redisClient,
			RateLimiter:    redisClient,
			HTTPMetrics:    metrics.NewHTTPMetrics(registry),
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			Intake:         intakeService,
			Bookings:       bookingService,
			Invoices:       invoiceService,
			Notifications:  notificationService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
