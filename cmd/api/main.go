package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/commissary-backend/api/controllers"
	"github.com/angelmondragon/commissary-backend/api/routes"
	"github.com/angelmondragon/commissary-backend/internal/dashboard"
	"github.com/angelmondragon/commissary-backend/internal/eventlog"
	"github.com/angelmondragon/commissary-backend/internal/ledger"
	"github.com/angelmondragon/commissary-backend/internal/orders"
	"github.com/angelmondragon/commissary-backend/internal/purchases"
	"github.com/angelmondragon/commissary-backend/pkg/config"
	"github.com/angelmondragon/commissary-backend/pkg/db"
	"github.com/angelmondragon/commissary-backend/pkg/instance"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/metrics"
	"github.com/angelmondragon/commissary-backend/pkg/migrate"
	"github.com/angelmondragon/commissary-backend/pkg/redis"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
	"github.com/angelmondragon/commissary-backend/pkg/storage/gcs"
	"github.com/angelmondragon/commissary-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(context.Background(), "error closing resources", errs)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{"db": dbClient}

	var idempotencyStore redis.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		idempotencyStore = redisClient
		readiness["redis"] = redisClient
	} else {
		logg.Info(ctx, "redis not configured; idempotency replay disabled")
	}

	files, err := newFileStore(ctx, cfg, logg, readiness, &closers)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap file store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loc := cfg.App.Location()
	conn := dbClient.DB()

	stockService, err := ledger.NewService(ledger.NewRepository(conn), logg, ledger.Options{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		Location:          loc,
		Now:               time.Now,
	})
	mustService(ctx, logg, "ledger", err)

	logService, err := eventlog.NewService(eventlog.NewRepository(conn), files, logg, loc, time.Now)
	mustService(ctx, logg, "event log", err)

	purchaseService, err := purchases.NewService(purchases.NewRepository(conn), files, logg, loc, time.Now)
	mustService(ctx, logg, "purchases", err)

	orderService, err := orders.NewService(dbClient, orders.NewRepository(conn), logg, loc, time.Now)
	mustService(ctx, logg, "orders", err)

	dashboardService, err := dashboard.NewService(stockService, purchaseService, logService, orderService, loc, time.Now)
	mustService(ctx, logg, "dashboard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"storage":  cfg.Storage.Driver,
		"instance": instance.GetID("local"),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			metrics.NewHTTPMetrics(registry),
			readiness,
			idempotencyStore,
			files,
			stockService,
			logService,
			purchaseService,
			orderService,
			dashboardService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func newFileStore(ctx context.Context, cfg *config.Config, logg *logger.Logger, readiness map[string]controllers.Pinger, closers *[]func() error) (storage.Store, error) {
	maxBytes := cfg.Storage.MaxUploadBytes()
	if strings.EqualFold(strings.TrimSpace(cfg.Storage.Driver), config.StorageDriverGCS) {
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, client.Close)
		readiness["gcs"] = client
		return gcs.NewStore(client, cfg.Storage.PublicBaseURL, maxBytes)
	}
	return local.New(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL, maxBytes)
}

func mustService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
