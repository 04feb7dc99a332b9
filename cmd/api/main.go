package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/api/routes"
	"github.com/rmoralesp/fieldstock-backend/internal/fieldops"
	"github.com/rmoralesp/fieldstock-backend/internal/purchasing"
	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/config"
	"github.com/rmoralesp/fieldstock-backend/pkg/db"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
	"github.com/rmoralesp/fieldstock-backend/pkg/metrics"
	"github.com/rmoralesp/fieldstock-backend/pkg/migrate"
	"github.com/rmoralesp/fieldstock-backend/pkg/redis"
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
	stockMetrics := metrics.NewStockMetrics(registry)

	stockService, err := stock.NewService(
		stock.NewRepository(dbClient.DB()),
		dbClient,
		logg,
		stockMetrics,
		decimal.NewFromFloat(cfg.Stock.DefaultMinAlert),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	purchasingService, err := purchasing.NewService(purchasing.NewRepository(dbClient.DB()), dbClient, stockService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchasing service", err)
		os.Exit(1)
	}

	fieldopsService, err := fieldops.NewService(fieldops.NewRepository(dbClient.DB()), dbClient, stockService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create fieldops service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Stock:       stockService,
			Purchasing:  purchasingService,
			Fieldops:    fieldopsService,
			Gatherer:    registry,
			Idempotency: redisClient,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down api server", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
