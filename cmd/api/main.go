package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"github.com/momo-analytics/momo-backend/internal/api"
	"github.com/momo-analytics/momo-backend/internal/cache"
	"github.com/momo-analytics/momo-backend/internal/config"
	"github.com/momo-analytics/momo-backend/internal/db"
	"github.com/momo-analytics/momo-backend/internal/logger"
	"github.com/momo-analytics/momo-backend/internal/metrics"
	"github.com/momo-analytics/momo-backend/internal/repository/postgres"
	"github.com/momo-analytics/momo-backend/internal/services"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	var statsCache cache.Stats = cache.Noop{}
	if cfg.RedisURL != "" {
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable; stats cache disabled", "err", err)
		} else {
			defer client.Close()
			statsCache = cache.NewRedisStats(client, cache.DefaultPrefix, cfg.StatsCacheTTL)
			log.Info("redis connected")
		}
	}

	loc := cfg.Location()
	repos := postgres.NewRepositories(pool, log, loc.String())
	txnSvc := services.NewTransactionService(repos.Transactions, statsCache, log)

	metrics.Init()
	r := api.NewRouter(cfg, log, txnSvc, pool)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "tz", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
