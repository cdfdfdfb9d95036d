// Command ingest loads one SMS backup export into the transaction tables.
//
//	ingest -source ./sms.xml
//	ingest -source gs://bucket/exports/sms.xml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/momo-analytics/momo-backend/internal/cache"
	"github.com/momo-analytics/momo-backend/internal/config"
	"github.com/momo-analytics/momo-backend/internal/db"
	"github.com/momo-analytics/momo-backend/internal/events"
	"github.com/momo-analytics/momo-backend/internal/extract"
	"github.com/momo-analytics/momo-backend/internal/logger"
	"github.com/momo-analytics/momo-backend/internal/repository/postgres"
	"github.com/momo-analytics/momo-backend/internal/services"
	"github.com/momo-analytics/momo-backend/internal/worker"
)

func main() {
	src := flag.String("source", "", "SMS export: local path or gs://bucket/object")
	migrate := flag.Bool("migrate", false, "apply migrations before ingesting")
	flag.Parse()
	if *src == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -source <path|gs://bucket/object> [-migrate]")
		os.Exit(2)
	}

	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log, *src, *migrate || cfg.Migrate); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger, src string, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect", "err", err)
		return err
	}
	defer pool.Close()

	if migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			return err
		}
	}

	var statsCache cache.Stats = cache.Noop{}
	if cfg.RedisURL != "" {
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable; stats cache not invalidated", "err", err)
		} else {
			defer client.Close()
			statsCache = cache.NewRedisStats(client, cache.DefaultPrefix, cfg.StatsCacheTTL)
		}
	}

	var pub events.Publisher = events.Noop{}
	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL)
		if err != nil {
			log.Warn("nats unavailable; ingest event disabled", "err", err)
		} else {
			defer nc.Close()
			pub = events.NewNATSPublisher(nc, cfg.NatsSubject, log)
		}
	}

	loc := cfg.Location()
	repos := postgres.NewRepositories(pool, log, loc.String())
	wp := worker.NewPool(cfg.IngestWorkers)
	defer wp.Stop()

	svc := services.NewIngestService(services.IngestDeps{
		Transactions: repos.Transactions,
		Runs:         repos.IngestRuns,
		Classifier:   extract.NewClassifier(extract.DefaultCatalog(), log),
		Pool:         wp,
		Cache:        statsCache,
		Publisher:    pub,
		Location:     loc,
		Log:          log,
	})

	res, err := svc.IngestURI(ctx, src)
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	return err
}
