package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/momo-analytics/momo-backend/internal/api/handlers"
	"github.com/momo-analytics/momo-backend/internal/config"
	"github.com/momo-analytics/momo-backend/internal/metrics"
	"github.com/momo-analytics/momo-backend/internal/middleware"
	"github.com/momo-analytics/momo-backend/internal/services"
)

const Version = "1.0.0"

var endpoints = []handlers.Endpoint{
	{Method: "GET", Path: "/api/health", About: "service and database health"},
	{Method: "GET", Path: "/api/transactions", About: "paginated transactions; filters: type, date, startDate, endDate, minAmount, maxAmount, q, page, limit"},
	{Method: "GET", Path: "/api/transactions/stats", About: "aggregate statistics for the same filters"},
	{Method: "GET", Path: "/api/transactions/types", About: "supported transaction types"},
	{Method: "GET", Path: "/api/transactions/{type}/{id}", About: "one transaction of a type by id or transactionId"},
	{Method: "GET", Path: "/api/transactions/{id}", About: "one transaction by id or transactionId"},
	{Method: "GET", Path: "/metrics", About: "prometheus metrics"},
}

// NewRouter wires the query API. db may be nil, in which case health skips the store check.
func NewRouter(cfg config.Config, log *slog.Logger, ts *services.TransactionService, db handlers.Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.AccessLog(log),
		middleware.Recover(log),
		middleware.HTTPMetrics,
		middleware.RateLimit(cfg.RateRPS),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/", handlers.Index(Version, endpoints))
	r.Get("/api/health", handlers.Health(db, log))
	r.Handle("/metrics", metrics.Handler())

	th := handlers.NewTransactionHandler(ts, log, cfg.IsProd())
	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", th.List)
		r.Get("/stats", th.Stats)
		r.Get("/types", th.Types)
		r.Get("/{type}/{id}", th.Get)
		r.Get("/{id}", th.Get)
	})

	return r
}
