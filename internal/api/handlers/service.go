package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/momo-analytics/momo-backend/internal/api/httpx"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthView struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Health serves GET /api/health. A nil Pinger skips the store check.
func Health(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := healthView{Status: "ok", Database: "up", Timestamp: time.Now().UTC()}
		status := http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Warn("health: database ping failed", "err", err)
				v.Status, v.Database = "degraded", "down"
				status = http.StatusServiceUnavailable
			}
		}
		httpx.WriteJSON(w, status, httpx.Envelope{
			Success: status == http.StatusOK,
			Message: "MoMo Analytics API is " + v.Status,
			Data:    v,
		})
	}
}

type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	About  string `json:"description"`
}

// Index serves GET / with a short description of the API.
func Index(version string, endpoints []Endpoint) http.HandlerFunc {
	body := httpx.Envelope{
		Success: true,
		Message: "MoMo Analytics API",
		Data: map[string]any{
			"version":   version,
			"endpoints": endpoints,
		},
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, body)
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusNotFound, "Route "+r.Method+" "+r.URL.Path+" not found", "", nil)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path, "", nil)
}
