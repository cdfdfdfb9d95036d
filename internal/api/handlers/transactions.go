package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/momo-analytics/momo-backend/internal/api/httpx"
	"github.com/momo-analytics/momo-backend/internal/api/validate"
	"github.com/momo-analytics/momo-backend/internal/models"
	repo "github.com/momo-analytics/momo-backend/internal/repository"
	"github.com/momo-analytics/momo-backend/internal/services"
)

type TransactionHandler struct {
	svc  *services.TransactionService
	log  *slog.Logger
	prod bool
}

func NewTransactionHandler(svc *services.TransactionService, log *slog.Logger, prod bool) *TransactionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TransactionHandler{svc: svc, log: log, prod: prod}
}

// filtersView echoes the filters a request applied.
type filtersView struct {
	Type      *string          `json:"type,omitempty"`
	Date      *string          `json:"date,omitempty"`
	StartDate *string          `json:"startDate,omitempty"`
	EndDate   *string          `json:"endDate,omitempty"`
	MinAmount *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount *decimal.Decimal `json:"maxAmount,omitempty"`
	Search    *string          `json:"search,omitempty"`
}

func viewFilters(f models.QueryFilter) filtersView {
	day := func(t *time.Time) *string {
		s := t.Format(validate.DateLayout)
		return &s
	}
	v := filtersView{Type: f.Type, MinAmount: f.MinAmount, MaxAmount: f.MaxAmount, Search: f.FreeText}
	if f.Date != nil {
		v.Date = day(f.Date)
	}
	if f.StartDate != nil {
		v.StartDate = day(f.StartDate)
	}
	if f.EndDate != nil {
		v.EndDate = day(f.EndDate)
	}
	return v
}

// List serves GET /api/transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := validate.Filter(q)
	if err != nil {
		h.invalid(w, err)
		return
	}
	p := validate.Page(q)

	res, err := h.svc.List(r.Context(), f, p)
	if err != nil {
		h.fail(w, r, "Failed to fetch transactions", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		Success: true,
		Message: "Transactions retrieved successfully",
		Data:    res.Data,
		Pagination: &httpx.Pagination{
			CurrentPage:  res.CurrentPage,
			TotalPages:   res.TotalPages,
			TotalRecords: res.TotalRecords,
			HasNextPage:  res.HasNextPage,
			HasPrevPage:  res.HasPrevPage,
			Limit:        p.Limit,
		},
		Filters:       viewFilters(f),
		Incomplete:    res.Incomplete,
		SkippedTables: res.SkippedTables,
	})
}

// Stats serves GET /api/transactions/stats.
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	f, err := validate.Filter(r.URL.Query())
	if err != nil {
		h.invalid(w, err)
		return
	}
	st, err := h.svc.Stats(r.Context(), f)
	if err != nil {
		h.fail(w, r, "Failed to fetch transaction statistics", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		Success: true,
		Message: "Statistics retrieved successfully",
		Data:    st,
		Filters: viewFilters(f),
	})
}

func (h *TransactionHandler) Types(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteOK(w, "Transaction types retrieved successfully", h.svc.Types())
}

// Get serves GET /api/transactions/{id} and /api/transactions/{type}/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.svc.Get(r.Context(), id, chi.URLParam(r, "type"))
	if errors.Is(err, repo.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "Transaction not found", "", nil)
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to fetch transaction", err)
		return
	}
	httpx.WriteOK(w, "Transaction retrieved successfully", st)
}

func (h *TransactionHandler) invalid(w http.ResponseWriter, err error) {
	var errs validate.Errs
	if errors.As(err, &errs) {
		httpx.WriteError(w, http.StatusBadRequest, errs.Error(), "", errs)
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, err.Error(), "", nil)
}

func (h *TransactionHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		h.log.Debug("client went away", "path", r.URL.Path)
		return
	}
	h.log.Error(msg, "path", r.URL.Path, "err", err)
	detail := ""
	if !h.prod {
		detail = err.Error()
	}
	httpx.WriteError(w, http.StatusInternalServerError, msg, detail, nil)
}
