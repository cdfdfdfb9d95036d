package services

import (
	"context"
	"log/slog"

	"github.com/momo-analytics/momo-backend/internal/cache"
	"github.com/momo-analytics/momo-backend/internal/metrics"
	"github.com/momo-analytics/momo-backend/internal/models"
	repo "github.com/momo-analytics/momo-backend/internal/repository"
)

type TransactionService struct {
	trx   repo.Transactions
	cache cache.Stats
	log   *slog.Logger
}

func NewTransactionService(t repo.Transactions, c cache.Stats, log *slog.Logger) *TransactionService {
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TransactionService{trx: t, cache: c, log: log}
}

func (s *TransactionService) List(ctx context.Context, f models.QueryFilter, p models.Page) (models.PageResult, error) {
	return s.trx.List(ctx, f, models.NewPage(p.Number, p.Limit))
}

// Stats serves from the cache when it can. Incomplete answers are never cached.
func (s *TransactionService) Stats(ctx context.Context, f models.QueryFilter) (models.Stats, error) {
	key := cache.Key(f)
	st, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.StatsCacheHits.WithLabelValues("error").Inc()
		s.log.Warn("stats cache read failed", "err", err)
	case ok:
		metrics.StatsCacheHits.WithLabelValues("hit").Inc()
		return st, nil
	default:
		metrics.StatsCacheHits.WithLabelValues("miss").Inc()
	}

	st, err = s.trx.Stats(ctx, f)
	if err != nil {
		return models.Stats{}, err
	}
	if !st.Incomplete {
		if err := s.cache.Set(ctx, key, st); err != nil {
			s.log.Warn("stats cache write failed", "err", err)
		}
	}
	return st, nil
}

func (s *TransactionService) Types() []models.TransactionType {
	out := make([]models.TransactionType, len(models.AllTypes))
	copy(out, models.AllTypes)
	return out
}

// Get finds a transaction by storage id or transactionId. typ scopes the
// search to one table; an unknown typ finds nothing.
func (s *TransactionService) Get(ctx context.Context, id, typ string) (models.StoredTransaction, error) {
	var hint *models.TransactionType
	if typ != "" {
		t, ok := models.ParseTransactionType(typ)
		if !ok {
			return models.StoredTransaction{}, repo.ErrNotFound
		}
		hint = &t
	}
	return s.trx.Get(ctx, id, hint)
}
