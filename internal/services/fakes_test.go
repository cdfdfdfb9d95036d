package services

import (
	"context"

	"github.com/momo-analytics/momo-backend/internal/models"
)

type fakeTransactions struct {
	InsertBatchFunc func(ctx context.Context, txns []models.NormalizedTransaction) ([]models.StoredTransaction, error)
	ListFunc        func(ctx context.Context, f models.QueryFilter, p models.Page) (models.PageResult, error)
	StatsFunc       func(ctx context.Context, f models.QueryFilter) (models.Stats, error)
	GetFunc         func(ctx context.Context, id string, hint *models.TransactionType) (models.StoredTransaction, error)
}

func (f *fakeTransactions) InsertBatch(ctx context.Context, txns []models.NormalizedTransaction) ([]models.StoredTransaction, error) {
	if f.InsertBatchFunc != nil {
		return f.InsertBatchFunc(ctx, txns)
	}
	out := make([]models.StoredTransaction, len(txns))
	for i, t := range txns {
		out[i] = models.StoredTransaction{ID: int64(i + 1), NormalizedTransaction: t}
	}
	return out, nil
}

func (f *fakeTransactions) List(ctx context.Context, fl models.QueryFilter, p models.Page) (models.PageResult, error) {
	return f.ListFunc(ctx, fl, p)
}

func (f *fakeTransactions) Stats(ctx context.Context, fl models.QueryFilter) (models.Stats, error) {
	return f.StatsFunc(ctx, fl)
}

func (f *fakeTransactions) Get(ctx context.Context, id string, hint *models.TransactionType) (models.StoredTransaction, error) {
	return f.GetFunc(ctx, id, hint)
}

type fakeRuns struct {
	runs []models.IngestRun
}

func (f *fakeRuns) Create(_ context.Context, run models.IngestRun) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakeCache struct {
	GetFunc     func(ctx context.Context, key string) (models.Stats, bool, error)
	sets        map[string]models.Stats
	invalidated int
}

func (c *fakeCache) Get(ctx context.Context, key string) (models.Stats, bool, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, key)
	}
	s, ok := c.sets[key]
	return s, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, s models.Stats) error {
	if c.sets == nil {
		c.sets = map[string]models.Stats{}
	}
	c.sets[key] = s
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.sets = nil
	return nil
}

type fakePublisher struct {
	runs []models.IngestRun
}

func (p *fakePublisher) IngestCompleted(_ context.Context, run models.IngestRun) error {
	p.runs = append(p.runs, run)
	return nil
}
