package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momo-analytics/momo-backend/internal/logger"
	"github.com/momo-analytics/momo-backend/internal/models"
	repo "github.com/momo-analytics/momo-backend/internal/repository"
)

func TestList_ClampsPage(t *testing.T) {
	var got models.Page
	trx := &fakeTransactions{ListFunc: func(_ context.Context, _ models.QueryFilter, p models.Page) (models.PageResult, error) {
		got = p
		return models.NewPageResult(nil, 0, p), nil
	}}
	svc := NewTransactionService(trx, nil, logger.Discard())

	_, err := svc.List(t.Context(), models.QueryFilter{}, models.Page{Number: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, models.Page{Number: 1, Limit: models.MaxPageLimit}, got)
}

func TestStats_CachesCompleteResults(t *testing.T) {
	calls := 0
	trx := &fakeTransactions{StatsFunc: func(context.Context, models.QueryFilter) (models.Stats, error) {
		calls++
		s := models.NewStats()
		s.AddType(models.TxnIncoming, 1, decimal.NewFromInt(5000), decimal.NewFromInt(5000))
		s.Finish()
		return s, nil
	}}
	c := &fakeCache{}
	svc := NewTransactionService(trx, c, logger.Discard())

	first, err := svc.Stats(t.Context(), models.QueryFilter{})
	require.NoError(t, err)
	second, err := svc.Stats(t.Context(), models.QueryFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.TotalTransactions, second.TotalTransactions)
}

func TestStats_IncompleteNotCached(t *testing.T) {
	calls := 0
	trx := &fakeTransactions{StatsFunc: func(context.Context, models.QueryFilter) (models.Stats, error) {
		calls++
		s := models.NewStats()
		s.Incomplete = true
		s.SkippedTables = []string{"payment"}
		return s, nil
	}}
	svc := NewTransactionService(trx, &fakeCache{}, logger.Discard())

	for i := 0; i < 2; i++ {
		st, err := svc.Stats(t.Context(), models.QueryFilter{})
		require.NoError(t, err)
		assert.True(t, st.Incomplete)
	}
	assert.Equal(t, 2, calls)
}

func TestStats_CacheErrorFallsThrough(t *testing.T) {
	trx := &fakeTransactions{StatsFunc: func(context.Context, models.QueryFilter) (models.Stats, error) {
		return models.NewStats(), nil
	}}
	c := &fakeCache{GetFunc: func(context.Context, string) (models.Stats, bool, error) {
		return models.Stats{}, false, errors.New("redis: connection refused")
	}}
	svc := NewTransactionService(trx, c, logger.Discard())

	_, err := svc.Stats(t.Context(), models.QueryFilter{})
	assert.NoError(t, err)
}

func TestGet_TypeHint(t *testing.T) {
	var gotHint *models.TransactionType
	trx := &fakeTransactions{GetFunc: func(_ context.Context, id string, hint *models.TransactionType) (models.StoredTransaction, error) {
		gotHint = hint
		return models.StoredTransaction{ID: 7}, nil
	}}
	svc := NewTransactionService(trx, nil, logger.Discard())

	st, err := svc.Get(t.Context(), "7", "payment")
	require.NoError(t, err)
	assert.Equal(t, int64(7), st.ID)
	require.NotNil(t, gotHint)
	assert.Equal(t, models.TxnPayment, *gotHint)

	_, err = svc.Get(t.Context(), "7", "")
	require.NoError(t, err)
	assert.Nil(t, gotHint)
}

func TestGet_UnknownType(t *testing.T) {
	svc := NewTransactionService(&fakeTransactions{}, nil, logger.Discard())

	_, err := svc.Get(t.Context(), "7", "lottery")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTypes(t *testing.T) {
	svc := NewTransactionService(&fakeTransactions{}, nil, logger.Discard())

	types := svc.Types()
	assert.Equal(t, models.AllTypes, types)
	types[0] = "MUTATED"
	assert.Equal(t, models.TxnIncoming, models.AllTypes[0])
}
