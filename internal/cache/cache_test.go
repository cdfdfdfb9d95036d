package cache

import (
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momo-analytics/momo-backend/internal/models"
)

func TestKey_StableAndDistinct(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	lower, upper := "incoming", "INCOMING"
	minAmt := decimal.RequireFromString("1000")

	a := Key(models.QueryFilter{Type: &lower, Date: &day, MinAmount: &minAmt})
	b := Key(models.QueryFilter{Type: &upper, Date: &day, MinAmount: &minAmt})
	assert.Equal(t, a, b)

	c := Key(models.QueryFilter{Type: &upper, StartDate: &day, MinAmount: &minAmt})
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Key(models.QueryFilter{}), a)
}

func TestNoop(t *testing.T) {
	ctx := t.Context()
	var c Stats = Noop{}
	require.NoError(t, c.Set(ctx, "k", models.NewStats()))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestRedisStats_RoundTripAndInvalidate(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := t.Context()
	c := NewRedisStats(client, "momo:test:"+time.Now().Format("150405.000000"), time.Minute)

	s := models.NewStats()
	s.AddType(models.TxnIncoming, 2, decimal.RequireFromString("7000"), decimal.RequireFromString("3500"))
	s.Finish()
	require.NoError(t, c.Set(ctx, "all", s))

	got, ok, err := c.Get(ctx, "all")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.TotalTransactions)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("7000")))

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx, "all")
	require.NoError(t, err)
	assert.False(t, ok)
}
