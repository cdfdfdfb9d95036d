package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/momo-analytics/momo-backend/internal/models"
)

const DefaultPrefix = "momo:stats"

// Stats caches aggregate results keyed by a normalized filter.
type Stats interface {
	Get(ctx context.Context, key string) (models.Stats, bool, error)
	Set(ctx context.Context, key string, s models.Stats) error
	// Invalidate drops every cached entry. Called after new rows land.
	Invalidate(ctx context.Context) error
}

type RedisStats struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStats(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStats {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisStats{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisStats) key(k string) string { return c.prefix + ":" + k }

func (c *RedisStats) Get(ctx context.Context, key string) (models.Stats, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Stats{}, false, nil
	}
	if err != nil {
		return models.Stats{}, false, err
	}
	var s models.Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Stats{}, false, err
	}
	return s, true, nil
}

func (c *RedisStats) Set(ctx context.Context, key string, s models.Stats) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), raw, c.ttl).Err()
}

func (c *RedisStats) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (models.Stats, bool, error) { return models.Stats{}, false, nil }
func (Noop) Set(context.Context, string, models.Stats) error         { return nil }
func (Noop) Invalidate(context.Context) error                        { return nil }

// Key renders a filter as a stable cache key. Equal filters give equal keys.
func Key(f models.QueryFilter) string {
	const day = "2006-01-02"
	parts := []string{
		"type=" + strings.ToUpper(deref(f.Type)),
		"q=" + deref(f.FreeText),
	}
	for _, d := range []struct {
		name string
		t    *time.Time
	}{{"date", f.Date}, {"start", f.StartDate}, {"end", f.EndDate}} {
		v := ""
		if d.t != nil {
			v = d.t.Format(day)
		}
		parts = append(parts, d.name+"="+v)
	}
	minAmt, maxAmt := "", ""
	if f.MinAmount != nil {
		minAmt = f.MinAmount.String()
	}
	if f.MaxAmount != nil {
		maxAmt = f.MaxAmount.String()
	}
	parts = append(parts, "min="+minAmt, "max="+maxAmt)
	return strings.Join(parts, "&")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Dial parses a redis:// URL and checks the server answers.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
