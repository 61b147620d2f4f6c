package book

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	seriesCacheKey = "bookcatalog:series_names"
	seriesGenKey   = "bookcatalog:series_names:gen"
)

// setIfCurrent writes KEYS[1] only while KEYS[2] still holds the generation
// the caller read.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisSeriesCache keeps the series name list in Redis as a JSON array, next
// to a generation counter bumped by every invalidation.
type RedisSeriesCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisSeriesCache(client redis.UniversalClient, ttl time.Duration) *RedisSeriesCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSeriesCache{client: client, ttl: ttl}
}

func (c *RedisSeriesCache) Get(ctx context.Context) ([]string, int64, bool, error) {
	vals, err := c.client.MGet(ctx, seriesCacheKey, seriesGenKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get series: %w", err)
	}

	var stamp int64
	if s, ok := vals[1].(string); ok {
		if stamp, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("decode series generation: %w", err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, stamp, false, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, stamp, false, fmt.Errorf("decode cached series: %w", err)
	}
	return names, stamp, true, nil
}

func (c *RedisSeriesCache) Set(ctx context.Context, names []string, stamp int64) error {
	b, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}
	err = setIfCurrent.Run(ctx, c.client, []string{seriesCacheKey, seriesGenKey},
		strconv.FormatInt(stamp, 10), string(b), c.ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis set series: %w", err)
	}
	return nil
}

func (c *RedisSeriesCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, seriesGenKey)
		pipe.Del(ctx, seriesCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate series: %w", err)
	}
	return nil
}

// NoopSeriesCache always misses.
type NoopSeriesCache struct{}

func (NoopSeriesCache) Get(context.Context) ([]string, int64, bool, error) { return nil, 0, false, nil }
func (NoopSeriesCache) Set(context.Context, []string, int64) error         { return nil }
func (NoopSeriesCache) Invalidate(context.Context) error                   { return nil }
