package estimator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ride-share/internal/domain/geo"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/observability"
	"ride-share/internal/ports"

	"github.com/redis/go-redis/v9"
)

// kv is the part of *redis.Client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache memoizes travel times in Redis. Cache errors are logged and bypassed: the
// wrapped estimator is always the source of truth.
type RedisCache struct {
	client kv
	next   ports.TravelEstimator
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func NewRedisCache(client kv, next ports.TravelEstimator, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, next: next, ttl: ttl, logger: log}
}

func (c *RedisCache) TravelTime(ctx context.Context, from, to geo.Point) (time.Duration, error) {
	key := cacheKey(from, to)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if secs, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			observability.EstimatorCacheTotal.WithLabelValues("hit").Inc()
			return time.Duration(secs) * time.Second, nil
		}
		observability.EstimatorCacheTotal.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.EstimatorCacheTotal.WithLabelValues("miss").Inc()
	default:
		observability.EstimatorCacheTotal.WithLabelValues("error").Inc()
		c.logger.Error(ctx, "estimator_cache_get_failed", "Failed to read travel time cache", err, map[string]any{"key": key})
	}

	d, err := c.next.TravelTime(ctx, from, to)
	if err != nil {
		return 0, err
	}

	secs := int64(d / time.Second)
	if err := c.client.Set(ctx, key, secs, c.ttl).Err(); err != nil {
		c.logger.Error(ctx, "estimator_cache_set_failed", "Failed to write travel time cache", err, map[string]any{"key": key})
	}
	return d, nil
}

// cacheKey rounds to ~1m so that nearby lookups share an entry.
func cacheKey(a, b geo.Point) string {
	return fmt.Sprintf("eta:%.5f,%.5f->%.5f,%.5f", a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

var _ ports.TravelEstimator = (*RedisCache)(nil)
