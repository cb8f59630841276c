package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/pkg/metrics"
)

// API is the pair of read operations the search pipeline needs.
type API interface {
	SearchLocations(ctx context.Context, query string) ([]Location, error)
	GetCurrentWeather(ctx context.Context, coords Coordinates) (*Snapshot, error)
}

// CachedAPI serves repeated location searches from Redis. Current conditions
// always go to the wrapped API so a refresh never shows stale weather.
type CachedAPI struct {
	API
	redis   *redis.Client
	ttl     time.Duration
	logger  *zerolog.Logger
	metrics *metrics.Metrics

	lookups atomic.Int64
	hits    atomic.Int64
}

// NewCachedAPI wraps api with a Redis search cache. A non-positive ttl
// defaults to 24 hours.
func NewCachedAPI(api API, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger, m *metrics.Metrics) *CachedAPI {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedAPI{
		API:     api,
		redis:   rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// SearchCacheKey normalizes query for consistent caching.
func SearchCacheKey(query string) string {
	return fmt.Sprintf("geocode:%s", strings.ToLower(strings.TrimSpace(query)))
}

func (c *CachedAPI) SearchLocations(ctx context.Context, query string) ([]Location, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	cacheKey := SearchCacheKey(query)
	cached, err := c.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var locations []Location
		if err := json.Unmarshal([]byte(cached), &locations); err == nil {
			c.record(true)
			return locations, nil
		}
	}
	c.record(false)

	locations, err := c.API.SearchLocations(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, cacheKey, locations); err != nil {
		c.logger.Error().
			Err(err).
			Str("query", query).
			Msg("Failed to cache search result")
	}

	return locations, nil
}

func (c *CachedAPI) store(ctx context.Context, cacheKey string, locations []Location) error {
	payload, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("failed to marshal locations for caching: %w", err)
	}
	return c.redis.Set(ctx, cacheKey, string(payload), c.ttl).Err()
}

func (c *CachedAPI) record(hit bool) {
	lookups := c.lookups.Add(1)
	hits := c.hits.Load()
	if hit {
		hits = c.hits.Add(1)
	}
	c.metrics.SetGauge(metrics.CacheHitRate, float64(hits)/float64(lookups)*100, "search")
}

// HitRate returns the percentage of searches served from cache.
func (c *CachedAPI) HitRate() float64 {
	lookups := c.lookups.Load()
	if lookups == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(lookups) * 100
}
