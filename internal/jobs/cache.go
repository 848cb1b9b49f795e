package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fractional-quest/internal/common/config"
	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"
	"fractional-quest/internal/jobfilter"
)

// Cache stores search pages and market stats in Redis.
type Cache struct {
	client    redis.Cmdable
	codec     jobfilter.Codec
	prefix    string
	searchTTL time.Duration
	statsTTL  time.Duration
}

func NewCache(client redis.Cmdable, codec jobfilter.Codec, cfg config.CacheConfig) *Cache {
	return &Cache{
		client:    client,
		codec:     codec,
		prefix:    cfg.KeyPrefix,
		searchTTL: cfg.SearchTTLDuration(),
		statsTTL:  cfg.StatsTTLDuration(),
	}
}

// SearchKey is keyed on the canonical filter query, so equivalent filter
// URLs share an entry.
func (c *Cache) SearchKey(q Query) string {
	q = q.Normalized()
	canonical := c.codec.Serialize(q.Filter)
	if !q.FractionalOnly {
		canonical += "&fractional=false"
	}
	if q.RemoteOnly {
		canonical += "&remote=true"
	}
	return fmt.Sprintf("%ssearch:%s:%d:%d", c.prefix, canonical, q.Page, q.Size)
}

func (c *Cache) statsKey() string {
	return c.prefix + "stats:market"
}

// GetSearch returns a cached page. A miss is (nil, nil).
func (c *Cache) GetSearch(ctx context.Context, q Query) (*Page, error) {
	var page Page
	ok, err := c.get(ctx, c.SearchKey(q), &page)
	if err != nil || !ok {
		return nil, err
	}
	return &page, nil
}

func (c *Cache) SetSearch(ctx context.Context, q Query, page *Page) error {
	return c.set(ctx, c.SearchKey(q), page, c.searchTTL)
}

func (c *Cache) GetStats(ctx context.Context) (*MarketStats, error) {
	var stats MarketStats
	ok, err := c.get(ctx, c.statsKey(), &stats)
	if err != nil || !ok {
		return nil, err
	}
	return &stats, nil
}

func (c *Cache) SetStats(ctx context.Context, stats MarketStats) error {
	return c.set(ctx, c.statsKey(), stats, c.statsTTL)
}

// InvalidateSearches drops every cached search page and the market stats.
func (c *Cache) InvalidateSearches(ctx context.Context) (int, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"search:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, errCache(err)
	}
	keys = append(keys, c.statsKey())

	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errCache(err)
	}
	return int(n), nil
}

func (c *Cache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errCache(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errCache(err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errCache(err)
	}
	return nil
}

func errCache(err error) error {
	return apperrors.NewCacheUnavailableError(err)
}

// CachedSearcher is a cache-aside decorator. Cache failures are logged and
// the underlying searcher is used directly.
type CachedSearcher struct {
	next   Searcher
	cache  *Cache
	logger logger.Logger
}

func NewCachedSearcher(next Searcher, cache *Cache, log logger.Logger) *CachedSearcher {
	return &CachedSearcher{next: next, cache: cache, logger: log}
}

func (s *CachedSearcher) Search(ctx context.Context, q Query) (*Page, error) {
	page, err := s.cache.GetSearch(ctx, q)
	switch {
	case err != nil:
		metrics.SearchCacheRequests.WithLabelValues("error").Inc()
		s.logger.Warn("search cache read failed", map[string]interface{}{"error": err})
	case page != nil:
		metrics.SearchCacheRequests.WithLabelValues("hit").Inc()
		return page, nil
	default:
		metrics.SearchCacheRequests.WithLabelValues("miss").Inc()
	}

	page, err = s.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSearch(ctx, q, page); err != nil {
		s.logger.Warn("search cache write failed", map[string]interface{}{"error": err})
	}
	return page, nil
}

// StatsSource loads market stats on a cache miss.
type StatsSource interface {
	MarketStats(ctx context.Context) MarketStats
}

// CachedStats serves market stats from the cache, loading and storing them
// on a miss. Fallback figures are never cached.
func CachedStats(ctx context.Context, cache *Cache, src StatsSource, log logger.Logger) MarketStats {
	if cache == nil {
		return src.MarketStats(ctx)
	}
	if stats, err := cache.GetStats(ctx); err != nil {
		log.Warn("stats cache read failed", map[string]interface{}{"error": err})
	} else if stats != nil {
		return *stats
	}

	stats := src.MarketStats(ctx)
	if !stats.FromFallback {
		if err := cache.SetStats(ctx, stats); err != nil {
			log.Warn("stats cache write failed", map[string]interface{}{"error": err})
		}
	}
	return stats
}
