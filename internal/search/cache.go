package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"church-map/internal/dataset"
	"church-map/internal/log"
	"church-map/internal/metrics"
	"church-map/internal/model"
)

const keyPrefix = "churchmap:search:"

// CachedSearcher memoizes another Searcher in redis. Keys include the
// dataset version, so a reload never serves results from an older snapshot.
// Redis failures fall through to the wrapped searcher.
type CachedSearcher struct {
	next   Searcher
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCached wraps next with a redis-backed cache.
func NewCached(next Searcher, client redis.Cmdable, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("search"),
	}
}

func (c *CachedSearcher) Search(ctx context.Context, d *dataset.Dataset, query string, limit int) ([]model.SearchResult, error) {
	q := Normalize(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	key := cacheKey(d.Version(), q, limit)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var results []model.SearchResult
		if err := json.Unmarshal(data, &results); err == nil {
			metrics.SearchCacheHitsTotal.Inc()
			return results, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cached search result")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Msg("search cache read failed")
	}
	metrics.SearchCacheMissesTotal.Inc()

	results, err := c.next.Search(ctx, d, query, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("search cache write failed")
		}
	}
	return results, nil
}

func cacheKey(version, normalized string, limit int) string {
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%s:%d:%s", keyPrefix, version, limit, hex.EncodeToString(sum[:16]))
}
