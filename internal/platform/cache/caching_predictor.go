// Package cache provides caching implementations for usecase interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"crop_backend/internal/feature/recommend/domain/entity"
)

// Predictor is the pipeline the cache decorates.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (*entity.Recommendation, error)
}

// CachingPredictor decorates a Predictor with Redis caching.
// Predictions are deterministic for a given set of artifacts, so a cached recommendation stays
// valid until the artifacts change. Callers put an artifact fingerprint in the namespace.
// Only successful predictions are cached.
type CachingPredictor struct {
	inner     Predictor
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingPredictor decorates a Predictor with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "recommend".
func NewCachingPredictor(rdb *redis.Client, ttl time.Duration, inner Predictor, namespace string) *CachingPredictor {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "recommend"
	}
	return &CachingPredictor{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Predict returns a cached recommendation when one exists, otherwise delegates and stores the result.
func (c *CachingPredictor) Predict(ctx context.Context, features []float64) (*entity.Recommendation, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Predict(ctx, features)
	}

	key := c.cacheKey(features)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Recommendation
		// {} や null もデコードは成功するので、作物名のないエントリは破損扱い
		if err := json.Unmarshal(b, &out); err == nil && out.Crop != "" {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the pipeline
	out, err := c.inner.Predict(ctx, features)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key from the exact feature values.
func (c *CachingPredictor) cacheKey(features []float64) string {
	parts := make([]string, len(features))
	for i, v := range features {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%s:%s", c.namespace, safe(strings.Join(parts, ",")))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
