// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"crop_backend/internal/feature/recommend/adapters/artifacts"
	"crop_backend/internal/feature/recommend/domain/catalog"
	"crop_backend/internal/feature/recommend/transport/handler"
	"crop_backend/internal/feature/recommend/usecase"
	"crop_backend/internal/platform/cache"
)

// NewPredictor wires the inference pipeline from loaded artifacts.
// If Redis is available, predictions are cached under a namespace tied to the artifact contents;
// otherwise the pipeline is used directly.
func NewPredictor(arts *artifacts.Artifacts, cat *catalog.Catalog, rdb *redis.Client, ttl time.Duration) handler.Predictor {
	p := usecase.NewPipeline(arts.MinMaxScaler, arts.StandardScaler, arts.Classifier, cat)
	if rdb != nil {
		return cache.NewCachingPredictor(rdb, ttl, p, "recommend:"+arts.ModelKind+":"+arts.Fingerprint)
	}
	return p
}
