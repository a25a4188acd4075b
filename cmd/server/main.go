package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"crop_backend/internal/app/di"
	"crop_backend/internal/app/router"
	"crop_backend/internal/feature/recommend/adapters/artifacts"
	"crop_backend/internal/feature/recommend/domain/catalog"
	"crop_backend/internal/feature/recommend/domain/entity"
	recommendhandler "crop_backend/internal/feature/recommend/transport/handler"
	platformhandler "crop_backend/internal/platform/http/handler"
	infraredis "crop_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	slog.SetDefault(newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))

	// モデル読み込み（失敗したら起動しない）
	loader := artifacts.NewLoader(artifacts.LoadConfig())
	arts, err := loader.Load()
	if err != nil {
		slog.Error("failed to load artifacts", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := arts.Close(); err != nil {
			slog.Error("failed to release artifacts", "error", err)
		}
	}()

	// Redis（任意）
	redisCfg := infraredis.LoadConfig()
	var rdb *redisv9.Client
	if redisCfg.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		tmp, err := infraredis.NewRedisClient(ctx, redisCfg)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
		}
	}

	cat := catalog.Default()
	predictor := di.NewPredictor(arts, cat, rdb, redisCfg.CacheTTL)

	// Handler
	recommendH := recommendhandler.NewRecommendHandler(predictor, cat)
	healthH := platformhandler.NewHealthHandler(platformhandler.ModelInfo{
		Kind:     arts.ModelKind,
		Features: entity.FeatureCount,
		Crops:    len(cat.Entries()),
	})

	// ルータ生成
	r := router.NewRouter(router.LoadConfig(), recommendH, healthH)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from LOG_LEVEL (debug|info|warn|error) and
// LOG_FORMAT (text|json).
func newLogger(level, format string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
