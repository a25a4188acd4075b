package router

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	recommendhandler "crop_backend/internal/feature/recommend/transport/handler"
	"crop_backend/internal/feature/recommend/transport/view"
	platformhandler "crop_backend/internal/platform/http/handler"
	"crop_backend/internal/shared/ratelimiter"
)

// Config holds router settings.
type Config struct {
	AllowOrigins []string // "*" allows every origin
	RateLimit    int      // prediction requests per minute; 0 disables the limiter
}

// LoadConfig reads CORS_ALLOW_ORIGINS, a comma separated list of origins.
func LoadConfig() Config {
	raw := os.Getenv("CORS_ALLOW_ORIGINS")
	if raw == "" {
		raw = "*"
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	limit, err := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_MINUTE"))
	if err != nil || limit < 0 {
		limit = 0
	}
	return Config{AllowOrigins: origins, RateLimit: limit}
}

func corsConfig(cfg Config) cors.Config {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowOrigins
	return c
}

func NewRouter(cfg Config, recommend *recommendhandler.RecommendHandler,
	health *platformhandler.HealthHandler) *gin.Engine {
	r := gin.Default()

	// CORS追加（プリフライトは未登録ルートになるのでエンジン全体に掛ける）
	r.Use(cors.New(corsConfig(cfg)))

	// 推論系ルートだけに適用する
	var limited gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit > 0 {
		limited = ratelimiter.Middleware(ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute))
	}
	r.SetHTMLTemplate(view.Templates())

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	// 入力フォーム
	r.GET("/", recommend.Index)
	r.POST("/", limited, recommend.Submit)
	r.StaticFS("/static", http.FS(view.Static()))

	// JSON API
	v1 := r.Group("/v1")
	{
		v1.POST("/recommend", limited, recommend.Recommend)
		v1.POST("/predict", limited, recommend.Predict)
		v1.GET("/crops", recommend.Crops)
	}

	return r
}
