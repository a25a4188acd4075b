// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ModelInfo describes the loaded artifacts for the health report.
type ModelInfo struct {
	Kind     string // "onnx" or "forest"
	Features int
	Crops    int
}

// HealthHandler reports liveness. Artifacts are loaded before the router starts, so a running
// server always has a model.
type HealthHandler struct {
	info ModelInfo
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(info ModelInfo) *HealthHandler {
	return &HealthHandler{info: info}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"model":    h.info.Kind,
			"features": h.info.Features,
			"crops":    h.info.Crops,
		})
	}
}
