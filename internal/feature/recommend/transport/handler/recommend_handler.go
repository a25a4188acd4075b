// Package handler provides the HTTP handlers of the recommend feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"crop_backend/internal/feature/recommend/domain"
	"crop_backend/internal/feature/recommend/domain/entity"
	"crop_backend/internal/feature/recommend/transport/http/dto"
	"crop_backend/internal/feature/recommend/transport/view"
)

// Predictor recommends a crop for a feature vector.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type Predictor interface {
	Predict(ctx context.Context, features []float64) (*entity.Recommendation, error)
}

// CropLister lists the catalogued crops.
type CropLister interface {
	Entries() []entity.CropEntry
}

// RecommendHandler serves the recommendation form and the JSON API.
type RecommendHandler struct {
	predictor Predictor
	crops     CropLister
}

// NewRecommendHandler creates a RecommendHandler.
func NewRecommendHandler(p Predictor, crops CropLister) *RecommendHandler {
	return &RecommendHandler{predictor: p, crops: crops}
}

// pageData is rendered by index.html.
type pageData struct {
	Form   map[string]string
	Result *dto.RecommendResponse
	NoCrop bool
	Error  string
}

// Index renders the empty form.
//
// エンドポイント: GET /
func (h *RecommendHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{})
}

// Submit handles a form submission and renders the result below the form.
// Out-of-range values are rejected here and never reach the pipeline.
//
// エンドポイント: POST /
// Content-Type: application/x-www-form-urlencoded
func (h *RecommendHandler) Submit(c *gin.Context) {
	page := pageData{Form: make(map[string]string, len(entity.FeatureNames))}
	for _, name := range entity.FeatureNames {
		page.Form[name] = c.PostForm(name)
	}

	var req dto.RecommendRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		slog.Warn("フォームのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		page.Error = "Please enter every value within its allowed range."
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	rec, err := h.predictor.Predict(c.Request.Context(), req.Measurements().Vector())
	if err != nil {
		status, _ := statusFor(err)
		logFailure(err)
		if errors.Is(err, domain.ErrUnknownCrop) {
			page.NoCrop = true
		} else {
			page.Error = messageFor(err)
		}
		c.HTML(status, "index.html", page)
		return
	}

	page.Result = toResponse(rec)
	c.HTML(http.StatusOK, "index.html", page)
}

// Recommend is the JSON form of Submit.
//
// エンドポイント: POST /v1/recommend
// Content-Type: application/json
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("推薦リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "all seven measurements are required and must be within range",
			Code:  dto.CodeInvalidInput,
		})
		return
	}
	h.respond(c, req.Measurements().Vector())
}

// Predict accepts a raw positional feature vector.
//
// エンドポイント: POST /v1/predict
// Content-Type: application/json
// Body: {"features": [N, P, K, temperature, humidity, ph, rainfall]}
func (h *RecommendHandler) Predict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("予測リクエストの解析に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "features array is required", Code: dto.CodeInvalidInput})
		return
	}
	h.respond(c, req.Features)
}

// Crops lists the crops the service can recommend.
//
// エンドポイント: GET /v1/crops
func (h *RecommendHandler) Crops(c *gin.Context) {
	entries := h.crops.Entries()
	out := make([]dto.CropItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.CropItem{Label: e.Label, Name: e.Name, Description: e.Description})
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecommendHandler) respond(c *gin.Context, features []float64) {
	rec, err := h.predictor.Predict(c.Request.Context(), features)
	if err != nil {
		status, code := statusFor(err)
		logFailure(err)
		c.JSON(status, dto.ErrorResponse{Error: messageFor(err), Code: code})
		return
	}
	c.JSON(http.StatusOK, toResponse(rec))
}

func toResponse(rec *entity.Recommendation) *dto.RecommendResponse {
	return &dto.RecommendResponse{
		Label:       rec.Label,
		Crop:        rec.Crop,
		Description: rec.Description,
		ImageURL:    view.ImagePath,
	}
}

// statusFor maps a prediction error to an HTTP status and an error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, dto.CodeInvalidInput
	case errors.Is(err, domain.ErrUnknownCrop):
		return http.StatusUnprocessableEntity, dto.CodeUnknownCrop
	default:
		return http.StatusInternalServerError, dto.CodeModelFailure
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, domain.ErrUnknownCrop):
		return "could not determine a suitable crop"
	default:
		return "prediction failed"
	}
}

func logFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownCrop):
		slog.Warn("推薦できませんでした", "error", err)
	default:
		slog.Error("予測に失敗", "error", err)
	}
}
