// Package dto defines data transfer objects for the recommend HTTP API.
package dto

import "crop_backend/internal/feature/recommend/domain/entity"

// RecommendRequest carries the seven measurements from the form or the JSON API.
// Pointers distinguish a missing field from an explicit zero; the range rules match the form inputs.
type RecommendRequest struct {
	Nitrogen    *float64 `json:"nitrogen" form:"nitrogen" binding:"required,min=0"`
	Phosphorus  *float64 `json:"phosphorus" form:"phosphorus" binding:"required,min=0"`
	Potassium   *float64 `json:"potassium" form:"potassium" binding:"required,min=0"`
	Temperature *float64 `json:"temperature" form:"temperature" binding:"required,min=0"`
	Humidity    *float64 `json:"humidity" form:"humidity" binding:"required,min=0,max=100"`
	PH          *float64 `json:"ph" form:"ph" binding:"required,min=0,max=14"`
	Rainfall    *float64 `json:"rainfall" form:"rainfall" binding:"required,min=0"`
}

// Measurements converts a bound request. It must only be called after binding succeeded.
func (r RecommendRequest) Measurements() entity.Measurements {
	return entity.Measurements{
		Nitrogen:    *r.Nitrogen,
		Phosphorus:  *r.Phosphorus,
		Potassium:   *r.Potassium,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
		PH:          *r.PH,
		Rainfall:    *r.Rainfall,
	}
}

// PredictRequest is a raw, positional feature vector.
type PredictRequest struct {
	Features []float64 `json:"features" binding:"required"`
}
