package scaler

import (
	"encoding/json"
	"fmt"
	"io"
)

type standardParams struct {
	NFeatures int       `json:"n_features_in_"`
	Mean      []float64 `json:"mean_"`
	Scale     []float64 `json:"scale_"`
}

// StandardScaler centers each feature on its fitted mean and divides by its fitted standard deviation.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// NewStandardScaler builds a scaler from fitted means and standard deviations.
// A zero deviation is replaced by 1 so constant features pass through centered.
func NewStandardScaler(mean, std []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("standard scaler has no features")
	}
	if len(mean) != len(std) {
		return nil, fmt.Errorf("standard scaler: mean_ has %d values, scale_ has %d", len(mean), len(std))
	}
	s := &StandardScaler{
		Mean: append([]float64(nil), mean...),
		Std:  make([]float64, len(std)),
	}
	for j, v := range std {
		if v < 0 {
			return nil, fmt.Errorf("standard scaler: negative scale_ for feature %d", j)
		}
		if v == 0 {
			v = 1
		}
		s.Std[j] = v
	}
	return s, nil
}

// DecodeStandard reads a fitted standard scaler from JSON.
func DecodeStandard(r io.Reader) (*StandardScaler, error) {
	var p standardParams
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode standard scaler: %w", err)
	}
	if p.NFeatures != 0 && p.NFeatures != len(p.Mean) {
		return nil, fmt.Errorf("standard scaler: n_features_in_ is %d but mean_ has %d values", p.NFeatures, len(p.Mean))
	}
	return NewStandardScaler(p.Mean, p.Scale)
}

// NumFeatures returns the number of features the scaler was fitted on.
func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("standard scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
