// Package scaler provides fitted feature scalers decoded from their serialized parameters.
// The JSON layouts mirror the fitted attributes of scikit-learn's MinMaxScaler and StandardScaler,
// so a pickled scaler can be exported with:
//
//	{"n_features_in_": s.n_features_in_, "data_min_": s.data_min_.tolist(),
//	 "data_max_": s.data_max_.tolist(), "feature_range": list(s.feature_range)}
//	{"n_features_in_": s.n_features_in_, "mean_": s.mean_.tolist(), "scale_": s.scale_.tolist()}
package scaler

import (
	"encoding/json"
	"fmt"
	"io"
)

// minMaxParams is the serialized form of a fitted min-max scaler.
type minMaxParams struct {
	NFeatures    int        `json:"n_features_in_"`
	DataMin      []float64  `json:"data_min_"`
	DataMax      []float64  `json:"data_max_"`
	FeatureRange [2]float64 `json:"feature_range"`
}

// MinMaxScaler rescales each feature linearly so that the fitted minimum maps to the lower bound
// of the feature range and the fitted maximum to the upper bound.
// Values outside the fitted range are not clamped; they extrapolate along the same line.
type MinMaxScaler struct {
	DataMin []float64
	DataMax []float64
	scale   []float64
	offset  []float64
}

// NewMinMaxScaler builds a scaler from fitted per-feature minimums and maximums and a target range.
func NewMinMaxScaler(dataMin, dataMax []float64, lo, hi float64) (*MinMaxScaler, error) {
	if len(dataMin) == 0 {
		return nil, fmt.Errorf("min-max scaler has no features")
	}
	if len(dataMin) != len(dataMax) {
		return nil, fmt.Errorf("min-max scaler: data_min_ has %d values, data_max_ has %d", len(dataMin), len(dataMax))
	}
	if hi <= lo {
		return nil, fmt.Errorf("min-max scaler: invalid feature range [%g, %g]", lo, hi)
	}

	s := &MinMaxScaler{
		DataMin: append([]float64(nil), dataMin...),
		DataMax: append([]float64(nil), dataMax...),
		scale:   make([]float64, len(dataMin)),
		offset:  make([]float64, len(dataMin)),
	}
	for j := range dataMin {
		rng := dataMax[j] - dataMin[j]
		if rng == 0 {
			// constant feature
			rng = 1
		}
		s.scale[j] = (hi - lo) / rng
		s.offset[j] = lo - dataMin[j]*s.scale[j]
	}
	return s, nil
}

// DecodeMinMax reads a fitted min-max scaler from JSON.
func DecodeMinMax(r io.Reader) (*MinMaxScaler, error) {
	p := minMaxParams{FeatureRange: [2]float64{0, 1}}
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode min-max scaler: %w", err)
	}
	if p.NFeatures != 0 && p.NFeatures != len(p.DataMin) {
		return nil, fmt.Errorf("min-max scaler: n_features_in_ is %d but data_min_ has %d values", p.NFeatures, len(p.DataMin))
	}
	return NewMinMaxScaler(p.DataMin, p.DataMax, p.FeatureRange[0], p.FeatureRange[1])
}

// NumFeatures returns the number of features the scaler was fitted on.
func (s *MinMaxScaler) NumFeatures() int { return len(s.scale) }

// Transform returns a rescaled copy of x.
func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.scale) {
		return nil, fmt.Errorf("min-max scaler expects %d features, got %d", len(s.scale), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = v*s.scale[j] + s.offset[j]
	}
	return out, nil
}
