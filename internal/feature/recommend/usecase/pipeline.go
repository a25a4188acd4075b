// Package usecase implements the crop recommendation inference pipeline.
package usecase

import (
	"context"
	"fmt"
	"math"

	"crop_backend/internal/feature/recommend/domain"
	"crop_backend/internal/feature/recommend/domain/entity"
)

// Transformer is a fitted feature scaler.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Transformer interface {
	Transform(x []float64) ([]float64, error)
}

// Classifier maps a scaled feature vector to a single class label.
type Classifier interface {
	Predict(x []float64) (int, error)
}

// Catalog resolves labels to crop names and descriptions.
type Catalog interface {
	NameFor(label int) (string, bool)
	DescriptionFor(name string) (string, bool)
}

// Pipeline chains the min-max scaler, the standard scaler and the classifier, then resolves the
// label through the catalog. Its dependencies are read-only after construction, so a single
// Pipeline may serve concurrent requests.
type Pipeline struct {
	minMax     Transformer
	standard   Transformer
	classifier Classifier
	catalog    Catalog
}

// NewPipeline creates a Pipeline. The scalers are applied in the order they were fitted:
// min-max first, then standardization.
func NewPipeline(minMax, standard Transformer, clf Classifier, cat Catalog) *Pipeline {
	return &Pipeline{
		minMax:     minMax,
		standard:   standard,
		classifier: clf,
		catalog:    cat,
	}
}

// Predict recommends a crop for the given feature vector.
//
// Errors:
//   - domain.ErrInvalidInput: the vector does not have entity.FeatureCount finite values
//   - domain.ErrModelFailure: a scaler or the classifier failed
//   - domain.ErrUnknownCrop: the predicted label has no catalog entry
func (p *Pipeline) Predict(_ context.Context, features []float64) (*entity.Recommendation, error) {
	if err := validate(features); err != nil {
		return nil, err
	}

	scaled, err := p.scale(features)
	if err != nil {
		return nil, err
	}

	label, err := p.classify(scaled)
	if err != nil {
		return nil, err
	}

	name, ok := p.catalog.NameFor(label)
	if !ok {
		return nil, fmt.Errorf("%w: label %d", domain.ErrUnknownCrop, label)
	}
	desc, _ := p.catalog.DescriptionFor(name)

	return &entity.Recommendation{
		Label:       label,
		Crop:        name,
		Description: desc,
	}, nil
}

func validate(features []float64) error {
	if len(features) != entity.FeatureCount {
		return fmt.Errorf("%w: expected %d features, got %d", domain.ErrInvalidInput, entity.FeatureCount, len(features))
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", domain.ErrInvalidInput, entity.FeatureNames[i])
		}
	}
	return nil
}

// scale applies min-max then standardization. The input slice is never modified.
func (p *Pipeline) scale(features []float64) ([]float64, error) {
	mx, err := p.minMax.Transform(features)
	if err != nil {
		return nil, fmt.Errorf("%w: min-max transform: %v", domain.ErrModelFailure, err)
	}
	if len(mx) != entity.FeatureCount {
		return nil, fmt.Errorf("%w: min-max transform returned %d values", domain.ErrModelFailure, len(mx))
	}

	sc, err := p.standard.Transform(mx)
	if err != nil {
		return nil, fmt.Errorf("%w: standard transform: %v", domain.ErrModelFailure, err)
	}
	if len(sc) != entity.FeatureCount {
		return nil, fmt.Errorf("%w: standard transform returned %d values", domain.ErrModelFailure, len(sc))
	}
	return sc, nil
}

// classify runs the classifier, turning a panic inside the model into ErrModelFailure.
func (p *Pipeline) classify(scaled []float64) (label int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: classifier panicked: %v", domain.ErrModelFailure, r)
		}
	}()

	label, err = p.classifier.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
	}
	return label, nil
}
