// Package domain defines domain-level errors for the recommend feature.
package domain

import "errors"

// Domain errors for crop recommendation.
// ErrArtifactLoad is fatal at startup; the others are request-scoped and surfaced to the user.
var (
	// ErrArtifactLoad indicates that the classifier or one of the scalers could not be loaded.
	// The service must not start when this is returned.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrInvalidInput indicates a malformed feature vector (wrong arity or a non-finite value).
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelFailure indicates that a scaler or the classifier failed while predicting.
	ErrModelFailure = errors.New("model failure")

	// ErrUnknownCrop indicates that the classifier emitted a label with no catalog entry.
	ErrUnknownCrop = errors.New("unknown crop")
)
