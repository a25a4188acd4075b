package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"crop_backend/internal/feature/recommend/adapters/classifier"
	"crop_backend/internal/feature/recommend/adapters/scaler"
	"crop_backend/internal/feature/recommend/domain"
	"crop_backend/internal/feature/recommend/domain/entity"
	"crop_backend/internal/feature/recommend/usecase"
)

// Artifact names used in errors and logs.
const (
	NameModel          = "model"
	NameStandardScaler = "standard scaler"
	NameMinMaxScaler   = "min-max scaler"
)

// LoadError reports which artifact failed to load.
// It matches domain.ErrArtifactLoad with errors.Is.
type LoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", domain.ErrArtifactLoad, e.Artifact, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is domain.ErrArtifactLoad.
func (e *LoadError) Is(target error) bool { return target == domain.ErrArtifactLoad }

// Artifacts is the set of fitted objects the inference pipeline needs.
// They are read-only once loaded.
type Artifacts struct {
	Classifier     usecase.Classifier
	StandardScaler usecase.Transformer
	MinMaxScaler   usecase.Transformer
	ModelKind      string // "onnx" or "forest"
	// Fingerprint is a short SHA-256 over the three files, in load order.
	// It changes whenever any artifact is replaced.
	Fingerprint string
}

// Close releases native resources held by the classifier, if any.
func (a *Artifacts) Close() error {
	if c, ok := a.Classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Loader reads the artifacts once and hands the same instances to every caller.
type Loader struct {
	cfg Config

	once      sync.Once
	artifacts *Artifacts
	err       error
}

// NewLoader creates a Loader for the given configuration. Nothing is read until Load is called.
func NewLoader(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load reads the classifier and both scalers on the first call. Concurrent first calls block
// until that load finishes; every call returns the same *Artifacts, or the same error.
func (l *Loader) Load() (*Artifacts, error) {
	l.once.Do(func() {
		l.artifacts, l.err = l.load()
	})
	return l.artifacts, l.err
}

func (l *Loader) load() (*Artifacts, error) {
	sum := sha256.New()

	mx, err := openWith(NameMinMaxScaler, l.cfg.MinMaxScalerPath, sum, scaler.DecodeMinMax)
	if err != nil {
		return nil, err
	}
	if err := checkWidth(NameMinMaxScaler, l.cfg.MinMaxScalerPath, mx.NumFeatures()); err != nil {
		return nil, err
	}

	sc, err := openWith(NameStandardScaler, l.cfg.StandardScalerPath, sum, scaler.DecodeStandard)
	if err != nil {
		return nil, err
	}
	if err := checkWidth(NameStandardScaler, l.cfg.StandardScalerPath, sc.NumFeatures()); err != nil {
		return nil, err
	}

	clf, kind, err := l.loadClassifier(sum)
	if err != nil {
		return nil, err
	}
	fingerprint := hex.EncodeToString(sum.Sum(nil))[:12]

	slog.Info("artifacts loaded",
		"model", l.cfg.ModelPath,
		"model_kind", kind,
		"fingerprint", fingerprint,
		"standard_scaler", l.cfg.StandardScalerPath,
		"minmax_scaler", l.cfg.MinMaxScalerPath,
	)
	return &Artifacts{
		Classifier:     clf,
		StandardScaler: sc,
		MinMaxScaler:   mx,
		ModelKind:      kind,
		Fingerprint:    fingerprint,
	}, nil
}

func (l *Loader) loadClassifier(sum hash.Hash) (usecase.Classifier, string, error) {
	path := l.cfg.ModelPath
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := openWith(NameModel, path, sum, classifier.DecodeForest)
		if err != nil {
			return nil, "", err
		}
		if err := checkWidth(NameModel, path, f.NumFeatures()); err != nil {
			return nil, "", err
		}
		return f, "forest", nil
	case ".onnx":
		// ONNX Runtime reports a missing file with an opaque message; read it ourselves first.
		if err := hashFile(path, sum); err != nil {
			return nil, "", &LoadError{Artifact: NameModel, Path: path, Err: err}
		}
		o, err := classifier.NewONNX(classifier.ONNXConfig{
			ModelPath:   path,
			LibraryPath: l.cfg.ONNXLibraryPath,
			InputName:   l.cfg.ONNXInputName,
			OutputName:  l.cfg.ONNXOutputName,
			NumFeatures: entity.FeatureCount,
		})
		if err != nil {
			return nil, "", &LoadError{Artifact: NameModel, Path: path, Err: err}
		}
		return o, "onnx", nil
	default:
		return nil, "", &LoadError{
			Artifact: NameModel,
			Path:     path,
			Err:      errors.New("unsupported model format, want .onnx or .json"),
		}
	}
}

// openWith opens path and decodes it, wrapping any failure in a LoadError.
// Every byte of the file is also written to sum.
func openWith[T any](name, path string, sum hash.Hash, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, &LoadError{Artifact: name, Path: path, Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close artifact file", "path", path, "error", err)
		}
	}()

	r := io.TeeReader(f, sum)
	v, err := decode(r)
	if err != nil {
		return zero, &LoadError{Artifact: name, Path: path, Err: err}
	}
	// デコーダが読み残した分もハッシュに含める
	if _, err := io.Copy(io.Discard, r); err != nil {
		return zero, &LoadError{Artifact: name, Path: path, Err: err}
	}
	return v, nil
}

func hashFile(path string, sum hash.Hash) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(sum, f)
	return err
}

func checkWidth(name, path string, n int) error {
	if n != entity.FeatureCount {
		return &LoadError{
			Artifact: name,
			Path:     path,
			Err:      fmt.Errorf("fitted on %d features, want %d", n, entity.FeatureCount),
		}
	}
	return nil
}
