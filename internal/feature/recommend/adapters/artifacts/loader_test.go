package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop_backend/internal/feature/recommend/domain"
	"crop_backend/internal/feature/recommend/domain/catalog"
	"crop_backend/internal/feature/recommend/domain/entity"
	"crop_backend/internal/feature/recommend/usecase"
)

// copyTestdata はtestdataの成果物を一時ディレクトリにコピーし、その設定を返します。
func copyTestdata(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()
	for _, name := range []string{"model.json", "standscaler.json", "minmaxscaler.json"} {
		b, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o600))
	}
	return Config{
		ModelPath:          filepath.Join(dir, "model.json"),
		StandardScalerPath: filepath.Join(dir, "standscaler.json"),
		MinMaxScalerPath:   filepath.Join(dir, "minmaxscaler.json"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoader_Load_Success(t *testing.T) {
	t.Parallel()

	arts, err := NewLoader(copyTestdata(t)).Load()

	require.NoError(t, err)
	assert.NotNil(t, arts.Classifier)
	assert.NotNil(t, arts.StandardScaler)
	assert.NotNil(t, arts.MinMaxScaler)
	assert.Equal(t, "forest", arts.ModelKind)
	assert.NoError(t, arts.Close())
}

// TestLoader_Load_CachesInstances は2回目以降のLoadがストレージを再読込せず同じインスタンスを返すことを検証します。
func TestLoader_Load_CachesInstances(t *testing.T) {
	t.Parallel()

	cfg := copyTestdata(t)
	l := NewLoader(cfg)

	first, err := l.Load()
	require.NoError(t, err)

	// A re-read would now fail.
	require.NoError(t, os.Remove(cfg.ModelPath))
	require.NoError(t, os.Remove(cfg.StandardScalerPath))
	require.NoError(t, os.Remove(cfg.MinMaxScalerPath))

	second, err := l.Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

// TestLoader_Load_ConcurrentFirstCalls は同時に呼ばれた初回Loadが一度だけ読み込み、同じインスタンスを共有することを検証します。
func TestLoader_Load_ConcurrentFirstCalls(t *testing.T) {
	t.Parallel()

	l := NewLoader(copyTestdata(t))

	const callers = 16
	results := make([]*Artifacts, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			arts, err := l.Load()
			assert.NoError(t, err)
			results[i] = arts
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		mutate       func(t *testing.T, cfg *Config)
		wantArtifact string
	}{
		{
			name: "missing model",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.Remove(cfg.ModelPath))
			},
			wantArtifact: NameModel,
		},
		{
			name: "missing onnx model",
			mutate: func(t *testing.T, cfg *Config) {
				cfg.ModelPath = filepath.Join(filepath.Dir(cfg.ModelPath), "absent.onnx")
			},
			wantArtifact: NameModel,
		},
		{
			name: "missing standard scaler",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.Remove(cfg.StandardScalerPath))
			},
			wantArtifact: NameStandardScaler,
		},
		{
			name: "missing min-max scaler",
			mutate: func(t *testing.T, cfg *Config) {
				require.NoError(t, os.Remove(cfg.MinMaxScalerPath))
			},
			wantArtifact: NameMinMaxScaler,
		},
		{
			name: "corrupt standard scaler",
			mutate: func(t *testing.T, cfg *Config) {
				writeFile(t, cfg.StandardScalerPath, `{"mean_": [0.1, `)
			},
			wantArtifact: NameStandardScaler,
		},
		{
			name: "min-max scaler fitted on six features",
			mutate: func(t *testing.T, cfg *Config) {
				writeFile(t, cfg.MinMaxScalerPath, `{"n_features_in_":6,"data_min_":[0,0,0,0,0,0],"data_max_":[1,1,1,1,1,1]}`)
			},
			wantArtifact: NameMinMaxScaler,
		},
		{
			name: "standard scaler fitted on eight features",
			mutate: func(t *testing.T, cfg *Config) {
				writeFile(t, cfg.StandardScalerPath, `{"mean_":[0,0,0,0,0,0,0,0],"scale_":[1,1,1,1,1,1,1,1]}`)
			},
			wantArtifact: NameStandardScaler,
		},
		{
			name: "model trained on two features",
			mutate: func(t *testing.T, cfg *Config) {
				writeFile(t, cfg.ModelPath, `{"n_features_in_":2,"classes_":[1],"estimators_":[{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1]]}]}`)
			},
			wantArtifact: NameModel,
		},
		{
			name: "unsupported model format",
			mutate: func(t *testing.T, cfg *Config) {
				cfg.ModelPath = filepath.Join(filepath.Dir(cfg.ModelPath), "model.pkl")
				writeFile(t, cfg.ModelPath, "pickle")
			},
			wantArtifact: NameModel,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := copyTestdata(t)
			tt.mutate(t, &cfg)

			arts, err := NewLoader(cfg).Load()

			require.Error(t, err)
			assert.Nil(t, arts)
			assert.ErrorIs(t, err, domain.ErrArtifactLoad)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.wantArtifact, le.Artifact)
		})
	}
}

// TestLoader_Load_ErrorIsCached は失敗した読み込みも一度だけ行われ、同じエラーが返ることを検証します。
func TestLoader_Load_ErrorIsCached(t *testing.T) {
	t.Parallel()

	cfg := copyTestdata(t)
	require.NoError(t, os.Remove(cfg.ModelPath))
	l := NewLoader(cfg)

	_, first := l.Load()
	require.Error(t, first)

	// Restoring the file does not trigger a reload.
	b, err := os.ReadFile(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)
	writeFile(t, cfg.ModelPath, string(b))

	_, second := l.Load()
	assert.Equal(t, first, second)
}

// TestPipeline_WithTestArtifacts runs the full pipeline against the fixture artifacts.
func TestPipeline_WithTestArtifacts(t *testing.T) {
	t.Parallel()

	arts, err := NewLoader(copyTestdata(t)).Load()
	require.NoError(t, err)
	p := usecase.NewPipeline(arts.MinMaxScaler, arts.StandardScaler, arts.Classifier, catalog.Default())

	tests := []struct {
		name     string
		m        entity.Measurements
		wantCrop string
	}{
		{
			name:     "rice growing conditions",
			m:        entity.Measurements{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.8, Humidity: 82.0, PH: 6.5, Rainfall: 202.9},
			wantCrop: "Rice",
		},
		{
			name:     "same soil with little rain",
			m:        entity.Measurements{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.8, Humidity: 82.0, PH: 6.5, Rainfall: 50},
			wantCrop: "Maize",
		},
		{
			name:     "dry air and poor nitrogen",
			m:        entity.Measurements{Nitrogen: 20, Phosphorus: 67, Potassium: 20, Temperature: 27, Humidity: 50, PH: 6, Rainfall: 180},
			wantCrop: "Pigeonpeas",
		},
		{
			name:     "humidity lower bound",
			m:        entity.Measurements{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.8, Humidity: 0, PH: 6.5, Rainfall: 202.9},
			wantCrop: "Pigeonpeas",
		},
		{
			name:     "humidity upper bound",
			m:        entity.Measurements{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.8, Humidity: 100, PH: 6.5, Rainfall: 202.9},
			wantCrop: "Rice",
		},
		{
			name:     "pH lower bound",
			m:        entity.Measurements{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.8, Humidity: 82, PH: 0, Rainfall: 202.9},
			wantCrop: "Rice",
		},
		{
			name:     "pH upper bound",
			m:        entity.Measurements{Nitrogen: 90, Phosphorus: 42, Potassium: 43, Temperature: 20.8, Humidity: 82, PH: 14, Rainfall: 202.9},
			wantCrop: "Rice",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Predict(context.Background(), tt.m.Vector())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCrop, got.Crop)

			again, err := p.Predict(context.Background(), tt.m.Vector())
			require.NoError(t, err)
			assert.Equal(t, got, again, "prediction must be deterministic")
		})
	}

	_, err = p.Predict(context.Background(), entity.Measurements{}.Vector()[:6])
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestMinMaxFixture_BoundaryRoundTrip feeds the fitted minimum and maximum back through the loaded scaler.
func TestMinMaxFixture_BoundaryRoundTrip(t *testing.T) {
	t.Parallel()

	arts, err := NewLoader(copyTestdata(t)).Load()
	require.NoError(t, err)

	lo, err := arts.MinMaxScaler.Transform([]float64{0, 5, 5, 8.825675, 14.25804, 3.504752, 20.211267})
	require.NoError(t, err)
	hi, err := arts.MinMaxScaler.Transform([]float64{140, 145, 205, 43.675493, 99.981876, 9.935091, 298.560117})
	require.NoError(t, err)

	for j := 0; j < entity.FeatureCount; j++ {
		assert.InDelta(t, 0.0, lo[j], 1e-9)
		assert.InDelta(t, 1.0, hi[j], 1e-9)
	}
}

// TestLoader_Load_Fingerprint は成果物の内容が同じなら同じ、変われば異なるフィンガープリントになることを検証します。
func TestLoader_Load_Fingerprint(t *testing.T) {
	t.Parallel()

	first, err := NewLoader(copyTestdata(t)).Load()
	require.NoError(t, err)
	assert.Len(t, first.Fingerprint, 12)

	same, err := NewLoader(copyTestdata(t)).Load()
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, same.Fingerprint, "identical files in another directory")

	cfg := copyTestdata(t)
	b, err := os.ReadFile(cfg.ModelPath)
	require.NoError(t, err)
	// 末尾の空白だけ違うモデルも別物として扱う
	writeFile(t, cfg.ModelPath, string(b)+"\n\n")

	changed, err := NewLoader(cfg).Load()
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, changed.Fingerprint)
}
