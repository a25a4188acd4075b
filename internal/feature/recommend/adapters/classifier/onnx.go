package classifier

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes how to open an ONNX classifier.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string // path to the onnxruntime shared library; empty uses the platform default
	InputName   string
	OutputName  string
	NumFeatures int
}

// ONNX runs a classifier exported to ONNX (for example with skl2onnx) through ONNX Runtime.
// The model must take a float32 [1, NumFeatures] input and produce an int64 [1] label.
type ONNX struct {
	mu           sync.Mutex // session tensors are reused between runs
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[int64]
	nFeatures    int
}

// NewONNX initializes the ONNX Runtime environment if needed and opens a session on the model.
func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	if cfg.NumFeatures <= 0 {
		return nil, fmt.Errorf("onnx: feature count must be positive, got %d", cfg.NumFeatures)
	}
	if !ort.IsInitialized() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.NumFeatures)))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		_ = inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		_ = inputTensor.Destroy()
		_ = outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNX{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		nFeatures:    cfg.NumFeatures,
	}, nil
}

// NumFeatures returns the width of the model input.
func (o *ONNX) NumFeatures() int { return o.nFeatures }

// Predict runs the model on one sample.
func (o *ONNX) Predict(x []float64) (int, error) {
	if len(x) != o.nFeatures {
		return 0, fmt.Errorf("onnx model expects %d features, got %d", o.nFeatures, len(x))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	in := o.inputTensor.GetData()
	for i, v := range x {
		in[i] = float32(v)
	}
	if err := o.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}
	return int(o.outputTensor.GetData()[0]), nil
}

// Close releases the session, its tensors and the ONNX Runtime environment.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inputTensor != nil {
		_ = o.inputTensor.Destroy()
		o.inputTensor = nil
	}
	if o.outputTensor != nil {
		_ = o.outputTensor.Destroy()
		o.outputTensor = nil
	}
	if o.session != nil {
		_ = o.session.Destroy()
		o.session = nil
	}
	return ort.DestroyEnvironment()
}
