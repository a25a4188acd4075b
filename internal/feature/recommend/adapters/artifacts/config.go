// Package artifacts loads the pre-trained classifier and feature scalers from disk.
package artifacts

import (
	"os"
)

// Config holds the locations of the three serialized artifacts.
type Config struct {
	ModelPath          string // classifier; .onnx or .json (tree ensemble)
	StandardScalerPath string
	MinMaxScalerPath   string

	ONNXLibraryPath string // onnxruntime shared library
	ONNXInputName   string
	ONNXOutputName  string
}

// LoadConfig loads artifact locations from environment variables, falling back to the
// models/ directory next to the working directory.
func LoadConfig() Config {
	return Config{
		ModelPath:          getEnv("MODEL_PATH", "models/model.onnx"),
		StandardScalerPath: getEnv("STANDARD_SCALER_PATH", "models/standscaler.json"),
		MinMaxScalerPath:   getEnv("MINMAX_SCALER_PATH", "models/minmaxscaler.json"),
		ONNXLibraryPath:    os.Getenv("ONNXRUNTIME_LIB_PATH"),
		ONNXInputName:      getEnv("ONNX_INPUT_NAME", "float_input"),
		ONNXOutputName:     getEnv("ONNX_OUTPUT_NAME", "output_label"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
