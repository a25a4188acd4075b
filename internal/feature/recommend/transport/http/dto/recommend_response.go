package dto

// RecommendResponse is returned when a crop was recommended.
type RecommendResponse struct {
	Label       int    `json:"label"`
	Crop        string `json:"crop"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url"`
}

// CropItem is a catalog row in the crop listing.
type CropItem struct {
	Label       int    `json:"label"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes.
const (
	CodeInvalidInput = "invalid_input"
	CodeUnknownCrop  = "unknown_crop"
	CodeModelFailure = "model_failure"
)
