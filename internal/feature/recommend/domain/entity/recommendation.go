package entity

// Recommendation is the result of a successful prediction.
type Recommendation struct {
	Label       int    `json:"label"`
	Crop        string `json:"crop"`
	Description string `json:"description,omitempty"`
}

// CropEntry is a single catalog row.
type CropEntry struct {
	Label       int
	Name        string
	Description string
}
