// Package entity defines the domain models for the recommend feature.
package entity

// FeatureCount is the number of measurements the scalers and the classifier were fitted on.
const FeatureCount = 7

// FeatureNames lists the measurement names in the order the artifacts expect them.
var FeatureNames = [FeatureCount]string{
	"nitrogen",
	"phosphorus",
	"potassium",
	"temperature",
	"humidity",
	"ph",
	"rainfall",
}

// Measurements holds one set of soil and climate readings submitted by a user.
type Measurements struct {
	Nitrogen    float64 // mg/kg
	Phosphorus  float64 // mg/kg
	Potassium   float64 // mg/kg
	Temperature float64 // °C
	Humidity    float64 // relative humidity, 0-100
	PH          float64 // 0-14
	Rainfall    float64 // mm
}

// Vector returns the measurements as a feature vector in FeatureNames order.
// The transforms are positional, so this is the only valid ordering.
func (m Measurements) Vector() []float64 {
	return []float64{
		m.Nitrogen,
		m.Phosphorus,
		m.Potassium,
		m.Temperature,
		m.Humidity,
		m.PH,
		m.Rainfall,
	}
}
