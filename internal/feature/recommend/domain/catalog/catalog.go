// Package catalog holds the static mapping from classifier labels to crops.
package catalog

import (
	"sort"

	"crop_backend/internal/feature/recommend/domain/entity"
)

// Catalog resolves classifier labels to crop names and crop names to descriptions.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	names        map[int]string
	descriptions map[string]string
}

// labels emitted by the trained classifier.
var defaultNames = map[int]string{
	1:  "Rice",
	2:  "Maize",
	3:  "Jute",
	4:  "Cotton",
	5:  "Coconut",
	6:  "Papaya",
	7:  "Orange",
	8:  "Apple",
	9:  "Muskmelon",
	10: "Watermelon",
	11: "Grapes",
	12: "Mango",
	13: "Banana",
	14: "Pomegranate",
	15: "Lentil",
	16: "Blackgram",
	17: "Mungbean",
	18: "Mothbeans",
	19: "Pigeonpeas",
	20: "Kidneybeans",
	21: "Chickpea",
	22: "Coffee",
}

var defaultDescriptions = map[string]string{
	"Rice":        "Staple food crop that thrives in wet, humid conditions with consistent temperatures.",
	"Maize":       "Versatile grain crop that prefers moderate temperatures and well-drained soil.",
	"Jute":        "Fiber crop that grows well in high humidity and rainfall conditions.",
	"Cotton":      "Important fiber crop that requires warm temperatures and moderate rainfall.",
	"Coconut":     "Tropical crop that thrives in coastal areas with high humidity.",
	"Papaya":      "Tropical fruit that prefers warm temperatures and well-drained soil.",
	"Orange":      "Citrus fruit that grows best in subtropical climates.",
	"Apple":       "Temperate fruit that requires cold winters and moderate summers.",
	"Muskmelon":   "Summer fruit that needs warm temperatures and moderate watering.",
	"Watermelon":  "Heat-loving fruit that requires well-drained soil and consistent moisture.",
	"Grapes":      "Fruit crop that grows well in various climates with good drainage.",
	"Mango":       "Tropical fruit that prefers warm, dry winters and hot summers.",
	"Banana":      "Tropical fruit that thrives in humid conditions with consistent moisture.",
	"Pomegranate": "Fruit that prefers semi-arid regions with hot summers.",
	"Lentil":      "Cool-season pulse crop that grows well in well-drained soil.",
	"Blackgram":   "Pulse crop that prefers warm temperatures and moderate rainfall.",
	"Mungbean":    "Short-season pulse crop that thrives in warm temperatures.",
	"Mothbeans":   "Drought-resistant pulse crop suitable for semi-arid regions.",
	"Pigeonpeas":  "Tropical legume that tolerates dry conditions once established.",
	"Kidneybeans": "Legume that prefers moderate temperatures and consistent moisture.",
	"Chickpea":    "Cool-season legume that grows well in semi-arid regions.",
	"Coffee":      "Tropical crop that prefers shade, consistent moisture, and specific altitude ranges.",
}

// Default returns the catalog of the 22 crops the classifier was trained on.
func Default() *Catalog {
	return New(defaultNames, defaultDescriptions)
}

// New builds a catalog from the given mappings. The maps are copied.
func New(names map[int]string, descriptions map[string]string) *Catalog {
	c := &Catalog{
		names:        make(map[int]string, len(names)),
		descriptions: make(map[string]string, len(descriptions)),
	}
	for k, v := range names {
		c.names[k] = v
	}
	for k, v := range descriptions {
		c.descriptions[k] = v
	}
	return c
}

// NameFor returns the crop name for a label, or false if the label is not catalogued.
func (c *Catalog) NameFor(label int) (string, bool) {
	name, ok := c.names[label]
	return name, ok
}

// DescriptionFor returns the description for a crop name, or false if none is known.
func (c *Catalog) DescriptionFor(name string) (string, bool) {
	desc, ok := c.descriptions[name]
	return desc, ok
}

// Entries lists every catalogued crop ordered by label.
func (c *Catalog) Entries() []entity.CropEntry {
	out := make([]entity.CropEntry, 0, len(c.names))
	for label, name := range c.names {
		out = append(out, entity.CropEntry{
			Label:       label,
			Name:        name,
			Description: c.descriptions[name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
