package geodata

import (
	"github.com/paulmach/orb/geojson"

	"plz-territory-go/internal/region"
	"plz-territory-go/pkg/model"
)

// Feature properties added to the map feed
const (
	PropCode           = "plz"
	PropRepresentative = "representative"
	PropFill           = "fill"
)

// Choropleth styles every feature with its owner's color. When highlight is
// non-nil only the listed codes keep their color; all others are drawn gray.
// The dataset itself is not modified.
func (d *Dataset) Choropleth(assignments model.Assignments, highlight map[string]bool) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(d.Features))

	for i, src := range d.Features {
		code := d.Codes[i]

		label, fill := region.UnassignedLabel, region.UnassignedColor
		if owner := assignments[code]; owner != nil {
			label, fill = owner.Name, owner.Color
		}
		if highlight != nil && !highlight[code] {
			fill = region.UnassignedColor
		}

		f := *src
		f.Properties = src.Properties.Clone()
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		f.Properties[PropCode] = code
		f.Properties[PropRepresentative] = label
		f.Properties[PropFill] = fill

		fc.Append(&f)
	}
	return fc
}
