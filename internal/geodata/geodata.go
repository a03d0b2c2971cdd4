// Package geodata loads the PLZ boundary dataset and derives the map feed from it.
// Geometry is passed through untouched.
package geodata

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// DefaultProperty is the feature property holding the postal code
const DefaultProperty = "plz"

// Dataset is a parsed boundary file. Codes[i] is the region code of Features[i].
type Dataset struct {
	Features []*geojson.Feature
	Codes    []string
}

// Load reads and parses a GeoJSON FeatureCollection from path
func Load(path, property string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary data: %w", err)
	}
	ds, err := Parse(data, property)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a FeatureCollection and extracts one region code per feature
func Parse(data []byte, property string) (*Dataset, error) {
	if strings.TrimSpace(property) == "" {
		property = DefaultProperty
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("feature collection is empty")
	}

	ds := &Dataset{
		Features: fc.Features,
		Codes:    make([]string, len(fc.Features)),
	}
	for i, f := range fc.Features {
		ds.Codes[i] = regionCode(f.Properties, property, i)
	}
	return ds, nil
}

// UniqueCodes returns the distinct region codes in dataset order
func (d *Dataset) UniqueCodes() []string {
	seen := make(map[string]struct{}, len(d.Codes))
	out := make([]string, 0, len(d.Codes))
	for _, code := range d.Codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// regionCode reads the code property; features without one are named "PLZ <index>"
func regionCode(props geojson.Properties, property string, idx int) string {
	switch v := props[property].(type) {
	case string:
		if code := strings.TrimSpace(v); code != "" {
			return code
		}
	case float64:
		// Numeric PLZ lose their leading zero in some exports (01067 -> 1067).
		if v == math.Trunc(v) && v >= 0 && v < 100000 {
			return fmt.Sprintf("%05d", int64(v))
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("PLZ %d", idx)
}
