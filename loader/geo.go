package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/schema"
)

// ============================================================================
// REGION OVERLAY — GeoJSON map regions
// ============================================================================
// Map files name the region under "nombre", "name" or "Region". All of them
// are copied to the canonical "region" property on load.
// ============================================================================

// RegionProperty is the canonical feature property holding the region name.
const RegionProperty = "region"

var regionPropertyAliases = []string{RegionProperty, "nombre", "name", "Region", "Región", "NOM_REG"}

// Region is one map feature.
type Region struct {
	Name     string
	Centroid orb.Point
	Bound    orb.Bound
	Feature  *geojson.Feature
}

// Overlay holds the map regions in file order.
type Overlay struct {
	Regions []Region
}

// LoadRegions reads a GeoJSON FeatureCollection from path.
func LoadRegions(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Op: "read", Err: err}
	}
	o, err := ParseRegions(data)
	if err != nil {
		return nil, &LoadError{Source: path, Op: "parse", Err: err}
	}
	return o, nil
}

// ParseRegions decodes a FeatureCollection. Features without a name are
// skipped.
func ParseRegions(data []byte) (*Overlay, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	o := &Overlay{}
	for _, f := range fc.Features {
		name := featureName(f)
		if name == "" {
			continue
		}
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		f.Properties[RegionProperty] = name

		r := Region{Name: name, Feature: f}
		if f.Geometry != nil {
			r.Bound = f.Geometry.Bound()
			r.Centroid, _ = planar.CentroidArea(f.Geometry)
		}
		o.Regions = append(o.Regions, r)
	}
	if len(o.Regions) == 0 {
		return nil, fmt.Errorf("no named regions in %d features", len(fc.Features))
	}
	return o, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range regionPropertyAliases {
		if v, ok := f.Properties[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Names returns region names in file order.
func (o *Overlay) Names() []string {
	if o == nil {
		return nil
	}
	names := make([]string, len(o.Regions))
	for i, r := range o.Regions {
		names[i] = r.Name
	}
	return names
}

// RegionCount is one row of the map ⟕ dataset join.
type RegionCount struct {
	Region   string    `json:"region"`
	Dataset  string    `json:"dataset,omitempty"` // matched dataset region name
	Records  int       `json:"records"`
	Centroid orb.Point `json:"centroid"`
}

// Join is the result of JoinRegions.
type Join struct {
	Regions   []RegionCount `json:"regions"`
	Unmatched []string      `json:"unmatched,omitempty"` // dataset regions with no map feature
}

// JoinRegions left-joins the view's per-region counts onto the map: every
// map region appears, with 0 records when the view has none. Names match
// exactly first, then accent/case-insensitively.
func JoinRegions(o *Overlay, view engine.RecordView) Join {
	counts := make(map[string]int)
	var order []string
	for i := 0; i < view.Len(); i++ {
		r := view.Record(i).Region
		if _, ok := counts[r]; !ok {
			order = append(order, r)
		}
		counts[r]++
	}
	byNorm := make(map[string]string, len(order))
	for _, r := range order {
		n := schema.NormalizeName(r)
		if _, ok := byNorm[n]; !ok {
			byNorm[n] = r
		}
	}

	var join Join
	matched := make(map[string]bool)
	if o != nil {
		for _, region := range o.Regions {
			rc := RegionCount{Region: region.Name, Centroid: region.Centroid}
			name, ok := region.Name, false
			if _, ok = counts[name]; !ok {
				name, ok = byNorm[schema.NormalizeName(region.Name)]
			}
			if ok {
				rc.Dataset = name
				rc.Records = counts[name]
				matched[name] = true
			}
			join.Regions = append(join.Regions, rc)
		}
	}
	for _, r := range order {
		if !matched[r] {
			join.Unmatched = append(join.Unmatched, r)
		}
	}
	return join
}
