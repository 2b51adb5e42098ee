package helpers

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/spektr-org/sharkscope/engine"
)

// ============================================================================
// GEO HELPER — State boundary file → labelled regions
// ============================================================================
// Reads a GeoJSON FeatureCollection whose features carry a STATE_NAME
// property. Each feature becomes a Region resolved through the state alias
// table, with an area-weighted centroid for label placement. Only Polygon
// and MultiPolygon geometries are understood; orb does the decoding and the
// planar geometry.
// ============================================================================

// ErrNoRegions is returned when a boundary file holds no usable features.
var ErrNoRegions = errors.New("no regions in boundary file")

// RegionNameProperty is the feature property holding the region name.
const RegionNameProperty = "STATE_NAME"

// Region is one state polygon reduced to what the map labels need.
type Region struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Color    string  `json:"color"`
	Centroid LatLon  `json:"centroid"`
	Area     float64 `json:"-"`
}

// LatLon is a point in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LoadRegions parses GeoJSON into regions in file order. Features without a
// name or a supported geometry are skipped.
func LoadRegions(data []byte) ([]Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode boundary file: %w", err)
	}

	var regions []Region
	for _, f := range fc.Features {
		name := f.Properties.MustString(RegionNameProperty, "")
		if name == "" || !isArea(f.Geometry) {
			continue
		}
		centroid, area := labelPoint(f.Geometry)
		regions = append(regions, Region{
			Name:     name,
			Code:     engine.StateCode(name),
			Color:    engine.StateColor(name),
			Centroid: centroid,
			Area:     area,
		})
	}

	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	return regions, nil
}

// LoadRegionsFile reads and parses the boundary file at path.
func LoadRegionsFile(path string, log *zap.Logger) ([]Region, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file: %w", err)
	}
	regions, err := LoadRegions(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Info("regions loaded", zap.String("path", path), zap.Int("regions", len(regions)))
	return regions, nil
}

func isArea(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) > 0
	case orb.MultiPolygon:
		return len(g) > 0
	default:
		return false
	}
}

// labelPoint returns the area-weighted centroid (holes subtracted) and the
// area of g. Zero-area shapes are labelled at their bounding-box center.
func labelPoint(g orb.Geometry) (LatLon, float64) {
	c, area := planar.CentroidArea(g)
	area = math.Abs(area)
	if area == 0 {
		c = g.Bound().Center()
	}
	return LatLon{Lat: c.Lat(), Lon: c.Lon()}, area
}
