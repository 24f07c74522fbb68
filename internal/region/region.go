package region

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Region is a closed planar area in longitude/latitude. It is a plain value
// handed to every component that filters, clips, samples or exports.
type Region struct {
	Name     string
	Geometry orb.Geometry
}

func New(name string, g orb.Geometry) (Region, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 || len(geom[0]) < 4 {
			return Region{}, fmt.Errorf("region %s: polygon needs a closed outer ring", name)
		}
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return Region{}, fmt.Errorf("region %s: empty multipolygon", name)
		}
	case orb.Bound:
		g = geom.ToPolygon()
	case nil:
		return Region{}, fmt.Errorf("region %s: missing geometry", name)
	default:
		return Region{}, fmt.Errorf("region %s: unsupported geometry type %s", name, g.GeoJSONType())
	}
	return Region{Name: name, Geometry: g}, nil
}

// Buffered approximates a geodesic buffer of radius metres around (lon, lat)
// with a polygon of the given number of segments.
func Buffered(name string, lon, lat, radius float64, segments int) (Region, error) {
	if radius <= 0 {
		return Region{}, fmt.Errorf("region %s: buffer radius must be positive, got %v", name, radius)
	}
	if segments < 8 {
		segments = 8
	}
	center := orb.Point{lon, lat}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		bearing := 360 * float64(i) / float64(segments)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}
	ring = append(ring, ring[0])
	return New(name, orb.Polygon{ring})
}

// FromGeoJSON loads a region from a GeoJSON file. For a FeatureCollection the
// first feature whose property key equals value is used; an empty key selects
// the first feature. A bare geometry document is accepted as well.
func FromGeoJSON(path, key, value string) (Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Region{}, fmt.Errorf("failed to read region file: %w", err)
	}
	return ParseGeoJSON(data, key, value)
}

func ParseGeoJSON(data []byte, key, value string) (Region, error) {
	name := value
	if name == "" {
		name = "region"
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && len(fc.Features) > 0 {
		for _, feature := range fc.Features {
			if key == "" || fmt.Sprint(feature.Properties[key]) == value {
				return New(name, feature.Geometry)
			}
		}
		return Region{}, fmt.Errorf("no feature with %s=%s found", key, value)
	}

	g, gerr := geojson.UnmarshalGeometry(data)
	if gerr != nil {
		return Region{}, fmt.Errorf("failed to parse GeoJSON region: %w", errors.Join(err, gerr))
	}
	return New(name, g.Coordinates)
}

func (r Region) Bound() orb.Bound {
	return r.Geometry.Bound()
}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(lon, lat float64) bool {
	p := orb.Point{lon, lat}
	switch g := r.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}
	return false
}

// ContainsPixel reports whether the centre of pixel (x, y) lies inside the region.
func (r Region) ContainsPixel(grid raster.Grid, x, y int) bool {
	lon, lat := grid.PixelCenter(x, y)
	return r.Contains(lon, lat)
}

// Intersects reports whether the region's bounding box overlaps the grid extent.
func (r Region) Intersects(grid raster.Grid) bool {
	b := grid.Bounds()
	return r.Bound().Intersects(orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}})
}

// Window returns the pixel window of grid's lattice covering the region's
// bounding box. The window may extend past the grid.
func (r Region) Window(grid raster.Grid) (x0, y0, width, height int, err error) {
	gt := grid.GeoTransform
	if gt[1] == 0 || gt[5] == 0 || gt[2] != 0 || gt[4] != 0 {
		return 0, 0, 0, 0, fmt.Errorf("region %s: rotated or degenerate geotransform %v", r.Name, gt)
	}
	b := r.Bound()
	xa := (b.Min[0] - gt[0]) / gt[1]
	xb := (b.Max[0] - gt[0]) / gt[1]
	ya := (b.Min[1] - gt[3]) / gt[5]
	yb := (b.Max[1] - gt[3]) / gt[5]

	x0 = int(math.Floor(math.Min(xa, xb)))
	x1 := int(math.Ceil(math.Max(xa, xb)))
	y0 = int(math.Floor(math.Min(ya, yb)))
	y1 := int(math.Ceil(math.Max(ya, yb)))
	return x0, y0, max(x1-x0, 1), max(y1-y0, 1), nil
}
