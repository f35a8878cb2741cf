// Package geo implements the EWKT shape parser, HTM cell-range
// generation, and range-set algebra used to index geospatial values
// (spec.md §4.2). Grounded on original_source's
// geospatial/ewkt.{h,cc} (grammar, SRID handling, error messages) and
// geo/ewkt.cc (an earlier revision kept for the HTM subdivision
// strategy it shares with htm.cc, referenced in the same directory).
package geo

import (
	"fmt"

	"docindex/internal/xerrors"
)

// ShapeType enumerates the EWKT tags from spec.md §4.2.
type ShapeType string

const (
	Point                 ShapeType = "POINT"
	MultiPoint            ShapeType = "MULTIPOINT"
	Circle                ShapeType = "CIRCLE"
	MultiCircle           ShapeType = "MULTICIRCLE"
	Convex                ShapeType = "CONVEX"
	MultiConvex           ShapeType = "MULTICONVEX"
	Polygon               ShapeType = "POLYGON"
	MultiPolygon          ShapeType = "MULTIPOLYGON"
	Chull                 ShapeType = "CHULL"
	MultiChull            ShapeType = "MULTICHULL"
	GeometryCollection    ShapeType = "GEOMETRYCOLLECTION"
	GeometryIntersection  ShapeType = "GEOMETRYINTERSECTION"
)

var shapeTags = []ShapeType{
	Point, MultiPoint, Circle, MultiCircle, Convex, MultiConvex,
	Polygon, MultiPolygon, Chull, MultiChull,
	GeometryCollection, GeometryIntersection,
}

// Point3D is a lon/lat/height coordinate in degrees (height in meters).
type Point3D struct {
	Lon, Lat, Height float64
}

// Ring is a closed sequence of coordinates (polygon/convex/chull boundary).
type Ring []Point3D

// Shape is a single parsed EWKT geometry (possibly a collection).
type Shape struct {
	Type     ShapeType
	SRID     int
	Empty    bool
	Points   []Point3D // POINT, MULTIPOINT
	Radius   []float64 // CIRCLE/MULTICIRCLE, parallel to Points
	Rings    []Ring    // POLYGON/MULTIPOLYGON (outer + holes flattened per polygon), CONVEX/CHULL point sets
	Children []*Shape  // GEOMETRYCOLLECTION / GEOMETRYINTERSECTION

	// Partials and Error hold the indexing tolerance knobs from spec §4.2,
	// set by the caller (schema engine) rather than parsed from EWKT.
	Partials bool
	Error    float64
}

// WGS84 is the default SRID used when an EWKT string omits "SRID=NNNN;".
const WGS84 = 4326

// DefaultError and DefaultPartials mirror spec.md §4.2's stated defaults.
const DefaultError = 0.3

var DefaultPartials = true

func shapeTypeFromTag(tag string) (ShapeType, error) {
	for _, s := range shapeTags {
		if string(s) == tag {
			return s, nil
		}
	}
	return "", xerrors.New(xerrors.EWKT, "unknown geometry tag %q", tag)
}

func (s *Shape) String() string {
	return fmt.Sprintf("%s(SRID=%d, empty=%v, points=%d, rings=%d, children=%d)",
		s.Type, s.SRID, s.Empty, len(s.Points), len(s.Rings), len(s.Children))
}
