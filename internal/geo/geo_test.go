package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeUnionMergesOverlapping(t *testing.T) {
	got := RangeUnion([]Range{{1, 5}, {10, 15}}, []Range{{4, 12}})
	assert.Equal(t, []Range{{1, 15}}, got)
}

func TestRangeUnionMergesAdjacent(t *testing.T) {
	got := RangeUnion([]Range{{1, 5}, {6, 10}}, nil)
	assert.Equal(t, []Range{{1, 10}}, got)
}

func TestRangeUnionIsOrderIndependent(t *testing.T) {
	a := []Range{{1, 5}, {20, 25}, {10, 12}}
	b := []Range{{10, 12}, {1, 5}, {20, 25}}
	assert.Equal(t, RangeUnion(a, nil), RangeUnion(b, nil))
}

func TestRangeUnionIsIdempotent(t *testing.T) {
	once := RangeUnion([]Range{{1, 5}, {3, 8}, {20, 25}}, nil)
	twice := RangeUnion(once, nil)
	assert.Equal(t, once, twice)
}

func TestRangeUnionDisjoint(t *testing.T) {
	got := RangeUnion([]Range{{1, 2}}, []Range{{10, 12}})
	assert.Equal(t, []Range{{1, 2}, {10, 12}}, got)
}

func TestParsePoint(t *testing.T) {
	shape, err := Parse("POINT(-3.7 40.4)")
	require.NoError(t, err)
	assert.Equal(t, Point, shape.Type)
	require.Len(t, shape.Points, 1)
	assert.InDelta(t, -3.7, shape.Points[0].Lon, 1e-9)
	assert.InDelta(t, 40.4, shape.Points[0].Lat, 1e-9)
}

func TestParseWithSRID(t *testing.T) {
	shape, err := Parse("SRID=4326;POINT(-3.7 40.4)")
	require.NoError(t, err)
	assert.Equal(t, 4326, shape.SRID)
}

func TestParseEmpty(t *testing.T) {
	shape, err := Parse("POLYGON EMPTY")
	require.NoError(t, err)
	assert.True(t, shape.Empty)
	assert.Nil(t, shape.Ranges(5))
}

func TestParsePolygon(t *testing.T) {
	shape, err := Parse("POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))")
	require.NoError(t, err)
	require.Len(t, shape.Rings, 1)
	assert.Len(t, shape.Rings[0], 5)
}

func TestParsePolygonWithHole(t *testing.T) {
	shape, err := Parse("POLYGON((0 0, 4 0, 4 4, 0 4), (1 1, 2 1, 2 2, 1 2))")
	require.NoError(t, err)
	assert.Len(t, shape.Rings, 2)
}

func TestParseMultiPoint(t *testing.T) {
	shape, err := Parse("MULTIPOINT(1 1, 2 2, 3 3)")
	require.NoError(t, err)
	assert.Len(t, shape.Points, 3)
}

func TestParseCircle(t *testing.T) {
	shape, err := Parse("CIRCLE(-3.7 40.4, 1000)")
	require.NoError(t, err)
	require.Len(t, shape.Points, 1)
	require.Len(t, shape.Radius, 1)
	assert.InDelta(t, 1000, shape.Radius[0], 1e-9)
}

func TestParseCircleHonorsDistanceUnitSuffix(t *testing.T) {
	shape, err := Parse("CIRCLE(-3.7 40.4, 1km)")
	require.NoError(t, err)
	require.Len(t, shape.Radius, 1)
	assert.InDelta(t, 1000, shape.Radius[0], 1e-9)
}

func TestParsePointHeightHonorsDistanceUnitSuffix(t *testing.T) {
	shape, err := Parse("POINT(-3.7 40.4 100ft)")
	require.NoError(t, err)
	require.Len(t, shape.Points, 1)
	assert.InDelta(t, 30.48, shape.Points[0].Height, 1e-9)
}

func TestParseGeometryCollection(t *testing.T) {
	shape, err := Parse("GEOMETRYCOLLECTION(POINT(1 1), CIRCLE(2 2, 500))")
	require.NoError(t, err)
	assert.Len(t, shape.Children, 2)
	assert.Equal(t, Point, shape.Children[0].Type)
	assert.Equal(t, Circle, shape.Children[1].Type)
}

func TestParseUnknownTag(t *testing.T) {
	_, err := Parse("BLOB(1 1)")
	assert.Error(t, err)
}

func TestParseUnbalancedParens(t *testing.T) {
	_, err := Parse("POINT(1 1")
	assert.Error(t, err)
}

func TestCoverPointSingleCell(t *testing.T) {
	ranges := CoverPoint(ToVec3(10, 20), 6)
	require.Len(t, ranges, 1)
	assert.Equal(t, ranges[0].Start, ranges[0].End)
}

func TestCoverPointDeeperLevelNarrowsRange(t *testing.T) {
	p := ToVec3(10, 20)
	shallow := CoverPoint(p, 3)
	deep := CoverPoint(p, 6)
	require.Len(t, deep, 1)
	assert.Equal(t, shallow[0].Start, deep[0].Start>>6)
}

func TestFingerprintOrderInsensitive(t *testing.T) {
	a := []Range{{1, 5}, {20, 25}}
	b := []Range{{20, 25}, {1, 5}}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintDiffersOnDifferentRanges(t *testing.T) {
	a := Fingerprint([]Range{{1, 5}})
	b := Fingerprint([]Range{{1, 6}})
	assert.NotEqual(t, a, b)
}

func TestShapeRangesNonEmptyForPolygon(t *testing.T) {
	shape, err := Parse("POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))")
	require.NoError(t, err)
	ranges := shape.Ranges(4)
	assert.NotEmpty(t, ranges)
}

func TestShapeCentroidsForPoint(t *testing.T) {
	shape, err := Parse("POINT(10 20)")
	require.NoError(t, err)
	centroids := shape.Centroids()
	require.Len(t, centroids, 1)
	want := ToVec3(10, 20)
	assert.InDelta(t, want.X, centroids[0].X, 1e-9)
}
