// Package cast resolves `{"_<tag>": value}` cast envelopes into typed
// Go values (spec.md §4.4), grounded on original_source's cast.cc/cast.h
// — same tag set, same "exactly one key" rule — with the C++ phf perfect
// hash replaced by a map literal built once at package init (spec.md §9
// REDESIGN note).
package cast

import (
	"strings"

	"docindex/internal/geo"
	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// Tag names every recognized "_<tag>" cast key from spec.md §4.4.
type Tag string

const (
	TagInteger              Tag = "_integer"
	TagPositive             Tag = "_positive"
	TagFloat                Tag = "_float"
	TagBoolean              Tag = "_boolean"
	TagKeyword              Tag = "_keyword"
	TagText                 Tag = "_text"
	TagString               Tag = "_string"
	TagUUID                 Tag = "_uuid"
	TagDate                 Tag = "_date"
	TagDatetime             Tag = "_datetime"
	TagTime                 Tag = "_time"
	TagTimedelta            Tag = "_timedelta"
	TagEWKT                 Tag = "_ewkt"
	TagPoint                Tag = "_point"
	TagCircle               Tag = "_circle"
	TagConvex               Tag = "_convex"
	TagPolygon              Tag = "_polygon"
	TagChull                Tag = "_chull"
	TagMultiPoint           Tag = "_multipoint"
	TagMultiCircle          Tag = "_multicircle"
	TagMultiConvex          Tag = "_multiconvex"
	TagMultiPolygon         Tag = "_multipolygon"
	TagMultiChull           Tag = "_multichull"
	TagGeometryCollection   Tag = "_geometrycollection"
	TagGeometryIntersection Tag = "_geometryintersection"
	TagChai                 Tag = "_chai"
)

// Result is the resolved value of a cast: a concrete Go representation
// tagged with the field type it was cast to.
type Result struct {
	Type  serialize.FieldType
	Value any // int64, uint64, float64, bool, string, time.Time, *geo.Shape
}

type dispatchFunc func(value any) (Result, error)

var dispatch map[Tag]dispatchFunc

func init() {
	dispatch = map[Tag]dispatchFunc{
		TagInteger:  func(v any) (Result, error) { return castScalar(v, serialize.FieldInteger) },
		TagPositive: func(v any) (Result, error) { return castScalar(v, serialize.FieldPositive) },
		TagFloat:    func(v any) (Result, error) { return castScalar(v, serialize.FieldFloat) },
		TagBoolean:  func(v any) (Result, error) { return castScalar(v, serialize.FieldBoolean) },
		TagKeyword:  func(v any) (Result, error) { return castScalar(v, serialize.FieldKeyword) },
		TagText:     func(v any) (Result, error) { return castScalar(v, serialize.FieldText) },
		TagString:   func(v any) (Result, error) { return castScalar(v, serialize.FieldString) },
		TagUUID:     func(v any) (Result, error) { return castScalar(v, serialize.FieldUUID) },
		TagDate:     func(v any) (Result, error) { return castScalar(v, serialize.FieldDate) },
		TagDatetime: func(v any) (Result, error) { return castScalar(v, serialize.FieldDatetime) },
		TagTime:     func(v any) (Result, error) { return castScalar(v, serialize.FieldTime) },
		TagTimedelta: func(v any) (Result, error) { return castScalar(v, serialize.FieldTimedelta) },

		TagEWKT:                 castEWKT,
		TagPoint:                shapeCaster(geo.Point),
		TagCircle:               shapeCaster(geo.Circle),
		TagConvex:               shapeCaster(geo.Convex),
		TagPolygon:              shapeCaster(geo.Polygon),
		TagChull:                shapeCaster(geo.Chull),
		TagMultiPoint:           shapeCaster(geo.MultiPoint),
		TagMultiCircle:          shapeCaster(geo.MultiCircle),
		TagMultiConvex:          shapeCaster(geo.MultiConvex),
		TagMultiPolygon:         shapeCaster(geo.MultiPolygon),
		TagMultiChull:           shapeCaster(geo.MultiChull),
		TagGeometryCollection:   shapeCaster(geo.GeometryCollection),
		TagGeometryIntersection: shapeCaster(geo.GeometryIntersection),
		TagChai:                 castChai,
	}
}

// Resolve inspects obj (expected to be a map[string]any with exactly one
// "_<tag>" key) and dispatches to the cast function for that tag.
func Resolve(obj map[string]any) (Result, error) {
	if len(obj) != 1 {
		return Result{}, xerrors.New(xerrors.Cast, "cast object must have exactly one key, got %d", len(obj))
	}
	var key string
	var value any
	for k, v := range obj {
		key, value = k, v
	}
	fn, ok := dispatch[Tag(key)]
	if !ok {
		return Result{}, xerrors.New(xerrors.Cast, "unrecognized cast tag %q", key)
	}
	return fn(value)
}

// IsCastEnvelope reports whether obj looks like a single-key "_<tag>"
// cast object (used by the schema engine to distinguish casts from
// ordinary nested objects).
func IsCastEnvelope(obj map[string]any) bool {
	if len(obj) != 1 {
		return false
	}
	for k := range obj {
		return strings.HasPrefix(k, "_")
	}
	return false
}

func castEWKT(v any) (Result, error) {
	s, ok := v.(string)
	if !ok {
		return Result{}, xerrors.New(xerrors.Cast, "_ewkt requires a string value")
	}
	shape, err := geo.Parse(s)
	if err != nil {
		return Result{}, err
	}
	return Result{Type: serialize.FieldGeo, Value: shape}, nil
}

func castChai(v any) (Result, error) {
	s, ok := v.(string)
	if !ok {
		return Result{}, xerrors.New(xerrors.Cast, "_chai requires a string script body")
	}
	return Result{Type: serialize.FieldScript, Value: s}, nil
}

// shapeCaster returns a dispatch function that parses an EWKT body
// string without a leading tag (e.g. "(1 1, 2 2)") by reassembling it
// with the shape's own tag before delegating to the EWKT parser — every
// explicit geo-shape tag is sugar over "_ewkt" with the tag implied.
func shapeCaster(typ geo.ShapeType) dispatchFunc {
	return func(v any) (Result, error) {
		s, ok := v.(string)
		if !ok {
			return Result{}, xerrors.New(xerrors.Cast, "_%s requires a string value", strings.ToLower(string(typ)))
		}
		full := s
		if !strings.HasPrefix(strings.TrimSpace(s), string(typ)) {
			full = string(typ) + s
		}
		shape, err := geo.Parse(full)
		if err != nil {
			return Result{}, err
		}
		return Result{Type: serialize.FieldGeo, Value: shape}, nil
	}
}

// CoerceBoolean implements spec.md §4.4's extra boolean coercion rule:
// "true"/"false"/"0"/"1" case-insensitive, in addition to native bools.
func CoerceBoolean(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return false, xerrors.New(xerrors.Cast, "cannot coerce %v to boolean", v)
}
