// Package serialize implements C1: conversion of typed scalar values to
// and from sort-stable byte strings, plus free-text type guessing.
// Grounded on internal/core/raw_types.go's DataType normalization rules
// (teacher) and original_source serialise.cc's encoding scheme (the
// bias/flip tricks for signed/float sortable encodings).
package serialize

// FieldType is the closed set of concrete field types from spec.md §3.
type FieldType string

const (
	FieldEmpty     FieldType = "empty"
	FieldObject    FieldType = "object"
	FieldArray     FieldType = "array"
	FieldForeign   FieldType = "foreign"
	FieldScript    FieldType = "script"
	FieldInteger   FieldType = "integer"
	FieldPositive  FieldType = "positive"
	FieldFloat     FieldType = "float"
	FieldBoolean   FieldType = "boolean"
	FieldKeyword   FieldType = "keyword"
	FieldText      FieldType = "text"
	FieldString    FieldType = "string"
	FieldDate      FieldType = "date"
	FieldDatetime  FieldType = "datetime"
	FieldTime      FieldType = "time"
	FieldTimedelta FieldType = "timedelta"
	FieldUUID      FieldType = "uuid"
	FieldGeo       FieldType = "geo"
)

// CanonicalFieldType resolves legacy aliases to their canonical name.
// Per DESIGN.md's Open Question decision, "term" is accepted on ingest
// but never stored; "keyword" is the only name used internally.
func CanonicalFieldType(raw string) FieldType {
	if raw == "term" {
		return FieldKeyword
	}
	return FieldType(raw)
}

// SepTypes is the 4-tuple describing the composition at a document path
// (spec.md §3: "(foreign, object, array, concrete)").
type SepTypes struct {
	Foreign  bool
	Object   bool
	Array    bool
	Concrete FieldType
}

func (s SepTypes) String() string {
	out := string(s.Concrete)
	if s.Array {
		out = "array/" + out
	}
	if s.Object {
		out = "object/" + out
	}
	if s.Foreign {
		out = "foreign/" + out
	}
	return out
}
