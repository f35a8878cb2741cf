// Package schema implements C6: the schema engine that computes an
// effective specification for each document path, enforces the
// immutability invariants of spec.md §3, and persists the property tree
// between indexing operations. Grounded on internal/core/schema.go's
// effective-model idiom and internal/core/validate.go's sequential
// validator style (teacher), generalized from a SQL table/column schema
// to a dotted-path document property tree per original_source's
// reserved/schema.h and schema.cc.
package schema

import (
	"docindex/internal/serialize"
)

// IndexBit is a single bit in the "index" bitset (spec.md §3).
type IndexBit uint8

const (
	FieldTerms IndexBit = 1 << iota
	FieldValues
	GlobalTerms
	GlobalValues
)

// Convenience aliases that expand to a union of bits, matching the
// reserved/schema.h constant names (e.g. "index = field_all").
const (
	FieldAll  = FieldTerms | FieldValues
	GlobalAll = GlobalTerms | GlobalValues
	IndexAll  = FieldAll | GlobalAll
	IndexNone = IndexBit(0)
)

// IndexBits is the "index" property: which of the four indexing
// behaviors are active for a field.
type IndexBits IndexBit

func (b IndexBits) Has(bit IndexBit) bool { return IndexBit(b)&bit != 0 }

// UUIDFieldStrategy selects how a dynamic UUID path segment is indexed
// (spec.md §4.6).
type UUIDFieldStrategy string

const (
	UUIDStrategyUUID      UUIDFieldStrategy = "UUID"
	UUIDStrategyUUIDField UUIDFieldStrategy = "UUID_FIELD"
	UUIDStrategyBoth      UUIDFieldStrategy = "BOTH"
)

// Flags bundles the boolean/detection properties of spec.md §3's
// effective specification "flags" group.
type Flags struct {
	Store        bool
	ParentStore  bool
	IsRecurse    bool
	Dynamic      bool
	Strict       bool
	PartialPaths bool
	IsNamespace  bool
	UUIDField    bool
	UUIDPath     bool
	InsideNamespace bool

	DateDetection      bool
	TimeDetection      bool
	TimedeltaDetection bool
	NumericDetection   bool
	GeoDetection       bool
	BoolDetection      bool
	TextDetection      bool
	TermDetection      bool
	UUIDDetection      bool

	// has_* bookkeeping: whether a given property was ever explicitly
	// persisted for this path, used by the immutability checks in
	// process.go to distinguish "first write" from "re-write". Every
	// consistency_* property gets its own bit here: without one, a
	// zero-value false is indistinguishable from "never set", which lets
	// a later explicit write silently change an already-persisted value.
	HasType      bool
	HasSlot      bool
	HasBoolTerm  bool
	HasAccuracy  bool
	HasDynamic   bool
	HasStrict    bool
	HasUUIDField bool
	HasUUIDPath  bool

	HasDateDetection      bool
	HasTimeDetection      bool
	HasTimedeltaDetection bool
	HasNumericDetection   bool
	HasGeoDetection       bool
	HasBoolDetection      bool
	HasTextDetection      bool
	HasTermDetection      bool
	HasUUIDDetection      bool
}

// DetectionFlags projects the subset GuessFieldType needs onto
// serialize.DetectionFlags.
func (f Flags) DetectionFlags() serialize.DetectionFlags {
	return serialize.DetectionFlags{
		UUID:      f.UUIDDetection,
		Datetime:  f.DateDetection,
		Date:      f.DateDetection,
		Time:      f.TimeDetection,
		Timedelta: f.TimedeltaDetection,
		Geo:       f.GeoDetection,
		Numeric:   f.NumericDetection,
		Text:      f.TextDetection,
		Bool:      f.BoolDetection,
	}
}

// Properties is the persisted, immutable-once-written specification for
// one document path (spec.md §3's "effective specification", minus the
// per-document transient fields which live on EffectiveSpec instead).
type Properties struct {
	SepTypes serialize.SepTypes

	Prefix     string
	UUIDPrefix string
	Slot       uint32

	Position []int
	Weight   []float64
	Spelling []bool
	Positions []bool

	Index IndexBits

	Accuracy  []uint64
	AccPrefix []string

	Language      string
	StopStrategy  string
	StemStrategy  string
	StemLanguage  string

	BoolTerm bool
	Partials bool
	Error    float64

	Flags Flags

	Endpoint string

	IndexUUIDField UUIDFieldStrategy
}

// Clone returns a deep-enough copy of p suitable for copy-on-write
// mutation (slices are copied; the struct itself is a value type
// everywhere else).
func (p *Properties) Clone() *Properties {
	if p == nil {
		return &Properties{}
	}
	out := *p
	out.Position = append([]int(nil), p.Position...)
	out.Weight = append([]float64(nil), p.Weight...)
	out.Spelling = append([]bool(nil), p.Spelling...)
	out.Positions = append([]bool(nil), p.Positions...)
	out.Accuracy = append([]uint64(nil), p.Accuracy...)
	out.AccPrefix = append([]string(nil), p.AccPrefix...)
	return &out
}

// EffectiveSpec is the per-document working specification the engine
// builds while walking a document: the persisted Properties for the
// current path, plus the transient payload fields spec.md §3 lists
// ("value, value_rec, doc_acc, script").
type EffectiveSpec struct {
	Properties

	PartialPrefixes []string

	Value    any
	ValueRec any
	DocAcc   []string
	Script   string
}

// clone copies the working spec, including its own Properties value
// (EffectiveSpec embeds Properties by value, so a plain struct copy
// already deep-copies the slice header — callers that mutate slices in
// place must still re-slice, as done throughout process.go).
func (s EffectiveSpec) clone() EffectiveSpec {
	out := s
	out.Properties = *s.Properties.Clone()
	out.PartialPrefixes = append([]string(nil), s.PartialPrefixes...)
	out.DocAcc = append([]string(nil), s.DocAcc...)
	return out
}
