// Package indexer implements C7: the driver that walks a document tree,
// invokes the schema engine per path, and hands the resulting terms,
// values and geo ranges to an external index. Grounded on
// internal/apply/apply.go's multi-stage driver pattern (an injectable
// collaborator boundary plus a context-carrying entry point), adapted
// from "connect to a database and apply SQL statements" to "walk a
// document and feed a search index".
package indexer

import "docindex/internal/geo"

// Handler is the external-index collaborator boundary of spec.md §1:
// everything past this interface (postings lists, ranking, storage of
// the inverted index itself) is out of scope.
type Handler interface {
	// Term records a single indexed term under the given field prefix.
	// boolTerm marks a term that participates only in boolean (exact
	// match) queries rather than free-text search.
	Term(prefix, term string, boolTerm bool) error

	// Value is called once per document value slot with every
	// occurrence already joined into one byte string (spec.md §4.7 step
	// 4's "map_values[slot] ... joined as lists").
	Value(slot uint32, data []byte) error

	// GeoRanges records the HTM cell coverage for a geospatial value
	// under slot, alongside its plain term-bucket ranges.
	GeoRanges(slot uint32, ranges []geo.Range) error
}

// NopHandler discards everything; useful for dry runs and tests that
// only care about the returned document/data-object shape.
type NopHandler struct{}

func (NopHandler) Term(string, string, bool) error   { return nil }
func (NopHandler) Value(uint32, []byte) error         { return nil }
func (NopHandler) GeoRanges(uint32, []geo.Range) error { return nil }

// RecordingHandler accumulates everything it's given, for tests that
// need to assert on what the driver emitted.
type RecordingHandler struct {
	Terms  []RecordedTerm
	Values map[uint32][][]byte
	Geo    map[uint32][]geo.Range
}

type RecordedTerm struct {
	Prefix   string
	Term     string
	BoolTerm bool
}

func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{
		Values: make(map[uint32][][]byte),
		Geo:    make(map[uint32][]geo.Range),
	}
}

func (h *RecordingHandler) Term(prefix, term string, boolTerm bool) error {
	h.Terms = append(h.Terms, RecordedTerm{Prefix: prefix, Term: term, BoolTerm: boolTerm})
	return nil
}

func (h *RecordingHandler) Value(slot uint32, data []byte) error {
	h.Values[slot] = append(h.Values[slot], data)
	return nil
}

func (h *RecordingHandler) GeoRanges(slot uint32, ranges []geo.Range) error {
	h.Geo[slot] = append(h.Geo[slot], ranges...)
	return nil
}
