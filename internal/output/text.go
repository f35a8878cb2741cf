package output

import (
	"fmt"
	"strings"
)

type textFormatter struct{}

func (textFormatter) FormatIndexResult(r *IndexResult) (string, error) {
	if r == nil {
		return "", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", r.TermID)
	fmt.Fprintf(&b, "terms: %d, value slots: %d, geo slots: %d\n", len(r.Terms), r.ValueSlots, r.GeoSlots)
	for _, t := range r.Terms {
		kind := "term"
		if t.BoolTerm {
			kind = "bool"
		}
		fmt.Fprintf(&b, "  [%s] %s%s\n", kind, t.Prefix, t.Term)
	}
	return b.String(), nil
}

func (textFormatter) FormatSchemaTree(s *SchemaTree) (string, error) {
	if s == nil {
		return "", nil
	}
	var b strings.Builder
	for _, p := range s.Paths {
		fmt.Fprintf(&b, "%-32s type=%-10s slot=%-10d index=%-12s store=%-5v dynamic=%v\n",
			p.Path, p.Concrete, p.Slot, p.Index, p.Store, p.Dynamic)
	}
	return b.String(), nil
}

func (textFormatter) FormatStorageDump(d *StorageDump) (string, error) {
	if d == nil {
		return "", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "volume: %s (%d records)\n", d.Path, len(d.Records))
	for _, r := range d.Records {
		state := "live"
		if r.Deleted {
			state = "deleted"
		}
		fmt.Fprintf(&b, "  offset=%-10d length=%-6d compressed=%-5v %s\n",
			r.Offset, r.FramedLength, r.Compressed, state)
	}
	return b.String(), nil
}
