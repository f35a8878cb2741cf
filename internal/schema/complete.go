package schema

import (
	"fmt"

	"docindex/internal/bucket"
	"docindex/internal/serialize"
	"docindex/internal/xxhash32"
)

// concreteTypeCode assigns each concrete field type a single byte used
// only to seed the default slot hash (spec.md §3: "derived from a
// stable hash of prefix || concrete_type_code unless explicitly set").
var concreteTypeCode = map[serialize.FieldType]byte{
	serialize.FieldEmpty:     0,
	serialize.FieldObject:    1,
	serialize.FieldArray:     2,
	serialize.FieldForeign:   3,
	serialize.FieldScript:    4,
	serialize.FieldInteger:   5,
	serialize.FieldPositive:  6,
	serialize.FieldFloat:     7,
	serialize.FieldBoolean:   8,
	serialize.FieldKeyword:   9,
	serialize.FieldText:      10,
	serialize.FieldString:    11,
	serialize.FieldDate:      12,
	serialize.FieldDatetime:  13,
	serialize.FieldTime:      14,
	serialize.FieldTimedelta: 15,
	serialize.FieldUUID:      16,
	serialize.FieldGeo:       17,
}

// slotHashSeed seeds the default-slot hash; distinct from StorageMagic
// so slot assignment and storage checksums never collide on purpose.
const slotHashSeed = 0x5C4E01A1

// globalPrefixTag is the control byte every GlobalPrefix starts with.
// It can never occur in a document-path-derived field prefix, so a
// global prefix never collides with a real field's own prefix.
const globalPrefixTag = '\x01'

// GlobalPrefix is the fixed prefix every field of concrete shares for
// its global index bits (spec.md §4.3's global_terms/global_values),
// distinct from any field's own path-derived prefix.
func GlobalPrefix(concrete serialize.FieldType) string {
	return string([]byte{globalPrefixTag, concreteTypeCode[concrete]})
}

// DeriveSlot computes the default slot for a field whose slot was never
// explicitly persisted.
func DeriveSlot(prefix string, concrete serialize.FieldType) uint32 {
	buf := append([]byte(prefix), concreteTypeCode[concrete])
	return xxhash32.Sum(buf, slotHashSeed)
}

// CompleteSpecification finalizes a leaf's working spec once a value
// has reached it (spec.md §4.6 step 5): fills in slot when it was never
// explicitly persisted, and computes the absolute acc_prefix list from
// the final field prefix and the accuracy buckets appropriate to the
// concrete type.
func CompleteSpecification(spec *EffectiveSpec) {
	if !spec.Flags.HasSlot {
		switch spec.SepTypes.Concrete {
		case serialize.FieldEmpty, serialize.FieldObject, serialize.FieldArray, serialize.FieldForeign, serialize.FieldScript:
			// no value slot for non-concrete specs
		default:
			spec.Slot = DeriveSlot(spec.Prefix, spec.SepTypes.Concrete)
		}
	}

	if len(spec.Accuracy) == 0 {
		return
	}
	spec.AccPrefix = make([]string, len(spec.Accuracy))
	for i, width := range spec.Accuracy {
		spec.AccPrefix[i] = bucket.AccPrefix(spec.Prefix, fmt.Sprintf("%d", width))
	}
}
