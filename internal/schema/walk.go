package schema

import (
	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// Resolver is what the indexing driver (C7) supplies at each document
// path so the schema engine can turn a raw value into its effective
// specification without importing the indexer package back (spec.md
// §4.6's guess_field_type needs the flags that are only known once
// dispatch_feed_properties has run for this path).
type Resolver struct {
	Schema  *MutableSchema
	Counter *idCounter
}

// NewResolver opens a fresh per-indexing-invocation resolver over mut.
func NewResolver(mut *MutableSchema) *Resolver {
	return &Resolver{Schema: mut, Counter: &idCounter{}}
}

// ResolvePath implements spec.md §4.6's "per-indexing invocation"
// algorithm for a single document path: load persisted properties (1),
// overlay caller directives (2-3), propagate the parent's store value
// down (3b), and — for a leaf whose value has arrived — complete the
// specification (5). Recursion across a document's nested paths, the
// dynamic-UUID/namespace expansion of step 4, and term/value emission
// (step 6) are the indexing driver's job; this function is the
// schema-only core it calls at every path.
func (r *Resolver) ResolvePath(path string, directives map[string]any, parentStore bool, value any, isLeaf bool) (*EffectiveSpec, error) {
	persisted, _ := r.Schema.Get(path)
	spec := dispatchFeedProperties(persisted)

	if path == "" {
		spec.Slot = SlotRoot
		spec.Flags.HasSlot = true
	}

	ApplyParentStore(&spec, parentStore)

	if err := dispatchProcessProperties(&spec, path, directives); err != nil {
		return nil, err
	}

	if isLeaf {
		switch {
		case path == IDFieldName:
			// The id field always resolves, even with no explicit
			// value, since a missing id still needs a default assigned.
			if err := r.resolveValue(&spec, path, value); err != nil {
				return nil, err
			}
		case value != nil:
			if err := r.resolveValue(&spec, path, value); err != nil {
				return nil, err
			}
		case !spec.Flags.HasType:
			// NIL/UNDEFINED: skip value emission, but still give
			// complete_specification a concrete type to reason about.
			spec.SepTypes.Concrete = serialize.FieldEmpty
		}
		CompleteSpecification(&spec)
	}

	target := r.Schema.Materialize(path)
	*target = spec.Properties

	return &spec, nil
}

// resolveValue fills in the concrete type (guessing it when the path
// has never been typed before) and assigns a default id when path is
// the reserved id field and no explicit value was supplied.
func (r *Resolver) resolveValue(spec *EffectiveSpec, path string, value any) error {
	spec.Value = value

	if path == IDFieldName {
		if !spec.Flags.HasType {
			if value != nil {
				ft, _, err := GuessFieldType(value, spec.Flags)
				if err != nil {
					return xerrors.Wrap(xerrors.MissingType, err, "%q", path)
				}
				spec.SepTypes.Concrete = ft
			} else {
				spec.SepTypes.Concrete = serialize.FieldUUID
			}
			spec.Flags.HasType = true
		}
		spec.SepTypes.Concrete = NormalizeIDType(spec.SepTypes.Concrete)
		if value == nil {
			id, err := DefaultID(spec.SepTypes.Concrete, r.Counter)
			if err != nil {
				return err
			}
			spec.Value = id
		}
		return nil
	}

	if spec.Flags.HasType {
		return nil
	}

	ft, coerced, err := GuessFieldType(value, spec.Flags)
	if err != nil {
		return xerrors.Wrap(xerrors.MissingType, err, "%q", path)
	}
	if ft == serialize.FieldEmpty && r.Schema.engine.strict {
		return xerrors.New(xerrors.MissingType, "%q: strict schema requires an explicit type", path)
	}
	spec.SepTypes.Concrete = ft
	spec.Flags.HasType = true
	spec.Value = coerced
	return nil
}

// DynamicChildPrefix resolves the schema path and term prefix a raw
// document segment materializes under, handling the dynamic-UUID
// detection rule of spec.md §4.6 (step 4) before falling back to the
// segment verbatim for an ordinary named field.
func DynamicChildPrefix(parentPath, segment string, flags Flags, strategy UUIDFieldStrategy) (schemaPath string, fieldPrefix string, uuidPrefix string) {
	if IsDynamicUUIDSegment(segment, flags.UUIDDetection) {
		structural := JoinPath(append(SplitPath(parentPath), UUIDMetaName))
		prefix, kept := ResolveUUIDField(strategy, structural, segment)
		return structural, prefix, kept
	}
	full := JoinPath(append(SplitPath(parentPath), segment))
	return full, full, ""
}
