package schema

import (
	"sort"

	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// propertyWriter mutates spec in response to a single user-supplied
// directive value for one reserved property key.
type propertyWriter func(spec *EffectiveSpec, path string, value any) error

// Three classes of writer, per spec.md §4.6:
//
//   - process_*: may freely set or change a heritable property every
//     indexing pass (position/weight/spelling/positions, language/stem/
//     stop settings, prefix, endpoint, the index bitset).
//   - consistency_*: may only verify equality against what was already
//     persisted; any attempted change raises a consistency error (type,
//     slot, bool_term, accuracy, dynamic, strict, every *_detection
//     flag, uuid_field, uuid_path). No writer handles index_uuid_field;
//     a directive for it is ignored.
//   - write_*: persist into the working spec AND mutate it, with their
//     own latch/join semantics rather than plain equality (store's
//     "AND with parent" rule, namespace's "once true stays true" rule).
var (
	processWriters     map[string]propertyWriter
	consistencyWriters map[string]propertyWriter
	writeWriters       map[string]propertyWriter
)

func init() {
	processWriters = map[string]propertyWriter{
		keyPosition:  writePosition,
		keyWeight:    writeWeight,
		keySpelling:  writeSpelling,
		keyPositions: writePositions,
		keyLanguage:     writeString(func(s *EffectiveSpec) *string { return &s.Language }),
		keyStopStrategy: writeString(func(s *EffectiveSpec) *string { return &s.StopStrategy }),
		keyStemStrategy: writeString(func(s *EffectiveSpec) *string { return &s.StemStrategy }),
		keyStemLanguage: writeString(func(s *EffectiveSpec) *string { return &s.StemLanguage }),
		keyPrefix:       writeString(func(s *EffectiveSpec) *string { return &s.Prefix }),
		keyEndpoint:     writeString(func(s *EffectiveSpec) *string { return &s.Endpoint }),
		keyError:        writeError,
		keyIndex:        writeIndex,
	}

	consistencyWriters = map[string]propertyWriter{
		keyType:     consistencyType,
		keySlot:     consistencySlot,
		keyBoolTerm: consistencyBool(keyBoolTerm, func(s *EffectiveSpec) (*bool, *bool) { return &s.BoolTerm, &s.Flags.HasBoolTerm }),
		keyAccuracy: consistencyAccuracy,
		keyDynamic:  consistencyBool(keyDynamic, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.Dynamic, &s.Flags.HasDynamic }),
		keyStrict:   consistencyBool(keyStrict, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.Strict, &s.Flags.HasStrict }),

		keyDateDetection:      consistencyBool(keyDateDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.DateDetection, &s.Flags.HasDateDetection }),
		keyTimeDetection:      consistencyBool(keyTimeDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.TimeDetection, &s.Flags.HasTimeDetection }),
		keyTimedeltaDetection: consistencyBool(keyTimedeltaDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.TimedeltaDetection, &s.Flags.HasTimedeltaDetection }),
		keyNumericDetection:   consistencyBool(keyNumericDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.NumericDetection, &s.Flags.HasNumericDetection }),
		keyGeoDetection:       consistencyBool(keyGeoDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.GeoDetection, &s.Flags.HasGeoDetection }),
		keyBoolDetection:      consistencyBool(keyBoolDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.BoolDetection, &s.Flags.HasBoolDetection }),
		keyTextDetection:      consistencyBool(keyTextDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.TextDetection, &s.Flags.HasTextDetection }),
		keyTermDetection:      consistencyBool(keyTermDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.TermDetection, &s.Flags.HasTermDetection }),
		keyUUIDDetection:      consistencyBool(keyUUIDDetection, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.UUIDDetection, &s.Flags.HasUUIDDetection }),

		keyUUIDField: consistencyBool(keyUUIDField, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.UUIDField, &s.Flags.HasUUIDField }),
		keyUUIDPath:  consistencyBool(keyUUIDPath, func(s *EffectiveSpec) (*bool, *bool) { return &s.Flags.UUIDPath, &s.Flags.HasUUIDPath }),
	}

	writeWriters = map[string]propertyWriter{
		keyStore:        writeStore,
		keyNamespace:    writeNamespace,
		keyPartialPaths: writePartialPaths,
	}
}

// dispatchFeedProperties loads persisted properties into a fresh working
// spec (spec.md §4.6 step 2). Each field copy is a direct typed
// assignment, so a stored value of the wrong shape cannot reach this
// function in the first place — the corruption case spec.md describes
// for the original's MsgPack reader is instead caught by persist.go's
// TOML decode, which returns a StorageCorrupt error before this is ever
// called.
func dispatchFeedProperties(persisted *Properties) EffectiveSpec {
	spec := EffectiveSpec{}
	if persisted != nil {
		spec.Properties = *persisted.Clone()
		return spec
	}
	// Brand new path: every detection trial is on until an explicit
	// "*_detection" directive narrows it (spec.md §4.1's guess_field_type
	// trials all apply by default to an as-yet-unseen field).
	spec.Flags.DateDetection = true
	spec.Flags.TimeDetection = true
	spec.Flags.TimedeltaDetection = true
	spec.Flags.NumericDetection = true
	spec.Flags.GeoDetection = true
	spec.Flags.BoolDetection = true
	spec.Flags.TextDetection = true
	spec.Flags.TermDetection = true
	spec.Flags.UUIDDetection = true
	// A field nobody has configured still gets indexed: field-level terms
	// and values are on by default, matching how an unconfigured field
	// behaves in a real search engine (you opt out with an explicit
	// "index" directive, not in).
	spec.Index = IndexBits(FieldAll)
	return spec
}

// dispatchProcessProperties overlays user-supplied directives onto spec,
// in a fixed order (consistency checks before heritable writers before
// write_* latch/join writers) so that a rejected consistency change
// never leaves partial heritable mutations applied.
func dispatchProcessProperties(spec *EffectiveSpec, path string, directives map[string]any) error {
	keys := sortedKeys(directives)
	for _, writers := range []map[string]propertyWriter{consistencyWriters, processWriters, writeWriters} {
		for _, key := range keys {
			w, ok := writers[key]
			if !ok {
				continue
			}
			if err := w(spec, path, directives[key]); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- consistency_* writers -------------------------------------------------

func consistencyType(spec *EffectiveSpec, path string, value any) error {
	raw, ok := value.(string)
	if !ok {
		return xerrors.New(xerrors.InvalidArgument, "%q: type must be a string", path)
	}
	ft := serialize.CanonicalFieldType(raw)
	if !spec.Flags.HasType {
		spec.SepTypes.Concrete = ft
		spec.Flags.HasType = true
		return nil
	}
	if spec.SepTypes.Concrete != ft {
		return xerrors.ConsistencyChange(path, "type", spec.SepTypes.Concrete, ft)
	}
	return nil
}

func consistencySlot(spec *EffectiveSpec, path string, value any) error {
	slot, err := toUint32(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: slot", path)
	}
	if !spec.Flags.HasSlot {
		spec.Slot = slot
		spec.Flags.HasSlot = true
		return nil
	}
	if spec.Slot != slot {
		return xerrors.ConsistencyChange(path, "slot", spec.Slot, slot)
	}
	return nil
}

// consistencyBool returns a writer for a simple immutable boolean
// property. field returns the value slot and its dedicated has-been-set
// flag; every consistency_* boolean has its own has-flag so that a
// zero-value false is never confused with "not yet set".
func consistencyBool(name string, field func(*EffectiveSpec) (*bool, *bool)) propertyWriter {
	return func(spec *EffectiveSpec, path string, value any) error {
		b, err := toBool(value)
		if err != nil {
			return xerrors.Wrap(xerrors.InvalidArgument, err, "%q", path)
		}
		ptr, has := field(spec)
		if !*has {
			*ptr = b
			*has = true
			return nil
		}
		if *ptr != b {
			return xerrors.ConsistencyChange(path, name, *ptr, b)
		}
		return nil
	}
}

func consistencyAccuracy(spec *EffectiveSpec, path string, value any) error {
	widths, err := toUint64Slice(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: accuracy", path)
	}
	if !spec.Flags.HasAccuracy {
		spec.Accuracy = widths
		spec.Flags.HasAccuracy = true
		return nil
	}
	if !equalUint64SetInsensitive(spec.Accuracy, widths) {
		return xerrors.ConsistencyChange(path, "accuracy", spec.Accuracy, widths)
	}
	return nil
}

func equalUint64SetInsensitive(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]uint64(nil), a...)
	sb := append([]uint64(nil), b...)
	sort.Slice(sa, func(i, j int) bool { return sa[i] < sa[j] })
	sort.Slice(sb, func(i, j int) bool { return sb[i] < sb[j] })
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// --- process_* writers ------------------------------------------------------

func writePosition(spec *EffectiveSpec, path string, value any) error {
	ints, err := toIntSlice(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: position", path)
	}
	spec.Position = ints
	return nil
}

func writeWeight(spec *EffectiveSpec, path string, value any) error {
	floats, err := toFloatSlice(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: weight", path)
	}
	spec.Weight = floats
	return nil
}

func writeSpelling(spec *EffectiveSpec, path string, value any) error {
	bools, err := toBoolSlice(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: spelling", path)
	}
	spec.Spelling = bools
	return nil
}

func writePositions(spec *EffectiveSpec, path string, value any) error {
	bools, err := toBoolSlice(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: positions", path)
	}
	spec.Positions = bools
	return nil
}

func writeString(field func(*EffectiveSpec) *string) propertyWriter {
	return func(spec *EffectiveSpec, path string, value any) error {
		s, ok := value.(string)
		if !ok {
			return xerrors.New(xerrors.InvalidArgument, "%q: expected string", path)
		}
		*field(spec) = s
		return nil
	}
}

func writeError(spec *EffectiveSpec, path string, value any) error {
	f, err := toFloat64(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: error", path)
	}
	spec.Error = f
	return nil
}

func writeIndex(spec *EffectiveSpec, path string, value any) error {
	s, ok := value.(string)
	if !ok {
		return xerrors.New(xerrors.InvalidArgument, "%q: index must name a bitset alias", path)
	}
	bits, err := parseIndexAlias(s)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q", path)
	}
	spec.Index = bits
	return nil
}

func parseIndexAlias(s string) (IndexBits, error) {
	switch s {
	case "field_terms":
		return IndexBits(FieldTerms), nil
	case "field_values":
		return IndexBits(FieldValues), nil
	case "field_all":
		return IndexBits(FieldAll), nil
	case "global_terms":
		return IndexBits(GlobalTerms), nil
	case "global_values":
		return IndexBits(GlobalValues), nil
	case "global_all":
		return IndexBits(GlobalAll), nil
	case "terms":
		return IndexBits(FieldTerms | GlobalTerms), nil
	case "values":
		return IndexBits(FieldValues | GlobalValues), nil
	case "all":
		return IndexBits(IndexAll), nil
	case "none":
		return IndexBits(IndexNone), nil
	default:
		return 0, xerrors.New(xerrors.InvalidArgument, "unrecognized index alias %q", s)
	}
}

// --- write_* writers --------------------------------------------------------

// writeStore implements "store = parent.store AND local.store; once
// false at any ancestor it remains false downward" (spec.md §3): the
// caller passes the already-AND-joined parent value in via
// ApplyParentStore before directives are processed, so this writer only
// ANDs in the locally-declared value.
func writeStore(spec *EffectiveSpec, path string, value any) error {
	local, err := toBool(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: store", path)
	}
	spec.Flags.Store = spec.Flags.Store && local
	return nil
}

// writeNamespace latches is_namespace true permanently once declared
// (spec.md §3: "once declared namespace at a path it remains so").
func writeNamespace(spec *EffectiveSpec, path string, value any) error {
	b, err := toBool(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: namespace", path)
	}
	if spec.Flags.IsNamespace && !b {
		return xerrors.ConsistencyChange(path, "namespace", true, false)
	}
	spec.Flags.IsNamespace = spec.Flags.IsNamespace || b
	return nil
}

func writePartialPaths(spec *EffectiveSpec, path string, value any) error {
	b, err := toBool(value)
	if err != nil {
		return xerrors.Wrap(xerrors.InvalidArgument, err, "%q: partial_paths", path)
	}
	spec.Flags.PartialPaths = b
	return nil
}

// ApplyParentStore seeds spec.Flags.Store from the parent path's
// effective store value before local directives are processed, so
// writeStore's AND-join produces the correct downward-sticky result.
func ApplyParentStore(spec *EffectiveSpec, parentStore bool) {
	spec.Flags.ParentStore = parentStore
	if !spec.Flags.HasType {
		// Brand new path: default store is true until ANDed down.
		spec.Flags.Store = true
	}
	spec.Flags.Store = spec.Flags.Store && parentStore
}
