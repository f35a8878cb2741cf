package indexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"docindex/internal/bucket"
	"docindex/internal/config"
	"docindex/internal/geo"
	"docindex/internal/schema"
	"docindex/internal/serialize"
	"docindex/internal/storage"
	"docindex/internal/xerrors"
)

// Scripter is the optional external collaborator invoked with the
// document id and object before the walk begins (spec.md §4.7 step 2);
// a nil Scripter skips the step entirely.
type Scripter interface {
	Run(ctx context.Context, id any, object map[string]any) (map[string]any, error)
}

// Driver walks one document against a schema.Engine and feeds the
// resulting terms/values to a Handler, mirroring the role
// internal/apply.Applier plays over a flat SQL statement list: a single
// injectable-collaborator entry point (Index) driving a multi-stage
// operation end to end.
type Driver struct {
	Engine  *schema.Engine
	Script  Scripter
	Volume  *storage.Volume // optional: large/opaque payload overflow

	globalAccuracy config.Accuracy
}

// New constructs a Driver over engine; script and volume may be nil.
// The driver seeds its global accuracy (spec.md §4.3's "global accuracy
// for its type") from config.Default until SetGlobalAccuracy overrides it.
func New(engine *schema.Engine, script Scripter, volume *storage.Volume) *Driver {
	return &Driver{Engine: engine, Script: script, Volume: volume, globalAccuracy: config.Default().Accuracy}
}

// SetGlobalAccuracy overrides the per-concrete-type global accuracy
// bucket widths a driver bucket-terms its GlobalTerms fields against
// (global values are stored without bucketing), letting a caller pass through an engine configuration
// file's [accuracy] overrides.
func (d *Driver) SetGlobalAccuracy(a config.Accuracy) {
	d.globalAccuracy = a
}

// UpdateSchema commits user-supplied directives for path directly
// against the engine, independent of any document walk — the
// "dispatch_process_properties overlays user-supplied directives" path
// a caller uses to declare a field's mapping ahead of (or instead of)
// seeing a value for it.
func (d *Driver) UpdateSchema(path string, directives map[string]any) error {
	mut := d.Engine.BeginIndexing()
	r := schema.NewResolver(mut)
	parentStore := true
	if parent, ok := mut.Get(parentPath(path)); ok {
		parentStore = parent.Flags.Store
	}
	if _, err := r.ResolvePath(path, directives, parentStore, nil, false); err != nil {
		mut.Discard()
		return err
	}
	return mut.Commit()
}

func parentPath(path string) string {
	segments := schema.SplitPath(path)
	if len(segments) <= 1 {
		return ""
	}
	return schema.JoinPath(segments[:len(segments)-1])
}

// overflowThreshold is the raw text/string byte length at or above which a
// leaf's value is written to the attached volume instead of embedded
// in the data object (spec.md §2: "opaque payloads (blobs, large text)
// optionally go to C5 which returns a volume offset embedded in the
// document's stored data").
const overflowThreshold = 256

// mapValues accumulates every serialized occurrence for a value slot
// across the walk, joined once at the end (spec.md §4.7 step 4).
// dataObject accumulates one entry per stored path, the document's
// persisted representation returned alongside term_id (spec.md §4.7).
type walkState struct {
	resolver       *schema.Resolver
	handler        Handler
	mapValues      map[uint32][][]byte
	dataObject     map[string]any
	volume         *storage.Volume
	globalAccuracy config.Accuracy
}

// overflowRef is the dataObject value substituted for a leaf whose raw
// payload overflowed to the volume; VolumeOffset is what Read needs to
// fetch it back.
type overflowRef struct {
	VolumeOffset uint64 `json:"volumeOffset"`
}

// Index implements spec.md §4.7's entry point: compute the effective id
// spec, optionally run the attached script, walk the document emitting
// terms/values per path, and return the bound id term alongside the
// (possibly script-rewritten) document and its derived data object.
func (d *Driver) Index(ctx context.Context, object map[string]any, id any, handler Handler) (termID string, document map[string]any, dataObject map[string]any, err error) {
	mut := d.Engine.BeginIndexing()
	resolver := schema.NewResolver(mut)

	idSpec, err := resolver.ResolvePath(schema.IDFieldName, nil, true, id, true)
	if err != nil {
		mut.Discard()
		return "", nil, nil, err
	}
	idString, err := serialiseScalar(idSpec.SepTypes.Concrete, idSpec.Value)
	if err != nil {
		mut.Discard()
		return "", nil, nil, err
	}
	termID = schema.BoundIDTerm(idString)

	if d.Script != nil {
		rewritten, serr := d.Script.Run(ctx, id, object)
		if serr != nil {
			mut.Discard()
			return "", nil, nil, serr
		}
		if rewritten != nil {
			object = rewritten
		}
	}

	state := &walkState{
		resolver:       resolver,
		handler:        handler,
		mapValues:      make(map[uint32][][]byte),
		dataObject:     map[string]any{schema.IDFieldName: idSpec.Value},
		volume:         d.Volume,
		globalAccuracy: d.globalAccuracy,
	}
	if err := state.walk(ctx, "", "", object, true, nil, ""); err != nil {
		mut.Discard()
		return "", nil, nil, err
	}

	for slot, occurrences := range state.mapValues {
		joined := joinValues(occurrences)
		if err := handler.Value(slot, joined); err != nil {
			mut.Discard()
			return "", nil, nil, err
		}
	}

	if schema.EmitsIDBooleanTerm(termID) {
		if err := handler.Term("", termID, true); err != nil {
			mut.Discard()
			return "", nil, nil, err
		}
	}

	if err := mut.Commit(); err != nil {
		return "", nil, nil, err
	}

	document = object
	dataObject = state.dataObject
	return termID, document, dataObject, nil
}

// walk implements spec.md §4.7 step 3: MAP recurses per field, ARRAY
// marks array-typed and recurses per element under positional indices,
// NIL/UNDEFINED skips value emission but still descends structurally,
// and a scalar invokes C1/C2/C3 per the resolved index bitset. path is
// the schema path used to resolve the effective spec, which folds
// dynamic-uuid segments into the shared "_uuid" structural property
// (spec.md §4.6 step 4); rawPath is the literal document path, kept
// alongside for the data object so two sibling UUID keys never
// overwrite each other's stored value under the folded schema path.
// directives carries the synthetic properties this node's parent computed
// for it (its "prefix" directive, plus "uuid_field" when this path is
// itself a dynamic UUID segment); nil at the document root, where nothing
// applies yet. nsRoot is the schema path at which an ancestor (or this
// node itself) was first declared is_namespace; "" means the walk is not
// currently inside a namespace subtree.
func (s *walkState) walk(ctx context.Context, path, rawPath string, value any, parentStore bool, directives map[string]any, nsRoot string) error {
	switch v := value.(type) {
	case map[string]any:
		spec, err := s.resolver.ResolvePath(path, directives, parentStore, nil, false)
		if err != nil {
			return err
		}
		childNsRoot := nsRoot
		if childNsRoot == "" && spec.Flags.IsNamespace {
			childNsRoot = path
		}
		for _, key := range sortedObjectKeys(v) {
			childPath, childPrefix, _ := schema.DynamicChildPrefix(path, key, spec.Flags, spec.IndexUUIDField)
			childRawPath := joinChild(rawPath, key)
			childDirectives := prefixDirectives(childPrefix)
			if schema.IsDynamicUUIDSegment(key, spec.Flags.UUIDDetection) {
				if childDirectives == nil {
					childDirectives = map[string]any{}
				}
				childDirectives["uuid_field"] = true
			}
			if err := s.walk(ctx, childPath, childRawPath, v[key], spec.Flags.Store, childDirectives, childNsRoot); err != nil {
				return err
			}
		}
		return nil
	case []any:
		spec, err := s.resolver.ResolvePath(path, directives, parentStore, nil, false)
		if err != nil {
			return err
		}
		for i, elem := range v {
			elemPath := joinChild(path, strconv.Itoa(i))
			elemRawPath := joinChild(rawPath, strconv.Itoa(i))
			// Array elements share the array field's own prefix/slot;
			// only the schema path gains a positional segment.
			if err := s.walk(ctx, elemPath, elemRawPath, elem, spec.Flags.Store, directives, nsRoot); err != nil {
				return err
			}
		}
		return nil
	case nil:
		_, err := s.resolver.ResolvePath(path, directives, parentStore, nil, true)
		return err
	default:
		return s.emitLeaf(rawPath, path, value, parentStore, directives, nsRoot)
	}
}

// prefixDirectives wraps a computed field prefix as the "prefix"
// directive dispatch_process_properties expects, or nil when path is
// the document root and no prefix applies yet.
func prefixDirectives(prefix string) map[string]any {
	if prefix == "" {
		return nil
	}
	return map[string]any{"prefix": prefix}
}

func joinChild(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

func sortedObjectKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// emitLeaf resolves the effective spec for a scalar value and feeds the
// handler according to the index bitset (spec.md §4.7 step 3's "invoke
// C1/C2/C3 as dictated by index", §4.6 step 6). rawPath stores the
// result under the document's own literal path rather than path, which
// may be a dynamic-uuid-folded schema path shared by several siblings.
func (s *walkState) emitLeaf(rawPath, path string, value any, parentStore bool, directives map[string]any, nsRoot string) error {
	spec, err := s.resolver.ResolvePath(path, directives, parentStore, value, true)
	if err != nil {
		return err
	}

	if spec.SepTypes.Concrete == serialize.FieldGeo {
		return s.emitGeo(spec)
	}

	encoded, err := serialiseScalar(spec.SepTypes.Concrete, spec.Value)
	if err != nil {
		return err
	}

	if rawPath != "" && spec.Flags.Store {
		s.storeLeaf(rawPath, spec, spec.Value)
	}

	if spec.Index.Has(schema.FieldValues) || spec.Index.Has(schema.GlobalValues) {
		s.mapValues[spec.Slot] = append(s.mapValues[spec.Slot], []byte(encoded))
	}

	for _, t := range s.fieldAndGlobalTerms(spec, encoded) {
		if err := s.handler.Term(t.prefix, t.term, spec.BoolTerm); err != nil {
			return err
		}
	}

	if nsRoot != "" {
		if err := s.emitNamespacePartials(path, nsRoot, encoded, spec.BoolTerm); err != nil {
			return err
		}
	}
	return nil
}

// emitNamespacePartials additionally indexes a leaf under every ancestor
// partial path between its declared namespace root and its own full
// path, up to schema.LimitPartialPathsDepth (spec.md §4.6 step 4: "the
// field is indexed at every partial path up to a depth limit"). Each
// partial path's own prefix is resolved through the same mutable schema
// the rest of the walk uses, so a partial path already visited while
// descending (every namespace ancestor necessarily was) reads back its
// already-materialized prefix rather than a fresh default.
func (s *walkState) emitNamespacePartials(path, nsRoot, encoded string, boolTerm bool) error {
	full := schema.SplitPath(path)
	root := schema.SplitPath(nsRoot)
	if len(root) == 0 || len(full) < len(root) {
		return nil
	}
	ancestor := schema.JoinPath(full[:len(root)-1])
	rel := full[len(root)-1:]
	for _, partial := range schema.ExpandNamespacePaths(rel) {
		absolute := partial
		if ancestor != "" {
			absolute = ancestor + "." + partial
		}
		if absolute == path {
			continue // the leaf's own full path is emitted by the caller
		}
		pspec, err := s.resolver.ResolvePath(absolute, nil, true, nil, false)
		if err != nil {
			return err
		}
		if !(pspec.Index.Has(schema.FieldTerms) || pspec.Index.Has(schema.GlobalTerms)) {
			continue
		}
		if err := s.handler.Term(pspec.Prefix, pspec.Prefix+encoded, boolTerm); err != nil {
			return err
		}
	}
	return nil
}

// storeLeaf records value under path in the data object, overflowing
// large text/string payloads to s.volume when one is attached.
func (s *walkState) storeLeaf(path string, spec *schema.EffectiveSpec, value any) {
	if s.volume == nil {
		s.dataObject[path] = value
		return
	}
	text, ok := value.(string)
	isOverflowable := spec.SepTypes.Concrete == serialize.FieldText || spec.SepTypes.Concrete == serialize.FieldString
	if !ok || !isOverflowable || len(text) < overflowThreshold {
		s.dataObject[path] = value
		return
	}
	offset, err := s.volume.Write([]byte(text))
	if err != nil {
		// Overflow is an optimization, not a correctness requirement;
		// fall back to embedding the value inline on write failure.
		s.dataObject[path] = value
		return
	}
	s.dataObject[path] = overflowRef{VolumeOffset: offset}
}

func (s *walkState) emitGeo(spec *schema.EffectiveSpec) error {
	text, ok := spec.Value.(string)
	if !ok {
		return xerrors.New(xerrors.InvalidArgument, "%q: geo value must be an EWKT string", spec.Prefix)
	}
	shape, err := geo.Parse(text)
	if err != nil {
		return err
	}
	level := bucket.DefaultGeo[len(bucket.DefaultGeo)-1]
	ranges := shape.Ranges(level)
	if err := s.handler.GeoRanges(spec.Slot, ranges); err != nil {
		return err
	}
	if spec.Index.Has(schema.FieldTerms) {
		for _, term := range bucket.GeoTerms(spec.Prefix, ranges, level, geoLevels(spec.Accuracy)) {
			if err := s.handler.Term(spec.Prefix, term, spec.BoolTerm); err != nil {
				return err
			}
		}
	}
	if spec.Index.Has(schema.GlobalTerms) {
		globalPrefix := schema.GlobalPrefix(spec.SepTypes.Concrete)
		for _, term := range bucket.GeoTerms(globalPrefix, ranges, level, geoLevels(s.globalAccuracy.Geo)) {
			if err := s.handler.Term(globalPrefix, term, spec.BoolTerm); err != nil {
				return err
			}
		}
	}
	return nil
}

func geoLevels(accuracy []uint64) []int {
	if len(accuracy) == 0 {
		return bucket.DefaultGeo
	}
	levels := make([]int, len(accuracy))
	for i, a := range accuracy {
		levels[i] = int(a)
	}
	return levels
}

// termEmission pairs a term with the field group it should be recorded
// under (a field's own prefix, or its concrete type's global prefix).
type termEmission struct {
	prefix string
	term   string
}

func tagAll(prefix string, terms []string) []termEmission {
	out := make([]termEmission, len(terms))
	for i, t := range terms {
		out[i] = termEmission{prefix: prefix, term: t}
	}
	return out
}

// groupFor assigns term back to whichever of fieldPrefix/globalPrefix it
// was bucketed under, needed because bucket.NumericTermsFieldAndGlobal
// returns a flat, untagged slice mixing both prefixes' terms.
func groupFor(term, fieldPrefix, globalPrefix string) string {
	if strings.HasPrefix(term, globalPrefix) {
		return globalPrefix
	}
	return fieldPrefix
}

// fieldAndGlobalTerms derives the terms a leaf emits under its own field
// prefix and, independently, under its concrete type's shared global
// prefix (spec.md §4.3: index is a bitset over field_terms/global_terms).
// Numeric/positive fields reuse bucket.NumericTermsFieldAndGlobal's
// combined bucketing pass when both bits are set, folding the per-field
// and global prefixes into a single pass over the accuracy widths per
// spec.md §4.3's "equal accuracy" optimization; no combined-pass variant
// exists for date/time/geo, so those fall back to one pass per prefix.
func (s *walkState) fieldAndGlobalTerms(spec *schema.EffectiveSpec, encoded string) []termEmission {
	field := spec.Index.Has(schema.FieldTerms)
	global := spec.Index.Has(schema.GlobalTerms)
	if !field && !global {
		return nil
	}
	globalPrefix := schema.GlobalPrefix(spec.SepTypes.Concrete)

	exact := func() []termEmission {
		var out []termEmission
		if field {
			out = append(out, termEmission{spec.Prefix, spec.Prefix + encoded})
		}
		if global {
			out = append(out, termEmission{globalPrefix, globalPrefix + encoded})
		}
		return out
	}

	fieldHasAccuracy := len(spec.AccPrefix) > 0

	switch spec.SepTypes.Concrete {
	case serialize.FieldInteger, serialize.FieldPositive:
		var n int64
		if spec.SepTypes.Concrete == serialize.FieldInteger {
			v, err := serialize.DeserialiseInteger([]byte(encoded))
			if err != nil {
				return exact()
			}
			n = v
		} else {
			v, err := serialize.DeserialisePositive([]byte(encoded))
			if err != nil {
				return exact()
			}
			n = int64(v)
		}
		if field && global && fieldHasAccuracy {
			terms := bucket.NumericTermsFieldAndGlobal(spec.Prefix, globalPrefix, n, spec.Accuracy, s.globalAccuracy.Numeric)
			out := make([]termEmission, len(terms))
			for i, t := range terms {
				out[i] = termEmission{prefix: groupFor(t, spec.Prefix, globalPrefix), term: t}
			}
			return out
		}
		var out []termEmission
		if field {
			if fieldHasAccuracy {
				out = append(out, tagAll(spec.Prefix, bucket.NumericTerms(spec.Prefix, n, spec.Accuracy))...)
			} else {
				out = append(out, termEmission{spec.Prefix, spec.Prefix + encoded})
			}
		}
		if global {
			out = append(out, tagAll(globalPrefix, bucket.NumericTerms(globalPrefix, n, s.globalAccuracy.Numeric))...)
		}
		return out
	case serialize.FieldDate, serialize.FieldDatetime:
		t, err := serialize.DeserialiseDatetime([]byte(encoded))
		if err != nil {
			return exact()
		}
		var out []termEmission
		if field {
			if fieldHasAccuracy {
				units := make([]bucket.DateUnit, len(spec.AccPrefix))
				for i := range units {
					units[i] = bucket.DefaultDate[i%len(bucket.DefaultDate)]
				}
				out = append(out, tagAll(spec.Prefix, bucket.DateTerms(spec.Prefix, t, units))...)
			} else {
				out = append(out, termEmission{spec.Prefix, spec.Prefix + encoded})
			}
		}
		if global {
			out = append(out, tagAll(globalPrefix, bucket.DateTerms(globalPrefix, t, s.globalAccuracy.Date))...)
		}
		return out
	case serialize.FieldTime, serialize.FieldTimedelta:
		secs, err := serialize.DeserialiseTime([]byte(encoded))
		if err != nil {
			return exact()
		}
		var out []termEmission
		if field {
			if fieldHasAccuracy {
				units := make([]bucket.TimeUnit, len(spec.AccPrefix))
				for i := range units {
					units[i] = bucket.DefaultTime[i%len(bucket.DefaultTime)]
				}
				out = append(out, tagAll(spec.Prefix, bucket.TimeTerms(spec.Prefix, secs, units))...)
			} else {
				out = append(out, termEmission{spec.Prefix, spec.Prefix + encoded})
			}
		}
		if global {
			out = append(out, tagAll(globalPrefix, bucket.TimeTerms(globalPrefix, secs, s.globalAccuracy.Time))...)
		}
		return out
	default:
		return exact()
	}
}

func joinValues(occurrences [][]byte) []byte {
	if len(occurrences) == 1 {
		return occurrences[0]
	}
	out := make([]byte, 0)
	for i, v := range occurrences {
		if i > 0 {
			out = append(out, 0x1f) // ASCII unit separator between joined values
		}
		out = append(out, v...)
	}
	return out
}

// serialiseScalar encodes value through C1 according to its resolved
// concrete type.
func serialiseScalar(ft serialize.FieldType, value any) (string, error) {
	switch ft {
	case serialize.FieldKeyword:
		s, _ := value.(string)
		return string(serialize.SerialiseKeyword(s, true)), nil
	case serialize.FieldText:
		s, _ := value.(string)
		return string(serialize.SerialiseText(s)), nil
	case serialize.FieldString:
		s, _ := value.(string)
		return string(serialize.SerialiseString(s)), nil
	case serialize.FieldBoolean:
		b, _ := value.(bool)
		return string(serialize.SerialiseBool(b)), nil
	case serialize.FieldInteger:
		n, err := toInt64(value)
		if err != nil {
			return "", err
		}
		return string(serialize.SerialiseInteger(n)), nil
	case serialize.FieldPositive:
		n, err := toInt64(value)
		if err != nil {
			return "", err
		}
		return string(serialize.SerialisePositive(uint64(n))), nil
	case serialize.FieldFloat:
		f, err := toFloat64(value)
		if err != nil {
			return "", err
		}
		return string(serialize.SortableSerialise(f)), nil
	case serialize.FieldDate:
		t, err := toTime(value)
		if err != nil {
			return "", err
		}
		return string(serialize.SerialiseDate(t)), nil
	case serialize.FieldDatetime:
		t, err := toTime(value)
		if err != nil {
			return "", err
		}
		return string(serialize.SerialiseDatetime(t)), nil
	case serialize.FieldTime:
		secs, err := toSecondsOfDay(value)
		if err != nil {
			return "", err
		}
		data, err := serialize.SerialiseTime(secs)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case serialize.FieldTimedelta:
		secs, err := toFloat64(value)
		if err != nil {
			return "", err
		}
		return string(serialize.SerialiseTimedelta(secs)), nil
	case serialize.FieldUUID:
		s, _ := value.(string)
		data, err := serialize.SerialiseUUID(s)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", xerrors.New(xerrors.InvalidArgument, "cannot serialise concrete type %q", ft)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return serialize.ParseDatetime(t)
	}
	return time.Time{}, fmt.Errorf("expected date/datetime, got %T", v)
}

func toSecondsOfDay(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return serialize.ParseTimeOfDay(t)
	}
	return 0, fmt.Errorf("expected time value, got %T", v)
}
