package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

func TestConsistencyTypeRejectsChange(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("title", map[string]any{keyType: "text"}, true, "hello", true)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("title", map[string]any{keyType: "keyword"}, true, "hello", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestConsistencySlotRejectsChange(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("amount", map[string]any{keySlot: 42}, true, 7, true)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("amount", map[string]any{keySlot: 43}, true, 7, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestConsistencyDynamicRejectsFalseToTrueFlip(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("foo", map[string]any{keyDynamic: false}, true, "hello", true)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("foo", map[string]any{keyDynamic: true}, true, "hello", true)
	require.Error(t, err, "an already-persisted false must not be silently overwritten by true")
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestConsistencyDetectionFlagRejectsChangeOnceSet(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("bar", map[string]any{keyGeoDetection: false}, true, "x", true)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("bar", map[string]any{keyGeoDetection: true}, true, "x", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestConsistencyDetectionFlagPersistsHasBitAcrossReload(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("bar", map[string]any{keyGeoDetection: false}, true, "x", true)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	var buf bytes.Buffer
	require.NoError(t, e.Save(&buf))

	reloaded, err := LoadEngine(&buf, false)
	require.NoError(t, err)

	mut2 := reloaded.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("bar", map[string]any{keyGeoDetection: true}, true, "x", true)
	require.Error(t, err, "reload must not forget that geo_detection was already explicitly set")
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestConsistencyAccuracyOrderInsensitive(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("qty", map[string]any{
		keyType:     "integer",
		keyAccuracy: []any{int64(1), int64(10), int64(100)},
	}, true, int64(5), true)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("qty", map[string]any{
		keyAccuracy: []any{int64(100), int64(1), int64(10)},
	}, true, int64(6), true)
	assert.NoError(t, err, "same set in a different order must not be a consistency error")
}

func TestStorePropagationIsAndJoin(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	parent, err := r.ResolvePath("user", map[string]any{keyStore: false}, true, nil, false)
	require.NoError(t, err)
	assert.False(t, parent.Flags.Store)

	child, err := r.ResolvePath("user.name", map[string]any{keyStore: true}, parent.Flags.Store, "Ada", true)
	require.NoError(t, err)
	assert.False(t, child.Flags.Store, "a false ancestor store must stay sticky downward")
}

func TestStorePropagationDefaultsTrue(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	parent, err := r.ResolvePath("profile", nil, true, nil, false)
	require.NoError(t, err)
	assert.True(t, parent.Flags.Store)

	child, err := r.ResolvePath("profile.bio", nil, parent.Flags.Store, "hi", true)
	require.NoError(t, err)
	assert.True(t, child.Flags.Store)
}

func TestNamespaceLatchesTrue(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("tags", map[string]any{keyNamespace: true}, true, nil, false)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("tags", map[string]any{keyNamespace: false}, true, nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestUUIDFieldLatchesTrueAndRejectsFlipToFalse(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	_, err := r.ResolvePath("revisions._uuid", map[string]any{keyUUIDField: true}, true, nil, false)
	require.NoError(t, err)
	require.NoError(t, mut.Commit())

	got, ok := e.Get("revisions._uuid")
	require.True(t, ok)
	assert.True(t, got.Flags.UUIDField)

	mut2 := e.BeginIndexing()
	r2 := NewResolver(mut2)
	_, err = r2.ResolvePath("revisions._uuid", map[string]any{keyUUIDField: false}, true, nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.Consistency)
}

func TestBrandNewPathDefaultsToFieldAllIndexing(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	spec, err := r.ResolvePath("title", nil, true, "hello", true)
	require.NoError(t, err)
	assert.True(t, spec.Index.Has(FieldTerms))
	assert.True(t, spec.Index.Has(FieldValues))
	assert.False(t, spec.Index.Has(GlobalTerms))
}

func TestExplicitIndexDirectiveOverridesDefault(t *testing.T) {
	e := NewEngine(false)
	mut := e.BeginIndexing()
	r := NewResolver(mut)

	spec, err := r.ResolvePath("title", map[string]any{keyIndex: "none"}, true, "hello", true)
	require.NoError(t, err)
	assert.Equal(t, IndexBits(IndexNone), spec.Index)
}

func TestGuessFieldTypeTrialOrder(t *testing.T) {
	flags := Flags{NumericDetection: true, BoolDetection: true, UUIDDetection: true}

	ft, v, err := GuessFieldType(int64(-5), flags)
	require.NoError(t, err)
	assert.Equal(t, serialize.FieldInteger, ft)
	assert.Equal(t, int64(-5), v)

	ft, _, err = GuessFieldType(int64(5), flags)
	require.NoError(t, err)
	assert.Equal(t, serialize.FieldPositive, ft)

	ft, _, err = GuessFieldType(true, flags)
	require.NoError(t, err)
	assert.Equal(t, serialize.FieldBoolean, ft)

	ft, _, err = GuessFieldType(nil, flags)
	require.NoError(t, err)
	assert.Equal(t, serialize.FieldEmpty, ft)
}

func TestGuessFieldTypeRejectsBareArray(t *testing.T) {
	_, _, err := GuessFieldType([]any{1, 2}, Flags{})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.InvalidArgument)
}

func TestGuessFieldTypeRejectsMultiKeyMap(t *testing.T) {
	_, _, err := GuessFieldType(map[string]any{"a": 1, "b": 2}, Flags{})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.InvalidArgument)
}

func TestDefaultIDBranches(t *testing.T) {
	counter := &idCounter{}

	uid, err := DefaultID(serialize.FieldUUID, counter)
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	first, err := DefaultID(serialize.FieldInteger, counter)
	require.NoError(t, err)
	assert.Equal(t, "0", first)
	second, err := DefaultID(serialize.FieldPositive, counter)
	require.NoError(t, err)
	assert.Equal(t, "1", second)

	kw, err := DefaultID(serialize.FieldKeyword, counter)
	require.NoError(t, err)
	assert.NotEmpty(t, kw)
}

func TestNormalizeIDTypeRewritesTextAndString(t *testing.T) {
	assert.Equal(t, serialize.FieldKeyword, NormalizeIDType(serialize.FieldText))
	assert.Equal(t, serialize.FieldKeyword, NormalizeIDType(serialize.FieldString))
	assert.Equal(t, serialize.FieldUUID, NormalizeIDType(serialize.FieldUUID))
}

func TestEmitsIDBooleanTermSkipsSentinel(t *testing.T) {
	assert.False(t, EmitsIDBooleanTerm(NumericIDSentinel))
	assert.True(t, EmitsIDBooleanTerm(BoundIDTerm("abc123")))
}

func TestCompleteSpecificationDerivesSlotAndAccPrefix(t *testing.T) {
	spec := &EffectiveSpec{}
	spec.SepTypes.Concrete = serialize.FieldInteger
	spec.Prefix = "Ztitle"
	spec.Accuracy = []uint64{1, 10, 100}

	CompleteSpecification(spec)

	assert.NotZero(t, spec.Slot)
	require.Len(t, spec.AccPrefix, 3)
	for _, p := range spec.AccPrefix {
		assert.NotEmpty(t, p)
	}
}

func TestGlobalPrefixIsStableAndDistinctPerType(t *testing.T) {
	assert.Equal(t, GlobalPrefix(serialize.FieldInteger), GlobalPrefix(serialize.FieldInteger))
	assert.NotEqual(t, GlobalPrefix(serialize.FieldInteger), GlobalPrefix(serialize.FieldKeyword))
	assert.NotEqual(t, GlobalPrefix(serialize.FieldInteger), "title")
}

func TestCompleteSpecificationSkipsSlotForObject(t *testing.T) {
	spec := &EffectiveSpec{}
	spec.SepTypes.Concrete = serialize.FieldObject
	spec.Prefix = "Zuser"

	CompleteSpecification(spec)

	assert.Zero(t, spec.Slot)
}

func TestMutableSchemaCommitAndDiscard(t *testing.T) {
	e := NewEngine(false)

	mut := e.BeginIndexing()
	p := mut.Materialize("x")
	p.Prefix = "Zx"
	mut.Discard()

	_, ok := e.Get("x")
	assert.False(t, ok, "discarded mutation must never reach the engine")

	mut2 := e.BeginIndexing()
	p2 := mut2.Materialize("x")
	p2.Prefix = "Zx"
	require.NoError(t, mut2.Commit())

	got, ok := e.Get("x")
	require.True(t, ok)
	assert.Equal(t, "Zx", got.Prefix)
}

func TestExpandNamespacePathsCapsDepth(t *testing.T) {
	segments := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	paths := ExpandNamespacePaths(segments)
	assert.Len(t, paths, LimitPartialPathsDepth)
	assert.Equal(t, "a", paths[0])
	assert.Equal(t, "a.b.c.d.e.f", paths[LimitPartialPathsDepth-1])
}

func TestResolveUUIDFieldStrategies(t *testing.T) {
	prefix, uuidPrefix := ResolveUUIDField(UUIDStrategyUUID, "user._uuid", "user.3fa85f64-5717-4562-b3fc-2c963f66afa6")
	assert.Equal(t, "user.3fa85f64-5717-4562-b3fc-2c963f66afa6", prefix)
	assert.Empty(t, uuidPrefix)

	prefix, uuidPrefix = ResolveUUIDField(UUIDStrategyUUIDField, "user._uuid", "user.3fa85f64-5717-4562-b3fc-2c963f66afa6")
	assert.Equal(t, "user._uuid", prefix)
	assert.Empty(t, uuidPrefix)

	prefix, uuidPrefix = ResolveUUIDField(UUIDStrategyBoth, "user._uuid", "user.3fa85f64-5717-4562-b3fc-2c963f66afa6")
	assert.Equal(t, "user._uuid", prefix)
	assert.Equal(t, "user.3fa85f64-5717-4562-b3fc-2c963f66afa6", uuidPrefix)
}

func TestPersistRoundTrip(t *testing.T) {
	e := NewEngine(true)
	mut := e.BeginIndexing()
	p := mut.Materialize("title")
	p.SepTypes.Concrete = serialize.FieldText
	p.Flags.HasType = true
	p.Prefix = "Ztitle"
	p.Slot = 99
	p.Flags.HasSlot = true
	p.Accuracy = []uint64{1, 10}
	require.NoError(t, mut.Commit())

	var buf bytes.Buffer
	require.NoError(t, e.Save(&buf))

	loaded, err := LoadEngine(&buf, true)
	require.NoError(t, err)

	got, ok := loaded.Get("title")
	require.True(t, ok)
	assert.Equal(t, serialize.FieldText, got.SepTypes.Concrete)
	assert.Equal(t, "Ztitle", got.Prefix)
	assert.Equal(t, uint32(99), got.Slot)
	assert.Equal(t, []uint64{1, 10}, got.Accuracy)
}

func TestLoadEngineFileMissingReturnsFreshEngine(t *testing.T) {
	e, err := LoadEngineFile("/nonexistent/path/to/schema.toml", true)
	require.NoError(t, err)
	assert.True(t, e.Strict())
	_, ok := e.Get("anything")
	assert.False(t, ok)
}
