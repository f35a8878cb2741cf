package indexer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/bucket"
	"docindex/internal/schema"
	"docindex/internal/serialize"
	"docindex/internal/storage"
)

func TestIndexAssignsDefaultUUIDIdAndBooleanTerm(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	termID, doc, data, err := driver.Index(context.Background(), map[string]any{
		"title": "hello world",
	}, nil, handler)

	require.NoError(t, err)
	assert.NotEmpty(t, termID)
	assert.Equal(t, "hello world", doc["title"])
	assert.NotEmpty(t, data["_id"])

	var sawIDTerm bool
	for _, term := range handler.Terms {
		if term.Term == termID && term.BoolTerm {
			sawIDTerm = true
		}
	}
	assert.True(t, sawIDTerm, "id must always be emitted as a boolean term")
}

func TestIndexSkipsNumericSentinelBooleanTerm(t *testing.T) {
	assert.False(t, schema.EmitsIDBooleanTerm(schema.NumericIDSentinel))
}

func TestIndexWithExplicitKeywordID(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	termID, _, data, err := driver.Index(context.Background(), map[string]any{
		"name": "Ada",
	}, "doc-1", handler)

	require.NoError(t, err)
	assert.Equal(t, schema.BoundIDTerm(string(mustSerialiseKeyword("doc-1"))), termID)
	assert.Equal(t, "doc-1", data["_id"])
}

func TestIndexWalksNestedObjectsAndArrays(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"user": map[string]any{
			"name": "Ada",
			"tags": []any{"x", "y"},
		},
	}, "doc-2", handler)

	require.NoError(t, err)
	// At minimum the walk must succeed without error across a
	// MAP -> scalar and MAP -> ARRAY -> scalar chain.
}

func TestIndexNilValueSkipsEmissionButDescends(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"optional": nil,
	}, "doc-3", handler)

	require.NoError(t, err)
	assert.Empty(t, handler.Values)
}

func TestIndexStoresSmallFieldInline(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	_, _, data, err := driver.Index(context.Background(), map[string]any{
		"title": "hello world",
	}, "doc-4", handler)

	require.NoError(t, err)
	assert.Equal(t, "hello world", data["title"])
}

func TestIndexOverflowsLargeTextToVolume(t *testing.T) {
	dir := t.TempDir()
	vol, err := storage.Open(filepath.Join(dir, "data.0"), storage.DefaultSync, nil)
	require.NoError(t, err)
	defer vol.Close()

	engine := schema.NewEngine(false)
	driver := New(engine, nil, vol)
	handler := NewRecordingHandler()

	large := strings.Repeat("x", overflowThreshold+1)
	_, _, data, err := driver.Index(context.Background(), map[string]any{
		"body": large,
	}, "doc-5", handler)

	require.NoError(t, err)
	ref, ok := data["body"].(overflowRef)
	require.True(t, ok, "large text field must overflow to the volume, got %T", data["body"])

	stored, err := vol.Read(ref.VolumeOffset)
	require.NoError(t, err)
	assert.Equal(t, large, string(stored))
}

func TestIndexWithoutVolumeKeepsLargeTextInline(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	large := strings.Repeat("y", overflowThreshold+1)
	_, _, data, err := driver.Index(context.Background(), map[string]any{
		"body": large,
	}, "doc-6", handler)

	require.NoError(t, err)
	assert.Equal(t, large, data["body"])
}

func TestIndexFoldsDynamicUUIDSegmentsUnderSharedSchemaPath(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	u1 := uuid.New().String()
	u2 := uuid.New().String()
	_, _, data, err := driver.Index(context.Background(), map[string]any{
		"revisions": map[string]any{
			u1: "first",
			u2: "second",
		},
	}, "doc-7", handler)

	require.NoError(t, err)
	// Both UUID-keyed children fold onto the same schema path, so the
	// engine materializes exactly one dynamic property for them...
	assert.Contains(t, engine.Paths(), "revisions._uuid")
	assert.NotContains(t, engine.Paths(), "revisions."+u1)
	// ...while the returned data object still keeps each literal key.
	assert.Equal(t, "first", data["revisions."+u1])
	assert.Equal(t, "second", data["revisions."+u2])
}

func TestIndexAssignsDistinctPrefixesPerPath(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"title": "a",
		"body":  "b",
	}, "doc-8", handler)

	require.NoError(t, err)

	prefixes := make(map[string]bool)
	for _, term := range handler.Terms {
		prefixes[term.Prefix] = true
	}
	assert.Contains(t, prefixes, "title")
	assert.Contains(t, prefixes, "body")
}

func TestIndexMarksDynamicUUIDSegmentAsUUIDField(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	handler := NewRecordingHandler()

	u1 := uuid.New().String()
	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"revisions": map[string]any{
			u1: "first",
		},
	}, "doc-10", handler)
	require.NoError(t, err)

	props, ok := engine.Get("revisions._uuid")
	require.True(t, ok)
	assert.True(t, props.Flags.UUIDField)
}

func TestIndexEmitsNamespaceFieldAtEveryPartialPath(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)

	require.NoError(t, driver.UpdateSchema("genre", map[string]any{"namespace": true}))

	handler := NewRecordingHandler()
	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"genre": map[string]any{
			"action": map[string]any{
				"sub": "x",
			},
		},
	}, "doc-9", handler)
	require.NoError(t, err)

	prefixes := make(map[string]bool)
	for _, term := range handler.Terms {
		prefixes[term.Prefix] = true
	}
	assert.Contains(t, prefixes, "genre")
	assert.Contains(t, prefixes, "genre.action")
	assert.Contains(t, prefixes, "genre.action.sub")
}

func TestIndexEmitsGlobalTermUnderSharedTypePrefix(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)
	require.NoError(t, driver.UpdateSchema("count", map[string]any{"type": "integer", "index": "all"}))

	handler := NewRecordingHandler()
	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"count": 42,
	}, "doc-11", handler)
	require.NoError(t, err)

	globalPrefix := schema.GlobalPrefix(serialize.FieldInteger)
	prefixes := make(map[string]bool)
	for _, term := range handler.Terms {
		prefixes[term.Prefix] = true
	}
	assert.Contains(t, prefixes, "count")
	assert.Contains(t, prefixes, globalPrefix)
}

func TestIndexCombinesFieldAndGlobalNumericTermsWhenAccuracyMatches(t *testing.T) {
	engine := schema.NewEngine(false)
	driver := New(engine, nil, nil)

	widths := make([]any, len(bucket.DefaultNumeric))
	for i, w := range bucket.DefaultNumeric {
		widths[i] = w
	}
	require.NoError(t, driver.UpdateSchema("count", map[string]any{
		"type":     "integer",
		"index":    "all",
		"accuracy": widths,
	}))

	handler := NewRecordingHandler()
	_, _, _, err := driver.Index(context.Background(), map[string]any{
		"count": 12345,
	}, "doc-12", handler)
	require.NoError(t, err)

	globalPrefix := schema.GlobalPrefix(serialize.FieldInteger)
	var sawField, sawGlobal bool
	for _, term := range handler.Terms {
		if term.Prefix == "count" {
			sawField = true
		}
		if term.Prefix == globalPrefix {
			sawGlobal = true
		}
	}
	assert.True(t, sawField, "matching-accuracy combined pass must still emit a field term")
	assert.True(t, sawGlobal, "matching-accuracy combined pass must still emit a global term")
}

func mustSerialiseKeyword(s string) []byte {
	v, err := serialiseScalar("keyword", s)
	if err != nil {
		panic(err)
	}
	return []byte(v)
}
