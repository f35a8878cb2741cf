package schema

import (
	"sort"
	"sync"

	"docindex/internal/xerrors"
)

// Engine holds the immutable, persisted property tree for one document
// collection, keyed by dotted path (spec.md §3's "schema is a shared
// immutable map"). Grounded on internal/core's pattern of an
// immutable value (Database) that mutation helpers never touch in
// place, generalized here into an explicit clone-on-mutation lifecycle
// since the document schema, unlike a SQL Database, mutates
// incrementally per indexing operation rather than being rebuilt whole.
type Engine struct {
	mu         sync.RWMutex
	properties map[string]*Properties
	recurse    bool
	version    float64
	strict     bool
}

// NewEngine constructs an initial schema: "{recurse=false,
// version=DB_VERSION_SCHEMA, schema={}}", locked read-only until the
// first BeginIndexing/Commit cycle (spec.md §3's Lifecycle).
func NewEngine(strict bool) *Engine {
	return &Engine{
		properties: make(map[string]*Properties),
		recurse:    false,
		version:    SchemaVersion,
		strict:     strict,
	}
}

// Get returns the persisted properties for path, or (nil, false) if the
// path has never been materialized.
func (e *Engine) Get(path string) (*Properties, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.properties[path]
	return p, ok
}

// Strict reports the engine-wide default used when a path's own
// "strict" flag has not been persisted yet.
func (e *Engine) Strict() bool { return e.strict }

// Paths returns every materialized path in the persisted tree, sorted,
// for tools that print the effective schema rather than resolve a single
// path during indexing.
func (e *Engine) Paths() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	paths := make([]string, 0, len(e.properties))
	for p := range e.properties {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BeginIndexing opens a mutation scope: a copy-on-write view over the
// current persisted tree. Callers mutate paths through the returned
// MutableSchema and either Commit (atomically publish the accumulated
// changes as the engine's next immutable snapshot) or Discard (drop them,
// leaving the engine untouched) — mirroring spec.md §3's "mut_schema ...
// discarded on any exception during indexing".
func (e *Engine) BeginIndexing() *MutableSchema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &MutableSchema{
		engine: e,
		base:   e.properties,
		dirty:  make(map[string]*Properties),
	}
}

// MutableSchema is the mut_schema of spec.md §3's Lifecycle: a working
// set of path mutations layered over the engine's last committed
// snapshot, visible only to the indexing operation that opened it.
type MutableSchema struct {
	engine *Engine
	base   map[string]*Properties
	dirty  map[string]*Properties
}

// Get returns the effective properties for path: the dirty (mutated)
// copy if one has been materialized this operation, else the persisted
// copy, else (nil, false).
func (m *MutableSchema) Get(path string) (*Properties, bool) {
	if p, ok := m.dirty[path]; ok {
		return p, true
	}
	p, ok := m.base[path]
	return p, ok
}

// Materialize returns a mutable clone of path's properties, cloning from
// the persisted copy (or a zero value, for a brand new path) on first
// touch this operation and memoizing it so repeated mutations within one
// indexing pass share the same clone.
func (m *MutableSchema) Materialize(path string) *Properties {
	if p, ok := m.dirty[path]; ok {
		return p
	}
	var clone *Properties
	if base, ok := m.base[path]; ok {
		clone = base.Clone()
	} else {
		clone = &Properties{}
	}
	m.dirty[path] = clone
	return clone
}

// Commit publishes every path touched during this operation as the
// engine's next immutable snapshot, via a fresh copy-on-write map so
// concurrent readers holding the previous snapshot are unaffected.
func (m *MutableSchema) Commit() error {
	if m == nil {
		return xerrors.New(xerrors.InvalidArgument, "commit on nil mutable schema")
	}
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()

	next := make(map[string]*Properties, len(m.engine.properties)+len(m.dirty))
	for k, v := range m.engine.properties {
		next[k] = v
	}
	for k, v := range m.dirty {
		next[k] = v
	}
	m.engine.properties = next
	m.dirty = make(map[string]*Properties)
	return nil
}

// Discard drops every mutation accumulated this operation without
// touching the engine (spec.md §3: "On any exception during indexing,
// mut_schema is discarded").
func (m *MutableSchema) Discard() {
	m.dirty = make(map[string]*Properties)
}
