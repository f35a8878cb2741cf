package schema

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// Schema persistence follows spec.md §6's shape — reserved top-level
// keys "_recurse", "_version", "_schema" — but as TOML through
// BurntSushi/toml, the library internal/config also uses, rather than
// MsgPack (DESIGN.md Open
// Question 3), following the exact converter-struct pattern of
// internal/parser/toml/parser.go: an unexported wire struct decoded by
// BurntSushi/toml, then converted by hand into the validated internal
// Properties type.
type wireSchemaFile struct {
	Recurse bool                     `toml:"_recurse"`
	Version float64                  `toml:"_version"`
	Schema  map[string]wireProperties `toml:"_schema"`
}

type wireProperties struct {
	Foreign  bool   `toml:"foreign,omitempty"`
	Object   bool   `toml:"object,omitempty"`
	Array    bool   `toml:"array,omitempty"`
	Concrete string `toml:"type,omitempty"`

	Prefix     string `toml:"prefix,omitempty"`
	UUIDPrefix string `toml:"uuid_prefix,omitempty"`
	Slot       uint32 `toml:"slot,omitempty"`

	Position  []int     `toml:"position,omitempty"`
	Weight    []float64 `toml:"weight,omitempty"`
	Spelling  []bool    `toml:"spelling,omitempty"`
	Positions []bool    `toml:"positions,omitempty"`

	Index uint8 `toml:"index,omitempty"`

	Accuracy  []uint64 `toml:"accuracy,omitempty"`
	AccPrefix []string `toml:"acc_prefix,omitempty"`

	Language     string `toml:"language,omitempty"`
	StopStrategy string `toml:"stop_strategy,omitempty"`
	StemStrategy string `toml:"stem_strategy,omitempty"`
	StemLanguage string `toml:"stem_language,omitempty"`

	BoolTerm bool    `toml:"bool_term,omitempty"`
	Partials bool    `toml:"partials,omitempty"`
	Error    float64 `toml:"error,omitempty"`

	Store        bool `toml:"store,omitempty"`
	IsRecurse    bool `toml:"is_recurse,omitempty"`
	Dynamic      bool `toml:"dynamic,omitempty"`
	Strict       bool `toml:"strict,omitempty"`
	PartialPaths bool `toml:"partial_paths,omitempty"`
	IsNamespace  bool `toml:"is_namespace,omitempty"`
	UUIDField    bool `toml:"uuid_field,omitempty"`
	UUIDPath     bool `toml:"uuid_path,omitempty"`

	DateDetection      bool `toml:"date_detection,omitempty"`
	TimeDetection      bool `toml:"time_detection,omitempty"`
	TimedeltaDetection bool `toml:"timedelta_detection,omitempty"`
	NumericDetection   bool `toml:"numeric_detection,omitempty"`
	GeoDetection       bool `toml:"geo_detection,omitempty"`
	BoolDetection      bool `toml:"bool_detection,omitempty"`
	TextDetection      bool `toml:"text_detection,omitempty"`
	TermDetection      bool `toml:"term_detection,omitempty"`
	UUIDDetection      bool `toml:"uuid_detection,omitempty"`

	Endpoint       string `toml:"endpoint,omitempty"`
	IndexUUIDField string `toml:"index_uuid_field,omitempty"`

	// has_* bookkeeping persisted verbatim so a reload can't forget that a
	// consistency_* property was already explicitly set (see Flags.Has*).
	HasType      bool `toml:"has_type,omitempty"`
	HasSlot      bool `toml:"has_slot,omitempty"`
	HasBoolTerm  bool `toml:"has_bool_term,omitempty"`
	HasAccuracy  bool `toml:"has_accuracy,omitempty"`
	HasDynamic   bool `toml:"has_dynamic,omitempty"`
	HasStrict    bool `toml:"has_strict,omitempty"`
	HasUUIDField bool `toml:"has_uuid_field,omitempty"`
	HasUUIDPath  bool `toml:"has_uuid_path,omitempty"`

	HasDateDetection      bool `toml:"has_date_detection,omitempty"`
	HasTimeDetection      bool `toml:"has_time_detection,omitempty"`
	HasTimedeltaDetection bool `toml:"has_timedelta_detection,omitempty"`
	HasNumericDetection   bool `toml:"has_numeric_detection,omitempty"`
	HasGeoDetection       bool `toml:"has_geo_detection,omitempty"`
	HasBoolDetection      bool `toml:"has_bool_detection,omitempty"`
	HasTextDetection      bool `toml:"has_text_detection,omitempty"`
	HasTermDetection      bool `toml:"has_term_detection,omitempty"`
	HasUUIDDetection      bool `toml:"has_uuid_detection,omitempty"`
}

func toWire(p *Properties) wireProperties {
	return wireProperties{
		Foreign:  p.SepTypes.Foreign,
		Object:   p.SepTypes.Object,
		Array:    p.SepTypes.Array,
		Concrete: string(p.SepTypes.Concrete),

		Prefix:     p.Prefix,
		UUIDPrefix: p.UUIDPrefix,
		Slot:       p.Slot,

		Position:  p.Position,
		Weight:    p.Weight,
		Spelling:  p.Spelling,
		Positions: p.Positions,

		Index: uint8(p.Index),

		Accuracy:  p.Accuracy,
		AccPrefix: p.AccPrefix,

		Language:     p.Language,
		StopStrategy: p.StopStrategy,
		StemStrategy: p.StemStrategy,
		StemLanguage: p.StemLanguage,

		BoolTerm: p.BoolTerm,
		Partials: p.Partials,
		Error:    p.Error,

		Store:        p.Flags.Store,
		IsRecurse:    p.Flags.IsRecurse,
		Dynamic:      p.Flags.Dynamic,
		Strict:       p.Flags.Strict,
		PartialPaths: p.Flags.PartialPaths,
		IsNamespace:  p.Flags.IsNamespace,
		UUIDField:    p.Flags.UUIDField,
		UUIDPath:     p.Flags.UUIDPath,

		DateDetection:      p.Flags.DateDetection,
		TimeDetection:      p.Flags.TimeDetection,
		TimedeltaDetection: p.Flags.TimedeltaDetection,
		NumericDetection:   p.Flags.NumericDetection,
		GeoDetection:       p.Flags.GeoDetection,
		BoolDetection:      p.Flags.BoolDetection,
		TextDetection:      p.Flags.TextDetection,
		TermDetection:      p.Flags.TermDetection,
		UUIDDetection:      p.Flags.UUIDDetection,

		Endpoint:       p.Endpoint,
		IndexUUIDField: string(p.IndexUUIDField),

		HasType:      p.Flags.HasType,
		HasSlot:      p.Flags.HasSlot,
		HasBoolTerm:  p.Flags.HasBoolTerm,
		HasAccuracy:  p.Flags.HasAccuracy,
		HasDynamic:   p.Flags.HasDynamic,
		HasStrict:    p.Flags.HasStrict,
		HasUUIDField: p.Flags.HasUUIDField,
		HasUUIDPath:  p.Flags.HasUUIDPath,

		HasDateDetection:      p.Flags.HasDateDetection,
		HasTimeDetection:      p.Flags.HasTimeDetection,
		HasTimedeltaDetection: p.Flags.HasTimedeltaDetection,
		HasNumericDetection:   p.Flags.HasNumericDetection,
		HasGeoDetection:       p.Flags.HasGeoDetection,
		HasBoolDetection:      p.Flags.HasBoolDetection,
		HasTextDetection:      p.Flags.HasTextDetection,
		HasTermDetection:      p.Flags.HasTermDetection,
		HasUUIDDetection:      p.Flags.HasUUIDDetection,
	}
}

func fromWire(w wireProperties) *Properties {
	p := &Properties{
		SepTypes: serialize.SepTypes{
			Foreign:  w.Foreign,
			Object:   w.Object,
			Array:    w.Array,
			Concrete: serialize.CanonicalFieldType(w.Concrete),
		},
		Prefix:     w.Prefix,
		UUIDPrefix: w.UUIDPrefix,
		Slot:       w.Slot,
		Position:   w.Position,
		Weight:     w.Weight,
		Spelling:   w.Spelling,
		Positions:  w.Positions,
		Index:      IndexBits(w.Index),
		Accuracy:   w.Accuracy,
		AccPrefix:  w.AccPrefix,

		Language:     w.Language,
		StopStrategy: w.StopStrategy,
		StemStrategy: w.StemStrategy,
		StemLanguage: w.StemLanguage,

		BoolTerm: w.BoolTerm,
		Partials: w.Partials,
		Error:    w.Error,

		Endpoint:       w.Endpoint,
		IndexUUIDField: UUIDFieldStrategy(w.IndexUUIDField),
	}
	p.Flags = Flags{
		Store:        w.Store,
		IsRecurse:    w.IsRecurse,
		Dynamic:      w.Dynamic,
		Strict:       w.Strict,
		PartialPaths: w.PartialPaths,
		IsNamespace:  w.IsNamespace,
		UUIDField:    w.UUIDField,
		UUIDPath:     w.UUIDPath,

		DateDetection:      w.DateDetection,
		TimeDetection:      w.TimeDetection,
		TimedeltaDetection: w.TimedeltaDetection,
		NumericDetection:   w.NumericDetection,
		GeoDetection:       w.GeoDetection,
		BoolDetection:      w.BoolDetection,
		TextDetection:      w.TextDetection,
		TermDetection:      w.TermDetection,
		UUIDDetection:      w.UUIDDetection,

		HasType:      w.HasType,
		HasSlot:      w.HasSlot,
		HasBoolTerm:  w.HasBoolTerm,
		HasAccuracy:  w.HasAccuracy,
		HasDynamic:   w.HasDynamic,
		HasStrict:    w.HasStrict,
		HasUUIDField: w.HasUUIDField,
		HasUUIDPath:  w.HasUUIDPath,

		HasDateDetection:      w.HasDateDetection,
		HasTimeDetection:      w.HasTimeDetection,
		HasTimedeltaDetection: w.HasTimedeltaDetection,
		HasNumericDetection:   w.HasNumericDetection,
		HasGeoDetection:       w.HasGeoDetection,
		HasBoolDetection:      w.HasBoolDetection,
		HasTextDetection:      w.HasTextDetection,
		HasTermDetection:      w.HasTermDetection,
		HasUUIDDetection:      w.HasUUIDDetection,
	}
	return p
}

// Save persists the engine's current snapshot as a TOML document
// matching spec.md §6's reserved-key shape.
func (e *Engine) Save(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	file := wireSchemaFile{
		Recurse: e.recurse,
		Version: e.version,
		Schema:  make(map[string]wireProperties, len(e.properties)),
	}
	for path, props := range e.properties {
		file.Schema[path] = toWire(props)
	}
	if err := toml.NewEncoder(w).Encode(file); err != nil {
		return xerrors.Wrap(xerrors.Serialisation, err, "encode schema toml")
	}
	return nil
}

// SaveFile persists the engine snapshot to a file path, creating or
// truncating it.
func (e *Engine) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "create schema file %q", path)
	}
	defer f.Close()
	return e.Save(f)
}

// LoadEngine reads a persisted schema TOML document and returns a fresh
// Engine with that snapshot installed.
func LoadEngine(r io.Reader, strict bool) (*Engine, error) {
	var file wireSchemaFile
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, xerrors.Wrap(xerrors.StorageCorrupt, err, "decode schema toml")
	}
	e := &Engine{
		properties: make(map[string]*Properties, len(file.Schema)),
		recurse:    file.Recurse,
		version:    file.Version,
		strict:     strict,
	}
	for path, w := range file.Schema {
		e.properties[path] = fromWire(w)
	}
	return e, nil
}

// LoadEngineFile opens path and decodes it via LoadEngine; a missing
// file is not an error — callers get a fresh bootstrapped engine
// instead, matching spec.md §3's "An initial schema ... is locked
// read-only after construction" for a collection indexed for the first
// time.
func LoadEngineFile(path string, strict bool) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewEngine(strict), nil
		}
		return nil, xerrors.Wrap(xerrors.StorageIO, err, "open schema file %q", path)
	}
	defer f.Close()
	return LoadEngine(f, strict)
}
