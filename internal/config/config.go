// Package config loads engine configuration from TOML, following the
// exact converter-struct pattern of internal/parser/toml/parser.go: an
// unexported wire struct is decoded by the library, then hand-converted
// into validated internal types that the rest of the engine consumes.
// Where the teacher's parser converts a schema-file document into a
// core.Database, this one converts an engine-configuration document into
// an Engine that the storage volume, schema engine and indexing driver
// are all constructed from.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"docindex/internal/bucket"
	"docindex/internal/logging"
	"docindex/internal/schema"
	"docindex/internal/storage"
)

// Storage holds storage-volume defaults (spec.md §4.5).
type Storage struct {
	Path            string
	SyncMode        storage.SyncMode
	FsyncThrottleMS int
}

// Accuracy holds the default accuracy bucket sets per concrete type
// (spec.md §4.3), seeded from internal/bucket's package defaults and
// overridable per engine.
type Accuracy struct {
	Numeric []uint64
	Date    []bucket.DateUnit
	Time    []bucket.TimeUnit
	Geo     []int
}

// Engine is the fully validated, ready-to-use engine configuration.
type Engine struct {
	Storage        Storage
	Accuracy       Accuracy
	IndexUUIDField schema.UUIDFieldStrategy
	Strict         bool
	LogLevel       string
	LogFormat      logging.Format
}

// Default returns the configuration an engine bootstraps with when no
// TOML file is supplied, matching the package defaults of internal/bucket
// and internal/schema.
func Default() Engine {
	return Engine{
		Storage: Storage{
			Path:            "docindex.bin",
			SyncMode:        storage.DefaultSync,
			FsyncThrottleMS: int(storage.FsyncThrottle.Milliseconds()),
		},
		Accuracy: Accuracy{
			Numeric: bucket.DefaultNumeric,
			Date:    bucket.DefaultDate,
			Time:    bucket.DefaultTime,
			Geo:     bucket.DefaultGeo,
		},
		IndexUUIDField: schema.DefaultIndexUUIDField,
		Strict:         false,
		LogLevel:       logging.LevelInfo,
		LogFormat:      logging.Text,
	}
}

// wireFile is the top-level TOML document.
type wireFile struct {
	Storage  *wireStorage  `toml:"storage"`
	Accuracy *wireAccuracy `toml:"accuracy"`
	Schema   *wireSchema   `toml:"schema"`
	Logging  *wireLogging  `toml:"logging"`
}

type wireStorage struct {
	Path            string `toml:"path"`
	SyncMode        string `toml:"sync_mode"`
	FsyncThrottleMS int    `toml:"fsync_throttle_ms"`
}

type wireAccuracy struct {
	Numeric []uint64 `toml:"numeric"`
	Date    []string `toml:"date"`
	Time    []string `toml:"time"`
	Geo     []int    `toml:"geo"`
}

type wireSchema struct {
	IndexUUIDField string `toml:"index_uuid_field"`
	Strict         bool   `toml:"strict"`
}

type wireLogging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadFile opens path and parses it as an engine configuration TOML
// document. A missing file is not an error: Default() is returned, the
// way internal/schema.LoadEngineFile treats an absent schema file as a
// fresh engine rather than a failure.
func LoadFile(path string) (Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Engine{}, fmt.Errorf("config: open file %q: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads a TOML document from r and merges it over Default().
func Load(r io.Reader) (Engine, error) {
	var wf wireFile
	if _, err := toml.NewDecoder(r).Decode(&wf); err != nil {
		return Engine{}, fmt.Errorf("config: decode error: %w", err)
	}

	return newConverter(&wf).convert()
}

type converter struct {
	wf  *wireFile
	cfg Engine
}

func newConverter(wf *wireFile) *converter {
	return &converter{wf: wf, cfg: Default()}
}

func (c *converter) convert() (Engine, error) {
	if err := c.convertStorage(); err != nil {
		return Engine{}, err
	}
	if err := c.convertAccuracy(); err != nil {
		return Engine{}, err
	}
	if err := c.convertSchema(); err != nil {
		return Engine{}, err
	}
	if err := c.convertLogging(); err != nil {
		return Engine{}, err
	}
	return c.cfg, nil
}

func (c *converter) convertStorage() error {
	s := c.wf.Storage
	if s == nil {
		return nil
	}
	if s.Path != "" {
		c.cfg.Storage.Path = s.Path
	}
	if s.FsyncThrottleMS != 0 {
		c.cfg.Storage.FsyncThrottleMS = s.FsyncThrottleMS
	}
	if s.SyncMode != "" {
		mode, err := parseSyncMode(s.SyncMode)
		if err != nil {
			return err
		}
		c.cfg.Storage.SyncMode = mode
	}
	return nil
}

func parseSyncMode(raw string) (storage.SyncMode, error) {
	switch raw {
	case "none":
		return storage.NoSync, nil
	case "async":
		return storage.AsyncSync, nil
	case "full":
		return storage.FullSync, nil
	case "default":
		return storage.DefaultSync, nil
	default:
		return 0, fmt.Errorf("config: unknown sync_mode %q", raw)
	}
}

func (c *converter) convertAccuracy() error {
	a := c.wf.Accuracy
	if a == nil {
		return nil
	}
	if len(a.Numeric) > 0 {
		c.cfg.Accuracy.Numeric = a.Numeric
	}
	if len(a.Geo) > 0 {
		c.cfg.Accuracy.Geo = a.Geo
	}
	if len(a.Date) > 0 {
		units, err := parseDateUnits(a.Date)
		if err != nil {
			return err
		}
		c.cfg.Accuracy.Date = units
	}
	if len(a.Time) > 0 {
		units, err := parseTimeUnits(a.Time)
		if err != nil {
			return err
		}
		c.cfg.Accuracy.Time = units
	}
	return nil
}

func parseDateUnits(raw []string) ([]bucket.DateUnit, error) {
	out := make([]bucket.DateUnit, 0, len(raw))
	for _, name := range raw {
		switch name {
		case "hour":
			out = append(out, bucket.Hour)
		case "day":
			out = append(out, bucket.Day)
		case "month":
			out = append(out, bucket.Month)
		case "year":
			out = append(out, bucket.Year)
		case "decade":
			out = append(out, bucket.Decade)
		case "century":
			out = append(out, bucket.Century)
		default:
			return nil, fmt.Errorf("config: unknown date accuracy unit %q", name)
		}
	}
	return out, nil
}

func parseTimeUnits(raw []string) ([]bucket.TimeUnit, error) {
	out := make([]bucket.TimeUnit, 0, len(raw))
	for _, name := range raw {
		switch name {
		case "minute":
			out = append(out, bucket.Minute)
		case "hour":
			out = append(out, bucket.TimeHour)
		default:
			return nil, fmt.Errorf("config: unknown time accuracy unit %q", name)
		}
	}
	return out, nil
}

func (c *converter) convertSchema() error {
	s := c.wf.Schema
	if s == nil {
		return nil
	}
	if s.IndexUUIDField != "" {
		strategy := schema.UUIDFieldStrategy(s.IndexUUIDField)
		switch strategy {
		case schema.UUIDStrategyUUID, schema.UUIDStrategyUUIDField, schema.UUIDStrategyBoth:
			c.cfg.IndexUUIDField = strategy
		default:
			return fmt.Errorf("config: unknown index_uuid_field %q", s.IndexUUIDField)
		}
	}
	c.cfg.Strict = s.Strict
	return nil
}

func (c *converter) convertLogging() error {
	l := c.wf.Logging
	if l == nil {
		return nil
	}
	if l.Level != "" {
		c.cfg.LogLevel = l.Level
	}
	if l.Format != "" {
		switch logging.Format(l.Format) {
		case logging.Text, logging.JSON:
			c.cfg.LogFormat = logging.Format(l.Format)
		default:
			return fmt.Errorf("config: unknown logging format %q", l.Format)
		}
	}
	return nil
}
