package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/bucket"
	"docindex/internal/schema"
	"docindex/internal/storage"
)

func TestDefaultMatchesPackageDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, bucket.DefaultNumeric, cfg.Accuracy.Numeric)
	assert.Equal(t, bucket.DefaultGeo, cfg.Accuracy.Geo)
	assert.Equal(t, schema.DefaultIndexUUIDField, cfg.IndexUUIDField)
	assert.False(t, cfg.Strict)
}

func TestLoadFileMissingReturnsDefault(t *testing.T) {
	cfg, err := LoadFile("/nonexistent/path/docindex.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesSelectively(t *testing.T) {
	doc := `
[storage]
path = "custom.bin"
sync_mode = "full"

[accuracy]
numeric = [10, 100]
date = ["day", "year"]

[schema]
index_uuid_field = "UUID"
strict = true

[logging]
level = "debug"
format = "json"
`
	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "custom.bin", cfg.Storage.Path)
	assert.Equal(t, storage.FullSync, cfg.Storage.SyncMode)
	assert.Equal(t, []uint64{10, 100}, cfg.Accuracy.Numeric)
	assert.Equal(t, []bucket.DateUnit{bucket.Day, bucket.Year}, cfg.Accuracy.Date)
	assert.Equal(t, bucket.DefaultTime, cfg.Accuracy.Time)
	assert.Equal(t, schema.UUIDStrategyUUID, cfg.IndexUUIDField)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", string(cfg.LogFormat))
}

func TestLoadRejectsUnknownSyncMode(t *testing.T) {
	_, err := Load(strings.NewReader(`[storage]
sync_mode = "bogus"
`))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownAccuracyUnit(t *testing.T) {
	_, err := Load(strings.NewReader(`[accuracy]
date = ["fortnight"]
`))
	assert.Error(t, err)
}
