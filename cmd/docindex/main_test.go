package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/schema"
)

func TestIndexBitsString(t *testing.T) {
	assert.Equal(t, "none", indexBitsString(schema.IndexBits(schema.IndexNone)))
	assert.Equal(t, "field_terms|field_values", indexBitsString(schema.IndexBits(schema.FieldAll)))
	assert.Equal(t, "field_terms|field_values|global_terms|global_values", indexBitsString(schema.IndexBits(schema.IndexAll)))
}

func TestRootCommandWiring(t *testing.T) {
	cmd := indexCmd()
	assert.Equal(t, "index", cmd.Use)

	schemaGroup := schemaCmd()
	assert.Len(t, schemaGroup.Commands(), 1)

	storageGroup := storageCmd()
	assert.Len(t, storageGroup.Commands(), 3)
}

func TestRunIndexLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.json")
	schemaPath := filepath.Join(dir, "schema.toml")
	configPath := filepath.Join(dir, "config.toml")
	outPath := filepath.Join(dir, "out.json")

	require.NoError(t, os.WriteFile(docPath, []byte(`{"title":"hello"}`), 0o644))
	require.NoError(t, os.WriteFile(configPath, []byte("strict = false\n"), 0o644))

	flags := &indexFlags{
		docFile:    docPath,
		schemaFile: schemaPath,
		configFile: configPath,
		format:     "json",
		outFile:    outPath,
	}
	require.NoError(t, runIndex(flags))

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "termId")
}

func TestRunIndexRejectsMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.json")
	configPath := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(docPath, []byte(`{"title":"hello"}`), 0o644))
	require.NoError(t, os.WriteFile(configPath, []byte("not = [valid toml"), 0o644))

	flags := &indexFlags{
		docFile:    docPath,
		schemaFile: filepath.Join(dir, "schema.toml"),
		configFile: configPath,
		format:     "json",
		outFile:    filepath.Join(dir, "out.json"),
	}
	err := runIndex(flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRunIndexOverflowsLargeFieldToVolume(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.json")
	schemaPath := filepath.Join(dir, "schema.toml")
	volumePath := filepath.Join(dir, "data.0")
	outPath := filepath.Join(dir, "out.json")

	body := strings.Repeat("z", 512)
	doc, err := json.Marshal(map[string]any{"body": body})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(docPath, doc, 0o644))

	flags := &indexFlags{
		docFile:    docPath,
		schemaFile: schemaPath,
		volumeFile: volumePath,
		format:     "json",
		outFile:    outPath,
	}
	require.NoError(t, runIndex(flags))

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "volumeOffset")
	assert.NotContains(t, string(out), body)
}
