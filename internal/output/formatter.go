// Package output formats the results cmd/docindex's commands produce,
// grounded on the teacher's internal/output package: a Format enum
// selects between a small set of formatter implementations behind one
// Formatter interface, the way formatter.go's NewFormatter dispatched
// between sql/json/summary for a schema diff. The record shapes here are
// an indexed document's terms/values, a schema path's effective
// properties, and a storage volume's record listing, in place of the
// teacher's diff/migration records.
package output

import (
	"fmt"
	"strings"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter formats the three kinds of result cmd/docindex produces.
type Formatter interface {
	FormatIndexResult(*IndexResult) (string, error)
	FormatSchemaTree(*SchemaTree) (string, error)
	FormatStorageDump(*StorageDump) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to text format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatText:
		return textFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'text' or 'json'", name)
	}
}
