package output

import "encoding/json"

type jsonFormatter struct{}

type indexPayload struct {
	Format     string       `json:"format"`
	TermID     string       `json:"termId"`
	ValueSlots int          `json:"valueSlots"`
	GeoSlots   int          `json:"geoSlots"`
	Terms      []TermRecord `json:"terms,omitempty"`
	Document   map[string]any `json:"document,omitempty"`
	DataObject map[string]any `json:"dataObject,omitempty"`
}

type schemaPayload struct {
	Format string     `json:"format"`
	Count  int        `json:"count"`
	Paths  []PathSpec `json:"paths,omitempty"`
}

type storagePayload struct {
	Format  string          `json:"format"`
	Path    string          `json:"path"`
	Count   int             `json:"count"`
	Records []StorageRecord `json:"records,omitempty"`
}

type payload interface {
	indexPayload | schemaPayload | storagePayload
}

func (jsonFormatter) FormatIndexResult(r *IndexResult) (string, error) {
	p := indexPayload{Format: string(FormatJSON)}
	if r != nil {
		p.TermID = r.TermID
		p.ValueSlots = r.ValueSlots
		p.GeoSlots = r.GeoSlots
		p.Terms = r.Terms
		p.Document = r.Document
		p.DataObject = r.DataObject
	}
	return marshalJSON(p)
}

func (jsonFormatter) FormatSchemaTree(s *SchemaTree) (string, error) {
	p := schemaPayload{Format: string(FormatJSON)}
	if s != nil {
		p.Paths = s.Paths
		p.Count = len(s.Paths)
	}
	return marshalJSON(p)
}

func (jsonFormatter) FormatStorageDump(d *StorageDump) (string, error) {
	p := storagePayload{Format: string(FormatJSON)}
	if d != nil {
		p.Path = d.Path
		p.Records = d.Records
		p.Count = len(d.Records)
	}
	return marshalJSON(p)
}

func marshalJSON[T payload](p T) (string, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
