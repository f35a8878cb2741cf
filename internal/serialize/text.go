package serialize

import "strings"

// SerialiseKeyword encodes a keyword value as raw UTF-8 bytes, lowercased
// unless boolTerm is set (spec.md §4.1).
func SerialiseKeyword(s string, boolTerm bool) []byte {
	if boolTerm {
		return []byte(s)
	}
	return []byte(strings.ToLower(s))
}

// DeserialiseKeyword is the identity function: keyword bytes are already
// the stored representation (lowercasing is lossy and not reversed).
func DeserialiseKeyword(data []byte) string {
	return string(data)
}

// SerialiseText and SerialiseString both store raw UTF-8 bytes unchanged;
// they are kept distinct from SerialiseKeyword because text/string
// fields are never lowercased and participate in tokenization upstream
// of this package, not here.
func SerialiseText(s string) []byte   { return []byte(s) }
func SerialiseString(s string) []byte { return []byte(s) }

func DeserialiseText(data []byte) string   { return string(data) }
func DeserialiseString(data []byte) string { return string(data) }
