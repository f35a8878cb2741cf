package schema

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"

	"github.com/google/uuid"

	"docindex/internal/serialize"
	"docindex/internal/xerrors"
)

// NormalizeIDType enforces spec.md §3's id restriction: "id field's
// concrete type may not be text or string; if such is requested it is
// forcibly rewritten to keyword".
func NormalizeIDType(declared serialize.FieldType) serialize.FieldType {
	if declared == serialize.FieldText || declared == serialize.FieldString {
		return serialize.FieldKeyword
	}
	return declared
}

// idCounter hands out sequential integer ids for collections whose
// declared id type is integer/positive and no explicit id was given.
// Kept process-local; spec.md §4.6 only requires ids to "start at 0",
// not global uniqueness across process restarts.
type idCounter struct {
	next int64
}

func (c *idCounter) take() int64 {
	n := c.next
	c.next++
	return n
}

// DefaultID assigns a document id when none was supplied explicitly,
// per spec.md §4.6: "uuid -> compact UUID v1; integers start at 0;
// strings use base64 of a random UUID".
func DefaultID(declared serialize.FieldType, counter *idCounter) (string, error) {
	switch NormalizeIDType(declared) {
	case serialize.FieldUUID:
		u, err := uuid.NewUUID() // v1, time-based
		if err != nil {
			return "", xerrors.Wrap(xerrors.Serialisation, err, "generate default uuid id")
		}
		return serialize.CompactUUID(u), nil
	case serialize.FieldInteger, serialize.FieldPositive:
		n := counter.take()
		return strconv.FormatInt(n, 10), nil
	default: // keyword (incl. the forced-from-text/string case)
		var raw [16]byte
		if _, err := rand.Read(raw[:]); err != nil {
			return "", xerrors.Wrap(xerrors.Serialisation, err, "generate default keyword id")
		}
		return base64.RawURLEncoding.EncodeToString(raw[:]), nil
	}
}

// BoundIDTerm builds the id's boolean term, always under the reserved
// IDPrefix (spec.md §4.6).
func BoundIDTerm(serialisedID string) string {
	return IDPrefix + serialisedID
}

// EmitsIDBooleanTerm reports whether the indexing driver should emit the
// id as a boolean term: every id does, except the reserved numeric
// autoincrement sentinel (spec.md §4.7).
func EmitsIDBooleanTerm(term string) bool {
	return term != NumericIDSentinel
}
