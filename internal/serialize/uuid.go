package serialize

import (
	"strings"

	"github.com/google/uuid"

	"docindex/internal/basex"
	"docindex/internal/xerrors"
)

// base59 is the compact-UUID alphabet (spec.md §4.1: "compacted
// `~<base59…>` form"). The retrieval pack does not pin an exact alphabet
// for this variant, so it is derived from the bitcoin base58 alphabet
// (already grounded via basex.Base58Bitcoin) plus the leading zero digit
// it deliberately excludes, giving the 59 characters the format name
// implies.
var base59 = basex.New("0123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz", false)

// SerialiseUUID encodes a UUID string (or semicolon-separated list of
// UUID strings) into its concatenated 16-byte-per-UUID binary form.
// Accepted syntaxes per UUID: canonical hyphenated, "{...}" braced,
// "urn:uuid:..." and the compact "~<base59...>" form.
func SerialiseUUID(s string) ([]byte, error) {
	parts := strings.Split(s, ";")
	out := make([]byte, 0, 16*len(parts))
	for _, p := range parts {
		b, err := serialiseOneUUID(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func serialiseOneUUID(s string) ([16]byte, error) {
	var zero [16]byte
	if s == "" {
		return zero, xerrors.New(xerrors.Serialisation, "uuid: empty value")
	}
	if strings.HasPrefix(s, "~") {
		raw, err := base59.Decode(s[1:])
		if err != nil {
			return zero, xerrors.Wrap(xerrors.Serialisation, err, "uuid: invalid compact form %q", s)
		}
		var padded [16]byte
		if len(raw) > 16 {
			return zero, xerrors.New(xerrors.Serialisation, "uuid: compact form decodes to %d bytes", len(raw))
		}
		copy(padded[16-len(raw):], raw)
		return padded, nil
	}

	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "urn:uuid:"), "urn:UUID:")
	trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "{"), "}")
	u, err := uuid.Parse(trimmed)
	if err != nil {
		return zero, xerrors.Wrap(xerrors.Serialisation, err, "uuid: invalid value %q", s)
	}
	return u, nil
}

// DeserialiseUUID reverses SerialiseUUID, splitting a 16-byte-multiple
// buffer back into semicolon-joined canonical UUID strings.
func DeserialiseUUID(data []byte) (string, error) {
	if len(data) == 0 || len(data)%16 != 0 {
		return "", xerrors.New(xerrors.Serialisation, "uuid: length %d is not a multiple of 16", len(data))
	}
	parts := make([]string, 0, len(data)/16)
	for off := 0; off < len(data); off += 16 {
		var u uuid.UUID
		copy(u[:], data[off:off+16])
		parts = append(parts, u.String())
	}
	return strings.Join(parts, ";"), nil
}

// CompactUUID renders a UUID in its compact "~<base59...>" storage form,
// trimming leading zero bytes the way basex.Encode naturally does.
func CompactUUID(u uuid.UUID) string {
	return "~" + base59.Encode(u[:])
}

// IsValidUUID reports whether s parses as a single UUID in any accepted
// syntax (used by the schema engine's dynamic-path detection, spec §4.6).
func IsValidUUID(s string) bool {
	_, err := serialiseOneUUID(s)
	return err == nil
}
