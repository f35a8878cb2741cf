package serialize

import (
	"encoding/binary"
	"math"

	"docindex/internal/xerrors"
)

// SerialisePositive encodes a non-negative integer as a length-prefixed,
// left-trimmed big-endian byte string: one length byte (1-8) followed by
// that many big-endian value bytes. The length byte ensures a shorter
// (smaller-magnitude) encoding always sorts before a longer one, and
// equal-length encodings sort by their big-endian value — together
// giving full lexicographic = numeric ordering over the u64 range.
func SerialisePositive(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	trimmed := buf[:]
	for len(trimmed) > 1 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}
	out := make([]byte, 0, len(trimmed)+1)
	out = append(out, byte(len(trimmed)))
	out = append(out, trimmed...)
	return out
}

// DeserialisePositive reverses SerialisePositive.
func DeserialisePositive(data []byte) (uint64, error) {
	if len(data) < 1 {
		return 0, xerrors.New(xerrors.Serialisation, "positive: empty input")
	}
	n := int(data[0])
	if n < 1 || n > 8 || len(data) != n+1 {
		return 0, xerrors.New(xerrors.Serialisation, "positive: malformed length prefix")
	}
	var buf [8]byte
	copy(buf[8-n:], data[1:])
	return binary.BigEndian.Uint64(buf[:]), nil
}

// SerialiseInteger encodes a signed integer as a fixed 8-byte biased
// big-endian value: the sign bit is flipped so that two's-complement
// ordering becomes unsigned-lexicographic ordering.
func SerialiseInteger(v int64) []byte {
	biased := uint64(v) ^ (1 << 63)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], biased)
	return buf[:]
}

// DeserialiseInteger reverses SerialiseInteger.
func DeserialiseInteger(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, xerrors.New(xerrors.Serialisation, "integer: expected 8 bytes, got %d", len(data))
	}
	biased := binary.BigEndian.Uint64(data)
	return int64(biased ^ (1 << 63)), nil
}

// SortableSerialise encodes a float64 such that lexicographic byte order
// matches logical (IEEE-754 total) order: negative numbers have all bits
// flipped, non-negative numbers have only the sign bit flipped. This is
// also the encoding used for date/datetime (seconds since epoch),
// time (seconds-of-day) and timedelta (signed seconds), per spec.md §4.1.
func SortableSerialise(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bits)
	return buf[:]
}

// SortableDeserialise reverses SortableSerialise.
func SortableDeserialise(data []byte) (float64, error) {
	if len(data) != 8 {
		return 0, xerrors.New(xerrors.Serialisation, "float: expected 8 bytes, got %d", len(data))
	}
	bits := binary.BigEndian.Uint64(data)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

// SerialiseBool encodes a boolean as a single byte: 'f' or 't'.
func SerialiseBool(b bool) []byte {
	if b {
		return []byte{'t'}
	}
	return []byte{'f'}
}

// DeserialiseBool reverses SerialiseBool.
func DeserialiseBool(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, xerrors.New(xerrors.Serialisation, "boolean: expected 1 byte, got %d", len(data))
	}
	switch data[0] {
	case 't':
		return true, nil
	case 'f':
		return false, nil
	default:
		return false, xerrors.New(xerrors.Serialisation, "boolean: invalid byte %q", data[0])
	}
}
