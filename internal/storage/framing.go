package storage

import (
	"encoding/binary"

	"docindex/internal/xerrors"
	"docindex/internal/xxhash32"
)

// binHeaderSize is 1 (flags) + 4 (size) bytes.
const binHeaderSize = 5

// binFooterSize is 4 (checksum) bytes, per spec.md §6's on-disk layout
// ("u32 checksum // XXH32(payload, seed=STORAGE_MAGIC)"); §4.5's prose
// shorthand "(u32+u8)" refers to the checksum plus the trailing
// alignment padding, not a stored padding-count field — the padding
// length is always recoverable from the header's size field alone.
const binFooterSize = 4

// binHeader is the fixed-size record prefix (spec.md §6). All
// multi-byte fields are little-endian.
type binHeader struct {
	flags byte
	size  uint32
}

func (h binHeader) compressed() bool { return h.flags&flagCompressed != 0 }
func (h binHeader) deleted() bool    { return h.flags&flagDeleted != 0 }

func encodeBinHeader(h binHeader) []byte {
	buf := make([]byte, binHeaderSize)
	buf[0] = h.flags
	binary.LittleEndian.PutUint32(buf[1:5], h.size)
	return buf
}

func decodeBinHeader(buf []byte) (binHeader, error) {
	if len(buf) < binHeaderSize {
		return binHeader{}, xerrors.New(xerrors.StorageCorrupt, "truncated bin header")
	}
	return binHeader{flags: buf[0], size: binary.LittleEndian.Uint32(buf[1:5])}, nil
}

func encodeBinFooter(checksum uint32) []byte {
	buf := make([]byte, binFooterSize)
	binary.LittleEndian.PutUint32(buf, checksum)
	return buf
}

func decodeBinFooter(buf []byte) (uint32, error) {
	if len(buf) < binFooterSize {
		return 0, xerrors.New(xerrors.StorageCorrupt, "truncated bin footer")
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// paddedSize returns n rounded up to the next 8-byte boundary, and the
// number of padding bytes added.
func paddedSize(n int) (total int, pad int) {
	rem := n % AlignUnit
	if rem == 0 {
		return n, 0
	}
	pad = AlignUnit - rem
	return n + pad, pad
}

// checksum computes the XXH32 checksum (seeded with StorageMagic) over
// the payload only, per spec.md §6: "XXH32(payload, seed=STORAGE_MAGIC)".
func checksum(payload []byte) uint32 {
	return xxhash32.Sum(payload, StorageMagic)
}

// frameRecord builds the full on-disk byte sequence for one record:
// header, payload, footer, then alignment padding to an 8-byte
// boundary (spec.md §6).
func frameRecord(payload []byte, compressed bool) []byte {
	flags := byte(0)
	if compressed {
		flags |= flagCompressed
	}
	header := encodeBinHeader(binHeader{flags: flags, size: uint32(len(payload))})
	footer := encodeBinFooter(checksum(payload))

	unpadded := len(header) + len(payload) + len(footer)
	total, pad := paddedSize(unpadded)

	out := make([]byte, 0, total)
	out = append(out, header...)
	out = append(out, payload...)
	out = append(out, footer...)
	out = append(out, make([]byte, pad)...)
	return out
}

// parseRecord reverses frameRecord given the full framed byte sequence,
// validating the checksum and rejecting deleted records.
func parseRecord(framed []byte) (payload []byte, compressed bool, err error) {
	hdr, err := decodeBinHeader(framed)
	if err != nil {
		return nil, false, err
	}
	if hdr.deleted() {
		return nil, false, xerrors.New(xerrors.StorageNotFound, "record marked deleted")
	}
	payloadStart := binHeaderSize
	payloadEnd := payloadStart + int(hdr.size)
	if payloadEnd+binFooterSize > len(framed) {
		return nil, false, xerrors.New(xerrors.StorageCorrupt, "record framing exceeds buffer")
	}
	payload = framed[payloadStart:payloadEnd]
	footerChecksum, err := decodeBinFooter(framed[payloadEnd : payloadEnd+binFooterSize])
	if err != nil {
		return nil, false, err
	}
	want := checksum(payload)
	if want != footerChecksum {
		return nil, false, xerrors.New(xerrors.StorageCorrupt, "checksum mismatch: have %08x want %08x", footerChecksum, want)
	}
	return payload, hdr.compressed(), nil
}

// framedLength returns the total on-disk length of a record given its
// (possibly compressed) payload length.
func framedLength(payloadLen int) int {
	total, _ := paddedSize(binHeaderSize + payloadLen + binFooterSize)
	return total
}
