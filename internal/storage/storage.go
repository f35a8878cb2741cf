// Package storage implements the fixed-block append-only volume (C5):
// StorageHeader, bin-framed records, optional LZ4 compression, and the
// alternating double-buffer write path, grounded on original_source's
// storage.h.
package storage

import (
	"math"
	"time"
)

// BlockSize is the fixed block size in bytes (spec.md §4.5).
const BlockSize = 4096

// AlignUnit is the unit the StorageHeader's offset is expressed in.
const AlignUnit = 8

// StorageMagic seeds every XXH32 checksum this package computes.
const StorageMagic = 0x02DEBC47

// LastBlockOffset is the sentinel offset beyond which no record may be
// written; reaching it raises xerrors.StorageEOF. Per spec.md §6,
// STORAGE_LAST_BLOCK_OFFSET = UINT32_MAX * 8, since the StorageHeader
// stores the next-free offset as a u32 count of 8-byte units.
const LastBlockOffset = uint64(math.MaxUint32) * 8

// BlocksMinFree is the minimum number of free blocks growFile maintains.
const BlocksMinFree = 8

// GrowthFactor is the preallocation multiplier applied when free blocks
// fall below BlocksMinFree.
const GrowthFactor = 1.3

// FsyncThrottle is the default debounce window for async fsync requests.
const FsyncThrottle = 200 * time.Millisecond

// SyncMode selects how Commit persists the StorageHeader and preceding
// writes (spec.md §4.5).
type SyncMode int

const (
	// NoSync never fsyncs; the OS page cache alone is relied upon.
	NoSync SyncMode = iota
	// AsyncSync schedules an fsync via the debouncer and returns
	// immediately.
	AsyncSync
	// FullSync issues a full (platform) fsync synchronously before
	// returning.
	FullSync
	// DefaultSync issues an ordinary synchronous fsync.
	DefaultSync
)

// binFlags bit layout (spec.md §6: "u8 flags // 0x01=compressed,
// 0x02=deleted").
const (
	flagCompressed byte = 1 << 0
	flagDeleted    byte = 1 << 1
)

// STORAGE_BIN_HEADER_MAGIC (0x2A) and STORAGE_BIN_FOOTER_MAGIC (0x42)
// from spec.md §6 are not encoded on disk here: the spec notes they
// "may be optional in the runtime build", and the checksum already
// detects framing corruption without a separate magic byte.
