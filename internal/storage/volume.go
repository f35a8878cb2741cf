package storage

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pierrec/lz4/v4"

	"docindex/internal/debounce"
	"docindex/internal/xerrors"
)

// Volume is a single fixed-block append-only storage file.
type Volume struct {
	file *os.File
	mode SyncMode

	mu         sync.Mutex
	offset     uint64 // next-free offset, in bytes (header stores it / AlignUnit)
	fileSize   int64
	buffers    [2]*buffer
	active     int
	debouncer  *debounce.Debouncer
	compressMin int // payloads >= this many bytes are LZ4-compressed
}

type buffer struct {
	blockOffset uint64 // file offset this buffer currently maps to
	data        [BlockSize]byte
	pos         int
	dirty       bool
}

// Open opens or creates a volume at path. When creating, it writes an
// empty StorageHeader and preallocates an initial block range.
func Open(path string, mode SyncMode, deb *debounce.Debouncer) (*Volume, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.StorageIO, err, "open volume %q", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, xerrors.Wrap(xerrors.StorageIO, err, "stat volume %q", path)
	}

	v := &Volume{file: f, mode: mode, debouncer: deb, compressMin: 256, fileSize: info.Size()}

	if info.Size() == 0 {
		if err := v.growFile(BlocksMinFree); err != nil {
			f.Close()
			return nil, err
		}
		v.offset = BlockSize // block 0 is the header; records start at block 1
		if err := v.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		hdr, err := v.readHeader()
		if err != nil {
			f.Close()
			return nil, err
		}
		v.offset = hdr
	}

	if err := v.initBuffers(); err != nil {
		f.Close()
		return nil, err
	}
	return v, nil
}

// initBuffers positions the double buffer pair at the current
// write offset: the active buffer maps the block v.offset falls in
// (preloaded from disk if that block already holds committed bytes),
// and the other buffer maps the following block.
func (v *Volume) initBuffers() error {
	block := (v.offset / BlockSize) * BlockSize
	pos := int(v.offset % BlockSize)

	v.buffers[0] = &buffer{blockOffset: block, pos: pos}
	if pos > 0 {
		if _, err := v.file.ReadAt(v.buffers[0].data[:pos], int64(block)); err != nil {
			return xerrors.Wrap(xerrors.StorageIO, err, "preload current block at %d", block)
		}
	}
	v.buffers[1] = &buffer{blockOffset: block + BlockSize}
	v.active = 0
	return nil
}

// storageHeaderSize is the on-disk size of the StorageHeader's offset
// field (spec.md §6: "u32 offset // next free, in 8-byte units"); the
// remainder of block 0 is unused padding up to BlockSize.
const storageHeaderSize = 4

func (v *Volume) readHeader() (uint64, error) {
	buf := make([]byte, storageHeaderSize)
	if _, err := v.file.ReadAt(buf, 0); err != nil {
		return 0, xerrors.Wrap(xerrors.StorageIO, err, "read header")
	}
	units := binary.LittleEndian.Uint32(buf)
	return uint64(units) * AlignUnit, nil
}

func (v *Volume) writeHeader() error {
	buf := make([]byte, storageHeaderSize)
	binary.LittleEndian.PutUint32(buf, uint32(v.offset/AlignUnit))
	if _, err := v.file.WriteAt(buf, 0); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "write header")
	}
	return nil
}

// Close flushes any dirty buffers and closes the underlying file.
func (v *Volume) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.flushAll(); err != nil {
		return err
	}
	if err := v.file.Close(); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "close volume")
	}
	return nil
}

// Write appends payload as a new framed record, compressing it with LZ4
// when it is at least compressMin bytes, and returns its start offset.
func (v *Volume) Write(payload []byte) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	compressed := false
	body := payload
	if len(payload) >= v.compressMin {
		bound := lz4.CompressBlockBound(len(payload))
		dst := make([]byte, bound)
		var table [1 << 16]int
		n, err := lz4.CompressBlock(payload, dst, table[:])
		if err == nil && n > 0 && n < len(payload) {
			body = dst[:n]
			compressed = true
		}
	}

	framed := frameRecord(body, compressed)
	if v.offset+uint64(len(framed)) >= LastBlockOffset {
		return 0, xerrors.New(xerrors.StorageEOF, "write would cross last-block sentinel")
	}

	start := v.offset
	if err := v.writeRaw(framed); err != nil {
		return 0, err
	}
	v.offset += uint64(len(framed))

	if err := v.commitLocked(); err != nil {
		return 0, err
	}

	if err := v.maybeGrow(); err != nil {
		return 0, err
	}
	return start, nil
}

// writeRaw appends data into the active double-buffer pair, flushing
// and rotating buffers as they fill, per spec.md §4.5's write algorithm.
func (v *Volume) writeRaw(data []byte) error {
	for len(data) > 0 {
		buf := v.buffers[v.active]
		space := BlockSize - buf.pos
		n := len(data)
		if n > space {
			n = space
		}
		copy(buf.data[buf.pos:buf.pos+n], data[:n])
		buf.pos += n
		buf.dirty = true
		data = data[n:]

		if buf.pos == BlockSize {
			if err := v.flushBuffer(v.active); err != nil {
				return err
			}
			other := 1 - v.active
			v.buffers[other].blockOffset = buf.blockOffset + BlockSize
			v.buffers[other].pos = 0
			v.active = other
		}
	}
	return nil
}

func (v *Volume) flushBuffer(idx int) error {
	buf := v.buffers[idx]
	if !buf.dirty {
		return nil
	}
	if _, err := v.file.WriteAt(buf.data[:], int64(buf.blockOffset)); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "flush buffer at block %d", buf.blockOffset)
	}
	buf.dirty = false
	return nil
}

// flushAll flushes whichever buffer was NOT most recently made active
// first, then the active one. writeRaw already writes each buffer out as
// soon as it fills, so the non-active buffer is normally clean here and
// only the active buffer holds unflushed bytes. No buffer is held back:
// a record spanning a rotation has its lower block written before its
// higher ones.
func (v *Volume) flushAll() error {
	other := 1 - v.active
	if err := v.flushBuffer(other); err != nil {
		return err
	}
	return v.flushBuffer(v.active)
}

// commitLocked persists the StorageHeader and buffered bytes per the
// configured sync mode (spec.md §4.5's Commit algorithm). Caller holds v.mu.
func (v *Volume) commitLocked() error {
	if err := v.flushAll(); err != nil {
		return err
	}
	if err := v.writeHeader(); err != nil {
		return err
	}
	switch v.mode {
	case NoSync:
		return nil
	case AsyncSync:
		if v.debouncer != nil {
			v.debouncer.End(int(v.file.Fd()), false)
		}
		return nil
	case FullSync:
		if v.debouncer != nil {
			v.debouncer.Finish(int(v.file.Fd()))
		}
		return v.syncFull()
	default: // DefaultSync
		return v.file.Sync()
	}
}

// syncFull performs a full durability sync; platform-specific variants
// (e.g. F_FULLFSYNC on Darwin) are not distinguished here since Go's
// standard library exposes only File.Sync, which this delegates to.
func (v *Volume) syncFull() error {
	if err := v.file.Sync(); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "full sync")
	}
	return nil
}

// Offset returns the current next-free write offset, for tools that walk
// a volume's written records from the first one (BlockSize) up to it.
func (v *Volume) Offset() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// RecordHeader is a record's framing metadata without its payload, for
// tools that walk a volume's records without decompressing each one.
type RecordHeader struct {
	FramedLength int
	Deleted      bool
	Compressed   bool
}

// PeekHeader reads the bin header at offset and returns the record's
// framed length and flags, so a caller can advance to the next record
// without reading (and potentially decompressing) its payload.
func (v *Volume) PeekHeader(offset uint64) (RecordHeader, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	hdrBuf := make([]byte, binHeaderSize)
	if _, err := v.file.ReadAt(hdrBuf, int64(offset)); err != nil {
		return RecordHeader{}, xerrors.Wrap(xerrors.StorageIO, err, "read header at %d", offset)
	}
	hdr, err := decodeBinHeader(hdrBuf)
	if err != nil {
		return RecordHeader{}, err
	}
	return RecordHeader{
		FramedLength: framedLength(int(hdr.size)),
		Deleted:      hdr.deleted(),
		Compressed:   hdr.compressed(),
	}, nil
}

// Read reads and decodes the record starting at offset.
func (v *Volume) Read(offset uint64) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	hdrBuf := make([]byte, binHeaderSize)
	if _, err := v.file.ReadAt(hdrBuf, int64(offset)); err != nil {
		return nil, xerrors.Wrap(xerrors.StorageIO, err, "read header at %d", offset)
	}
	hdr, err := decodeBinHeader(hdrBuf)
	if err != nil {
		return nil, err
	}
	total := framedLength(int(hdr.size))
	framed := make([]byte, total)
	if _, err := v.file.ReadAt(framed, int64(offset)); err != nil {
		return nil, xerrors.Wrap(xerrors.StorageIO, err, "read record at %d", offset)
	}
	payload, compressed, err := parseRecord(framed)
	if err != nil {
		return nil, err
	}
	if !compressed {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
	return decompress(payload)
}

// Delete marks the record at offset as deleted in place (the DELETED
// flag bit), without reclaiming its space.
func (v *Volume) Delete(offset uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	flagByte := make([]byte, 1)
	if _, err := v.file.ReadAt(flagByte, int64(offset)); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "read flags at %d", offset)
	}
	flagByte[0] |= flagDeleted
	if _, err := v.file.WriteAt(flagByte, int64(offset)); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "write flags at %d", offset)
	}
	return v.commitLocked()
}

func decompress(compressed []byte) ([]byte, error) {
	// The original size isn't separately framed; callers must size their
	// own destination, so this growth loop re-attempts with a larger
	// buffer until UncompressBlock stops reporting a short destination.
	dst := make([]byte, len(compressed)*4+64)
	for {
		n, err := lz4.UncompressBlock(compressed, dst)
		if err == nil {
			return dst[:n], nil
		}
		if len(dst) > 1<<28 {
			return nil, xerrors.Wrap(xerrors.StorageCorrupt, err, "decompress: payload too large")
		}
		dst = make([]byte, len(dst)*2)
	}
}

// growFile preallocates additional blocks so at least BlocksMinFree
// blocks remain beyond the next-free offset, using a 1.3x growth
// factor (spec.md §4.5).
func (v *Volume) growFile(minBlocks int) error {
	needed := int64(minBlocks) * BlockSize
	target := v.fileSize + needed
	if v.fileSize > 0 {
		grown := int64(float64(v.fileSize) * GrowthFactor)
		if grown > target {
			target = grown
		}
	}
	if target <= v.fileSize {
		return nil
	}
	if err := v.file.Truncate(target); err != nil {
		return xerrors.Wrap(xerrors.StorageIO, err, "grow volume to %d bytes", target)
	}
	v.fileSize = target
	return nil
}

func (v *Volume) maybeGrow() error {
	free := (uint64(v.fileSize) - v.offset) / BlockSize
	if free < BlocksMinFree {
		return v.growFile(BlocksMinFree)
	}
	return nil
}

// volumeNumber matches a base name with a numeric ".<n>" suffix, e.g.
// "data.0", "data.17".
func volumeNumber(pattern, name string) (int, bool) {
	prefix := pattern + "."
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetVolumesRange scans dir for files matching "pattern.<n>" and returns
// the lowest and highest suffix found within [min, max], for bootstrap
// recovery (spec.md §4.5).
func GetVolumesRange(dir, pattern string, min, max int) (lowest, highest int, err error) {
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		return 0, 0, xerrors.Wrap(xerrors.StorageIO, readErr, "list volumes in %q", dir)
	}
	var found []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := volumeNumber(pattern, filepath.Base(e.Name()))
		if !ok {
			continue
		}
		if n < min || n > max {
			continue
		}
		found = append(found, n)
	}
	if len(found) == 0 {
		return 0, 0, xerrors.New(xerrors.StorageNoFile, "no volumes matching %q in %q", pattern, dir)
	}
	sort.Ints(found)
	return found[0], found[len(found)-1], nil
}
