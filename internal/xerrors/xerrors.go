// Package xerrors implements the engine's error taxonomy: data errors,
// consistency errors, missing-type errors, and storage errors. Every
// error returned by the core components satisfies errors.Is against one
// of the sentinel kinds below so callers can branch on error class
// without string matching.
package xerrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Use errors.Is(err, xerrors.Consistency) etc.
var (
	// Client marks any error that surfaces directly to the caller as a
	// malformed request (spec's ClientError).
	Client = errors.New("client error")
	// MissingType marks a strict-schema field with no inferable type.
	MissingType = errors.New("missing type error")
	// Cast marks a failed {"_tag": value} envelope resolution.
	Cast = errors.New("cast error")
	// Serialisation marks a programmer-error class failure encoding or
	// decoding a typed value.
	Serialisation = errors.New("serialisation error")
	// InvalidArgument marks a malformed argument to a component entry point.
	InvalidArgument = errors.New("invalid argument")
	// OutOfRange marks a data-class failure: a value outside its type's range.
	OutOfRange = errors.New("out of range")
	// EWKT marks a grammar error while parsing an EWKT string.
	EWKT = errors.New("ewkt error")
	// GeoSpatial marks a geometric construction error (e.g. degenerate shape).
	GeoSpatial = errors.New("geospatial error")
	// Consistency marks an attempt to change an immutable persisted property.
	Consistency = errors.New("consistency error")

	// StorageIO marks a lower-level storage failure (short read/write,
	// fallocate failure, closed descriptor).
	StorageIO = errors.New("storage io error")
	// StorageClosed marks an operation attempted on a closed volume.
	StorageClosed = errors.New("storage closed error")
	// StorageNotFound marks a read of a deleted or absent record.
	StorageNotFound = errors.New("storage not found")
	// StorageEOF marks a write that would cross the last block offset.
	StorageEOF = errors.New("storage eof")
	// StorageNoFile marks an open(create=false) against a missing volume file.
	StorageNoFile = errors.New("storage no file")
	// StorageCorrupt marks a checksum, magic, or size mismatch on read.
	StorageCorrupt = errors.New("storage corrupt volume")
)

// wrapped associates a sentinel kind with a human message and an optional cause.
type wrapped struct {
	kind    error
	message string
	cause   error
}

func (w *wrapped) Error() string {
	if w.cause != nil {
		return fmt.Sprintf("%s: %s: %v", w.kind, w.message, w.cause)
	}
	return fmt.Sprintf("%s: %s", w.kind, w.message)
}

func (w *wrapped) Unwrap() error { return w.kind }

func (w *wrapped) Is(target error) bool {
	return target == w.kind
}

// New builds an error of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return &wrapped{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error of the given kind around a lower-level cause.
func Wrap(kind error, cause error, format string, args ...any) error {
	return &wrapped{kind: kind, message: fmt.Sprintf(format, args...), cause: cause}
}

// ConsistencyChange is a convenience constructor for spec's
// "It is not allowed to change ..." family of errors.
func ConsistencyChange(path, property string, old, new any) error {
	return New(Consistency, "it is not allowed to change %q for %q (had %v, got %v)", property, path, old, new)
}
