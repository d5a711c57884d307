package errors

import stdErrors "errors"

// Domain error codes used by the storage engine's core operations. These sit
// alongside the base/storage/index taxonomies above but identify failure
// modes that are meaningful to callers as sentinel values, not just as
// structured context on a wrapped error.
const (
	// ErrorCodeNotADirectory indicates the engine was asked to open a path
	// that does not denote an existing directory.
	ErrorCodeNotADirectory ErrorCode = "NOT_A_DIRECTORY"

	// ErrorCodeKeyNotFound indicates an operation (chiefly Remove) targeted
	// a key absent from the index.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrorCodeCorruptLog covers both an unexpected command variant and an
	// unexpected key found at an indexed offset - in both cases the index
	// and the segment log have fallen out of agreement.
	ErrorCodeCorruptLog ErrorCode = "CORRUPT_LOG"

	// ErrorCodeMalformedSegmentName indicates a ".log"-suffixed directory
	// entry whose stem is not a valid non-negative integer segment id.
	ErrorCodeMalformedSegmentName ErrorCode = "MALFORMED_SEGMENT_NAME"

	// ErrorCodeIndexKeyNotFound mirrors ErrorCodeKeyNotFound for IndexError
	// call sites that want index-specific context (key, operation).
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"
)

// Sentinel domain errors, recognizable via errors.Is through baseError's
// Unwrap chain. Callers that need structured context (segment id, offset,
// key) should wrap one of these as the cause of a StorageError/IndexError
// rather than returning it bare; callers that just need to branch on "is
// this a NotADirectory error" can use errors.Is directly.
var (
	ErrNotADirectory        = stdErrors.New("path does not denote an existing directory")
	ErrKeyNotFound          = stdErrors.New("key not found")
	ErrCorruptLog           = stdErrors.New("segment log is corrupt")
	ErrMalformedSegmentName = stdErrors.New("malformed segment file name")
)

// NewNotADirectoryError wraps ErrNotADirectory with the offending path.
func NewNotADirectoryError(path string) *StorageError {
	return NewStorageError(ErrNotADirectory, ErrorCodeNotADirectory, "not a directory").
		WithPath(path)
}

// NewKeyNotFoundErr wraps ErrKeyNotFound with the offending key. Remove is
// the only caller, so the operation is always "Remove".
func NewKeyNotFoundErr(key string) *IndexError {
	return NewIndexError(ErrKeyNotFound, ErrorCodeIndexKeyNotFound, "key not found").
		WithKey(key).
		WithOperation("Remove")
}

// NewCorruptLogError wraps ErrCorruptLog with segment/offset context.
func NewCorruptLogError(segmentID uint64, offset int64, reason string) *StorageError {
	return NewStorageError(ErrCorruptLog, ErrorCodeCorruptLog, reason).
		WithSegmentID(int(segmentID)).
		WithOffset(int(offset))
}

// NewMalformedSegmentNameError wraps ErrMalformedSegmentName with the
// offending file name.
func NewMalformedSegmentNameError(fileName string) *StorageError {
	return NewStorageError(ErrMalformedSegmentName, ErrorCodeMalformedSegmentName, "malformed segment name").
		WithFileName(fileName)
}

// IsKeyNotFound reports whether err (or something it wraps) is KeyNotFound. Provided as
// a convenience since KeyNotFound is the one sentinel the wire protocol
// distinguishes from "Unknown" (spec.md's dispatch table).
func IsKeyNotFound(err error) bool {
	return stdErrors.Is(err, ErrKeyNotFound)
}

// IsNotADirectory reports whether err (or something it wraps) is NotADirectory.
func IsNotADirectory(err error) bool {
	return stdErrors.Is(err, ErrNotADirectory)
}

// IsCorruptLog reports whether err (or something it wraps) is CorruptLog.
func IsCorruptLog(err error) bool {
	return stdErrors.Is(err, ErrCorruptLog)
}

// IsMalformedSegmentName reports whether err (or something it wraps) is
// MalformedSegmentName.
func IsMalformedSegmentName(err error) bool {
	return stdErrors.Is(err, ErrMalformedSegmentName)
}
