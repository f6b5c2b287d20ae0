package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing segment files, network operations when communicating with remote
	// systems, and device I/O when accessing storage hardware.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints. This maps
	// to HTTP 400-series errors and indicates problems with the request itself
	// rather than system failures.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These are the equivalent of HTTP 500 errors and
	// indicate bugs, assertion failures, or other programming errors that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"

	// ErrorCodeValidationFailed indicates a mutation's input-shape check
	// failed: a reserved attribute the document model requires ($type,
	// name) was missing or the wrong type.
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in persistent storage systems. These codes
// represent problems that are specific to the storage layer of your key-value
// store, particularly focusing on segment file management and data persistence.
const (
	// ErrorCodeSegmentCorrupted indicates that a segment file's data has been
	// damaged or is in an inconsistent state.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeHeaderReadFailure occurs when the system cannot read the header
	// portion of a segment file. Headers contain critical metadata about the
	// segment's structure, so header read failures prevent access to the
	// entire segment and all data it contains.
	ErrorCodeHeaderReadFailure ErrorCode = "HEADER_READ_FAILURE"

	// ErrorCodePayloadReadFailure indicates problems reading the actual data
	// content from segment files after successfully reading the header. This
	// represents a more localized failure compared to header problems, as the
	// segment structure is intact but specific data regions are inaccessible.
	ErrorCodePayloadReadFailure ErrorCode = "PAYLOAD_READ_FAILURE"

	// ErrorCodeRecoveryFailed indicates that the storage system's attempt to
	// recover from a previous failure was unsuccessful. This represents a
	// compound failure where both the original problem and the recovery
	// mechanism have failed, creating a more serious operational situation.
	ErrorCodeRecoveryFailed ErrorCode = "STORAGE_RECOVERY_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	// This is distinct from generic IO errors because it has a specific resolution path:
	// the user needs to adjust file/directory permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	// This requires specific handling like cleanup operations or alerting administrators.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	// This requires administrative intervention to remount the filesystem with write permissions.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"

	// ErrorCodeNotFound indicates a required read found nothing at the given path.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"
)

// Codec-specific error codes cover failures decoding order-preserving keys.
const (
	// ErrorCodeInvalidKey indicates a key could not be decoded: unknown type
	// tag, truncated buffer, or an escape sequence that doesn't resolve.
	ErrorCodeInvalidKey ErrorCode = "INVALID_KEY"
)

// Bloom-filter-specific error codes cover construction and wire-format failures.
const (
	// ErrorCodeInvalidBloomFilter indicates a filter size that isn't a
	// multiple of 32 bytes, or a malformed Thrift-compact header.
	ErrorCodeInvalidBloomFilter ErrorCode = "INVALID_BLOOM_FILTER"
)

// Geo-specific error codes cover geohash decoding failures.
const (
	// ErrorCodeInvalidGeohash indicates a character outside the base-32
	// geohash alphabet.
	ErrorCodeInvalidGeohash ErrorCode = "INVALID_GEOHASH"
)

// Schema-specific error codes cover breaking-change application failures.
const (
	// ErrorCodeSchemaIncompatible indicates an applied change set contains
	// one or more breaking entries and was rejected.
	ErrorCodeSchemaIncompatible ErrorCode = "SCHEMA_INCOMPATIBLE"
)

// Compaction-specific error codes cover control-plane health breaches.
const (
	// ErrorCodeWindowStuck indicates a dispatched compaction window failed
	// to complete within the configured stuck-timeout.
	ErrorCodeWindowStuck ErrorCode = "WINDOW_STUCK"
)

// URL-parameter validation error codes used by pkg/validate.
const (
	// ErrorCodeInvalidURLParameter indicates a transport-layer parameter
	// failed validation (path traversal, null bytes, control characters).
	ErrorCodeInvalidURLParameter ErrorCode = "INVALID_URL_PARAMETER"
)

// Index-specific error codes used by IndexError, covering the record
// pointer lookup that locates an entity's bytes inside its segment log.
const (
	// ErrorCodeIndexKeyNotFound indicates an id has no recorded pointer.
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"

	// ErrorCodeIndexInvalidSegmentID indicates a pointer names a segment
	// ID that no longer has a matching file on disk.
	ErrorCodeIndexInvalidSegmentID ErrorCode = "INDEX_INVALID_SEGMENT_ID"

	// ErrorCodeIndexTimestampExtraction indicates a segment filename
	// could not be parsed for its embedded timestamp.
	ErrorCodeIndexTimestampExtraction ErrorCode = "INDEX_TIMESTAMP_EXTRACTION_FAILED"

	// ErrorCodeIndexCorrupted indicates the in-memory pointer table is
	// in an inconsistent state relative to what's on disk.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)
