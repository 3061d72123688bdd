// Package errs defines the sentinel errors shared across snstore packages.
package errs

import "errors"

var (
	// ErrSchemaInvalid reports a malformed schema: a node without a type,
	// a scalar without a defaultValue, or broken array indices.
	ErrSchemaInvalid = errors.New("invalid schema")

	// ErrSegmentOpen reports that the OS refused to open, size or map the
	// shared-memory object.
	ErrSegmentOpen = errors.New("segment open failed")

	// ErrInitTimeout reports that the initialization semaphore wait exceeded
	// its bound while another process held the segment in-progress.
	ErrInitTimeout = errors.New("initialization handshake timed out")

	// ErrChecksumInvalid reports a segment header that failed validation.
	ErrChecksumInvalid = errors.New("segment header checksum invalid")

	// ErrPathNotFound reports a path that does not resolve to a layout node.
	ErrPathNotFound = errors.New("path not found")

	// ErrTypeMismatch reports a coercion that is impossible, such as reading
	// a container as a scalar.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrSemaphore reports an OS-level semaphore failure.
	ErrSemaphore = errors.New("semaphore operation failed")

	// ErrSnapshotInvalid reports a snapshot blob with a bad magic, version
	// or integrity fingerprint.
	ErrSnapshotInvalid = errors.New("invalid snapshot")

	// ErrUnsupported reports a platform without the required shared-memory
	// primitives.
	ErrUnsupported = errors.New("not supported on this platform")
)
