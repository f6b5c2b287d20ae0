package errors

// BloomError provides specialized error handling for split-block bloom
// filter construction and wire-format failures.
type BloomError struct {
	*baseError

	// size is the byte length supplied to the constructor, useful when the
	// failure is a non-multiple-of-32 size.
	size int

	// dataOffset is the header-relative offset at which raw filter bytes
	// were expected to begin, when parsing a Thrift-compact header.
	dataOffset int
}

// NewBloomError creates a new bloom-filter-specific error.
func NewBloomError(err error, code ErrorCode, msg string) *BloomError {
	return &BloomError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while preserving the BloomError type.
func (be *BloomError) WithMessage(msg string) *BloomError {
	be.baseError.WithMessage(msg)
	return be
}

// WithCode sets the error code while preserving the BloomError type.
func (be *BloomError) WithCode(code ErrorCode) *BloomError {
	be.baseError.WithCode(code)
	return be
}

// WithDetail adds contextual information while preserving the BloomError type.
func (be *BloomError) WithDetail(key string, value any) *BloomError {
	be.baseError.WithDetail(key, value)
	return be
}

// WithSize records the byte length that failed the multiple-of-32 check.
func (be *BloomError) WithSize(size int) *BloomError {
	be.size = size
	return be
}

// WithDataOffset records the offset at which raw filter bytes begin.
func (be *BloomError) WithDataOffset(offset int) *BloomError {
	be.dataOffset = offset
	return be
}

// Size returns the byte length supplied to the constructor.
func (be *BloomError) Size() int {
	return be.size
}

// DataOffset returns the offset at which raw filter bytes begin.
func (be *BloomError) DataOffset() int {
	return be.dataOffset
}

// NewInvalidFilterSizeError creates an error for a filter size that isn't a
// multiple of the 32-byte block size.
func NewInvalidFilterSizeError(size int) *BloomError {
	return NewBloomError(nil, ErrorCodeInvalidBloomFilter, "bloom filter size must be a multiple of 32 bytes").
		WithSize(size).
		WithDetail("blockSize", 32)
}

// NewMalformedHeaderError creates an error for a Thrift-compact header that
// could not be parsed.
func NewMalformedHeaderError(cause error) *BloomError {
	return NewBloomError(cause, ErrorCodeInvalidBloomFilter, "malformed bloom filter header")
}
