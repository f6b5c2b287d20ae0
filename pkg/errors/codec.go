package errors

// CodecError provides specialized error handling for key-codec decode
// failures: unknown type tags, truncated buffers, or invalid escapes.
type CodecError struct {
	*baseError

	// offset records the byte position within the encoded buffer where
	// decoding failed, aiding reproduction of the failure.
	offset int

	// tag captures the offending type tag byte, when one was read.
	tag byte
}

// NewCodecError creates a new codec-specific error with the provided context.
func NewCodecError(err error, code ErrorCode, msg string) *CodecError {
	return &CodecError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while preserving the CodecError type.
func (ce *CodecError) WithMessage(msg string) *CodecError {
	ce.baseError.WithMessage(msg)
	return ce
}

// WithCode sets the error code while preserving the CodecError type.
func (ce *CodecError) WithCode(code ErrorCode) *CodecError {
	ce.baseError.WithCode(code)
	return ce
}

// WithDetail adds contextual information while preserving the CodecError type.
func (ce *CodecError) WithDetail(key string, value any) *CodecError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// WithOffset records where in the buffer decoding failed.
func (ce *CodecError) WithOffset(offset int) *CodecError {
	ce.offset = offset
	return ce
}

// WithTag records the offending type tag byte.
func (ce *CodecError) WithTag(tag byte) *CodecError {
	ce.tag = tag
	return ce
}

// Offset returns the byte position where decoding failed.
func (ce *CodecError) Offset() int {
	return ce.offset
}

// Tag returns the offending type tag byte.
func (ce *CodecError) Tag() byte {
	return ce.tag
}

// NewUnknownTagError creates an error for an unrecognized type tag.
func NewUnknownTagError(tag byte, offset int) *CodecError {
	return NewCodecError(nil, ErrorCodeInvalidKey, "unknown key type tag").
		WithTag(tag).
		WithOffset(offset).
		WithDetail("stage", "tag_dispatch")
}

// NewTruncatedKeyError creates an error for a buffer that ends before the
// value it was encoding is fully readable.
func NewTruncatedKeyError(offset, needed int) *CodecError {
	return NewCodecError(nil, ErrorCodeInvalidKey, "encoded key buffer truncated").
		WithOffset(offset).
		WithDetail("bytesNeeded", needed)
}

// NewInvalidEscapeError creates an error for a string escape sequence that
// doesn't resolve to a valid terminator or embedded-NUL escape.
func NewInvalidEscapeError(offset int) *CodecError {
	return NewCodecError(nil, ErrorCodeInvalidKey, "invalid string escape sequence").
		WithOffset(offset).
		WithDetail("stage", "string_unescape")
}
