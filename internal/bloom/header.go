package bloom

import (
	stderrors "errors"

	"github.com/parquedb/parquedb/pkg/errors"
)

var (
	errShortHeaderBuffer    = stderrors.New("bloom: header buffer ended mid-field")
	errUnsupportedFieldType = stderrors.New("bloom: unsupported thrift compact field type")
	errVarintTooLong        = stderrors.New("bloom: varint exceeds 32 bits")
)

// Thrift compact-protocol type ids used by the subset of BloomFilterHeader
// framing this package reads and writes.
const (
	ctStop   = 0x0
	ctI32    = 0x5
	ctStruct = 0xC
)

// Header describes the Parquet BloomFilterHeader fields this package
// cares about. algorithm/hash/compression are fixed to BLOCK/XXHASH/
// UNCOMPRESSED (the only values Parquet itself defines), so EncodeHeader
// always emits those; DecodeHeader tolerates but ignores their contents,
// since a filter we can't read the salt/hash scheme of isn't one this
// package can evaluate anyway.
type Header struct {
	// NumBytes is the length, in bytes, of the raw filter data that
	// follows the header in the stream.
	NumBytes int32
}

// EncodeHeader serializes h as a Thrift compact-protocol BloomFilterHeader
// struct: field 1 (numBytes, i32), field 2 (algorithm union, BLOCK),
// field 3 (hash union, XXHASH), field 4 (compression union, UNCOMPRESSED),
// then the struct's STOP marker.
func EncodeHeader(h Header) []byte {
	var out []byte

	out = appendFieldHeader(out, 0, 1, ctI32)
	out = appendZigZagVarint(out, h.NumBytes)

	// Each of algorithm/hash/compression is a Thrift union: a struct
	// containing exactly one set field, itself an empty struct naming the
	// chosen variant (BLOCK / XXHASH / UNCOMPRESSED all have zero fields).
	out = appendFieldHeader(out, 1, 2, ctStruct) // algorithm
	out = appendEmptyUnionVariant(out)

	out = appendFieldHeader(out, 2, 3, ctStruct) // hash
	out = appendEmptyUnionVariant(out)

	out = appendFieldHeader(out, 3, 4, ctStruct) // compression
	out = appendEmptyUnionVariant(out)

	out = append(out, ctStop) // end of BloomFilterHeader struct
	return out
}

// appendEmptyUnionVariant writes a struct field (id 1, type STRUCT)
// immediately followed by its own STOP, then the STOP for the enclosing
// union struct - i.e. a variant struct with no fields.
func appendEmptyUnionVariant(out []byte) []byte {
	out = appendFieldHeader(out, 0, 1, ctStruct)
	out = append(out, ctStop) // end of the empty variant struct
	out = append(out, ctStop) // end of the union struct
	return out
}

// DecodeHeader parses a Thrift compact-protocol BloomFilterHeader from
// the front of buf, returning the header and the offset at which the raw
// filter bytes begin (i.e. how many bytes of buf the header consumed).
func DecodeHeader(buf []byte) (Header, int, error) {
	var h Header
	pos := 0
	lastFieldID := int16(0)

	for {
		if pos >= len(buf) {
			return Header{}, 0, errors.NewMalformedHeaderError(nil)
		}

		marker := buf[pos]
		if marker == ctStop {
			pos++
			return h, pos, nil
		}

		fieldID, fieldType, n := readFieldHeader(buf[pos:], lastFieldID)
		if n == 0 {
			return Header{}, 0, errors.NewMalformedHeaderError(nil)
		}
		pos += n
		lastFieldID = fieldID

		switch fieldType {
		case ctI32:
			val, n, err := readZigZagVarint(buf[pos:])
			if err != nil {
				return Header{}, 0, errors.NewMalformedHeaderError(err)
			}
			pos += n
			if fieldID == 1 {
				h.NumBytes = val
			}
		case ctStruct:
			n, err := skipStruct(buf[pos:])
			if err != nil {
				return Header{}, 0, errors.NewMalformedHeaderError(err)
			}
			pos += n
		default:
			return Header{}, 0, errors.NewMalformedHeaderError(nil)
		}
	}
}

// skipStruct consumes a nested struct (used for the algorithm/hash/
// compression union fields this package doesn't otherwise interpret),
// returning how many bytes it occupied.
func skipStruct(buf []byte) (int, error) {
	pos := 0
	lastFieldID := int16(0)
	for {
		if pos >= len(buf) {
			return 0, errShortHeaderBuffer
		}
		if buf[pos] == ctStop {
			pos++
			return pos, nil
		}
		fieldID, fieldType, n := readFieldHeader(buf[pos:], lastFieldID)
		if n == 0 {
			return 0, errShortHeaderBuffer
		}
		pos += n
		lastFieldID = fieldID

		switch fieldType {
		case ctI32:
			_, n, err := readZigZagVarint(buf[pos:])
			if err != nil {
				return 0, err
			}
			pos += n
		case ctStruct:
			n, err := skipStruct(buf[pos:])
			if err != nil {
				return 0, err
			}
			pos += n
		default:
			return 0, errUnsupportedFieldType
		}
	}
}

// appendFieldHeader writes a compact-protocol field header. When the
// delta from the previous field id is within 1-15, the short form packs
// delta and type into a single byte; BloomFilterHeader's fields are
// always in ascending contiguous order so the short form always applies
// here, but the long form is implemented for completeness/robustness.
func appendFieldHeader(out []byte, lastFieldID, fieldID int16, fieldType byte) []byte {
	delta := fieldID - lastFieldID
	if delta > 0 && delta <= 15 {
		return append(out, byte(delta)<<4|fieldType)
	}
	out = append(out, fieldType)
	return appendZigZagVarint(out, int32(fieldID))
}

func readFieldHeader(buf []byte, lastFieldID int16) (fieldID int16, fieldType byte, n int) {
	if len(buf) == 0 {
		return 0, 0, 0
	}
	b := buf[0]
	delta := b >> 4
	fieldType = b & 0x0F

	if delta == 0 {
		id, n2, err := readZigZagVarint(buf[1:])
		if err != nil {
			return 0, 0, 0
		}
		return int16(id), fieldType, 1 + n2
	}
	return lastFieldID + int16(delta), fieldType, 1
}

func appendZigZagVarint(out []byte, v int32) []byte {
	u := zigZagEncode32(v)
	for u >= 0x80 {
		out = append(out, byte(u)|0x80)
		u >>= 7
	}
	return append(out, byte(u))
}

func readZigZagVarint(buf []byte) (int32, int, error) {
	var u uint32
	var shift uint
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		u |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return zigZagDecode32(u), i + 1, nil
		}
		shift += 7
		if shift > 35 {
			return 0, 0, errVarintTooLong
		}
	}
	return 0, 0, errShortHeaderBuffer
}

func zigZagEncode32(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

func zigZagDecode32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}
