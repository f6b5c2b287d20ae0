package codec

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/parquedb/parquedb/pkg/errors"
)

// Decode parses a single encoded value from the front of buf and returns
// it along with whatever bytes follow it. It is the inverse of Encode,
// and is what lets composite-key decoding peel components off one at a
// time without knowing their lengths up front.
func Decode(buf []byte) (Value, []byte, error) {
	if len(buf) == 0 {
		return Value{}, nil, errors.NewTruncatedKeyError(0, 1)
	}

	tag := buf[0]
	rest := buf[1:]

	switch tag {
	case tagNull:
		return Null, rest, nil
	case tagBool:
		if len(rest) < 1 {
			return Value{}, nil, errors.NewTruncatedKeyError(1, 1)
		}
		return NewBool(rest[0] != 0), rest[1:], nil
	case tagNumber:
		return decodeNumber(rest)
	case tagDate:
		return decodeDate(rest)
	case tagString:
		payload, tail, err := decodeEscaped(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Str(string(payload)), tail, nil
	case tagBytes:
		payload, tail, err := decodeEscaped(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Blob(payload), tail, nil
	case tagArray:
		return decodeArray(rest)
	case tagObject:
		return decodeObject(rest)
	default:
		return Value{}, nil, errors.NewUnknownTagError(tag, 0)
	}
}

// DecodeFull decodes buf as exactly one value, erroring if trailing bytes
// remain. Callers decoding a standalone (non-composite) key use this.
func DecodeFull(buf []byte) (Value, error) {
	v, rest, err := Decode(buf)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, errors.NewInvalidEscapeError(len(buf) - len(rest))
	}
	return v, nil
}

// DecodeComposite splits buf into the components joined by
// compositeSeparator at encode time, decoding each in turn. It is the
// inverse of EncodeComposite.
func DecodeComposite(buf []byte) ([]Value, error) {
	var out []Value
	for {
		v, rest, err := Decode(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		if len(rest) == 0 {
			return out, nil
		}
		if rest[0] != compositeSeparator {
			return nil, errors.NewInvalidEscapeError(len(buf) - len(rest))
		}
		buf = rest[1:]
	}
}

func decodeNumber(buf []byte) (Value, []byte, error) {
	if len(buf) < 8 {
		return Value{}, nil, errors.NewTruncatedKeyError(1, 8)
	}

	bits := binary.BigEndian.Uint64(buf[:8])
	if bits&signBit != 0 {
		bits ^= signBit
	} else {
		bits = ^bits
	}

	return Num(math.Float64frombits(bits)), buf[8:], nil
}

func decodeDate(buf []byte) (Value, []byte, error) {
	if len(buf) < 8 {
		return Value{}, nil, errors.NewTruncatedKeyError(1, 8)
	}

	bits := binary.BigEndian.Uint64(buf[:8]) ^ signBit
	nanos := int64(bits)
	return DateVal(time.Unix(0, nanos).UTC()), buf[8:], nil
}

// decodeEscaped reverses encodeEscaped: it scans until an unescaped 0x00
// terminator, unescaping 0x00 0xFF pairs back into a single 0x00 byte.
func decodeEscaped(buf []byte) ([]byte, []byte, error) {
	out := make([]byte, 0, len(buf))
	i := 0
	for {
		if i >= len(buf) {
			return nil, nil, errors.NewTruncatedKeyError(i, 1)
		}
		b := buf[i]
		if b == 0x00 {
			if i+1 < len(buf) && buf[i+1] == 0xFF {
				out = append(out, 0x00)
				i += 2
				continue
			}
			return out, buf[i+1:], nil
		}
		out = append(out, b)
		i++
	}
}

func decodeArray(buf []byte) (Value, []byte, error) {
	if len(buf) > 0 && buf[0] == containerEnd {
		return Arr(), buf[1:], nil
	}

	var items []Value
	for {
		v, rest, err := Decode(buf)
		if err != nil {
			return Value{}, nil, err
		}
		items = append(items, v)

		if len(rest) == 0 {
			return Value{}, nil, errors.NewTruncatedKeyError(len(buf)-len(rest), 1)
		}
		switch rest[0] {
		case containerEnd:
			return Arr(items...), rest[1:], nil
		case compositeSeparator:
			buf = rest[1:]
		default:
			return Value{}, nil, errors.NewInvalidEscapeError(len(buf) - len(rest))
		}
	}
}

func decodeObject(buf []byte) (Value, []byte, error) {
	if len(buf) > 0 && buf[0] == containerEnd {
		return Obj(), buf[1:], nil
	}

	var fields []Field
	for {
		keyBytes, rest, err := decodeEscaped(buf)
		if err != nil {
			return Value{}, nil, err
		}
		if len(rest) == 0 || rest[0] != compositeSeparator {
			return Value{}, nil, errors.NewInvalidEscapeError(len(buf) - len(rest))
		}

		val, rest2, err := Decode(rest[1:])
		if err != nil {
			return Value{}, nil, err
		}
		fields = append(fields, Field{Key: string(keyBytes), Value: val})

		if len(rest2) == 0 {
			return Value{}, nil, errors.NewTruncatedKeyError(len(buf)-len(rest2), 1)
		}
		switch rest2[0] {
		case containerEnd:
			return Obj(fields...), rest2[1:], nil
		case compositeSeparator:
			buf = rest2[1:]
		default:
			return Value{}, nil, errors.NewInvalidEscapeError(len(buf) - len(rest2))
		}
	}
}
