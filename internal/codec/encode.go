package codec

import (
	"encoding/binary"
	"math"
	"time"
)

// Encode produces the order-preserving byte encoding of v. The returned
// bytes are self-delimiting: decoding them back (Decode) consumes exactly
// the bytes Encode produced, which is what lets composite keys
// concatenate component encodings without any extra length framing.
func Encode(v Value) []byte {
	switch v.Kind {
	case KindNull:
		return []byte{tagNull}
	case KindBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return []byte{tagBool, b}
	case KindNumber:
		return encodeNumber(v.Number)
	case KindString:
		return encodeEscaped(tagString, []byte(v.String))
	case KindDate:
		return encodeDate(v.Date)
	case KindBytes:
		return encodeEscaped(tagBytes, v.Bytes)
	case KindArray:
		return encodeArray(v.Array)
	case KindObject:
		return encodeObject(v.Object)
	default:
		return []byte{tagNull}
	}
}

const signBit = uint64(1) << 63

// encodeNumber implements the lex-sortable IEEE-754 encoding of §4.1: flip
// the sign bit for non-negative values (moves them above all negatives in
// the unsigned ordering), invert every bit for negative values (reverses
// their magnitude ordering so the most-negative number is numerically
// smallest). NaN payloads are canonicalized to math.NaN()'s single bit
// pattern first so every NaN value is encoded identically and, by virtue
// of NaN's exponent bits being all-ones, sorts after +Infinity - last
// among numbers, a documented, consistent choice (§4.1, §9 Open Question).
func encodeNumber(f float64) []byte {
	if math.IsNaN(f) {
		f = math.NaN()
	}

	bits := math.Float64bits(f)
	if bits&signBit == 0 {
		bits ^= signBit
	} else {
		bits = ^bits
	}

	out := make([]byte, 9)
	out[0] = tagNumber
	binary.BigEndian.PutUint64(out[1:], bits)
	return out
}

// encodeDate implements the signed-integer rule §4.1 calls for: unlike
// floats, a two's-complement integer only needs its sign bit flipped to
// become a monotonically-sortable unsigned integer, since two's
// complement already preserves relative order between negative and
// positive values. Dates are stored as UTC Unix nanoseconds.
func encodeDate(t time.Time) []byte {
	nanos := t.UTC().UnixNano()
	bits := uint64(nanos) ^ signBit

	out := make([]byte, 9)
	out[0] = tagDate
	binary.BigEndian.PutUint64(out[1:], bits)
	return out
}

// encodeEscaped implements the shared string/bytes encoding: every 0x00
// byte in the payload is escaped as 0x00 0xFF, and the whole value is
// terminated by a bare 0x00. This is what makes two encoded strings (or
// two encoded byte blobs) compare in the same order as the raw bytes
// would under lexicographic comparison - no length prefix is used,
// because a length prefix would make a short-but-large-valued blob sort
// before a long-but-small-valued one, violating cross-value lexicographic
// ordering (e.g. bytes{0x05} vs bytes{0x01,0x02}: length-first order
// would rank {0x05} before {0x01,0x02}, but lex order ranks it after).
func encodeEscaped(tag byte, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	out = append(out, tag)
	out = append(out, encodeEscapedRaw(payload)...)
	return out
}

// encodeEscapedRaw is encodeEscaped without the leading tag byte, used for
// object field keys where the container framing (not a type tag) marks
// the start of each key.
func encodeEscapedRaw(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+1)
	for _, b := range payload {
		if b == 0x00 {
			out = append(out, 0x00, 0xFF)
		} else {
			out = append(out, b)
		}
	}
	out = append(out, 0x00)
	return out
}

// encodeArray frames an array as its tag, each element's encoding joined
// by compositeSeparator, and a trailing containerEnd. A shorter array that
// is a prefix of a longer one sorts after it, because its containerEnd
// (0x02) is compared against the longer array's compositeSeparator (0x01).
func encodeArray(items []Value) []byte {
	out := []byte{tagArray}
	for i, item := range items {
		if i > 0 {
			out = append(out, compositeSeparator)
		}
		out = append(out, Encode(item)...)
	}
	out = append(out, containerEnd)
	return out
}

// encodeObject frames an object as its tag, each field's key (escaped the
// same way a string is) and value joined by compositeSeparator, and a
// trailing containerEnd. Fields are encoded in the order given by the
// caller; callers that need a canonical ordering across documents with
// the same field set should sort Fields by Key first.
func encodeObject(fields []Field) []byte {
	out := []byte{tagObject}
	for i, f := range fields {
		if i > 0 {
			out = append(out, compositeSeparator)
		}
		out = append(out, encodeEscapedRaw([]byte(f.Key))...)
		out = append(out, compositeSeparator)
		out = append(out, Encode(f.Value)...)
	}
	out = append(out, containerEnd)
	return out
}

// EncodeComposite joins the encodings of each component with
// compositeSeparator, implementing §4.1's composite-key concatenation
// rule: compare(encode([a,b]), encode([a,c])) orders the same as
// compare(b, c) when a's encodings are equal, because the separator byte
// is lower than every tag byte and so never lets a shorter prefix's
// trailing bytes outrank a continuation.
func EncodeComposite(components ...Value) []byte {
	out := make([]byte, 0, len(components)*9)
	for i, c := range components {
		if i > 0 {
			out = append(out, compositeSeparator)
		}
		out = append(out, Encode(c)...)
	}
	return out
}
