package codec_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquedb/parquedb/internal/codec"
)

func TestRoundTrip(t *testing.T) {
	values := []codec.Value{
		codec.Null,
		codec.NewBool(true),
		codec.NewBool(false),
		codec.Num(0),
		codec.Num(-0.0),
		codec.Num(3.14159),
		codec.Num(-3.14159),
		codec.Num(math.Inf(1)),
		codec.Num(math.Inf(-1)),
		codec.Str(""),
		codec.Str("hello"),
		codec.Blob([]byte{0x00, 0x01, 0xFF}),
		codec.DateVal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		codec.Arr(codec.Num(1), codec.Str("a")),
		codec.Obj(codec.Field{Key: "a", Value: codec.Num(1)}, codec.Field{Key: "b", Value: codec.Str("x")}),
	}

	for _, v := range values {
		encoded := codec.Encode(v)
		decoded, err := codec.DecodeFull(encoded)
		require.NoError(t, err)
		assert.Equal(t, v.Kind, decoded.Kind)
	}
}

func TestCrossTypeOrdering(t *testing.T) {
	ordered := []codec.Value{
		codec.Null,
		codec.NewBool(false),
		codec.NewBool(true),
		codec.Num(-100),
		codec.Num(0),
		codec.Num(100),
		codec.Str("a"),
		codec.Str("b"),
		codec.DateVal(time.Unix(0, 0).UTC()),
		codec.DateVal(time.Unix(100, 0).UTC()),
		codec.Blob([]byte{0x01}),
		codec.Blob([]byte{0x02}),
		codec.Arr(codec.Num(1)),
		codec.Obj(codec.Field{Key: "a", Value: codec.Num(1)}),
	}

	for i := 0; i < len(ordered)-1; i++ {
		a := codec.Encode(ordered[i])
		b := codec.Encode(ordered[i+1])
		assert.Less(t, codec.Compare(a, b), 0, "index %d should sort before %d", i, i+1)
	}
}

func TestNumberOrdering(t *testing.T) {
	values := []float64{
		math.Inf(-1), -1000, -1, -0.5, 0, 0.5, 1, 1000, math.Inf(1),
	}
	for i := 0; i < len(values)-1; i++ {
		a := codec.Encode(codec.Num(values[i]))
		b := codec.Encode(codec.Num(values[i+1]))
		assert.Less(t, codec.Compare(a, b), 0)
	}
}

func TestBytesOrderingMatchesLexOrder(t *testing.T) {
	// A pure length-prefixed encoding would rank {0x05} before {0x01,0x02};
	// the escape-and-terminate encoding must rank it after, matching plain
	// lexicographic byte comparison.
	a := codec.Encode(codec.Blob([]byte{0x01, 0x02}))
	b := codec.Encode(codec.Blob([]byte{0x05}))
	assert.Less(t, codec.Compare(a, b), 0)
}

func TestStringEscapingPreservesOrder(t *testing.T) {
	a := codec.Encode(codec.Str("a"))
	b := codec.Encode(codec.Str("aa"))
	assert.Less(t, codec.Compare(a, b), 0)
}

func TestCompositeKeyOrdering(t *testing.T) {
	a := codec.EncodeComposite(codec.Str("ns"), codec.Num(1))
	b := codec.EncodeComposite(codec.Str("ns"), codec.Num(2))
	assert.Less(t, codec.Compare(a, b), 0)

	decoded, err := codec.DecodeComposite(a)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "ns", decoded[0].String)
	assert.Equal(t, float64(1), decoded[1].Number)
}

func TestFromAny(t *testing.T) {
	v, err := codec.FromAny(map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, codec.KindObject, v.Kind)

	v, err = codec.FromAny([]any{1, "a"})
	require.NoError(t, err)
	assert.Equal(t, codec.KindArray, v.Kind)

	_, err = codec.FromAny(make(chan int))
	assert.Error(t, err)
}

func TestHexRoundTrip(t *testing.T) {
	buf := codec.Encode(codec.Str("hello"))
	hex := codec.Hex(buf)
	back, err := codec.FromHex(hex)
	require.NoError(t, err)
	assert.Equal(t, buf, back)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := codec.DecodeFull(nil)
	assert.Error(t, err)

	_, err = codec.DecodeFull([]byte{0x30, 0x01, 0x02})
	assert.Error(t, err)
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := codec.DecodeFull([]byte{0xAB})
	assert.Error(t, err)
}

func TestHashIsStableForEqualBytes(t *testing.T) {
	buf := codec.Encode(codec.Str("alice@example.com"))
	assert.Equal(t, codec.Hash(buf), codec.Hash(buf))
}

func TestHashDiffersForDifferentValues(t *testing.T) {
	a := codec.Hash(codec.Encode(codec.Str("alice")))
	b := codec.Hash(codec.Encode(codec.Str("bob")))
	assert.NotEqual(t, a, b)
}

func TestHashValueMatchesManualEncode(t *testing.T) {
	v := codec.Num(42)
	assert.Equal(t, codec.Hash(codec.Encode(v)), codec.HashValue(v))
}
