// Package bloom implements the Parquet split-block bloom filter (SBBF) of
// §4.2: a probabilistic set-membership prefilter whose on-disk layout,
// salt constants, and hash are byte-compatible with the Parquet format
// so filters built here can be read by any Parquet-aware tool and vice
// versa.
package bloom

import (
	"encoding/binary"

	"github.com/parquedb/parquedb/internal/codec"
	"github.com/parquedb/parquedb/pkg/errors"
)

// blockBytes is the size of one split-block, in bytes: 8 uint32 words of
// 4 bytes each, matching Parquet's fixed 256-bit block.
const blockBytes = 32

// salt is the set of odd constants the SBBF algorithm multiplies the
// lower 32 bits of a hash by to choose which bit of each of a block's 8
// words to set. These are the literal Parquet SALT values; changing them
// would make filters incompatible with the format.
var salt = [8]uint32{
	0x47b6137b, 0x44974d91, 0x8824ad5b, 0xa2b7289d,
	0x705495c7, 0x2df1424b, 0x9efc4947, 0x5c6bfb31,
}

// Filter is a split-block bloom filter: a sequence of 32-byte blocks,
// each holding 8 uint32 words, where membership of a hash is tested by
// deriving one bit per word from the hash and checking all 8 are set.
type Filter struct {
	blocks []byte // len(blocks) is a multiple of blockBytes
}

// NewFilter allocates a filter sized for blockCount 32-byte blocks.
// blockCount must be at least 1.
func NewFilter(blockCount uint32) (*Filter, error) {
	if blockCount == 0 {
		return nil, errors.NewInvalidFilterSizeError(0)
	}
	return &Filter{blocks: make([]byte, int(blockCount)*blockBytes)}, nil
}

// NumBlocks returns the number of 32-byte blocks in the filter.
func (f *Filter) NumBlocks() uint32 {
	return uint32(len(f.blocks) / blockBytes)
}

// Insert adds key to the filter.
func (f *Filter) Insert(key []byte) {
	f.insertHash(xxHash64(key))
}

func (f *Filter) insertHash(hash uint64) {
	idx := blockIndex(hash, f.NumBlocks())
	m := mask(uint32(hash))
	block := f.blocks[idx*blockBytes : idx*blockBytes+blockBytes]

	for i := 0; i < 8; i++ {
		word := binary.LittleEndian.Uint32(block[i*4:])
		word |= m[i]
		binary.LittleEndian.PutUint32(block[i*4:], word)
	}
}

// MayContain reports whether key might be in the filter. A false result
// is a definitive negative; a true result may be a false positive.
func (f *Filter) MayContain(key []byte) bool {
	return f.mayContainHash(xxHash64(key))
}

func (f *Filter) mayContainHash(hash uint64) bool {
	idx := blockIndex(hash, f.NumBlocks())
	m := mask(uint32(hash))
	block := f.blocks[idx*blockBytes : idx*blockBytes+blockBytes]

	for i := 0; i < 8; i++ {
		word := binary.LittleEndian.Uint32(block[i*4:])
		if word&m[i] != m[i] {
			return false
		}
	}
	return true
}

// InsertValue canonicalizes v through internal/codec before inserting it,
// the "any supported scalar" entry point §4.2 describes: callers add raw
// document attributes to the filter without hand-encoding them first.
func (f *Filter) InsertValue(v any) error {
	val, err := codec.FromAny(v)
	if err != nil {
		return err
	}
	f.Insert(codec.Encode(val))
	return nil
}

// MayContainValue canonicalizes v the same way InsertValue does, then
// tests membership. A false result is a definitive negative.
func (f *Filter) MayContainValue(v any) (bool, error) {
	val, err := codec.FromAny(v)
	if err != nil {
		return false, err
	}
	return f.MayContain(codec.Encode(val)), nil
}

// blockIndex derives which of numBlocks blocks a hash maps to, using the
// upper 32 bits of the hash scaled into [0, numBlocks) by a 64-bit
// multiply-and-shift (the Parquet spec's "multiply-shift" block
// selection, equivalent to a fixed-point division that avoids a modulo).
func blockIndex(hash uint64, numBlocks uint32) uint32 {
	upper := hash >> 32
	return uint32((upper * uint64(numBlocks)) >> 32)
}

// mask derives the 8 per-word bit masks for the lower 32 bits of a hash:
// each of the 8 salt constants produces one set bit, located by the top
// 5 bits of the salted product (giving a value in [0, 32)).
func mask(key uint32) [8]uint32 {
	var m [8]uint32
	for i := 0; i < 8; i++ {
		y := key * salt[i]
		m[i] = 1 << (y >> 27)
	}
	return m
}

// Bytes returns the filter's raw block bytes, suitable for writing after
// a header produced by EncodeHeader.
func (f *Filter) Bytes() []byte {
	return f.blocks
}

// FromBytes wraps raw block bytes (as returned by Bytes, or read
// verbatim from a Parquet-written filter) into a Filter. len(data) must
// be a non-zero multiple of 32.
func FromBytes(data []byte) (*Filter, error) {
	if len(data) == 0 || len(data)%blockBytes != 0 {
		return nil, errors.NewInvalidFilterSizeError(len(data))
	}
	blocks := make([]byte, len(data))
	copy(blocks, data)
	return &Filter{blocks: blocks}, nil
}
