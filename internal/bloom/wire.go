package bloom

import "github.com/parquedb/parquedb/pkg/errors"

// Marshal produces the full wire representation of f: a Thrift-compact
// header followed immediately by the raw block bytes, matching how
// Parquet embeds a bloom filter in a column chunk.
func (f *Filter) Marshal() []byte {
	header := EncodeHeader(Header{NumBytes: int32(len(f.blocks))})
	out := make([]byte, 0, len(header)+len(f.blocks))
	out = append(out, header...)
	out = append(out, f.blocks...)
	return out
}

// Unmarshal parses a header-prefixed wire blob (as produced by Marshal)
// back into a Filter.
func Unmarshal(buf []byte) (*Filter, error) {
	header, dataOffset, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}

	end := dataOffset + int(header.NumBytes)
	if header.NumBytes < 0 || end > len(buf) {
		return nil, errors.NewInvalidFilterSizeError(int(header.NumBytes)).WithDataOffset(dataOffset)
	}

	return FromBytes(buf[dataOffset:end])
}
