package bloom

import "encoding/binary"

// xxHash64 constants, per the published xxHash specification. The
// algorithm is hand-rolled rather than imported because §4.2 treats the
// hash as a core, pinned-output component: the split-block filter's
// on-disk bytes must match Parquet's reference implementation bit for
// bit, which means the hash itself has to be reproduced exactly rather
// than delegated to whatever a dependency's internals happen to do.
const (
	prime64_1 uint64 = 0x9E3779B185EBCA87
	prime64_2 uint64 = 0xC2B2AE3D27D4EB4F
	prime64_3 uint64 = 0x165667B19E3779F9
	prime64_4 uint64 = 0x85EBCA77C2B2AE63
	prime64_5 uint64 = 0x27D4EB2F165667C5
)

// xxHash64 computes the seed-0 xxHash64 digest of data. Pinned reference
// vectors (empty string -> 0xef46db3751d8e999, "abc" ->
// 0x44bc2cf5ad770999) are checked in bloom_test.go.
func xxHash64(data []byte) uint64 {
	return xxHash64Seed(data, 0)
}

func xxHash64Seed(data []byte, seed uint64) uint64 {
	n := len(data)
	p := 0

	var h64 uint64
	if n >= 32 {
		v1 := seed + prime64_1 + prime64_2
		v2 := seed + prime64_2
		v3 := seed
		v4 := seed - prime64_1

		for ; p+32 <= n; p += 32 {
			v1 = round64(v1, binary.LittleEndian.Uint64(data[p:]))
			v2 = round64(v2, binary.LittleEndian.Uint64(data[p+8:]))
			v3 = round64(v3, binary.LittleEndian.Uint64(data[p+16:]))
			v4 = round64(v4, binary.LittleEndian.Uint64(data[p+24:]))
		}

		h64 = rotl64(v1, 1) + rotl64(v2, 7) + rotl64(v3, 12) + rotl64(v4, 18)
		h64 = mergeRound64(h64, v1)
		h64 = mergeRound64(h64, v2)
		h64 = mergeRound64(h64, v3)
		h64 = mergeRound64(h64, v4)
	} else {
		h64 = seed + prime64_5
	}

	h64 += uint64(n)

	for ; p+8 <= n; p += 8 {
		k1 := round64(0, binary.LittleEndian.Uint64(data[p:]))
		h64 ^= k1
		h64 = rotl64(h64, 27)*prime64_1 + prime64_4
	}

	if p+4 <= n {
		h64 ^= uint64(binary.LittleEndian.Uint32(data[p:])) * prime64_1
		h64 = rotl64(h64, 23)*prime64_2 + prime64_3
		p += 4
	}

	for ; p < n; p++ {
		h64 ^= uint64(data[p]) * prime64_5
		h64 = rotl64(h64, 11) * prime64_1
	}

	h64 ^= h64 >> 33
	h64 *= prime64_2
	h64 ^= h64 >> 29
	h64 *= prime64_3
	h64 ^= h64 >> 32

	return h64
}

func round64(acc, input uint64) uint64 {
	acc += input * prime64_2
	acc = rotl64(acc, 31)
	acc *= prime64_1
	return acc
}

func mergeRound64(acc, val uint64) uint64 {
	val = round64(0, val)
	acc ^= val
	acc = acc*prime64_1 + prime64_4
	return acc
}

func rotl64(x uint64, r uint) uint64 {
	return (x << r) | (x >> (64 - r))
}
