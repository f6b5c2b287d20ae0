package codec

import "hash/fnv"

// Hash returns a stable 32-bit hash of key's encoded bytes (§4.1's
// ancillary hash(key) -> u32). It's used wherever a secondary index needs
// to bucket an order-preserving key without caring about its ordering
// properties, e.g. sharding or fixed-size hash tables built on top of the
// codec's canonical encoding.
//
// This is deliberately independent of internal/bloom's pinned xxHash64:
// bloom.Filter canonicalizes values through this package before hashing
// them, so Hash can't depend back on bloom without a cycle. FNV-1a is the
// standard library's only general-purpose non-cryptographic hash, which
// is why it's used here instead of importing a third-party hash purely
// for this one ancillary helper (see DESIGN.md).
func Hash(key []byte) uint32 {
	h := fnv.New32a()
	h.Write(key)
	return h.Sum32()
}

// HashValue encodes v and hashes the result, the common case of hashing a
// Value directly rather than pre-encoded bytes.
func HashValue(v Value) uint32 {
	return Hash(Encode(v))
}
