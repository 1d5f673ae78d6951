package lshkit

import (
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// PreHash32 maps an arbitrary element (token, shingle, model word) to a
// 32-bit value. Sketching schemes hash this value, not the raw bytes: the
// mixed tabulation primitive operates on fixed-width keys, so variable
// length input is folded down once per element rather than once per
// (element, function) pair.
//
// Distinct elements that collide here are indistinguishable to every
// sketching function, which inflates estimated similarity by at most the
// collision rate (~n/2^32 for n distinct elements). That is negligible for
// the set sizes this engine targets.
func PreHash32(element []byte) uint32 {
	return murmur3.Sum32(element)
}

// PreHash64 maps an arbitrary byte string to a 64-bit value with a seed.
// Used for band bucket keys; exposed for consumers that need a fast keyed
// fingerprint consistent with the engine's hashing.
func PreHash64(data []byte, seed uint64) uint64 {
	return xxh3.HashSeed(data, seed)
}
