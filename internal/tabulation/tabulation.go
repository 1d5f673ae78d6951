// Package tabulation implements mixed tabulation hashing over 64-bit keys.
//
// Mixed tabulation (simple tabulation extended with derived characters)
// gives close-to-uniform output with strong independence across derived
// hash functions, at the cost of a few cache-resident table lookups per
// call. The tables are filled from a seeded PCG at construction time, so a
// Hasher is fully deterministic for a given seed.
//
// A Hasher is immutable after New returns and is safe for concurrent use.
package tabulation

import (
	"math/rand/v2"
)

const (
	// numChars is the number of 8-bit input characters in a 64-bit key.
	numChars = 8

	// numDerived is the number of 8-bit derived characters fed through the
	// finalization tables to destroy remaining linear structure.
	numDerived = 4

	// alphabetSize is the value range of one character.
	alphabetSize = 256
)

// entry holds the two words stored per (position, character) cell: the
// value word XORed into the hash and the derive word whose characters
// index the finalization tables.
type entry struct {
	value  uint64
	derive uint64
}

// Hasher is a mixed tabulation hash function over 64-bit keys.
type Hasher struct {
	simple [numChars][alphabetSize]entry
	final  [numDerived][alphabetSize]uint64
}

// New builds the lookup tables from the given seed. Initialization cost is
// (numChars + numDerived) * alphabetSize table entries; Hash calls after
// that perform only table lookups and XORs.
func New(seed uint64) *Hasher {
	// Golden-ratio offset decorrelates the two PCG stream parameters when
	// callers pass small or sequential seeds.
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	h := &Hasher{}
	for i := range h.simple {
		for c := range h.simple[i] {
			h.simple[i][c] = entry{value: rng.Uint64(), derive: rng.Uint64()}
		}
	}
	for j := range h.final {
		for c := range h.final[j] {
			h.final[j][c] = rng.Uint64()
		}
	}
	return h
}

// Hash returns the mixed tabulation hash of key. The loop bodies are
// branch-free; this is the inner loop invoked once per (element, function)
// pair during sketching.
func (h *Hasher) Hash(key uint64) uint64 {
	var v, d uint64
	for i := 0; i < numChars; i++ {
		e := &h.simple[i][byte(key>>(8*i))]
		v ^= e.value
		d ^= e.derive
	}
	for j := 0; j < numDerived; j++ {
		v ^= h.final[j][byte(d>>(8*j))]
	}
	return v
}
