// helpers_test.go holds shared test fixtures: the deterministic per-test
// RNG and synthetic element-set builders with known Jaccard similarities.
package lshkit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// tokens returns the element set {tok-lo, ..., tok-(hi-1)}. Two ranges with
// n shared integers have Jaccard similarity n / |union|, which the
// statistical tests rely on.
func tokens(lo, hi int) [][]byte {
	out := make([][]byte, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, fmt.Appendf(nil, "tok-%d", i))
	}
	return out
}

func shuffled(rng *randv2.Rand, elements [][]byte) [][]byte {
	out := make([][]byte, len(elements))
	copy(out, elements)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func mustSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(opts...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func mustSketch(t *testing.T, s *Session, elements [][]byte) Signature {
	t.Helper()
	sig, err := s.Sketch(elements)
	if err != nil {
		t.Fatalf("Sketch: %v", err)
	}
	return sig
}
