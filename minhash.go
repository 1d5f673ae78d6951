package lshkit

import (
	lsherrors "github.com/lshkit/lshkit/errors"
	"github.com/lshkit/lshkit/internal/tabulation"
)

// minHashSketcher produces signatures whose position i holds the minimum of
// hash function i over the element set. Logical function i is the shared
// mixed tabulation hasher applied to the element pre-hash combined with the
// seed set's salt i, reproducing k independent-looking functions from one
// set of tables.
type minHashSketcher struct {
	k      int
	hasher *tabulation.Hasher
	seeds  *SeedSet
}

func newMinHashSketcher(k int, seeds *SeedSet) *minHashSketcher {
	return &minHashSketcher{
		k:      k,
		hasher: tabulation.New(seeds.TableSeed()),
		seeds:  seeds,
	}
}

func (m *minHashSketcher) Len() int { return m.k }

func (m *minHashSketcher) Sketch(elements [][]byte) (Signature, error) {
	if len(elements) == 0 {
		return nil, lsherrors.ErrEmptySet
	}
	sig := newEmptySignature(m.k)
	for _, e := range elements {
		// Pre-hash once per element; the per-function loop below is the
		// hot path, O(items * k * set size) over a full run.
		x := uint64(PreHash32(e)) << 32
		for i := 0; i < m.k; i++ {
			v := m.hasher.Hash(x^m.seeds.Salt(i)) & hashMask
			if v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig, nil
}
