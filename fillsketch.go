package lshkit

import (
	lsherrors "github.com/lshkit/lshkit/errors"
	"github.com/lshkit/lshkit/internal/bits"
	"github.com/lshkit/lshkit/internal/tabulation"
)

// fillSketcher implements the Fill Sketch Scheme: every element is hashed
// exactly once, the hash selects one of k bins, and the bin records the
// smallest hash that reached it. Unvisited bins keep the EmptySlot
// sentinel.
//
// The smallest-hash-wins rule makes the sketch independent of element
// iteration order: min is commutative, so no input canonicalization is
// needed for reproducibility. Use EstimateFSS to turn two fill sketches
// into a Jaccard estimate; the fraction of equal positions alone does not
// estimate Jaccard for this scheme.
type fillSketcher struct {
	k      int
	hasher *tabulation.Hasher
	salt   uint64
}

func newFillSketcher(k int, seeds *SeedSet) *fillSketcher {
	return &fillSketcher{
		k:      k,
		hasher: tabulation.New(seeds.TableSeed()),
		salt:   seeds.Salt(0),
	}
}

func (f *fillSketcher) Len() int { return f.k }

func (f *fillSketcher) Sketch(elements [][]byte) (Signature, error) {
	if len(elements) == 0 {
		return nil, lsherrors.ErrEmptySet
	}
	sig := newEmptySignature(f.k)
	for _, e := range elements {
		x := uint64(PreHash32(e)) << 32
		h := f.hasher.Hash(x ^ f.salt)
		// Bin selection uses the full 64-bit hash (FastRange needs the top
		// bits); only the stored fill value is masked below the sentinel.
		bin := bits.FastRange32(h, uint32(f.k))
		v := h & hashMask
		if v < sig[bin] {
			sig[bin] = v
		}
	}
	return sig, nil
}
