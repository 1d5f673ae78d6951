package lshkit

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	lsherrors "github.com/lshkit/lshkit/errors"
)

// Pair is an unordered pair of distinct item identifiers, stored with
// A < B so that the same pair compares equal regardless of argument order.
type Pair struct {
	A, B string
}

// NewPair returns the normalized pair for two item identifiers.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// PairSet is a deduplicated set of candidate pairs. A pair that collides in
// several bands is present once.
type PairSet map[Pair]struct{}

// Contains reports whether the unordered pair (a, b) is in the set.
func (p PairSet) Contains(a, b string) bool {
	_, ok := p[NewPair(a, b)]
	return ok
}

// Sorted returns the pairs in lexicographic order.
func (p PairSet) Sorted() []Pair {
	out := make([]Pair, 0, len(p))
	for pair := range p {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Digest returns a deterministic fingerprint of the set contents, computed
// over the sorted pair list. Two runs with the same master seed must
// produce equal digests; evaluation harnesses use this to verify
// reproducibility cheaply.
func (p PairSet) Digest() uint64 {
	d := xxhash.New()
	for _, pair := range p.Sorted() {
		_, _ = d.WriteString(pair.A)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(pair.B)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func (p PairSet) merge(other PairSet) {
	for pair := range other {
		p[pair] = struct{}{}
	}
}

// Candidates splits every signature into b bands of r rows and returns all
// unordered pairs of items that share a bucket in at least one band.
//
// Every signature must have length exactly b*r; a mismatch is a setup
// error, not coerced. Bands whose r rows are all EmptySlot are excluded for
// that item, so items sketched from empty sets never become candidates
// through their sentinel values.
//
// Bands are processed on a worker pool; each band owns its bucket map and
// local pair set, released when the band completes, and the per-band sets
// are merged after all bands finish. The result is identical regardless of
// band evaluation order or worker count.
func Candidates(sigs map[string]Signature, b, r int, seeds *SeedSet) (PairSet, error) {
	return candidates(sigs, b, r, seeds, 0)
}

func candidates(sigs map[string]Signature, b, r int, seeds *SeedSet, workers int) (PairSet, error) {
	if seeds == nil {
		return nil, lsherrors.ErrNoSeeds
	}
	if err := validateBanding(sigs, b, r); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sigs))
	for id := range sigs {
		ids = append(ids, id)
	}

	perBand := make([]PairSet, b)
	var g errgroup.Group
	g.SetLimit(poolSize(workers))
	for j := 0; j < b; j++ {
		g.Go(func() error {
			perBand[j] = bandPairs(ids, sigs, j, r, seeds.BandSeed(j))
			return nil
		})
	}
	// Band workers cannot fail; Wait only orders the merge after them.
	_ = g.Wait()

	out := make(PairSet)
	for _, set := range perBand {
		out.merge(set)
	}
	return out, nil
}

// CandidatesAmplified runs a two-stage banding cascade: a first pass with
// (b1, r1) over all items, then a stricter second pass with (b2, r2) over
// only the items that appear in a first-pass pair. A pair is a candidate if
// it survives both passes.
//
// Both passes run over full-length signatures, so b1*r1 and b2*r2 must
// each equal the common signature length. This is the compositional
// cascade (the banding contract applied twice); the nested construction
// whose parameters OptimizeAmplified searches is CandidatesCascade. The
// second pass hashes with band seeds disjoint from the first pass, so its
// collisions are independent of the first pass's.
func CandidatesAmplified(sigs map[string]Signature, b1, r1, b2, r2 int, seeds *SeedSet) (PairSet, error) {
	return candidatesAmplified(sigs, b1, r1, b2, r2, seeds, 0)
}

func candidatesAmplified(sigs map[string]Signature, b1, r1, b2, r2 int, seeds *SeedSet, workers int) (PairSet, error) {
	if seeds == nil {
		return nil, lsherrors.ErrNoSeeds
	}
	if err := validateBanding(sigs, b2, r2); err != nil {
		return nil, err
	}
	first, err := candidates(sigs, b1, r1, seeds, workers)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return first, nil
	}

	universe := make(map[string]Signature)
	for pair := range first {
		universe[pair.A] = sigs[pair.A]
		universe[pair.B] = sigs[pair.B]
	}
	ids := make([]string, 0, len(universe))
	for id := range universe {
		ids = append(ids, id)
	}

	perBand := make([]PairSet, b2)
	var g errgroup.Group
	g.SetLimit(poolSize(workers))
	for j := 0; j < b2; j++ {
		g.Go(func() error {
			// Offset keeps stage-two band seeds disjoint from stage one's.
			perBand[j] = bandPairs(ids, universe, j, r2, seeds.BandSeed(b1+j))
			return nil
		})
	}
	_ = g.Wait()

	out := make(PairSet)
	for _, set := range perBand {
		for pair := range set {
			if _, ok := first[pair]; ok {
				out[pair] = struct{}{}
			}
		}
	}
	return out, nil
}

// CandidatesCascade runs the nested amplified construction described by an
// AmplifiedParams value. The signature's B1*R1*B2*R2 rows form B2 outer
// bands of R2 units, each unit an inner (B1, R1) banding over its own rows:
// two items collide in a unit when any of its B1 inner bands match, collide
// in an outer band when all of its R2 units collide, and become a candidate
// pair when any outer band collides. This is the scheme whose S-curve
// OptimizeAmplified minimizes, so its result feeds directly in here.
//
// Every signature must have length exactly B1*R1*B2*R2. Inner bands whose
// rows are all EmptySlot never collide, so empty-set items never become
// candidates.
func CandidatesCascade(sigs map[string]Signature, p AmplifiedParams, seeds *SeedSet) (PairSet, error) {
	return candidatesCascade(sigs, p, seeds, 0)
}

func candidatesCascade(sigs map[string]Signature, p AmplifiedParams, seeds *SeedSet, workers int) (PairSet, error) {
	if seeds == nil {
		return nil, lsherrors.ErrNoSeeds
	}
	if p.B1 < 1 || p.R1 < 1 || p.B2 < 1 || p.R2 < 1 {
		return nil, fmt.Errorf("%w: b1=%d r1=%d b2=%d r2=%d", lsherrors.ErrInvalidGeometry, p.B1, p.R1, p.B2, p.R2)
	}
	k := p.B1 * p.R1 * p.B2 * p.R2
	for id, sig := range sigs {
		if len(sig) != k {
			return nil, fmt.Errorf("%w: item %q has length %d, want %d", lsherrors.ErrMismatchedSignature, id, len(sig), k)
		}
	}
	ids := make([]string, 0, len(sigs))
	for id := range sigs {
		ids = append(ids, id)
	}

	// Unit u owns the B1 inner bands [u*B1, (u+1)*B1), each of R1 rows;
	// its pair set is the union over those inner bands.
	units := p.B2 * p.R2
	unitPairs := make([]PairSet, units)
	var g errgroup.Group
	g.SetLimit(poolSize(workers))
	for u := 0; u < units; u++ {
		g.Go(func() error {
			set := make(PairSet)
			for j := 0; j < p.B1; j++ {
				inner := u*p.B1 + j
				set.merge(bandPairs(ids, sigs, inner, p.R1, seeds.BandSeed(inner)))
			}
			unitPairs[u] = set
			return nil
		})
	}
	_ = g.Wait()

	out := make(PairSet)
	for j := 0; j < p.B2; j++ {
		out.merge(intersectPairSets(unitPairs[j*p.R2 : (j+1)*p.R2]))
	}
	return out, nil
}

// intersectPairSets returns the pairs present in every set, walking the
// smallest one.
func intersectPairSets(sets []PairSet) PairSet {
	smallest := 0
	for i, set := range sets {
		if len(set) < len(sets[smallest]) {
			smallest = i
		}
	}
	out := make(PairSet)
next:
	for pair := range sets[smallest] {
		for i, set := range sets {
			if i == smallest {
				continue
			}
			if _, ok := set[pair]; !ok {
				continue next
			}
		}
		out[pair] = struct{}{}
	}
	return out
}

func poolSize(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

func validateBanding(sigs map[string]Signature, b, r int) error {
	if b < 1 || r < 1 {
		return fmt.Errorf("%w: b=%d r=%d", lsherrors.ErrInvalidGeometry, b, r)
	}
	k := b * r
	for id, sig := range sigs {
		if len(sig) != k {
			return fmt.Errorf("%w: item %q has length %d, want %d", lsherrors.ErrMismatchedSignature, id, len(sig), k)
		}
	}
	return nil
}

// bandPairs assigns every item to a bucket for band j and emits all
// unordered pairs within buckets of size >= 2. The bucket map is transient:
// it is owned by this call and garbage once it returns.
func bandPairs(ids []string, sigs map[string]Signature, j, r int, bandSeed uint64) PairSet {
	buckets := make(map[uint64][]string)
	buf := make([]byte, r*8)
	for _, id := range ids {
		rows := sigs[id][j*r : (j+1)*r]
		if allEmptySlots(rows) {
			continue
		}
		for i, v := range rows {
			binary.LittleEndian.PutUint64(buf[i*8:], v)
		}
		key := PreHash64(buf, bandSeed)
		buckets[key] = append(buckets[key], id)
	}

	out := make(PairSet)
	for _, group := range buckets {
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for l := i + 1; l < len(group); l++ {
				out[NewPair(group[i], group[l])] = struct{}{}
			}
		}
	}
	return out
}

func allEmptySlots(rows []uint64) bool {
	for _, v := range rows {
		if v != EmptySlot {
			return false
		}
	}
	return true
}
