package lshkit

import (
	"math"

	lsherrors "github.com/lshkit/lshkit/errors"
)

// EmptySlot is the sentinel stored in signature positions that no element
// filled (empty input sets for MinHash, unvisited bins for FSS). Real hash
// outputs are masked to 63 bits, so the sentinel is unreachable by hashing.
const EmptySlot = math.MaxUint64

// hashMask truncates hash outputs to 63 bits, keeping EmptySlot out of the
// reachable value space.
const hashMask = math.MaxUint64 >> 1

// Signature is the fixed-length compressed representation of an element
// set. Signatures are only comparable across items sketched under the same
// SeedSet and the same scheme.
type Signature []uint64

func newEmptySignature(k int) Signature {
	sig := make(Signature, k)
	for i := range sig {
		sig[i] = EmptySlot
	}
	return sig
}

// Empty reports whether every position is the EmptySlot sentinel.
func (s Signature) Empty() bool {
	for _, v := range s {
		if v != EmptySlot {
			return false
		}
	}
	return true
}

// MatchingPositions counts positions where both signatures hold the same
// value, sentinel positions included.
func MatchingPositions(a, b Signature) (int, error) {
	if len(a) != len(b) {
		return 0, lsherrors.ErrMismatchedSignature
	}
	count := 0
	for i, v := range a {
		if v == b[i] {
			count++
		}
	}
	return count, nil
}

// EstimateMinHash estimates the Jaccard similarity of the underlying sets
// from two MinHash signatures: the fraction of equal positions. The
// estimate converges to the true similarity as the signature length grows,
// with standard error O(1/sqrt(k)).
func EstimateMinHash(a, b Signature) (float64, error) {
	if len(a) != len(b) {
		return 0, lsherrors.ErrMismatchedSignature
	}
	if len(a) == 0 {
		return 0, lsherrors.ErrInvalidSignatureLength
	}
	if a.Empty() && b.Empty() {
		return 0, lsherrors.ErrEmptySketches
	}
	matches := 0
	for i, v := range a {
		if v == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a)), nil
}

// EstimateFSS estimates Jaccard similarity from two Fill Sketch signatures.
//
// Bins left empty in both signatures carry no information and are excluded
// from the denominator; a bin empty in exactly one signature is evidence of
// a set difference and counts as a mismatch:
//
//	estimate = matches / (k - bothEmpty)
//
// This is the one-permutation-hashing estimator. It is unbiased for sets
// that occupy a reasonable fraction of the bins; its variance exceeds
// MinHash's at equal k when sets are much smaller than k.
func EstimateFSS(a, b Signature) (float64, error) {
	if len(a) != len(b) {
		return 0, lsherrors.ErrMismatchedSignature
	}
	if len(a) == 0 {
		return 0, lsherrors.ErrInvalidSignatureLength
	}
	matches, bothEmpty := 0, 0
	for i, v := range a {
		w := b[i]
		switch {
		case v == EmptySlot && w == EmptySlot:
			bothEmpty++
		case v == w:
			matches++
		}
	}
	effective := len(a) - bothEmpty
	if effective == 0 {
		return 0, lsherrors.ErrEmptySketches
	}
	return float64(matches) / float64(effective), nil
}
