package lshkit

import (
	"fmt"

	lsherrors "github.com/lshkit/lshkit/errors"
)

// SchemeID identifies the sketching scheme used to compress element sets
// into signatures.
type SchemeID uint16

const (
	// SchemeMinHash takes, for each of k hash functions, the minimum hash
	// over the element set. Equal-position probability equals Jaccard
	// similarity exactly, at O(k * set size) cost per item.
	SchemeMinHash SchemeID = 0

	// SchemeFSS (Fill Sketch Scheme) hashes each element once and fills one
	// of k bins, trading hash-function count for bin count. O(set size)
	// cost per item, with a scheme-specific estimator (EstimateFSS).
	SchemeFSS SchemeID = 1
)

// String returns the scheme name.
func (s SchemeID) String() string {
	switch s {
	case SchemeMinHash:
		return "minhash"
	case SchemeFSS:
		return "fss"
	default:
		return "unknown"
	}
}

// ParseScheme resolves a scheme name ("minhash" or "fss") to its ID.
func ParseScheme(name string) (SchemeID, error) {
	switch name {
	case "minhash":
		return SchemeMinHash, nil
	case "fss":
		return SchemeFSS, nil
	}
	return 0, fmt.Errorf("%w: %q", lsherrors.ErrUnknownScheme, name)
}

// Sketcher compresses an element set into a fixed-length Signature.
//
// Downstream banding is scheme-agnostic: both schemes produce signatures of
// the configured length with identical sentinel semantics, so candidate
// generation and parameter optimization depend only on this interface.
//
// # Lifecycle
//
// A Sketcher is created once per evaluation session via NewSketcher and
// reused for every item. It holds only read-only state (seed material and
// hash tables) and is safe for concurrent use; in parallel pipelines all
// workers share one instance.
//
// # Determinism
//
// Sketch is a pure function of (elements, SeedSet, scheme): the same inputs
// always yield byte-identical signatures, regardless of element order.
type Sketcher interface {
	// Sketch returns the signature of the given element set.
	//
	// An empty element set is a degenerate input and returns ErrEmptySet;
	// callers that have defined sentinel semantics (see Session's
	// WithAllowEmptySets) handle the empty case before calling.
	Sketch(elements [][]byte) (Signature, error)

	// Len returns the signature length k.
	Len() int
}

// NewSketcher creates a sketcher for the given scheme with signatures of
// length k. MinHash requires at least k salts in the seed set; FSS consumes
// a single salt.
func NewSketcher(id SchemeID, k int, seeds *SeedSet) (Sketcher, error) {
	if k < 1 {
		return nil, lsherrors.ErrInvalidSignatureLength
	}
	if seeds == nil || seeds.Len() == 0 {
		return nil, lsherrors.ErrNoSeeds
	}
	switch id {
	case SchemeMinHash:
		if seeds.Len() < k {
			return nil, fmt.Errorf("%w: have %d salts, need %d", lsherrors.ErrSeedCountMismatch, seeds.Len(), k)
		}
		return newMinHashSketcher(k, seeds), nil
	case SchemeFSS:
		return newFillSketcher(k, seeds), nil
	}
	return nil, fmt.Errorf("%w: scheme ID %d", lsherrors.ErrUnknownScheme, id)
}
