// Package errors defines all exported error sentinels for the lshkit library.
//
// This is the single source of truth for error values. Both the top-level
// lshkit package and internal packages import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Configuration errors. All are detected synchronously at the call that
// introduces the inconsistency; none are retried internally.
var (
	ErrInvalidGeometry        = errors.New("lshkit: invalid geometry parameters")
	ErrInvalidSignatureLength = errors.New("lshkit: signature length must be positive")
	ErrMismatchedSignature    = errors.New("lshkit: signature length does not match b*r")
	ErrThresholdOutOfRange    = errors.New("lshkit: threshold must be in the open interval (0, 1)")
	ErrUnknownScheme          = errors.New("lshkit: unknown sketching scheme")
	ErrNoSeeds                = errors.New("lshkit: seed set must contain at least one seed")
	ErrSeedCountMismatch      = errors.New("lshkit: seed set is smaller than the signature length")
)

// Degenerate input errors.
var (
	ErrEmptySet      = errors.New("lshkit: cannot sketch an empty element set")
	ErrEmptySketches = errors.New("lshkit: both signatures are entirely empty")
)
