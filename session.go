package lshkit

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	lsherrors "github.com/lshkit/lshkit/errors"
)

// Option is a functional option for configuring a Session.
type Option func(*config)

type config struct {
	masterSeed     uint64
	scheme         SchemeID
	k              int
	workers        int
	allowEmptySets bool
}

func defaultConfig() *config {
	return &config{
		masterSeed: 0x1d8af6c9e4b52073, // Arbitrary default; overridden via WithMasterSeed
		scheme:     SchemeMinHash,
		k:          128,
		workers:    0, // Default to GOMAXPROCS; use WithWorkers(n) to pin
	}
}

// WithMasterSeed sets the master seed from which all hash seed material is
// derived. Runs with equal master seeds produce byte-identical signatures
// and identical candidate sets.
func WithMasterSeed(seed uint64) Option {
	return func(c *config) { c.masterSeed = seed }
}

// WithScheme selects the sketching scheme. Default is SchemeMinHash.
func WithScheme(id SchemeID) Option {
	return func(c *config) { c.scheme = id }
}

// WithSignatureLength sets the signature length k. Default is 128. Choose a
// k with useful factorizations; Optimize reports degenerate (prime) lengths.
func WithSignatureLength(k int) Option {
	return func(c *config) { c.k = k }
}

// WithWorkers sets the number of parallel workers used by SketchAll and
// the session's banding calls. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithAllowEmptySets opts in to sentinel semantics for empty element sets:
// Sketch returns an all-EmptySlot signature instead of ErrEmptySet. Banding
// never pairs items through all-sentinel bands, so two empty items can
// never become candidates of each other.
func WithAllowEmptySets() Option {
	return func(c *config) { c.allowEmptySets = true }
}

// Session is one evaluation run: it owns the SeedSet and the configured
// sketcher, and every signature it produces is comparable with every other
// signature from the same session. Signatures from different sessions (or
// different schemes) must not be mixed.
//
// A Session is immutable after NewSession and safe for concurrent use.
type Session struct {
	cfg      config
	seeds    *SeedSet
	sketcher Sketcher
}

// NewSession validates the configuration, derives the seed material, and
// builds the sketcher. All configuration errors surface here, before any
// item is sketched.
func NewSession(opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.k < 1 {
		return nil, fmt.Errorf("%w: k=%d", lsherrors.ErrInvalidSignatureLength, cfg.k)
	}
	seeds, err := NewSeedSet(cfg.masterSeed, cfg.k)
	if err != nil {
		return nil, err
	}
	sketcher, err := NewSketcher(cfg.scheme, cfg.k, seeds)
	if err != nil {
		return nil, err
	}
	return &Session{cfg: *cfg, seeds: seeds, sketcher: sketcher}, nil
}

// Scheme returns the configured sketching scheme.
func (s *Session) Scheme() SchemeID { return s.cfg.scheme }

// SignatureLength returns the configured signature length k.
func (s *Session) SignatureLength() int { return s.cfg.k }

// Seeds returns the session's seed set (read-only by convention).
func (s *Session) Seeds() *SeedSet { return s.seeds }

// Sketch produces the signature for one item's element set.
func (s *Session) Sketch(elements [][]byte) (Signature, error) {
	if len(elements) == 0 {
		if s.cfg.allowEmptySets {
			return newEmptySignature(s.cfg.k), nil
		}
		return nil, lsherrors.ErrEmptySet
	}
	return s.sketcher.Sketch(elements)
}

// SketchAll sketches every item on a worker pool and returns the signature
// map. Items are independent, so workers share no mutable state; each
// writes its own result slot and the map is assembled after all workers
// finish. The first error (or ctx cancellation) aborts the run.
func (s *Session) SketchAll(ctx context.Context, items map[string][][]byte) (map[string]Signature, error) {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	results := make([]Signature, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(poolSize(s.cfg.workers))
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sig, err := s.Sketch(items[id])
			if err != nil {
				return fmt.Errorf("item %q: %w", id, err)
			}
			results[i] = sig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Signature, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out, nil
}

// Candidates runs banding over the given signatures with the session's
// seed set and worker budget. See the package-level Candidates for
// semantics.
func (s *Session) Candidates(sigs map[string]Signature, b, r int) (PairSet, error) {
	return candidates(sigs, b, r, s.seeds, s.cfg.workers)
}

// CandidatesAmplified runs the two-pass banding cascade with the
// session's seed set and worker budget. See the package-level
// CandidatesAmplified.
func (s *Session) CandidatesAmplified(sigs map[string]Signature, b1, r1, b2, r2 int) (PairSet, error) {
	return candidatesAmplified(sigs, b1, r1, b2, r2, s.seeds, s.cfg.workers)
}

// CandidatesCascade runs the nested amplified construction with the
// session's seed set and worker budget. See the package-level
// CandidatesCascade.
func (s *Session) CandidatesCascade(sigs map[string]Signature, p AmplifiedParams) (PairSet, error) {
	return candidatesCascade(sigs, p, s.seeds, s.cfg.workers)
}

// SignatureDigest returns a deterministic fingerprint of a signature map,
// folding items in sorted-id order. Together with PairSet.Digest it is the
// cheap reproducibility check for a full pipeline run.
func SignatureDigest(sigs map[string]Signature) uint64 {
	ids := make([]string, 0, len(sigs))
	for id := range sigs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	d := xxhash.New()
	var buf [8]byte
	for _, id := range ids {
		_, _ = d.WriteString(id)
		_, _ = d.Write([]byte{0})
		for _, v := range sigs[id] {
			binary.LittleEndian.PutUint64(buf[:], v)
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}
