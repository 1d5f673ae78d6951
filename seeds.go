package lshkit

import (
	lsherrors "github.com/lshkit/lshkit/errors"
	"github.com/lshkit/lshkit/internal/bits"
)

// Domain constants separating the derived seed streams. The table seed and
// banding seed must never collide with a per-function salt, otherwise band
// collisions would correlate with signature collisions.
const (
	seedDomainSalt    = 0x53414c5400000000 // "SALT"
	seedDomainTables  = 0x5441424c00000000 // "TABL"
	seedDomainBanding = 0x42414e4400000000 // "BAND"
)

// SeedSet holds all hash seed material for one evaluation session, derived
// deterministically from a single master seed.
//
// A SeedSet is constructed once per session and shared read-only by every
// sketching and banding call; no call mutates it. Signatures are only
// comparable when produced under the same SeedSet.
type SeedSet struct {
	master uint64
	salts  []uint64 // one per logical hash function
	tables uint64   // seeds the mixed tabulation tables
	band   uint64   // seeds band bucket-key hashing
}

// NewSeedSet derives n per-function salts plus the table and banding seeds
// from master. n must be at least the signature length of any sketcher that
// will use the set. Two SeedSets built from the same (master, n) are
// identical.
func NewSeedSet(master uint64, n int) (*SeedSet, error) {
	if n < 1 {
		return nil, lsherrors.ErrNoSeeds
	}
	s := &SeedSet{
		master: master,
		salts:  make([]uint64, n),
		tables: bits.SplitMix64(master ^ seedDomainTables),
		band:   bits.SplitMix64(master ^ seedDomainBanding),
	}
	state := master ^ seedDomainSalt
	for i := range s.salts {
		state = bits.SplitMix64(state)
		s.salts[i] = state
	}
	return s, nil
}

// Master returns the master seed the set was derived from.
func (s *SeedSet) Master() uint64 { return s.master }

// Len returns the number of per-function salts.
func (s *SeedSet) Len() int { return len(s.salts) }

// Salt returns the salt for logical hash function i.
func (s *SeedSet) Salt(i int) uint64 { return s.salts[i] }

// TableSeed returns the seed for the mixed tabulation tables.
func (s *SeedSet) TableSeed() uint64 { return s.tables }

// BandSeed returns the seed for band j's bucket-key hashing. Distinct from
// every sketching salt by domain separation.
func (s *SeedSet) BandSeed(j int) uint64 {
	return bits.SplitMix64(s.band ^ uint64(j))
}
