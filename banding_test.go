package lshkit

import (
	"errors"
	"fmt"
	"testing"

	lsherrors "github.com/lshkit/lshkit/errors"
)

func TestPairNormalization(t *testing.T) {
	if NewPair("b", "a") != NewPair("a", "b") {
		t.Error("NewPair is not symmetric")
	}
	set := PairSet{NewPair("x", "y"): {}}
	if !set.Contains("y", "x") {
		t.Error("Contains must be order-insensitive")
	}
}

func TestCandidatesGeometryValidation(t *testing.T) {
	sigs := map[string]Signature{"a": make(Signature, 128)}
	seeds, err := NewSeedSet(1, 1)
	if err != nil {
		t.Fatalf("NewSeedSet: %v", err)
	}

	if _, err := Candidates(sigs, 0, 4, seeds); !errors.Is(err, lsherrors.ErrInvalidGeometry) {
		t.Errorf("b=0: got %v, want ErrInvalidGeometry", err)
	}
	if _, err := Candidates(sigs, 4, 0, seeds); !errors.Is(err, lsherrors.ErrInvalidGeometry) {
		t.Errorf("r=0: got %v, want ErrInvalidGeometry", err)
	}
	if _, err := Candidates(sigs, 16, 4, seeds); !errors.Is(err, lsherrors.ErrMismatchedSignature) {
		t.Errorf("b*r=64 vs len=128: got %v, want ErrMismatchedSignature", err)
	}
	sigs["b"] = make(Signature, 64)
	if _, err := Candidates(sigs, 16, 8, seeds); !errors.Is(err, lsherrors.ErrMismatchedSignature) {
		t.Errorf("mixed lengths: got %v, want ErrMismatchedSignature", err)
	}
}

func TestCandidatesIdenticalItemsAlwaysPair(t *testing.T) {
	s := mustSession(t, WithMasterSeed(21), WithSignatureLength(128))
	sigs := map[string]Signature{
		"a": mustSketch(t, s, tokens(0, 60)),
		"b": mustSketch(t, s, tokens(0, 60)),
		"c": mustSketch(t, s, tokens(500, 560)),
	}
	pairs, err := s.Candidates(sigs, 32, 4)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if !pairs.Contains("a", "b") {
		t.Error("identical items did not collide in any band")
	}
	// Identical items collide in every band; the pair is still reported once.
	if pairs.Contains("a", "c") || pairs.Contains("b", "c") {
		t.Error("unrelated item paired with identical twins")
	}
	if _, ok := pairs[Pair{A: "a", B: "a"}]; ok {
		t.Error("self-pair emitted")
	}
}

// TestBandOrderPermutation verifies that the final candidate set is the
// union over bands regardless of the order bands are evaluated in.
func TestBandOrderPermutation(t *testing.T) {
	rng := newTestRNG(t)
	s := mustSession(t, WithMasterSeed(22), WithSignatureLength(64))
	sigs := make(map[string]Signature)
	var ids []string
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("item-%d", i)
		// Overlapping ranges give a spread of similarities.
		sigs[id] = mustSketch(t, s, tokens(i*3, i*3+50))
		ids = append(ids, id)
	}

	const b, r = 16, 4
	sequential := make(PairSet)
	for j := 0; j < b; j++ {
		sequential.merge(bandPairs(ids, sigs, j, r, s.Seeds().BandSeed(j)))
	}

	order := rng.Perm(b)
	permuted := make(PairSet)
	for _, j := range order {
		permuted.merge(bandPairs(ids, sigs, j, r, s.Seeds().BandSeed(j)))
	}

	if sequential.Digest() != permuted.Digest() {
		t.Errorf("band order changed the candidate set: %d pairs vs %d pairs",
			len(sequential), len(permuted))
	}

	// And the public entry point agrees with the per-band union.
	pairs, err := s.Candidates(sigs, b, r)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if pairs.Digest() != sequential.Digest() {
		t.Error("Candidates disagrees with the manual per-band union")
	}
}

// TestCandidatesSimilaritySelectivity is the monotonicity spot check: with
// k=128 and (b=32, r=4), a pair at Jaccard ~0.9 must surface as a candidate
// in nearly every trial while a pair at Jaccard ~0.06 almost never does.
func TestCandidatesSimilaritySelectivity(t *testing.T) {
	rng := newTestRNG(t)
	setA := tokens(0, 180)  // J(A,B) = 170/190 ≈ 0.89
	setB := tokens(10, 190) // J(A,C) = 20/340 ≈ 0.06
	setC := tokens(160, 340)

	const trials = 30
	countAB, countAC := 0, 0
	for trial := 0; trial < trials; trial++ {
		s := mustSession(t, WithMasterSeed(rng.Uint64()), WithSignatureLength(128))
		sigs := map[string]Signature{
			"A": mustSketch(t, s, setA),
			"B": mustSketch(t, s, setB),
			"C": mustSketch(t, s, setC),
		}
		pairs, err := s.Candidates(sigs, 32, 4)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if pairs.Contains("A", "B") {
			countAB++
		}
		if pairs.Contains("A", "C") {
			countAC++
		}
	}
	if countAB < trials-2 {
		t.Errorf("high-similarity pair found in only %d/%d trials", countAB, trials)
	}
	if countAC > 5 {
		t.Errorf("low-similarity pair found in %d/%d trials, expected a handful at most", countAC, trials)
	}
	if countAB <= countAC {
		t.Errorf("selectivity inverted: AB=%d AC=%d", countAB, countAC)
	}
}

func TestEmptyItemsNeverPair(t *testing.T) {
	s := mustSession(t, WithMasterSeed(23), WithSignatureLength(128), WithAllowEmptySets())
	sigs := map[string]Signature{
		"empty-1": mustSketch(t, s, nil),
		"empty-2": mustSketch(t, s, nil),
		"real-1":  mustSketch(t, s, tokens(0, 40)),
		"real-2":  mustSketch(t, s, tokens(0, 40)),
	}
	pairs, err := s.Candidates(sigs, 32, 4)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	for pair := range pairs {
		if pair.A == "empty-1" || pair.A == "empty-2" || pair.B == "empty-1" || pair.B == "empty-2" {
			t.Errorf("empty-set item appeared in candidate pair %v", pair)
		}
	}
	if !pairs.Contains("real-1", "real-2") {
		t.Error("identical non-empty items did not pair")
	}
}

func TestCandidatesAmplifiedSubset(t *testing.T) {
	s := mustSession(t, WithMasterSeed(24), WithSignatureLength(128))
	sigs := make(map[string]Signature)
	for i := 0; i < 40; i++ {
		sigs[fmt.Sprintf("item-%d", i)] = mustSketch(t, s, tokens(i*2, i*2+60))
	}

	first, err := s.Candidates(sigs, 32, 4)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	cascaded, err := s.CandidatesAmplified(sigs, 32, 4, 16, 8)
	if err != nil {
		t.Fatalf("CandidatesAmplified: %v", err)
	}
	for pair := range cascaded {
		if _, ok := first[pair]; !ok {
			t.Errorf("cascade emitted pair %v absent from the first pass", pair)
		}
	}
}

func TestCandidatesAmplifiedGeometryValidation(t *testing.T) {
	s := mustSession(t, WithMasterSeed(25), WithSignatureLength(128))
	sigs := map[string]Signature{"a": mustSketch(t, s, tokens(0, 10))}
	if _, err := s.CandidatesAmplified(sigs, 32, 4, 10, 7); !errors.Is(err, lsherrors.ErrMismatchedSignature) {
		t.Errorf("second-stage b*r=70 vs len=128: got %v, want ErrMismatchedSignature", err)
	}
}

// TestCandidatesCascadeConsumesOptimizerParams wires the cascade search
// result straight into the nested generator, which is the intended pairing.
func TestCandidatesCascadeConsumesOptimizerParams(t *testing.T) {
	p, err := OptimizeAmplified(128, 0.8)
	if err != nil {
		t.Fatalf("OptimizeAmplified: %v", err)
	}
	if p.B1*p.R1*p.B2*p.R2 != p.K {
		t.Fatalf("optimizer returned inconsistent params %+v", p)
	}

	s := mustSession(t, WithMasterSeed(26), WithSignatureLength(p.K), WithAllowEmptySets())
	sigs := map[string]Signature{
		"a":     mustSketch(t, s, tokens(0, 60)),
		"b":     mustSketch(t, s, tokens(0, 60)),
		"c":     mustSketch(t, s, tokens(500, 560)),
		"empty": mustSketch(t, s, nil),
	}
	pairs, err := s.CandidatesCascade(sigs, p)
	if err != nil {
		t.Fatalf("CandidatesCascade: %v", err)
	}
	if !pairs.Contains("a", "b") {
		t.Error("identical items did not survive the cascade")
	}
	for pair := range pairs {
		if pair.A == "empty" || pair.B == "empty" {
			t.Errorf("empty-set item appeared in candidate pair %v", pair)
		}
	}

	// Every cascade pair collides in at least one inner band, so the
	// cascade is a subset of plain banding over the same inner geometry.
	inner, err := s.Candidates(sigs, p.B1*p.B2*p.R2, p.R1)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	for pair := range pairs {
		if _, ok := inner[pair]; !ok {
			t.Errorf("cascade emitted pair %v absent from the inner-band union", pair)
		}
	}
}

// TestCandidatesCascadeTrivialOuterMatchesBanding: with b2=r2=1 the nested
// construction degenerates to plain (b1, r1) banding and must produce the
// same candidate set.
func TestCandidatesCascadeTrivialOuterMatchesBanding(t *testing.T) {
	s := mustSession(t, WithMasterSeed(27), WithSignatureLength(64))
	sigs := make(map[string]Signature)
	for i := 0; i < 25; i++ {
		sigs[fmt.Sprintf("item-%d", i)] = mustSketch(t, s, tokens(i*3, i*3+40))
	}

	plain, err := s.Candidates(sigs, 16, 4)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	nested, err := s.CandidatesCascade(sigs, AmplifiedParams{K: 64, B1: 16, R1: 4, B2: 1, R2: 1})
	if err != nil {
		t.Fatalf("CandidatesCascade: %v", err)
	}
	if plain.Digest() != nested.Digest() {
		t.Errorf("trivial outer stage diverged from plain banding: %d pairs vs %d pairs",
			len(plain), len(nested))
	}
}

func TestCandidatesCascadeValidation(t *testing.T) {
	s := mustSession(t, WithMasterSeed(28), WithSignatureLength(128))
	sigs := map[string]Signature{"a": mustSketch(t, s, tokens(0, 10))}

	if _, err := s.CandidatesCascade(sigs, AmplifiedParams{B1: 8, R1: 4, B2: 2, R2: 1}); !errors.Is(err, lsherrors.ErrMismatchedSignature) {
		t.Errorf("b1*r1*b2*r2=64 vs len=128: got %v, want ErrMismatchedSignature", err)
	}
	if _, err := s.CandidatesCascade(sigs, AmplifiedParams{B1: 0, R1: 4, B2: 2, R2: 2}); !errors.Is(err, lsherrors.ErrInvalidGeometry) {
		t.Errorf("b1=0: got %v, want ErrInvalidGeometry", err)
	}
	if _, err := CandidatesCascade(sigs, AmplifiedParams{B1: 8, R1: 4, B2: 2, R2: 2}, nil); !errors.Is(err, lsherrors.ErrNoSeeds) {
		t.Errorf("nil seeds: got %v, want ErrNoSeeds", err)
	}
}

// TestCandidatesWorkerCountInvariant: the session worker budget changes
// scheduling only, never the candidate set.
func TestCandidatesWorkerCountInvariant(t *testing.T) {
	serial := mustSession(t, WithMasterSeed(29), WithSignatureLength(64), WithWorkers(1))
	parallel := mustSession(t, WithMasterSeed(29), WithSignatureLength(64), WithWorkers(8))
	sigs := make(map[string]Signature)
	for i := 0; i < 30; i++ {
		sigs[fmt.Sprintf("item-%d", i)] = mustSketch(t, serial, tokens(i*2, i*2+40))
	}

	one, err := serial.Candidates(sigs, 16, 4)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	many, err := parallel.Candidates(sigs, 16, 4)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if one.Digest() != many.Digest() {
		t.Errorf("worker count changed the candidate set: %d pairs vs %d pairs", len(one), len(many))
	}
}

func TestPairSetDigestInsertionOrderInsensitive(t *testing.T) {
	a := make(PairSet)
	b := make(PairSet)
	pairs := []Pair{NewPair("x", "y"), NewPair("p", "q"), NewPair("m", "n")}
	for _, p := range pairs {
		a[p] = struct{}{}
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		b[pairs[i]] = struct{}{}
	}
	if a.Digest() != b.Digest() {
		t.Error("digest depends on insertion order")
	}
	b[NewPair("x", "z")] = struct{}{}
	if a.Digest() == b.Digest() {
		t.Error("digest failed to distinguish different sets")
	}
}
