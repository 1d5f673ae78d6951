// Bench is a benchmarking tool for measuring lshkit sketching throughput,
// candidate generation time, and candidate-set quality on synthetic data.
//
// Usage:
//
//	go run ./cmd/bench -items 10000 -k 128 -scheme minhash -threshold 0.8
//
// Flags:
//
//	-items      Number of synthetic items (default: 10,000)
//	-elements   Elements per item set (default: 100)
//	-duprate    Fraction of items that are near-duplicates of another (default: 0.1)
//	-k          Signature length (default: 128)
//	-scheme     Sketching scheme: minhash or fss (default: minhash)
//	-threshold  Similarity threshold for parameter optimization (default: 0.8)
//	-workers    Number of parallel sketch workers (default: GOMAXPROCS)
//	-seed       Master seed (default: 42)
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/lshkit/lshkit"
)

func main() {
	items := flag.Int("items", 10000, "number of synthetic items")
	elements := flag.Int("elements", 100, "elements per item set")
	dupRate := flag.Float64("duprate", 0.1, "fraction of items that are near-duplicates")
	k := flag.Int("k", 128, "signature length")
	schemeName := flag.String("scheme", "minhash", "sketching scheme: minhash or fss")
	threshold := flag.Float64("threshold", 0.8, "similarity threshold")
	workers := flag.Int("workers", 0, "parallel sketch workers (0 = GOMAXPROCS)")
	seed := flag.Uint64("seed", 42, "master seed")
	flag.Parse()

	scheme, err := lshkit.ParseScheme(*schemeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	session, err := lshkit.NewSession(
		lshkit.WithMasterSeed(*seed),
		lshkit.WithScheme(scheme),
		lshkit.WithSignatureLength(*k),
		lshkit.WithWorkers(*workers),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	params, err := lshkit.Optimize(*k, *threshold)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("optimized: b=%d r=%d fp=%.4f fn=%.4f (steepest slope at s=%.3f)\n",
		params.B, params.R, params.FP, params.FN, lshkit.ThresholdAt(params.B, params.R))

	data, truePairs := generate(*items, *elements, *dupRate)
	fmt.Printf("generated %d items, %d planted near-duplicate pairs\n", len(data), truePairs)

	start := time.Now()
	sigs, err := session.SketchAll(context.Background(), data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sketchDur := time.Since(start)
	fmt.Printf("sketching: %v (%.0f items/s)\n", sketchDur,
		float64(len(data))/sketchDur.Seconds())

	start = time.Now()
	pairs, err := session.Candidates(sigs, params.B, params.R)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	bandDur := time.Since(start)
	fmt.Printf("banding:   %v, %d candidate pairs\n", bandDur, len(pairs))

	found := 0
	for pair := range pairs {
		if isPlanted(pair) {
			found++
		}
	}
	fmt.Printf("recall of planted pairs: %d/%d\n", found, truePairs)
	fmt.Printf("signature digest: %016x  pair digest: %016x\n",
		lshkit.SignatureDigest(sigs), pairs.Digest())
}

// generate builds a synthetic corpus: base items with random element sets,
// plus near-duplicates that share ~90% of a base item's elements. Planted
// duplicates of item "item-N" are named "dup-N" so recall can be measured.
// Element bytes are mixed through murmur3 so sets don't share structured
// prefixes.
func generate(n, setSize int, dupRate float64) (map[string][][]byte, int) {
	rng := mrand.New(mrand.NewPCG(1, 2))
	data := make(map[string][][]byte, n)
	numDups := int(float64(n) * dupRate)
	numBase := n - numDups

	for i := 0; i < numBase; i++ {
		set := make([][]byte, setSize)
		for e := range set {
			set[e] = token(rng.Uint64())
		}
		data[fmt.Sprintf("item-%d", i)] = set
	}
	for i := 0; i < numDups; i++ {
		base := data[fmt.Sprintf("item-%d", i%numBase)]
		set := make([][]byte, len(base))
		copy(set, base)
		// Overwrite ~10% of elements to land near 0.82 Jaccard.
		for e := 0; e < len(set)/10; e++ {
			set[rng.IntN(len(set))] = token(rng.Uint64())
		}
		data[fmt.Sprintf("dup-%d", i%numBase)] = set
	}
	return data, numDups
}

func token(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h1, h2 := murmur3.Sum128(buf[:])
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], h1)
	binary.LittleEndian.PutUint64(out[8:], h2)
	return out
}

func isPlanted(p lshkit.Pair) bool {
	var a, b int
	if _, err := fmt.Sscanf(p.A, "dup-%d", &a); err == nil {
		if _, err := fmt.Sscanf(p.B, "item-%d", &b); err == nil {
			return a == b
		}
	}
	if _, err := fmt.Sscanf(p.A, "item-%d", &a); err == nil {
		if _, err := fmt.Sscanf(p.B, "dup-%d", &b); err == nil {
			return a == b
		}
	}
	return false
}
