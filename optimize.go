package lshkit

import (
	"fmt"
	"math"

	lsherrors "github.com/lshkit/lshkit/errors"
)

// integrationStep is the quantize step for the midpoint-rule integration of
// the S-curve error masses.
const integrationStep = 0.01

// Params is a single-stage parameter choice: b bands of r rows over a
// signature of length K, with the modeled false-positive and false-negative
// probability mass at the threshold it was optimized for.
//
// Lifecycle is compute-once: a Params value is derived ahead of time and
// reused for every banding run in an evaluation session.
type Params struct {
	K  int
	B  int
	R  int
	FP float64
	FN float64

	// Degenerate is set when the search saw only the trivial
	// factorizations (1, K) and (K, 1), as happens when K is prime. Both
	// are valid but usually poor; callers should consider a different
	// signature length.
	Degenerate bool
}

// AmplifiedParams is a nested cascade parameter choice satisfying
// B1*R1*B2*R2 = K: an inner (B1, R1) banding whose collision indicator is
// amplified by an outer (B2, R2) stage. For use with CandidatesCascade.
type AmplifiedParams struct {
	K              int
	B1, R1, B2, R2 int
	FP             float64
	FN             float64
}

// OptimizeOption configures the error objective.
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	fpWeight float64
	fnWeight float64
	minRows  int
}

func defaultOptimizeConfig() optimizeConfig {
	return optimizeConfig{fpWeight: 0.5, fnWeight: 0.5, minRows: 1}
}

// WithFalsePositiveWeight sets the false-positive weight in the objective.
func WithFalsePositiveWeight(w float64) OptimizeOption {
	return func(c *optimizeConfig) { c.fpWeight = w }
}

// WithFalseNegativeWeight sets the false-negative weight in the objective.
func WithFalseNegativeWeight(w float64) OptimizeOption {
	return func(c *optimizeConfig) { c.fnWeight = w }
}

// WithMinimumRows sets the minimum rows per band considered by the search:
// Optimize skips factorizations with r below it, OptimizeAmplified skips
// first-stage row counts below it. Raising it excludes flat low-r curves.
// A minimum no factorization satisfies makes the search fail.
func WithMinimumRows(r int) OptimizeOption {
	return func(c *optimizeConfig) { c.minRows = r }
}

// CandidateProbability is the S-curve: the probability that a pair with
// true Jaccard similarity s becomes a candidate under b bands of r rows,
// 1 - (1 - s^r)^b. Exported for plotting and reporting consumers.
func CandidateProbability(s float64, b, r int) float64 {
	return 1.0 - math.Pow(1.0-math.Pow(s, float64(r)), float64(b))
}

// cascadeProbability is the S-curve of the two-stage amplified scheme: the
// inner (b1, r1) collision indicator is treated as a row of the outer
// (b2, r2) scheme.
func cascadeProbability(s float64, b1, r1, b2, r2 int) float64 {
	inner := CandidateProbability(s, b1, r1)
	return 1.0 - math.Pow(1.0-math.Pow(inner, float64(r2)), float64(b2))
}

// integral approximates the integral of f over [a, b] by the midpoint rule.
func integral(f func(float64) float64, a, b, step float64) float64 {
	var area float64
	for x := a; x < b; x += step {
		area += f(x+0.5*step) * step
	}
	return area
}

// falsePositiveMass is the area under the candidate-probability curve left
// of the threshold: probability mass of dissimilar pairs becoming
// candidates.
func falsePositiveMass(curve func(float64) float64, t float64) float64 {
	return integral(curve, 0.0, t, integrationStep)
}

// falseNegativeMass is the area above the curve right of the threshold:
// probability mass of similar pairs being missed.
func falseNegativeMass(curve func(float64) float64, t float64) float64 {
	return integral(func(s float64) float64 { return 1.0 - curve(s) }, t, 1.0, integrationStep)
}

// Optimize returns the (b, r) factorization of k minimizing the weighted
// false-positive plus false-negative mass at threshold t.
//
// Only exact factorizations b*r = k are considered. Candidates are
// enumerated with b ascending and an improvement must be strict, so equal
// objectives resolve to the smallest b; repeated calls with the same inputs
// return the same choice.
func Optimize(k int, t float64, opts ...OptimizeOption) (Params, error) {
	if k < 1 {
		return Params{}, fmt.Errorf("%w: k=%d", lsherrors.ErrInvalidGeometry, k)
	}
	if t <= 0 || t >= 1 {
		return Params{}, fmt.Errorf("%w: t=%v", lsherrors.ErrThresholdOutOfRange, t)
	}
	cfg := defaultOptimizeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.minRows < 1 {
		cfg.minRows = 1
	}

	best := Params{K: k}
	minError := math.MaxFloat64
	nontrivial := false
	for b := 1; b <= k; b++ {
		if k%b != 0 {
			continue
		}
		r := k / b
		if r < cfg.minRows {
			continue
		}
		if b > 1 && r > 1 {
			nontrivial = true
		}
		curve := func(s float64) float64 { return CandidateProbability(s, b, r) }
		fp := falsePositiveMass(curve, t)
		fn := falseNegativeMass(curve, t)
		err := fp*cfg.fpWeight + fn*cfg.fnWeight
		if err < minError {
			minError = err
			best.B, best.R, best.FP, best.FN = b, r, fp, fn
		}
	}
	if best.B == 0 {
		return Params{}, fmt.Errorf("%w: no factorization of k=%d with rows >= %d", lsherrors.ErrInvalidGeometry, k, cfg.minRows)
	}
	best.Degenerate = !nontrivial && k > 1
	return best, nil
}

// OptimizeAmplified searches the nested cascade parameter space for the
// factorization b1*r1*b2*r2 = k minimizing the weighted error of the
// cascade S-curve. Use the result with CandidatesCascade.
func OptimizeAmplified(k int, t float64, opts ...OptimizeOption) (AmplifiedParams, error) {
	if k < 1 {
		return AmplifiedParams{}, fmt.Errorf("%w: k=%d", lsherrors.ErrInvalidGeometry, k)
	}
	if t <= 0 || t >= 1 {
		return AmplifiedParams{}, fmt.Errorf("%w: t=%v", lsherrors.ErrThresholdOutOfRange, t)
	}
	cfg := defaultOptimizeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.minRows < 1 {
		cfg.minRows = 1
	}

	best := AmplifiedParams{K: k}
	minError := math.MaxFloat64
	for r1 := cfg.minRows; r1 <= k; r1++ {
		if k%r1 != 0 {
			continue
		}
		outer := k / r1
		for _, b1 := range divisors(outer) {
			rest := outer / b1
			for _, b2 := range divisors(rest) {
				r2 := rest / b2
				curve := func(s float64) float64 { return cascadeProbability(s, b1, r1, b2, r2) }
				fp := falsePositiveMass(curve, t)
				fn := falseNegativeMass(curve, t)
				err := fp*cfg.fpWeight + fn*cfg.fnWeight
				if err < minError {
					minError = err
					best.B1, best.R1, best.B2, best.R2 = b1, r1, b2, r2
					best.FP, best.FN = fp, fn
				}
			}
		}
	}
	if best.B1 == 0 {
		return AmplifiedParams{}, fmt.Errorf("%w: no factorization of k=%d with rows >= %d", lsherrors.ErrInvalidGeometry, k, cfg.minRows)
	}
	return best, nil
}

// ThresholdAt returns the similarity at which the (b, r) S-curve is
// steepest, ((r-1)/(r*b-1))^(1/r). This is the threshold the scheme is
// effectively tuned to; reporting tools compare it against the requested
// threshold.
func ThresholdAt(b, r int) float64 {
	if r*b-1 == 0 {
		return 0
	}
	return math.Pow(float64(r-1)/float64(r*b-1), 1.0/float64(r))
}

// divisors returns all divisors of n in ascending order.
func divisors(n int) []int {
	var small, large []int
	for d := 1; d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		small = append(small, d)
		if d != n/d {
			large = append(large, n/d)
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}
