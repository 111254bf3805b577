// Package rng collects the small random-number helpers shared by every
// optimization engine. Grounded on the teacher's helpers.go: a single
// *rand.Rand handle is threaded explicitly through every call so that
// engine-level randomness stays deterministic under a fixed seed even
// when fitness evaluation is parallelized (spec.md §5 ordering guarantees).
package rng

import "math/rand"

// New returns a new, seeded RNG. Each engine run and each benchmark
// repetition gets its own handle seeded from seed_base + run_index,
// per spec.md §4.6.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Unif returns a uniform random float64 in [min, max).
func Unif(min, max float64, r *rand.Rand) float64 {
	return min + r.Float64()*(max-min)
}

// UnifVec returns a vector of size uniform random float64 values in [min, max).
func UnifVec(min, max float64, size int, r *rand.Rand) []float64 {
	v := make([]float64, size)
	for i := range v {
		v[i] = Unif(min, max, r)
	}
	return v
}

// Normal returns a standard-normal random float64.
func Normal(r *rand.Rand) float64 {
	return r.NormFloat64()
}

// ClampVecMax clamps every element of vec to be >= bound in place.
func ClampVecMax(vec []float64, bound float64) {
	for i := range vec {
		if vec[i] < bound {
			vec[i] = bound
		}
	}
}

// ClampVecMin clamps every element of vec to be <= bound in place.
func ClampVecMin(vec []float64, bound float64) {
	for i := range vec {
		if vec[i] > bound {
			vec[i] = bound
		}
	}
}
