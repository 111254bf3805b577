// Package dva implements the core of a Dynamic Vibration Absorber (DVA)
// parameter optimization system: a Frequency Response Function evaluator
// (package frf), six population-based optimization engines (package
// engine and its sub-packages), a benchmark harness (package benchmark),
// a Sobol global sensitivity analyzer (package sobol), and an adaptive
// frequency-grid convergence helper (package omegaconv).
//
// This file holds the data model shared by every component: the main
// system parameters, the 48-length DVA parameter vector and its fixed
// coordinate order, and the objective-function contract every engine
// consumes.
package dva

import (
	"math"

	"github.com/devana-go/dva/dvaerr"
)

// NumDVAParams is the dimensionality of the DVA parameter vector searched
// by every optimization engine: 15 beta (stiffness), 15 lambda (damping),
// 3 mu (absorber mass multipliers), 15 nu (coupling/detuning) terms.
const NumDVAParams = 48

// Coordinate-order invariant (spec.md §3): beta1..beta15, lambda1..lambda15,
// mu1..mu3, nu1..nu15. These offsets are stable across every component and
// every persisted format; never reorder them.
const (
	BetaOffset   = 0
	BetaCount    = 15
	LambdaOffset = BetaOffset + BetaCount
	LambdaCount  = 15
	MuOffset     = LambdaOffset + LambdaCount
	MuCount      = 3
	NuOffset     = MuOffset + MuCount
	NuCount      = 15
)

func init() {
	if NuOffset+NuCount != NumDVAParams {
		panic("dva: parameter offsets do not sum to NumDVAParams")
	}
}

// ParameterNames returns the 48 stable parameter names in fixed order,
// e.g. "beta_1", ..., "beta_15", "lambda_1", ..., "nu_15". The slice is
// freshly allocated on every call; callers must not mutate a cached copy
// and expect it to affect other callers.
func ParameterNames() []string {
	names := make([]string, 0, NumDVAParams)
	for i := 1; i <= BetaCount; i++ {
		names = append(names, nameWithIndex("beta", i))
	}
	for i := 1; i <= LambdaCount; i++ {
		names = append(names, nameWithIndex("lambda", i))
	}
	for i := 1; i <= MuCount; i++ {
		names = append(names, nameWithIndex("mu", i))
	}
	for i := 1; i <= NuCount; i++ {
		names = append(names, nameWithIndex("nu", i))
	}
	return names
}

func nameWithIndex(prefix string, i int) string {
	const digits = "0123456789"
	if i < 10 {
		return prefix + "_" + string(digits[i])
	}
	return prefix + "_" + string(digits[i/10]) + string(digits[i%10])
}

// ParameterSpec describes one of the 48 DVA coordinates: its stable name,
// its inclusive bounds, and whether it is held fixed. Invariant: if Fixed
// is true then Low == High (spec.md §3); every engine must treat such a
// coordinate as a constant throughout its run.
type ParameterSpec struct {
	Name  string
	Low   float64
	High  float64
	Fixed bool
}

// ValidateParameterSpecs checks the structural invariants of a ParameterSpec slice:
// exactly NumDVAParams entries, Low <= High, and Low == High whenever
// Fixed is set.
func ValidateParameterSpecs(specs []ParameterSpec) error {
	if len(specs) != NumDVAParams {
		return dvaerr.New(dvaerr.InvalidInput, "expected %d parameter specs, got %d", NumDVAParams, len(specs))
	}
	for i, s := range specs {
		if s.Low > s.High {
			return dvaerr.New(dvaerr.InvalidInput, "parameter %d (%s): low %g > high %g", i, s.Name, s.Low, s.High)
		}
		if s.Fixed && s.Low != s.High {
			return dvaerr.New(dvaerr.InvalidInput, "parameter %d (%s): fixed but low %g != high %g", i, s.Name, s.Low, s.High)
		}
	}
	return nil
}

// Bounds is the per-coordinate [Low, High] pair every engine clips
// candidates into.
type Bounds struct {
	Low  [NumDVAParams]float64
	High [NumDVAParams]float64
}

// FixedMask marks which of the 48 coordinates are held constant.
type FixedMask [NumDVAParams]bool

// BoundsFromSpecs derives Bounds and a FixedMask from a validated
// ParameterSpec slice.
func BoundsFromSpecs(specs []ParameterSpec) (Bounds, FixedMask) {
	var b Bounds
	var fixed FixedMask
	for i, s := range specs {
		b.Low[i] = s.Low
		b.High[i] = s.High
		fixed[i] = s.Fixed
	}
	return b, fixed
}

// Clip clamps x into the bounds in place and re-asserts every fixed
// coordinate's constant value, per the "fixed coordinates never drift"
// invariant (spec.md §4.5).
func (b Bounds) Clip(x []float64, fixed FixedMask) {
	for i := range x {
		if fixed[i] {
			x[i] = b.Low[i]
			continue
		}
		if x[i] < b.Low[i] {
			x[i] = b.Low[i]
		} else if x[i] > b.High[i] {
			x[i] = b.High[i]
		}
	}
}

// DVAVector is a 48-length parameter vector in the fixed coordinate order.
type DVAVector = [NumDVAParams]float64

// ObjectiveFunc is the fitness callback contract every engine consumes
// (spec.md §6): x in R^48 -> a nonnegative real, or 1e6 for an
// infeasible/NaN evaluation.
type ObjectiveFunc func(x []float64) float64

// PenaltyValue is the fixed penalty fitness substituted for any
// non-finite singular response (spec.md §4.4, testable property 4).
const PenaltyValue = 1e6

// SanitizeFitness maps a raw fitness value to the penalty when it is not
// finite, otherwise returns it unchanged.
func SanitizeFitness(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return PenaltyValue
	}
	return v
}
