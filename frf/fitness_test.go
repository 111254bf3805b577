package frf

import (
	"math"
	"testing"

	"github.com/devana-go/dva"
)

func sampleSweep() Sweep {
	var mt [dva.NumMasses]dva.MassTargets
	for i := range mt {
		mt[i] = dva.MassTargets{Targets: dva.Targets{}, Weights: dva.Weights{}}
	}
	return Sweep{
		Grid:        dva.FrequencyGrid{Start: 0, End: 10000, N: 1200},
		MassTargets: mt,
	}
}

// TestFitnessS1GASanity mirrors spec.md scenario S1: with all weights at
// zero and alpha at zero, the fitness should reduce to |singular_response
// - 1| and stay finite for a fixed in-bounds vector.
func TestFitnessS1GASanity(t *testing.T) {
	fit := Fitness(FitnessConfig{
		Main:  sampleMain(),
		Sweep: sampleSweep(),
		Alpha: 0,
	})

	x := zeroVector()
	for i := 0; i < dva.BetaCount; i++ {
		x[dva.BetaOffset+i] = 1000
		x[dva.LambdaOffset+i] = 10
	}
	x[dva.MuOffset+0], x[dva.MuOffset+1], x[dva.MuOffset+2] = 1, 1, 1

	got := fit(x)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("fitness is non-finite: %v", got)
	}
	if got >= dva.PenaltyValue {
		t.Errorf("fitness = %v, want < penalty value with zero weights/alpha", got)
	}
}

// TestFitnessS3PenaltyFloor mirrors spec.md scenario S3: forcing
// omega_dc=0 must yield exactly the 1e6 penalty, never a crash.
func TestFitnessS3PenaltyFloor(t *testing.T) {
	main := sampleMain()
	main.OmegaDC = 0
	fit := Fitness(FitnessConfig{Main: main, Sweep: sampleSweep(), Alpha: 0})

	got := fit(zeroVector())
	if got != dva.PenaltyValue {
		t.Errorf("fitness = %v, want penalty %v", got, dva.PenaltyValue)
	}
}

func TestFitnessSparsityPenaltyScalesWithAlpha(t *testing.T) {
	x := zeroVector()
	for i := 0; i < dva.BetaCount; i++ {
		x[dva.BetaOffset+i] = 1000
		x[dva.LambdaOffset+i] = 10
	}
	x[dva.MuOffset+0], x[dva.MuOffset+1], x[dva.MuOffset+2] = 1, 1, 1

	fitLow := Fitness(FitnessConfig{Main: sampleMain(), Sweep: sampleSweep(), Alpha: 0})(x)
	fitHigh := Fitness(FitnessConfig{Main: sampleMain(), Sweep: sampleSweep(), Alpha: 0.01})(x)

	if fitHigh <= fitLow {
		t.Errorf("fitness with alpha=0.01 (%v) should exceed alpha=0 (%v)", fitHigh, fitLow)
	}
}
