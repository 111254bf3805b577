package frf

import (
	"math"
	"testing"

	"github.com/devana-go/dva"
)

const epsilon = 1e-9

func sampleMain() dva.MainParams {
	return dva.MainParams{
		Mu:      1.0,
		Lambda:  [5]float64{1, 1, 0.5, 0.5, 0.5},
		Nu:      [5]float64{0.75, 0.75, 0.75, 0.75, 0.75},
		ALow:    0.05,
		AUp:     0.05,
		F1:      100,
		F2:      100,
		OmegaDC: 5000,
		ZetaDC:  0.01,
	}
}

func zeroVector() []float64 {
	return make([]float64, dva.NumDVAParams)
}

// TestAssemblePlacementPinned regression-pins Open Question 1's placement
// decision: beta/lambda stages distribute in contiguous groups of 3
// across the 5 masses, and the mu multipliers land on masses {0,1},
// {2}, {3,4}. Changing the placement requires deliberately updating
// this test.
func TestAssemblePlacementPinned(t *testing.T) {
	x := zeroVector()
	x[dva.BetaOffset+0] = 10   // mass 0
	x[dva.BetaOffset+3] = 20   // mass 1
	x[dva.BetaOffset+6] = 30   // mass 2
	x[dva.BetaOffset+9] = 40   // mass 3
	x[dva.BetaOffset+12] = 50  // mass 4
	x[dva.LambdaOffset+0] = 1
	x[dva.MuOffset+0] = 2.0
	x[dva.MuOffset+1] = 3.0
	x[dva.MuOffset+2] = 4.0

	sys, err := Assemble(sampleMain(), x)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	wantStiffness := []float64{10, 20, 30, 40, 50}
	for m, want := range wantStiffness {
		got := sys.Stiffness[idx(m, m)]
		if math.Abs(got-want) > epsilon {
			t.Errorf("mass %d stiffness diagonal = %v, want %v", m, got, want)
		}
	}

	if got := sys.Damping[idx(0, 0)]; math.Abs(got-1) > epsilon {
		t.Errorf("mass 0 damping diagonal = %v, want 1", got)
	}

	wantMass := []float64{2.0, 2.0, 3.0, 4.0, 4.0}
	for m, want := range wantMass {
		got := sys.Mass[idx(m, m)]
		if math.Abs(got-want) > epsilon {
			t.Errorf("mass %d = %v, want %v", m, got, want)
		}
	}
}

func TestAssembleRejectsWrongLength(t *testing.T) {
	if _, err := Assemble(sampleMain(), make([]float64, 10)); err == nil {
		t.Fatal("expected error for wrong-length DVA vector")
	}
}

func TestAssembleRejectsNonFiniteParam(t *testing.T) {
	x := zeroVector()
	x[0] = math.NaN()
	if _, err := Assemble(sampleMain(), x); err == nil {
		t.Fatal("expected error for non-finite DVA parameter")
	}
}

func TestAssembleRejectsInvalidMainParams(t *testing.T) {
	main := sampleMain()
	main.OmegaDC = 0
	if _, err := Assemble(main, zeroVector()); err == nil {
		t.Fatal("expected error for omega_dc == 0")
	}
}

func TestSolveProducesFiniteResult(t *testing.T) {
	x := zeroVector()
	for i := 0; i < dva.BetaCount; i++ {
		x[dva.BetaOffset+i] = 1000
		x[dva.LambdaOffset+i] = 10
	}
	x[dva.MuOffset+0], x[dva.MuOffset+1], x[dva.MuOffset+2] = 1, 1, 1

	sys, err := Assemble(sampleMain(), x)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	u, err := sys.Solve(10)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	for m, v := range u {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) {
			t.Errorf("mass %d solution is NaN: %v", m, v)
		}
	}
}
