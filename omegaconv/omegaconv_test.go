package omegaconv

import (
	"context"
	"testing"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/frf"
)

func sampleSystem(t *testing.T) frf.System {
	t.Helper()
	main := dva.MainParams{
		Mu: 1.0, Lambda: [5]float64{1, 1, .5, .5, .5}, Nu: [5]float64{.75, .75, .75, .75, .75},
		ALow: 0.05, AUp: 0.05, F1: 100, F2: 100, OmegaDC: 5000, ZetaDC: 0.01,
	}
	x := make([]float64, dva.NumDVAParams)
	for i := 0; i < dva.BetaCount; i++ {
		x[dva.BetaOffset+i] = 1000
		x[dva.LambdaOffset+i] = 10
	}
	x[dva.MuOffset], x[dva.MuOffset+1], x[dva.MuOffset+2] = 1, 1, 1
	sys, err := frf.Assemble(main, x)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return sys
}

func TestRunConvergesWithinBudget(t *testing.T) {
	cfg := Config{
		System:        sampleSystem(t),
		OmegaStart:    10,
		OmegaEnd:      10000,
		InitialPoints: 50,
		MaxPoints:     500,
		Step:          50,
		Threshold:     0.5,
		MaxIter:       20,
		WorkerCount:   2,
	}
	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.OmegaPoints) == 0 {
		t.Fatal("expected at least one omega-points entry")
	}
	if !result.Converged {
		t.Fatalf("expected convergence within %d points, got %+v", cfg.MaxPoints, result)
	}
	if result.ConvergencePoint > cfg.MaxPoints {
		t.Errorf("convergence point %d exceeds max points %d", result.ConvergencePoint, cfg.MaxPoints)
	}
}

func TestRunReportsIterationLimitHonestly(t *testing.T) {
	cfg := Config{
		System:        sampleSystem(t),
		OmegaStart:    10,
		OmegaEnd:      10000,
		InitialPoints: 50,
		MaxPoints:     60,
		Step:          5,
		Threshold:     1e-12,
		MaxIter:       2,
		WorkerCount:   1,
	}
	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Converged {
		t.Fatal("did not expect convergence with a near-zero threshold and tiny iteration budget")
	}
	if !result.IterationLimitReached {
		t.Error("expected iteration_limit_reached to be true")
	}
}

func TestRunRejectsInvalidOmegaRange(t *testing.T) {
	cfg := Config{System: sampleSystem(t), OmegaStart: 100, OmegaEnd: 10, InitialPoints: 10, MaxPoints: 100, Step: 10, MaxIter: 1}
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error for omega_start >= omega_end")
	}
}

func TestRunRejectsMassOfInterestOutOfRange(t *testing.T) {
	cfg := Config{
		System: sampleSystem(t), OmegaStart: 10, OmegaEnd: 1000, InitialPoints: 10, MaxPoints: 100, Step: 10,
		MaxIter: 1, MassOfInterest: dva.NumMasses,
	}
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error for out-of-range mass_of_interest")
	}
}
