package ga

import (
	"context"
	"testing"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/engine"
)

func sphereBounds() (dva.Bounds, dva.FixedMask) {
	var b dva.Bounds
	var fixed dva.FixedMask
	for i := 0; i < dva.NumDVAParams; i++ {
		b.Low[i] = -5
		b.High[i] = 5
	}
	return b, fixed
}

func sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestGAConvergesOnSphere(t *testing.T) {
	b, fixed := sphereBounds()
	g := New(Config{RunConfig: engine.RunConfig{
		Bounds:         b,
		Fixed:          fixed,
		Objective:      sphere,
		Seed:           1,
		MaxGenerations: 30,
		PopSize:        40,
	}})

	result, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.BestSolution) != dva.NumDVAParams {
		t.Fatalf("best solution length = %d, want %d", len(result.BestSolution), dva.NumDVAParams)
	}
	if result.BestFitness >= 50 {
		t.Errorf("best fitness = %v, expected noticeable improvement from random init", result.BestFitness)
	}
	if len(result.Trace.FitnessHistory) != result.Generations {
		t.Errorf("trace length = %d, want %d generations", len(result.Trace.FitnessHistory), result.Generations)
	}
}

func TestGARespectsFixedCoordinates(t *testing.T) {
	b, fixed := sphereBounds()
	fixed[0] = true
	b.Low[0] = 3
	b.High[0] = 3

	g := New(Config{RunConfig: engine.RunConfig{
		Bounds:         b,
		Fixed:          fixed,
		Objective:      sphere,
		Seed:           2,
		MaxGenerations: 5,
		PopSize:        10,
	}})

	result, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.BestSolution[0] != 3 {
		t.Errorf("fixed coordinate drifted to %v, want 3", result.BestSolution[0])
	}
}

func TestGARejectsZeroPopSize(t *testing.T) {
	b, fixed := sphereBounds()
	g := New(Config{RunConfig: engine.RunConfig{
		Bounds: b, Fixed: fixed, Objective: sphere, MaxGenerations: 1, PopSize: 0,
	}})
	if _, err := g.Run(context.Background()); err == nil {
		t.Fatal("expected error for zero pop size")
	}
}

func TestGAHonorsContextCancellation(t *testing.T) {
	b, fixed := sphereBounds()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := New(Config{RunConfig: engine.RunConfig{
		Bounds: b, Fixed: fixed, Objective: sphere, Seed: 3, MaxGenerations: 1000, PopSize: 10,
	}})
	result, err := g.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Generations >= 1000 {
		t.Errorf("expected early stop on canceled context, got %d generations", result.Generations)
	}
}
