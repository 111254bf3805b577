package de

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

func TestDEConvergesOnSphereBothStrategies(t *testing.T) {
	for _, strat := range []Strategy{Rand1, Best1} {
		b, fixed := sphereBounds()
		d := New(Config{
			RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, Seed: 1, MaxGenerations: 400, PopSize: 30},
			Strategy:  strat,
		})
		result, err := d.Run(context.Background())
		if err != nil {
			t.Fatalf("strategy %v: Run returned error: %v", strat, err)
		}
		if result.BestFitness >= 50 {
			t.Errorf("strategy %v: best fitness = %v, expected improvement", strat, result.BestFitness)
		}
	}
}

func TestDEGreedyReplacementNeverWorsens(t *testing.T) {
	b, fixed := sphereBounds()
	d := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, Seed: 2, MaxGenerations: 20, PopSize: 20}})
	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for i := 1; i < len(result.Trace.BestFitnessPerGen); i++ {
		if result.Trace.BestFitnessPerGen[i] > result.Trace.BestFitnessPerGen[i-1]+1e-9 {
			t.Errorf("best fitness regressed at generation %d: %v -> %v", i, result.Trace.BestFitnessPerGen[i-1], result.Trace.BestFitnessPerGen[i])
		}
	}
}

func TestDERejectsSmallPopulation(t *testing.T) {
	b, fixed := sphereBounds()
	d := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, MaxGenerations: 1, PopSize: 3}})
	if _, err := d.Run(context.Background()); err == nil {
		t.Fatal("expected error for population size < 4")
	}
}
