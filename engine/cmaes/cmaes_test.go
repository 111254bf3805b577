package cmaes

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

func TestCMAESConvergesOnSphere(t *testing.T) {
	b, fixed := sphereBounds()
	c := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, Seed: 1, MaxGenerations: 60}})
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.BestFitness >= 50 {
		t.Errorf("best fitness = %v, expected improvement", result.BestFitness)
	}
}

func TestCMAESRespectsBounds(t *testing.T) {
	b, fixed := sphereBounds()
	c := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, Seed: 2, MaxGenerations: 30}})
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for i, v := range result.BestSolution {
		if v < b.Low[i]-1e-6 || v > b.High[i]+1e-6 {
			t.Errorf("coordinate %d = %v out of bounds", i, v)
		}
	}
}

func TestCMAESDefaultsPopSizeFromDimension(t *testing.T) {
	b, fixed := sphereBounds()
	c := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, Seed: 3, MaxGenerations: 5}})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error with default pop size: %v", err)
	}
}
