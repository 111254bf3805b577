package pso

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

func TestPSOConvergesOnSphere(t *testing.T) {
	b, fixed := sphereBounds()
	swarm := New(Config{RunConfig: engine.RunConfig{
		Bounds:         b,
		Fixed:          fixed,
		Objective:      sphere,
		Seed:           1,
		MaxGenerations: 40,
		PopSize:        30,
	}})
	result, err := swarm.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.BestFitness >= 50 {
		t.Errorf("best fitness = %v, expected noticeable improvement", result.BestFitness)
	}
}

func TestPSOTopologiesProduceValidResult(t *testing.T) {
	for _, topo := range []Topology{Global, Ring, VonNeumann, Random} {
		b, fixed := sphereBounds()
		swarm := New(Config{
			RunConfig: engine.RunConfig{
				Bounds: b, Fixed: fixed, Objective: sphere, Seed: 2, MaxGenerations: 10, PopSize: 16,
			},
			Topology: topo,
		})
		result, err := swarm.Run(context.Background())
		if err != nil {
			t.Fatalf("topology %v: Run returned error: %v", topo, err)
		}
		if len(result.BestSolution) != dva.NumDVAParams {
			t.Errorf("topology %v: best solution length = %d", topo, len(result.BestSolution))
		}
	}
}

func TestPSOBoundaryPoliciesKeepParticlesInBounds(t *testing.T) {
	for _, policy := range []BoundaryPolicy{Absorbing, Reflecting, Invisible} {
		b, fixed := sphereBounds()
		swarm := New(Config{
			RunConfig: engine.RunConfig{
				Bounds: b, Fixed: fixed, Objective: sphere, Seed: 3, MaxGenerations: 15, PopSize: 16,
			},
			Boundary: policy,
		})
		result, err := swarm.Run(context.Background())
		if err != nil {
			t.Fatalf("policy %v: Run returned error: %v", policy, err)
		}
		for i, v := range result.BestSolution {
			if v < b.Low[i]-1e-6 || v > b.High[i]+1e-6 {
				t.Errorf("policy %v: coordinate %d = %v out of bounds", policy, i, v)
			}
		}
	}
}

func TestPSOStopsAtTolerance(t *testing.T) {
	b, fixed := sphereBounds()
	for i := range b.Low {
		b.Low[i], b.High[i] = -0.01, 0.01
	}
	swarm := New(Config{
		RunConfig: engine.RunConfig{
			Bounds: b, Fixed: fixed, Objective: sphere, Seed: 4, MaxGenerations: 1000, PopSize: 20,
		},
		Tolerance: 1.0,
	})
	result, err := swarm.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Generations >= 1000 {
		t.Errorf("expected early convergence stop, ran all %d generations", result.Generations)
	}
}

func TestPSORejectsZeroSwarmSize(t *testing.T) {
	b, fixed := sphereBounds()
	swarm := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: sphere, MaxGenerations: 1, PopSize: 0}})
	if _, err := swarm.Run(context.Background()); err == nil {
		t.Fatal("expected error for zero swarm size")
	}
}
