package nsga2

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

func fourObjectives(x []float64) [NumObjectives]float64 {
	sum1, sum2 := 0.0, 0.0
	for i, v := range x {
		if i%2 == 0 {
			sum1 += v * v
		} else {
			sum2 += (v - 1) * (v - 1)
		}
	}
	return [NumObjectives]float64{sum1, sum2, sum1 + sum2, (sum1 - sum2) * (sum1 - sum2)}
}

func scalarize(x []float64) float64 {
	o := fourObjectives(x)
	return o[0] + o[1] + o[2] + o[3]
}

func TestNSGA2ProducesValidFront(t *testing.T) {
	b, fixed := sphereBounds()
	n := New(Config{RunConfig: engine.RunConfig{
		Bounds: b, Fixed: fixed, Objective: scalarize, Seed: 1, MaxGenerations: 15, PopSize: 24,
	}, MultiObjective: fourObjectives})

	result, err := n.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.BestSolution) != dva.NumDVAParams {
		t.Fatalf("best solution length = %d, want %d", len(result.BestSolution), dva.NumDVAParams)
	}
}

func TestNSGA2RequiresMultiObjective(t *testing.T) {
	b, fixed := sphereBounds()
	n := New(Config{RunConfig: engine.RunConfig{Bounds: b, Fixed: fixed, Objective: scalarize, MaxGenerations: 1, PopSize: 10}})
	if _, err := n.Run(context.Background()); err == nil {
		t.Fatal("expected error when MultiObjective is nil")
	}
}

func TestDominatesMinimization(t *testing.T) {
	a := [NumObjectives]float64{1, 1, 1, 1}
	b := [NumObjectives]float64{2, 2, 2, 2}
	if !dominates(a, b) {
		t.Error("expected a to dominate b")
	}
	if dominates(b, a) {
		t.Error("expected b to not dominate a")
	}
	if dominates(a, a) {
		t.Error("a should not dominate itself")
	}
}

func TestFastNonDominatedSortRanksFirstFrontZeroDomination(t *testing.T) {
	sols := []*Solution{
		{ObjectiveValues: [NumObjectives]float64{0, 0, 0, 0}},
		{ObjectiveValues: [NumObjectives]float64{1, 1, 1, 1}},
		{ObjectiveValues: [NumObjectives]float64{2, 2, 2, 2}},
	}
	fronts := fastNonDominatedSort(sols)
	if len(fronts) == 0 || len(fronts[0]) != 1 || fronts[0][0] != 0 {
		t.Errorf("expected first front = [0], got %v", fronts)
	}
}

func TestSpreadZeroForSinglePoint(t *testing.T) {
	front := []*Solution{{ObjectiveValues: [NumObjectives]float64{1, 1, 1, 1}}}
	if s := Spread(front); s != 0 {
		t.Errorf("Spread with 1 point = %v, want 0", s)
	}
}
