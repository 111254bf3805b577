package benchmark

import (
	"context"
	"math"
	"testing"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/engine"
	"github.com/devana-go/dva/engine/ga"
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
	s := 0.0
	for _, v := range x {
		s += v * v
	}
	return s
}

func gaFactory(seed int64) engine.Engine {
	b, fixed := sphereBounds()
	return ga.New(ga.Config{RunConfig: engine.RunConfig{
		Bounds: b, Fixed: fixed, Objective: sphere, Seed: seed, MaxGenerations: 20, PopSize: 16,
	}})
}

func TestRunAllProducesStatisticsAndRankings(t *testing.T) {
	specs := []RunSpec{
		{Name: "ga-a", Factory: gaFactory, Runs: 5, SeedBase: 1},
		{Name: "ga-b", Factory: gaFactory, Runs: 5, SeedBase: 100},
	}
	snap, err := RunAll(context.Background(), specs, 0)
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(snap.BenchmarkData) != 10 {
		t.Fatalf("expected 10 total records, got %d", len(snap.BenchmarkData))
	}
	if snap.Comparison == nil {
		t.Fatal("expected a comparison for 2 engines")
	}
	if _, ok := snap.Comparison.Statistics["ga-a"]; !ok {
		t.Fatal("expected statistics for ga-a")
	}
	if len(snap.Comparison.Rankings) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(snap.Comparison.Rankings))
	}
	if snap.Comparison.Friedman == nil {
		t.Fatal("expected a friedman result for 2 matched-size algorithms")
	}
	if len(snap.Comparison.Wilcoxon) != 1 {
		t.Fatalf("expected 1 wilcoxon comparison, got %d", len(snap.Comparison.Wilcoxon))
	}
}

func TestRunAllRejectsEmptySpecs(t *testing.T) {
	if _, err := RunAll(context.Background(), nil, 0); err == nil {
		t.Fatal("expected error for empty specs")
	}
}

func TestCalculateStatisticsQuartiles(t *testing.T) {
	runs := []RunResult{{BestCost: 1}, {BestCost: 2}, {BestCost: 3}, {BestCost: 4}}
	stats := CalculateStatistics(runs, 0)
	if stats.Mean != 2.5 {
		t.Errorf("mean = %v, want 2.5", stats.Mean)
	}
	if stats.Best != 1 || stats.Worst != 4 {
		t.Errorf("best/worst = %v/%v, want 1/4", stats.Best, stats.Worst)
	}
	if stats.IQR <= 0 {
		t.Errorf("IQR = %v, want > 0", stats.IQR)
	}
}

func TestWilcoxonSignedRankTestDetectsDifference(t *testing.T) {
	runs1 := make([]RunResult, 20)
	runs2 := make([]RunResult, 20)
	for i := range runs1 {
		runs1[i] = RunResult{BestCost: float64(i) * 0.1}
		runs2[i] = RunResult{BestCost: float64(i)*0.1 + 5}
	}
	result := WilcoxonSignedRankTest("a", "b", runs1, runs2)
	if result.Winner != "a" {
		t.Errorf("winner = %q, want a", result.Winner)
	}
	if !result.Significant {
		t.Error("expected a significant result for a clear difference")
	}
}

func TestWilcoxonSignedRankTestTiesOut(t *testing.T) {
	runs := make([]RunResult, 10)
	for i := range runs {
		runs[i] = RunResult{BestCost: float64(i)}
	}
	result := WilcoxonSignedRankTest("a", "b", runs, runs)
	if result.Winner != "tie" {
		t.Errorf("winner = %q, want tie for identical runs", result.Winner)
	}
}

func TestFriedmanTestRequiresMatchedRunCounts(t *testing.T) {
	a := []RunResult{{BestCost: 1}, {BestCost: 2}}
	b := []RunResult{{BestCost: 1}}
	if FriedmanTest([][]RunResult{a, b}) != nil {
		t.Error("expected nil for mismatched run counts")
	}
}

func TestNormalCDFSymmetric(t *testing.T) {
	if math.Abs(normalCDF(0)-0.5) > 1e-9 {
		t.Errorf("normalCDF(0) = %v, want 0.5", normalCDF(0))
	}
}

func TestRankValuesAveragesTies(t *testing.T) {
	ranks := rankValues([]float64{1, 2, 2, 3})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if math.Abs(ranks[i]-want[i]) > 1e-9 {
			t.Errorf("ranks[%d] = %v, want %v", i, ranks[i], want[i])
		}
	}
}
