package sobol

import (
	"context"
	"math"
	"testing"

	"github.com/devana-go/dva"
)

func sphereBoundsFixedTail() (dva.Bounds, dva.FixedMask) {
	var b dva.Bounds
	var fixed dva.FixedMask
	for i := 0; i < dva.NumDVAParams; i++ {
		b.Low[i] = -2
		b.High[i] = 2
	}
	// Fix the last few coordinates so the degenerate-interval path is exercised.
	for i := dva.NumDVAParams - 3; i < dva.NumDVAParams; i++ {
		fixed[i] = true
		b.High[i] = b.Low[i]
	}
	return b, fixed
}

func weightedSum(x []float64) float64 {
	s := 0.0
	for i, v := range x {
		s += float64(i+1) * v * v
	}
	return s
}

func TestAnalyzeProducesOneEntryPerSampleSize(t *testing.T) {
	b, fixed := sphereBoundsFixedTail()
	result, err := Analyze(context.Background(), b, fixed, weightedSum, []int{16, 32}, 4)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(result.S1) != 2 || len(result.ST) != 2 {
		t.Fatalf("expected 2 entries, got S1=%d ST=%d", len(result.S1), len(result.ST))
	}
	for _, s1 := range result.S1 {
		for i, v := range s1 {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("S1[%d] = %v, want finite", i, v)
			}
		}
	}
}

func TestAnalyzeRejectsNilObjective(t *testing.T) {
	b, fixed := sphereBoundsFixedTail()
	if _, err := Analyze(context.Background(), b, fixed, nil, []int{16}, 1); err == nil {
		t.Fatal("expected error for nil objective")
	}
}

func TestAnalyzeRejectsEmptySampleSizes(t *testing.T) {
	b, fixed := sphereBoundsFixedTail()
	if _, err := Analyze(context.Background(), b, fixed, weightedSum, nil, 1); err == nil {
		t.Fatal("expected error for empty sample sizes")
	}
}

func TestAnalyzeRejectsNonPositiveSampleSize(t *testing.T) {
	b, fixed := sphereBoundsFixedTail()
	if _, err := Analyze(context.Background(), b, fixed, weightedSum, []int{0}, 1); err == nil {
		t.Fatal("expected error for non-positive sample size")
	}
}

func TestHaltonSampleStaysInBounds(t *testing.T) {
	for i := 1; i < 50; i++ {
		v := haltonSample(i, 2, -3, 7)
		if v < -3 || v > 7 {
			t.Errorf("haltonSample(%d) = %v, want in [-3,7]", i, v)
		}
	}
}

func TestEvaluateRowsPreservesOrder(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}, {4}}
	out, err := evaluateRows(context.Background(), rows, func(x []float64) float64 { return x[0] * 2 }, 3)
	if err != nil {
		t.Fatalf("evaluateRows returned error: %v", err)
	}
	want := []float64{2, 4, 6, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}
