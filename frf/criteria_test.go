package frf

import (
	"math"
	"testing"

	"github.com/devana-go/dva"
)

func linspace(start, end float64, n int) []float64 {
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestFindPeaksSinglePeak(t *testing.T) {
	omega := linspace(0, 10, 101)
	magnitude := make([]float64, len(omega))
	for i, w := range omega {
		magnitude[i] = 1.0 / (1 + (w-5)*(w-5))
	}

	peaks := findPeaks(magnitude, omega)
	if len(peaks) != 1 {
		t.Fatalf("got %d peaks, want 1", len(peaks))
	}
	if math.Abs(peaks[0].Frequency-5) > 0.2 {
		t.Errorf("peak frequency = %v, want ~5", peaks[0].Frequency)
	}
}

func TestFindPeaksRespectsProminenceThreshold(t *testing.T) {
	omega := linspace(0, 10, 101)
	magnitude := make([]float64, len(omega))
	for i, w := range omega {
		magnitude[i] = 1.0/(1+(w-3)*(w-3)) + 0.01*math.Sin(w*20)
	}

	peaks := findPeaks(magnitude, omega)
	for _, p := range peaks {
		if math.Abs(p.Frequency-3) > 1 {
			t.Errorf("unexpected peak at %v surviving prominence filter", p.Frequency)
		}
	}
}

func TestFindPeaksTruncatesToMax(t *testing.T) {
	omega := linspace(0, 60, 601)
	magnitude := make([]float64, len(omega))
	for i, w := range omega {
		for c := 5.0; c <= 55; c += 10 {
			magnitude[i] += 1.0 / (1 + (w-c)*(w-c))
		}
	}
	peaks := findPeaks(magnitude, omega)
	if len(peaks) > dva.MaxPeaks {
		t.Errorf("got %d peaks, want <= %d", len(peaks), dva.MaxPeaks)
	}
	for i := 1; i < len(peaks); i++ {
		if peaks[i].Frequency < peaks[i-1].Frequency {
			t.Errorf("peaks not sorted ascending by frequency: %v then %v", peaks[i-1], peaks[i])
		}
	}
}

func TestTrapezoidalAreaConstantCurve(t *testing.T) {
	omega := linspace(0, 10, 11)
	magnitude := make([]float64, len(omega))
	for i := range magnitude {
		magnitude[i] = 2.0
	}
	area := trapezoidalArea(magnitude, omega)
	if math.Abs(area-20) > epsilon {
		t.Errorf("area = %v, want 20", area)
	}
}

func TestExtractMassZeroWeightContributesNothing(t *testing.T) {
	omega := linspace(0, 10, 101)
	magnitude := make([]float64, len(omega))
	for i, w := range omega {
		magnitude[i] = 1.0 / (1 + (w-5)*(w-5))
	}
	mt := dva.MassTargets{
		Targets: dva.Targets{dva.AreaUnderCurveKey: 999},
		Weights: dva.Weights{},
	}
	mr, err := extractMass(magnitude, omega, mt)
	if err != nil {
		t.Fatalf("extractMass returned error: %v", err)
	}
	if mr.Composite.Total != 0 {
		t.Errorf("composite total = %v, want 0 when all weights are zero", mr.Composite.Total)
	}
}

func TestExtractMassWeightedError(t *testing.T) {
	omega := linspace(0, 10, 101)
	magnitude := make([]float64, len(omega))
	for i := range magnitude {
		magnitude[i] = 1.0
	}
	area := trapezoidalArea(magnitude, omega)
	mt := dva.MassTargets{
		Targets: dva.Targets{dva.AreaUnderCurveKey: area - 1},
		Weights: dva.Weights{dva.AreaUnderCurveKey: 2},
	}
	mr, err := extractMass(magnitude, omega, mt)
	if err != nil {
		t.Fatalf("extractMass returned error: %v", err)
	}
	want := 2.0
	if math.Abs(mr.Composite.Total-want) > epsilon {
		t.Errorf("composite total = %v, want %v", mr.Composite.Total, want)
	}
}

func TestExtractMassMissingPeakContributesPenalty(t *testing.T) {
	omega := linspace(0, 10, 101)
	magnitude := make([]float64, len(omega))
	for i := range magnitude {
		magnitude[i] = 1.0
	}
	mt := dva.MassTargets{
		Targets: dva.Targets{dva.PeakValueKey(1): 0.5},
		Weights: dva.Weights{dva.PeakValueKey(1): 1},
	}
	mr, err := extractMass(magnitude, omega, mt)
	if err != nil {
		t.Fatalf("extractMass returned error: %v", err)
	}
	if mr.Composite.PerFeature[dva.PeakValueKey(1)] != dva.PenaltyValue {
		t.Errorf("missing-peak contribution = %v, want penalty %v", mr.Composite.PerFeature[dva.PeakValueKey(1)], dva.PenaltyValue)
	}
}
