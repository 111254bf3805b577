package frf

import (
	"math"
	"sort"

	"github.com/devana-go/dva"
)

// prominenceFraction is the Open Question 2 resolution (spec.md §4.3):
// a local maximum counts as a peak only if it stands at least 5% of the
// curve's global maximum above both of its neighboring valleys.
const prominenceFraction = 0.05

// extractMass computes one mass's peaks, bandwidths, slopes, and
// area-under-curve, then reduces them against the supplied targets and
// weights into CompositeMeasures and PercentDiffs (spec.md §4.3).
func extractMass(magnitude, omega []float64, mt dva.MassTargets) (dva.MassResult, error) {
	peaks := findPeaks(magnitude, omega)
	area := trapezoidalArea(magnitude, omega)

	extracted := make(map[dva.TargetKey]float64, 2*dva.MaxPeaks+2*dva.MaxPeakPositions+6+6+1)
	for k := 0; k < dva.MaxPeaks; k++ {
		v := math.NaN()
		if k < len(peaks) {
			v = peaks[k].Value
		}
		extracted[dva.PeakValueKey(k+1)] = v
	}
	for k := 0; k < dva.MaxPeakPositions; k++ {
		v := math.NaN()
		if k < len(peaks) {
			v = peaks[k].Frequency
		}
		extracted[dva.PeakPositionKey(k+1)] = v
	}
	for i := 1; i <= dva.MaxPeaks; i++ {
		for j := i + 1; j <= dva.MaxPeaks; j++ {
			bw := math.NaN()
			sl := math.NaN()
			if i-1 < len(peaks) && j-1 < len(peaks) {
				bw = peaks[j-1].Frequency - peaks[i-1].Frequency
				if bw != 0 {
					sl = (peaks[j-1].Value - peaks[i-1].Value) / bw
				}
			}
			extracted[dva.BandwidthKey(i, j)] = bw
			extracted[dva.SlopeKey(i, j)] = sl
		}
	}
	extracted[dva.AreaUnderCurveKey] = area

	composite := dva.CompositeMeasures{PerFeature: map[dva.TargetKey]float64{}}
	percent := dva.PercentDiffs{}
	for key, got := range extracted {
		w := mt.Weights[key]
		if w == 0 {
			continue
		}
		target := mt.Targets[key]
		diff := math.Abs(got - target)
		if math.IsNaN(diff) {
			diff = dva.PenaltyValue
		}
		composite.PerFeature[key] = w * diff
		composite.Total += w * diff

		denom := math.Abs(target)
		if denom < 1e-12 {
			denom = 1e-12
		}
		pd := math.Abs(got-target) / denom
		if math.IsNaN(pd) {
			pd = 1.0
		}
		percent[key] = pd
	}

	return dva.MassResult{
		Magnitude: magnitude,
		Peaks:     peaks,
		Composite: composite,
		Percent:   percent,
	}, nil
}

// findPeaks locates local maxima of magnitude whose prominence exceeds
// prominenceFraction of the curve's global max, sorted ascending by
// frequency and truncated to dva.MaxPeaks entries (spec.md §4.3).
func findPeaks(magnitude, omega []float64) []dva.Peak {
	n := len(magnitude)
	if n == 0 {
		return nil
	}
	globalMax := magnitude[0]
	for _, v := range magnitude {
		if v > globalMax {
			globalMax = v
		}
	}
	threshold := prominenceFraction * globalMax

	var candidates []dva.Peak
	for i := 1; i < n-1; i++ {
		if magnitude[i] <= magnitude[i-1] || magnitude[i] <= magnitude[i+1] {
			continue
		}
		leftValley := magnitude[i]
		for j := i - 1; j >= 0 && magnitude[j] <= magnitude[j+1]; j-- {
			if magnitude[j] < leftValley {
				leftValley = magnitude[j]
			}
		}
		rightValley := magnitude[i]
		for j := i + 1; j < n && magnitude[j] <= magnitude[j-1]; j++ {
			if magnitude[j] < rightValley {
				rightValley = magnitude[j]
			}
		}
		prominence := magnitude[i] - math.Max(leftValley, rightValley)
		if prominence < threshold {
			continue
		}
		candidates = append(candidates, dva.Peak{Index: i, Value: magnitude[i], Frequency: omega[i]})
	}

	sort.Slice(candidates, func(a, b int) bool { return candidates[a].Frequency < candidates[b].Frequency })
	if len(candidates) > dva.MaxPeaks {
		candidates = candidates[:dva.MaxPeaks]
	}
	return candidates
}

// trapezoidalArea integrates magnitude over omega via the trapezoidal
// rule (spec.md §4.3).
func trapezoidalArea(magnitude, omega []float64) float64 {
	area := 0.0
	for i := 1; i < len(magnitude); i++ {
		dw := omega[i] - omega[i-1]
		area += 0.5 * dw * (magnitude[i] + magnitude[i-1])
	}
	return area
}
