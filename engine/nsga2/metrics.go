package nsga2

import (
	"math"
	"sort"
)

// Hypervolume ports the teacher's calculateHypervolume (multiobjective.go):
// a 2D Lebesgue-measure computation against a reference point. Extending
// it to NumObjectives-4 would require a WFG/FPRAS-style algorithm the
// teacher does not implement either; this package keeps the teacher's
// documented 2D-only scope and reports 0 for NumObjectives != 2, matching
// the teacher's own limitation rather than inventing a 4D approximation.
func Hypervolume(front []*Solution, referencePoint [2]float64) float64 {
	if len(front) == 0 || NumObjectives != 2 {
		return 0
	}
	sorted := make([]*Solution, len(front))
	copy(sorted, front)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ObjectiveValues[0] < sorted[j].ObjectiveValues[0] })

	hv := 0.0
	previousY := referencePoint[1]
	for _, s := range sorted {
		width := referencePoint[0] - s.ObjectiveValues[0]
		height := previousY - s.ObjectiveValues[1]
		if width > 0 && height > 0 {
			hv += width * height
		}
		if s.ObjectiveValues[1] < previousY {
			previousY = s.ObjectiveValues[1]
		}
	}
	return hv
}

func euclidean(a, b [NumObjectives]float64) float64 {
	sum := 0.0
	for i := 0; i < NumObjectives; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// IGD ports the teacher's calculateIGD (multiobjective.go): the mean
// distance from each true-front point to its nearest obtained-front
// point. Lower is better.
func IGD(obtained, trueFront []*Solution) float64 {
	if len(trueFront) == 0 || len(obtained) == 0 {
		return math.Inf(1)
	}
	total := 0.0
	for _, t := range trueFront {
		best := math.Inf(1)
		for _, o := range obtained {
			if d := euclidean(t.ObjectiveValues, o.ObjectiveValues); d < best {
				best = d
			}
		}
		total += best
	}
	return total / float64(len(trueFront))
}

// IGDPlus is the IGD+ variant (Ishibuchi et al. 2015): the per-objective
// distance only accounts for directions in which the obtained point is
// worse than the true-front point, making it Pareto-compliant where
// plain IGD is not.
func IGDPlus(obtained, trueFront []*Solution) float64 {
	if len(trueFront) == 0 || len(obtained) == 0 {
		return math.Inf(1)
	}
	total := 0.0
	for _, t := range trueFront {
		best := math.Inf(1)
		for _, o := range obtained {
			sum := 0.0
			for i := 0; i < NumObjectives; i++ {
				d := math.Max(0, o.ObjectiveValues[i]-t.ObjectiveValues[i])
				sum += d * d
			}
			if d := math.Sqrt(sum); d < best {
				best = d
			}
		}
		total += best
	}
	return total / float64(len(trueFront))
}

// GD is the Generational Distance: the mean distance from each obtained-
// front point to its nearest true-front point (the mirror image of IGD).
func GD(obtained, trueFront []*Solution) float64 {
	return IGD(trueFront, obtained)
}

// Spread is Deb's diversity metric Delta: how evenly the front's
// consecutive points are distributed, normalized by the mean consecutive
// distance, using the first objective as the ordering axis.
func Spread(front []*Solution) float64 {
	n := len(front)
	if n < 2 {
		return 0
	}
	sorted := make([]*Solution, n)
	copy(sorted, front)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ObjectiveValues[0] < sorted[j].ObjectiveValues[0] })

	distances := make([]float64, n-1)
	mean := 0.0
	for i := 0; i < n-1; i++ {
		distances[i] = euclidean(sorted[i].ObjectiveValues, sorted[i+1].ObjectiveValues)
		mean += distances[i]
	}
	mean /= float64(n - 1)

	dExtreme := distances[0] + distances[len(distances)-1]
	sumAbsDiff := 0.0
	for _, d := range distances {
		sumAbsDiff += math.Abs(d - mean)
	}
	denom := dExtreme + float64(n-1)*mean
	if denom < 1e-12 {
		return 0
	}
	return (dExtreme + sumAbsDiff) / denom
}
