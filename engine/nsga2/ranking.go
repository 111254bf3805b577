package nsga2

import (
	"math"
	"sort"
)

// dominates reports whether a dominates b under minimization: no worse in
// every objective and strictly better in at least one. Ported from the
// teacher's multiobjective.go dominates, generalized from a variable-
// length objective slice to the fixed NumObjectives array.
func dominates(a, b [NumObjectives]float64) bool {
	strictlyBetter := false
	for i := 0; i < NumObjectives; i++ {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// fastNonDominatedSort ports the teacher's fastNonDominatedSort
// (multiobjective.go) directly: it operates on Solution pointers instead
// of the teacher's ParetoSolution, and populates Rank/DominationCount/
// DominatedSolutions in place exactly as the teacher does.
func fastNonDominatedSort(solutions []*Solution) [][]int {
	n := len(solutions)
	if n == 0 {
		return nil
	}

	for i := 0; i < n; i++ {
		solutions[i].DominationCount = 0
		solutions[i].DominatedSolutions = solutions[i].DominatedSolutions[:0]
	}

	firstFront := make([]int, 0)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(solutions[i].ObjectiveValues, solutions[j].ObjectiveValues) {
				solutions[i].DominatedSolutions = append(solutions[i].DominatedSolutions, j)
			} else if dominates(solutions[j].ObjectiveValues, solutions[i].ObjectiveValues) {
				solutions[i].DominationCount++
			}
		}
		if solutions[i].DominationCount == 0 {
			solutions[i].Rank = 1
			firstFront = append(firstFront, i)
		}
	}

	fronts := [][]int{firstFront}
	rank := 1
	for len(fronts[rank-1]) > 0 {
		nextFront := make([]int, 0)
		for _, i := range fronts[rank-1] {
			for _, j := range solutions[i].DominatedSolutions {
				solutions[j].DominationCount--
				if solutions[j].DominationCount == 0 {
					solutions[j].Rank = rank + 1
					nextFront = append(nextFront, j)
				}
			}
		}
		if len(nextFront) == 0 {
			break
		}
		fronts = append(fronts, nextFront)
		rank++
	}
	return fronts
}

// calculateCrowdingDistance ports the teacher's calculateCrowdingDistance
// (multiobjective.go), generalized to the fixed NumObjectives array.
func calculateCrowdingDistance(solutions []*Solution, frontIndices []int) {
	frontSize := len(frontIndices)
	if frontSize == 0 {
		return
	}
	for _, idx := range frontIndices {
		solutions[idx].CrowdingDistance = 0
	}
	if frontSize <= 2 {
		for _, idx := range frontIndices {
			solutions[idx].CrowdingDistance = math.Inf(1)
		}
		return
	}

	for m := 0; m < NumObjectives; m++ {
		sortedIndices := make([]int, frontSize)
		copy(sortedIndices, frontIndices)
		sort.Slice(sortedIndices, func(i, j int) bool {
			return solutions[sortedIndices[i]].ObjectiveValues[m] < solutions[sortedIndices[j]].ObjectiveValues[m]
		})

		solutions[sortedIndices[0]].CrowdingDistance = math.Inf(1)
		solutions[sortedIndices[frontSize-1]].CrowdingDistance = math.Inf(1)

		objMin := solutions[sortedIndices[0]].ObjectiveValues[m]
		objMax := solutions[sortedIndices[frontSize-1]].ObjectiveValues[m]
		objRange := objMax - objMin
		if objRange < 1e-10 {
			objRange = 1e-10
		}

		for i := 1; i < frontSize-1; i++ {
			if math.IsInf(solutions[sortedIndices[i]].CrowdingDistance, 1) {
				continue
			}
			distance := (solutions[sortedIndices[i+1]].ObjectiveValues[m] - solutions[sortedIndices[i-1]].ObjectiveValues[m]) / objRange
			solutions[sortedIndices[i]].CrowdingDistance += distance
		}
	}
}

// crowdingDistanceComparison ports the teacher's
// crowdingDistanceComparison (multiobjective.go): a is preferred over b
// if it has a better (lower) rank, or an equal rank and greater crowding
// distance.
func crowdingDistanceComparison(a, b *Solution) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.CrowdingDistance > b.CrowdingDistance
}

// selectByNSGA2 ports the teacher's selectByNSGA2 (multiobjective.go):
// fronts fill the next generation in rank order, with the last
// partially-admitted front trimmed by descending crowding distance.
func selectByNSGA2(solutions []*Solution, n int) []*Solution {
	if len(solutions) <= n {
		return solutions
	}
	fronts := fastNonDominatedSort(solutions)
	for _, front := range fronts {
		calculateCrowdingDistance(solutions, front)
	}

	selected := make([]*Solution, 0, n)
	for _, front := range fronts {
		if len(selected)+len(front) <= n {
			for _, idx := range front {
				selected = append(selected, solutions[idx])
			}
			continue
		}
		remaining := n - len(selected)
		sortedFront := make([]*Solution, len(front))
		for i, idx := range front {
			sortedFront[i] = solutions[idx]
		}
		sort.Slice(sortedFront, func(i, j int) bool {
			return sortedFront[i].CrowdingDistance > sortedFront[j].CrowdingDistance
		})
		selected = append(selected, sortedFront[:remaining]...)
		break
	}
	return selected
}
