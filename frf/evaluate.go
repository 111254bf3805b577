package frf

import (
	"context"
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
)

// Sweep describes one frequency-response evaluation request: the grid to
// sweep, the per-mass targets/weights, and the peak/slope reporting
// flags (spec.md §4.2).
type Sweep struct {
	Grid       dva.FrequencyGrid
	MassTargets [dva.NumMasses]dva.MassTargets
	ShowPeaks  bool
	ShowSlopes bool
}

// Evaluate sweeps omega across the grid, solving the complex 5x5 system
// at each point in parallel across a bounded worker pool sized by
// GOMAXPROCS (overridable via workerCount), preserving magnitude-array
// ordering (spec.md §4.2 performance contract). A solve failure at a
// single frequency contributes NaN to that sample rather than aborting
// the sweep. The NaN does not reach the Fitness layer: extractMass
// replaces each weighted feature that comes out NaN with
// dva.PenaltyValue, and a non-finite total is replaced with
// dva.PenaltyValue here, so such a vector scores a large finite fitness
// rather than exactly dva.PenaltyValue.
func Evaluate(ctx context.Context, sys System, sweep Sweep, workerCount int) (dva.FrfResult, error) {
	if err := sweep.Grid.Validate(); err != nil {
		return dva.FrfResult{}, err
	}
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}

	omega := sweep.Grid.Values()
	n := len(omega)
	magnitudes := make([][dva.NumMasses]float64, n)

	type job struct{ i int }
	jobs := make(chan job, n)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			select {
			case <-ctx.Done():
				continue
			default:
			}
			u, err := sys.Solve(omega[j.i])
			if err != nil {
				for m := 0; m < dva.NumMasses; m++ {
					magnitudes[j.i][m] = math.NaN()
				}
				continue
			}
			for m := 0; m < dva.NumMasses; m++ {
				magnitudes[j.i][m] = cmplx.Abs(u[m])
			}
		}
	}

	if workerCount > n {
		workerCount = n
	}
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go worker()
	}
	for i := 0; i < n; i++ {
		jobs <- job{i}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return dva.FrfResult{}, dvaerr.Wrap(dvaerr.Aborted, err, "frequency sweep canceled")
	}

	var result dva.FrfResult
	totalComposite := dva.CompositeMeasures{PerFeature: map[dva.TargetKey]float64{}}
	totalPercent := dva.PercentDiffs{}

	for m := 0; m < dva.NumMasses; m++ {
		curve := make([]float64, n)
		for i := 0; i < n; i++ {
			curve[i] = magnitudes[i][m]
		}
		mr, err := extractMass(curve, omega, sweep.MassTargets[m])
		if err != nil {
			return dva.FrfResult{}, err
		}
		if !sweep.ShowPeaks {
			mr.Peaks = nil
		}
		result.Masses[m] = mr
		for k, v := range mr.Composite.PerFeature {
			totalComposite.PerFeature[k] += v
		}
		totalComposite.Total += mr.Composite.Total
		for k, v := range mr.Percent {
			totalPercent[k] += v
		}
	}
	result.CompositeMeasures = totalComposite
	result.PercentageDiffs = totalPercent
	result.SingularResponse = dva.SanitizeFitness(totalComposite.Total)

	return result, nil
}
