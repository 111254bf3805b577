// Package omegaconv implements adaptive frequency-grid refinement:
// repeatedly refine the FRF evaluator's omega sampling
// density until the magnitude curve's maximum slope stabilizes within a
// tolerance (spec.md §4.8). This component has no original_source
// analogue (the GUI exposes an omega_points spin box but never searches
// it automatically); it is grounded on frf.Evaluate, which it drives
// directly, and on the iterate-until-converged shape engine/sa.go
// already uses for its own termination loop.
package omegaconv

import (
	"context"
	"math"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/frf"
)

// Config parameterizes one convergence run (spec.md §4.8 inputs).
type Config struct {
	System         frf.System
	MassTargets    [dva.NumMasses]dva.MassTargets
	MassOfInterest int // index into System/Masses, 0-based
	OmegaStart     float64
	OmegaEnd       float64
	InitialPoints  int
	MaxPoints      int
	Step           int
	Threshold      float64
	MaxIter        int
	WorkerCount    int
}

// Result reports the convergence trace and outcome (spec.md §4.8
// output: "{omega_points:[...], max_slopes:[...], relative_changes:[...],
// converged:bool, convergence_point?:int, iteration_limit_reached:bool}").
type Result struct {
	OmegaPoints           []int     `json:"omega_points"`
	MaxSlopes             []float64 `json:"max_slopes"`
	RelativeChanges       []float64 `json:"relative_changes"`
	Converged             bool      `json:"converged"`
	ConvergencePoint      int       `json:"convergence_point,omitempty"`
	IterationLimitReached bool      `json:"iteration_limit_reached"`
}

// Run executes the convergence loop (spec.md §4.8 steps 1-4): never
// silently adjusts Step, and honestly reports budget exhaustion instead
// of claiming convergence.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.OmegaStart >= cfg.OmegaEnd {
		return Result{}, dvaerr.New(dvaerr.InvalidInput, "omega_start must be < omega_end")
	}
	if cfg.InitialPoints < 2 {
		return Result{}, dvaerr.New(dvaerr.InvalidInput, "initial_points must be >= 2")
	}
	if cfg.Step <= 0 {
		return Result{}, dvaerr.New(dvaerr.InvalidInput, "step must be > 0")
	}
	if cfg.MassOfInterest < 0 || cfg.MassOfInterest >= dva.NumMasses {
		return Result{}, dvaerr.New(dvaerr.InvalidInput, "mass_of_interest out of range")
	}
	if cfg.MaxIter <= 0 {
		return Result{}, dvaerr.New(dvaerr.InvalidInput, "max_iter must be > 0")
	}

	var result Result
	n := cfg.InitialPoints
	var previousSlope float64
	haveSlope := false

	for iter := 0; iter < cfg.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, dvaerr.Wrap(dvaerr.Aborted, err, "omega-points convergence canceled")
		}
		if n > cfg.MaxPoints {
			n = cfg.MaxPoints
		}

		slope, err := maxSlope(ctx, cfg, n)
		if err != nil {
			return Result{}, err
		}

		result.OmegaPoints = append(result.OmegaPoints, n)
		result.MaxSlopes = append(result.MaxSlopes, slope)

		if haveSlope {
			relChange := math.Abs(slope-previousSlope) / math.Max(math.Abs(previousSlope), 1e-12)
			result.RelativeChanges = append(result.RelativeChanges, relChange)
			if relChange < cfg.Threshold {
				result.Converged = true
				result.ConvergencePoint = n
				return result, nil
			}
		}
		previousSlope = slope
		haveSlope = true

		if n >= cfg.MaxPoints {
			result.IterationLimitReached = true
			return result, nil
		}
		n += cfg.Step
	}
	result.IterationLimitReached = true
	return result, nil
}

// maxSlope evaluates the FRF at N points and returns the maximum
// absolute slope (finite difference) on mass_of_interest's magnitude
// curve (spec.md §4.8 step 1).
func maxSlope(ctx context.Context, cfg Config, n int) (float64, error) {
	sweep := frf.Sweep{
		Grid:        dva.FrequencyGrid{Start: cfg.OmegaStart, End: cfg.OmegaEnd, N: n},
		MassTargets: cfg.MassTargets,
	}
	result, err := frf.Evaluate(ctx, cfg.System, sweep, cfg.WorkerCount)
	if err != nil {
		return 0, dvaerr.Wrap(dvaerr.NumericFailure, err, "frf evaluation failed at N=%d", n)
	}
	magnitude := result.Masses[cfg.MassOfInterest].Magnitude
	omega := sweep.Grid.Values()

	maxAbsSlope := 0.0
	for i := 1; i < len(magnitude); i++ {
		dOmega := omega[i] - omega[i-1]
		if dOmega == 0 {
			continue
		}
		slope := math.Abs((magnitude[i] - magnitude[i-1]) / dOmega)
		if slope > maxAbsSlope {
			maxAbsSlope = slope
		}
	}
	return maxAbsSlope, nil
}
