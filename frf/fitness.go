package frf

import (
	"context"
	"math"

	"github.com/devana-go/dva"
)

// FitnessConfig bundles everything a Fitness closure needs to turn a
// 48-length DVA vector into a scalar objective (spec.md §4.4): the main
// parameters, the sweep to evaluate, the sparsity penalty coefficient
// alpha, and the worker-pool size to evaluate with.
type FitnessConfig struct {
	Main        dva.MainParams
	Sweep       Sweep
	Alpha       float64
	WorkerCount int
}

// Fitness builds the x -> float64 objective every engine consumes
// (spec.md §4.4), implementing the exact formula from
// GAWorker.evaluate_individual: fit = |singular_response - 1| +
// alpha * sum(|x_i|), with the 1e6 penalty substituted whenever the
// underlying FRF evaluation produces a non-finite singular response.
func Fitness(cfg FitnessConfig) dva.ObjectiveFunc {
	return func(x []float64) float64 {
		sys, err := Assemble(cfg.Main, x)
		if err != nil {
			return dva.PenaltyValue
		}
		result, err := Evaluate(context.Background(), sys, cfg.Sweep, cfg.WorkerCount)
		if err != nil {
			return dva.PenaltyValue
		}
		if math.IsNaN(result.SingularResponse) || math.IsInf(result.SingularResponse, 0) {
			return dva.PenaltyValue
		}

		primary := math.Abs(result.SingularResponse - 1)
		sparsity := 0.0
		for _, v := range x {
			sparsity += math.Abs(v)
		}
		sparsity *= cfg.Alpha

		return dva.SanitizeFitness(primary + sparsity)
	}
}

// MultiObjectiveConfig bundles what MultiFitness needs to build the four
// objectives spec.md §4.5.6 defines for NSGA-II: performance, a
// tau-thresholded sparsity count plus magnitude, a per-coordinate cost
// sum, and the aggregated percentage error already computed by Evaluate.
type MultiObjectiveConfig struct {
	Main        dva.MainParams
	Sweep       Sweep
	SparsityTau float64 // |x_i| > tau counts toward the count term
	SparsityA   float64 // weight on the count term
	SparsityB   float64 // weight on the magnitude term
	CostWeights [dva.NumDVAParams]float64
	CostThresh  float64
	WorkerCount int
}

// MultiFitness builds the x -> [4]float64 objective vector NSGA-II
// minimizes, generalizing Fitness's single performance term with the
// sparsity, cost, and aggregated-percentage-error objectives spec.md
// §4.5.6 names. Any infeasible or non-finite evaluation substitutes
// dva.PenaltyValue into every objective, matching Fitness's penalty
// behavior.
func MultiFitness(cfg MultiObjectiveConfig) func(x []float64) [4]float64 {
	return func(x []float64) [4]float64 {
		penalty := [4]float64{dva.PenaltyValue, dva.PenaltyValue, dva.PenaltyValue, dva.PenaltyValue}

		sys, err := Assemble(cfg.Main, x)
		if err != nil {
			return penalty
		}
		result, err := Evaluate(context.Background(), sys, cfg.Sweep, cfg.WorkerCount)
		if err != nil {
			return penalty
		}
		if math.IsNaN(result.SingularResponse) || math.IsInf(result.SingularResponse, 0) {
			return penalty
		}

		performance := math.Abs(result.SingularResponse - 1)

		count, magnitude := 0.0, 0.0
		for _, v := range x {
			a := math.Abs(v)
			if a > cfg.SparsityTau {
				count++
			}
			magnitude += a
		}
		sparsity := cfg.SparsityA*count + cfg.SparsityB*magnitude

		cost := 0.0
		for i, v := range x {
			if math.Abs(v) > cfg.CostThresh {
				cost += cfg.CostWeights[i]
			}
		}

		aggregatedError := 0.0
		for _, pct := range result.PercentageDiffs {
			aggregatedError += pct
		}
		if len(result.PercentageDiffs) > 0 {
			aggregatedError /= float64(len(result.PercentageDiffs))
		}

		return [4]float64{
			dva.SanitizeFitness(performance),
			dva.SanitizeFitness(sparsity),
			dva.SanitizeFitness(cost),
			dva.SanitizeFitness(aggregatedError),
		}
	}
}
