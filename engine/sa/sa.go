// Package sa implements simulated annealing with geometric cooling and
// Metropolis acceptance (spec.md §4.5), generalized from the teacher's
// AnnealingScheduler (annealing.go) and its acceptanceProbability helper
// from the GSASMA variant to a standalone single-point SA engine over
// the 48-length DVA vector.
package sa

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/engine"
	"github.com/devana-go/dva/internal/rng"
)

// Config is the SA-specific configuration.
type Config struct {
	engine.RunConfig
	InitialTemperature float64
	CoolingRate        float64 // geometric: T(k+1) = T(k) * CoolingRate
	StepSize           float64 // fraction of coordinate range used as proposal std dev
	Tolerance          float64 // stop once best_fitness <= Tolerance (0 disables)
}

// SA is a simulated-annealing engine.
type SA struct {
	cfg Config
}

// New constructs an SA engine with spec.md-typical defaults.
func New(cfg Config) *SA {
	if cfg.InitialTemperature == 0 {
		cfg.InitialTemperature = 100
	}
	if cfg.CoolingRate == 0 {
		cfg.CoolingRate = 0.95
	}
	if cfg.StepSize == 0 {
		cfg.StepSize = 0.1
	}
	return &SA{cfg: cfg}
}

func (s *SA) Name() string { return "sa" }

// Run executes SA to completion or cancellation (spec.md §4.5). SA's
// "population" is conceptually size one; MaxGenerations from RunConfig
// is reinterpreted as total iterations and PopSize is not used.
func (s *SA) Run(ctx context.Context) (engine.Result, error) {
	cfg := s.cfg
	if cfg.MaxGenerations <= 0 {
		return engine.Result{}, dvaerr.New(dvaerr.InvalidInput, "max generations must be > 0")
	}
	sink := engine.SinkOrNull(cfg.Sink)
	r := rng.New(cfg.Seed)
	abort := engine.AbortChecker(ctx)

	current := randomVector(cfg.Bounds, cfg.Fixed, r)
	currentEnergy := cfg.Objective(current)
	best := append([]float64(nil), current...)
	bestEnergy := currentEnergy
	temperature := cfg.InitialTemperature

	trace := dva.RunTrace{SystemInfo: dva.CurrentSystemInfo()}
	gen := 0
	for ; gen < cfg.MaxGenerations; gen++ {
		if abort() {
			break
		}
		if cfg.Tolerance > 0 && bestEnergy <= cfg.Tolerance {
			break
		}
		genStart := time.Now()

		candidate := propose(current, cfg.Bounds, cfg.Fixed, s.cfg.StepSize, r)
		evalStart := time.Now()
		candidateEnergy := cfg.Objective(candidate)
		evalElapsed := time.Since(evalStart).Seconds()

		if acceptanceProbability(currentEnergy, candidateEnergy, temperature) >= r.Float64() {
			current = candidate
			currentEnergy = candidateEnergy
			if currentEnergy < bestEnergy {
				best = append([]float64(nil), current...)
				bestEnergy = currentEnergy
			}
		}
		temperature *= cfg.CoolingRate
		if temperature < 1e-10 {
			temperature = 1e-10
		}

		trace.FitnessHistory = append(trace.FitnessHistory, []float64{currentEnergy})
		trace.MeanFitnessHistory = append(trace.MeanFitnessHistory, currentEnergy)
		trace.StdFitnessHistory = append(trace.StdFitnessHistory, temperature)
		trace.BestFitnessPerGen = append(trace.BestFitnessPerGen, bestEnergy)
		trace.BestIndividualPerGen = append(trace.BestIndividualPerGen, append([]float64(nil), best...))
		trace.DiversityHistory = append(trace.DiversityHistory, temperature)
		trace.EvaluationTimes = append(trace.EvaluationTimes, evalElapsed)
		trace.SelectionTimes = append(trace.SelectionTimes, 0)
		trace.CrossoverTimes = append(trace.CrossoverTimes, 0)
		trace.MutationTimes = append(trace.MutationTimes, time.Since(genStart).Seconds()-evalElapsed)
		sink.Event(dva.ProgressEvent{Generation: gen, BestFitness: bestEnergy, MeanFitness: currentEnergy, StdFitness: temperature, Diversity: temperature, OpTimings: dva.OpTimings{Evaluation: evalElapsed}})
	}

	return engine.Result{BestSolution: best, BestFitness: bestEnergy, Trace: trace, Generations: gen}, nil
}

func randomVector(b dva.Bounds, fixed dva.FixedMask, r *rand.Rand) []float64 {
	x := make([]float64, dva.NumDVAParams)
	for i := range x {
		if fixed[i] {
			x[i] = b.Low[i]
			continue
		}
		x[i] = rng.Unif(b.Low[i], b.High[i], r)
	}
	return x
}

func propose(x []float64, b dva.Bounds, fixed dva.FixedMask, stepSize float64, r *rand.Rand) []float64 {
	y := append([]float64(nil), x...)
	for i := range y {
		if fixed[i] {
			continue
		}
		sigma := stepSize * (b.High[i] - b.Low[i])
		y[i] += sigma * rng.Normal(r)
	}
	b.Clip(y, fixed)
	return y
}

// acceptanceProbability implements the Metropolis criterion: always
// accept an improving move, otherwise accept with probability
// exp(-(newEnergy-oldEnergy)/temperature).
func acceptanceProbability(oldEnergy, newEnergy, temperature float64) float64 {
	if newEnergy < oldEnergy {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-(newEnergy - oldEnergy) / temperature)
}
