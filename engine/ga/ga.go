// Package ga implements a tournament-selection, blend-crossover genetic
// algorithm over the 48-length DVA parameter vector (spec.md §4.5.1),
// grounded on the teacher's Mayfly population loop (mayfly.go's
// Optimize) and its Crossover/MutateGaussian operators (operators.go),
// generalized from the Mayfly-specific update rule to a classic
// tournament-3 / blend-alpha=0.5 / uniform-mutation GA with optional
// adaptive crossover/mutation rates.
package ga

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

// BlendAlpha is the blend-crossover mixing coefficient (spec.md §4.5.1).
const BlendAlpha = 0.5

// MutationSpread is the uniform-mutation perturbation fraction of the
// coordinate range (spec.md §4.5.1: "±10%").
const MutationSpread = 0.10

// TournamentSize is the selection pressure (spec.md §4.5.1: "tournament-3").
const TournamentSize = 3

// adaptStep is the fraction of the remaining distance to a rate bound
// each adaptive-rate drift step covers.
const adaptStep = 0.1

// Config is the GA-specific configuration, embedding the shared engine
// configuration.
type Config struct {
	engine.RunConfig
	Cxpb         float64 // crossover probability, gates blend-crossover per offspring pair
	MutationRate float64 // indpb: probability a given offspring coordinate mutates
	Tolerance    float64 // stop once best_fitness <= Tolerance (0 disables)

	// Adaptive rates (optional, spec.md §4.5.1): when enabled, cxpb and
	// mutpb drift toward their "exploration" bound after StagnationLimit
	// generations without improvement, and drift back toward their
	// "exploitation" bound as soon as the run improves again.
	AdaptiveRates   bool
	StagnationLimit int
	CxpbMin         float64
	CxpbMax         float64
	MutpbMin        float64
	MutpbMax        float64
}

type individual struct {
	x       []float64
	fitness float64
}

// GA is a tournament-3, blend-crossover, uniform-mutation genetic
// algorithm engine.
type GA struct {
	cfg Config
}

// New constructs a GA engine from cfg.
func New(cfg Config) *GA {
	if cfg.MutationRate == 0 {
		cfg.MutationRate = 0.1
	}
	if cfg.Cxpb == 0 {
		cfg.Cxpb = 0.9
	}
	if cfg.AdaptiveRates {
		if cfg.StagnationLimit <= 0 {
			cfg.StagnationLimit = 10
		}
		if cfg.CxpbMax == 0 {
			cfg.CxpbMax = cfg.Cxpb
		}
		if cfg.MutpbMin == 0 {
			cfg.MutpbMin = cfg.MutationRate
		}
		if cfg.CxpbMin == 0 {
			cfg.CxpbMin = cfg.CxpbMax * 0.5
		}
		if cfg.MutpbMax == 0 {
			cfg.MutpbMax = math.Min(1, cfg.MutpbMin*3)
		}
	}
	return &GA{cfg: cfg}
}

func (g *GA) Name() string { return "ga" }

// Run executes the GA to completion, tolerance, or cancellation (spec.md
// §4.5.1).
func (g *GA) Run(ctx context.Context) (engine.Result, error) {
	cfg := g.cfg
	if cfg.PopSize <= 0 {
		return engine.Result{}, dvaerr.New(dvaerr.InvalidInput, "pop size must be > 0")
	}
	sink := engine.SinkOrNull(cfg.Sink)
	r := rng.New(cfg.Seed)
	abort := engine.AbortChecker(ctx)

	pop := make([]individual, cfg.PopSize)
	for i := range pop {
		x := randomVector(cfg.Bounds, cfg.Fixed, r)
		pop[i] = individual{x: x, fitness: cfg.Objective(x)}
	}

	best := bestOf(pop)
	trace := dva.RunTrace{SystemInfo: dva.CurrentSystemInfo()}

	cxpb, mutpb := cfg.Cxpb, cfg.MutationRate
	stagnant := 0

	gen := 0
	for ; gen < cfg.MaxGenerations; gen++ {
		if abort() {
			break
		}
		if cfg.Tolerance > 0 && best.fitness <= cfg.Tolerance {
			break
		}

		selectStart := time.Now()
		parents := make([]individual, cfg.PopSize)
		for i := range parents {
			parents[i] = tournamentSelect(pop, r)
		}
		selectElapsed := time.Since(selectStart).Seconds()

		crossStart := time.Now()
		crossed := make([]individual, 0, cfg.PopSize)
		for i := 0; i < cfg.PopSize; i += 2 {
			p1 := parents[i]
			p2 := parents[(i+1)%cfg.PopSize]
			if r.Float64() < cxpb {
				c1x, c2x := blendCrossover(p1.x, p2.x, cfg.Bounds, cfg.Fixed, r)
				crossed = append(crossed, individual{x: c1x}, individual{x: c2x})
			} else {
				crossed = append(crossed, individual{x: append([]float64(nil), p1.x...)}, individual{x: append([]float64(nil), p2.x...)})
			}
		}
		crossed = crossed[:cfg.PopSize]
		crossElapsed := time.Since(crossStart).Seconds()

		mutStart := time.Now()
		for i := range crossed {
			mutate(crossed[i].x, cfg.Bounds, cfg.Fixed, mutpb, r)
		}
		mutElapsed := time.Since(mutStart).Seconds()

		evalStart := time.Now()
		for i := range crossed {
			crossed[i].fitness = cfg.Objective(crossed[i].x)
		}
		evalElapsed := time.Since(evalStart).Seconds()
		pop = crossed

		genBest := bestOf(pop)
		improved := genBest.fitness < best.fitness
		if improved {
			best = genBest
			stagnant = 0
		} else {
			stagnant++
		}

		if cfg.AdaptiveRates {
			if improved {
				newCxpb := cxpb + (cfg.CxpbMax-cxpb)*adaptStep
				newMutpb := mutpb + (cfg.MutpbMin-mutpb)*adaptStep
				if newCxpb != cxpb || newMutpb != mutpb {
					trace.AdaptiveRatesHistory = append(trace.AdaptiveRatesHistory, dva.AdaptiveRateEvent{
						Generation: gen, OldCxpb: cxpb, NewCxpb: newCxpb,
						OldMutpb: mutpb, NewMutpb: newMutpb, AdaptationType: "Exploitation",
					})
				}
				cxpb, mutpb = newCxpb, newMutpb
			} else if stagnant >= cfg.StagnationLimit {
				newCxpb := cxpb + (cfg.CxpbMin-cxpb)*adaptStep
				newMutpb := mutpb + (cfg.MutpbMax-mutpb)*adaptStep
				if newCxpb != cxpb || newMutpb != mutpb {
					trace.AdaptiveRatesHistory = append(trace.AdaptiveRatesHistory, dva.AdaptiveRateEvent{
						Generation: gen, OldCxpb: cxpb, NewCxpb: newCxpb,
						OldMutpb: mutpb, NewMutpb: newMutpb, AdaptationType: "Exploration",
					})
				}
				cxpb, mutpb = newCxpb, newMutpb
			}
		}

		mean, std := meanStd(pop)
		trace.FitnessHistory = append(trace.FitnessHistory, fitnessSnapshot(pop))
		trace.MeanFitnessHistory = append(trace.MeanFitnessHistory, mean)
		trace.StdFitnessHistory = append(trace.StdFitnessHistory, std)
		trace.BestFitnessPerGen = append(trace.BestFitnessPerGen, best.fitness)
		trace.BestIndividualPerGen = append(trace.BestIndividualPerGen, append([]float64(nil), best.x...))
		trace.DiversityHistory = append(trace.DiversityHistory, std)
		trace.SelectionTimes = append(trace.SelectionTimes, selectElapsed)
		trace.CrossoverTimes = append(trace.CrossoverTimes, crossElapsed)
		trace.MutationTimes = append(trace.MutationTimes, mutElapsed)
		trace.EvaluationTimes = append(trace.EvaluationTimes, evalElapsed)

		sink.Event(dva.ProgressEvent{
			Generation:  gen,
			BestFitness: best.fitness,
			MeanFitness: mean,
			StdFitness:  std,
			Diversity:   std,
			OpTimings: dva.OpTimings{
				Evaluation: evalElapsed,
				Crossover:  crossElapsed,
				Mutation:   mutElapsed,
				Selection:  selectElapsed,
			},
		})
	}

	return engine.Result{
		BestSolution: best.x,
		BestFitness:  best.fitness,
		Trace:        trace,
		Generations:  gen,
	}, nil
}

func fitnessSnapshot(pop []individual) []float64 {
	out := make([]float64, len(pop))
	for i, ind := range pop {
		out[i] = ind.fitness
	}
	return out
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

func bestOf(pop []individual) individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness < best.fitness {
			best = ind
		}
	}
	return best
}

func meanStd(pop []individual) (float64, float64) {
	n := float64(len(pop))
	mean := 0.0
	for _, ind := range pop {
		mean += ind.fitness
	}
	mean /= n
	variance := 0.0
	for _, ind := range pop {
		d := ind.fitness - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

func tournamentSelect(pop []individual, r *rand.Rand) individual {
	best := pop[r.Intn(len(pop))]
	for i := 1; i < TournamentSize; i++ {
		cand := pop[r.Intn(len(pop))]
		if cand.fitness < best.fitness {
			best = cand
		}
	}
	return best
}

func blendCrossover(x1, x2 []float64, b dva.Bounds, fixed dva.FixedMask, r *rand.Rand) ([]float64, []float64) {
	n := len(x1)
	c1 := make([]float64, n)
	c2 := make([]float64, n)
	for i := 0; i < n; i++ {
		if fixed[i] {
			c1[i], c2[i] = b.Low[i], b.Low[i]
			continue
		}
		lo, hi := x1[i], x2[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		spread := BlendAlpha * (hi - lo)
		c1[i] = rng.Unif(lo-spread, hi+spread, r)
		c2[i] = rng.Unif(lo-spread, hi+spread, r)
	}
	b.Clip(c1, fixed)
	b.Clip(c2, fixed)
	return c1, c2
}

func mutate(x []float64, b dva.Bounds, fixed dva.FixedMask, rate float64, r *rand.Rand) {
	for i := range x {
		if fixed[i] {
			continue
		}
		if r.Float64() >= rate {
			continue
		}
		span := (b.High[i] - b.Low[i]) * MutationSpread
		x[i] += rng.Unif(-span, span, r)
	}
	b.Clip(x, fixed)
}
