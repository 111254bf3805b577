// Package de implements differential evolution with rand/1 and best/1
// mutation strategies and greedy replacement (spec.md §4.5), grounded on
// the teacher's population-loop shape (mayfly.go's Optimize) generalized
// to DE's mutate/crossover/select cycle in place of the Mayfly-specific
// velocity update.
package de

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

// Strategy selects the mutation-vector construction rule.
type Strategy int

const (
	// Rand1 is DE/rand/1: donor = x_r1 + F*(x_r2 - x_r3).
	Rand1 Strategy = iota
	// Best1 is DE/best/1: donor = x_best + F*(x_r1 - x_r2).
	Best1
)

// Config is the DE-specific configuration.
type Config struct {
	engine.RunConfig
	Strategy Strategy
	F        float64 // differential weight
	CR       float64 // crossover probability
	Tol      float64 // stop once best_fitness <= Tol (0 disables)
}

type member struct {
	x       []float64
	fitness float64
}

// DE is a differential evolution engine.
type DE struct {
	cfg Config
}

// New constructs a DE engine, filling in spec.md-typical defaults.
func New(cfg Config) *DE {
	if cfg.F == 0 {
		cfg.F = 0.8
	}
	if cfg.CR == 0 {
		cfg.CR = 0.9
	}
	return &DE{cfg: cfg}
}

func (d *DE) Name() string { return "de" }

// Run executes DE to completion or cancellation (spec.md §4.5).
func (d *DE) Run(ctx context.Context) (engine.Result, error) {
	cfg := d.cfg
	if cfg.PopSize < 4 {
		return engine.Result{}, dvaerr.New(dvaerr.InvalidInput, "DE requires a population of at least 4, got %d", cfg.PopSize)
	}
	sink := engine.SinkOrNull(cfg.Sink)
	r := rng.New(cfg.Seed)
	abort := engine.AbortChecker(ctx)

	pop := make([]member, cfg.PopSize)
	for i := range pop {
		x := rng.UnifVec(0, 1, dva.NumDVAParams, r)
		for j := range x {
			if cfg.Fixed[j] {
				x[j] = cfg.Bounds.Low[j]
				continue
			}
			x[j] = cfg.Bounds.Low[j] + x[j]*(cfg.Bounds.High[j]-cfg.Bounds.Low[j])
		}
		pop[i] = member{x: x, fitness: cfg.Objective(x)}
	}
	best := bestMember(pop)

	trace := dva.RunTrace{SystemInfo: dva.CurrentSystemInfo()}
	gen := 0
	for ; gen < cfg.MaxGenerations; gen++ {
		if abort() {
			break
		}
		if cfg.Tol > 0 && best.fitness <= cfg.Tol {
			break
		}
		genStart := time.Now()

		mutStart := genStart
		donors := make([][]float64, len(pop))
		for i := range pop {
			donors[i] = d.mutate(pop, i, best, cfg, r)
		}
		mutElapsed := time.Since(mutStart).Seconds()

		crossStart := time.Now()
		trials := make([][]float64, len(pop))
		for i := range pop {
			trial := crossover(pop[i].x, donors[i], cfg.CR, r)
			cfg.Bounds.Clip(trial, cfg.Fixed)
			trials[i] = trial
		}
		crossElapsed := time.Since(crossStart).Seconds()

		evalStart := time.Now()
		for i := range pop {
			trialFitness := cfg.Objective(trials[i])
			if trialFitness <= pop[i].fitness {
				pop[i] = member{x: trials[i], fitness: trialFitness}
				if trialFitness < best.fitness {
					best = pop[i]
				}
			}
		}
		evalElapsed := time.Since(evalStart).Seconds()

		mean, std := meanStd(pop)
		trace.FitnessHistory = append(trace.FitnessHistory, fitnessSnapshot(pop))
		trace.MeanFitnessHistory = append(trace.MeanFitnessHistory, mean)
		trace.StdFitnessHistory = append(trace.StdFitnessHistory, std)
		trace.BestFitnessPerGen = append(trace.BestFitnessPerGen, best.fitness)
		trace.BestIndividualPerGen = append(trace.BestIndividualPerGen, append([]float64(nil), best.x...))
		trace.DiversityHistory = append(trace.DiversityHistory, std)
		trace.EvaluationTimes = append(trace.EvaluationTimes, evalElapsed)
		trace.CrossoverTimes = append(trace.CrossoverTimes, crossElapsed)
		trace.MutationTimes = append(trace.MutationTimes, mutElapsed)
		trace.SelectionTimes = append(trace.SelectionTimes, 0)
		sink.Event(dva.ProgressEvent{
			Generation: gen, BestFitness: best.fitness, MeanFitness: mean, StdFitness: std, Diversity: std,
			OpTimings: dva.OpTimings{Evaluation: evalElapsed, Crossover: crossElapsed, Mutation: mutElapsed},
		})
	}

	return engine.Result{BestSolution: best.x, BestFitness: best.fitness, Trace: trace, Generations: gen}, nil
}

func fitnessSnapshot(pop []member) []float64 {
	out := make([]float64, len(pop))
	for i, m := range pop {
		out[i] = m.fitness
	}
	return out
}

func (d *DE) mutate(pop []member, i int, best member, cfg Config, r *rand.Rand) []float64 {
	n := dva.NumDVAParams
	donor := make([]float64, n)
	r1, r2, r3 := distinctIndices(len(pop), i, r)

	switch cfg.Strategy {
	case Best1:
		for j := 0; j < n; j++ {
			donor[j] = best.x[j] + cfg.F*(pop[r1].x[j]-pop[r2].x[j])
		}
	default: // Rand1
		for j := 0; j < n; j++ {
			donor[j] = pop[r1].x[j] + cfg.F*(pop[r2].x[j]-pop[r3].x[j])
		}
	}
	return donor
}

func distinctIndices(n, exclude int, r *rand.Rand) (int, int, int) {
	pick := func(taken map[int]bool) int {
		for {
			c := r.Intn(n)
			if c != exclude && !taken[c] {
				return c
			}
		}
	}
	taken := map[int]bool{}
	a := pick(taken)
	taken[a] = true
	b := pick(taken)
	taken[b] = true
	c := pick(taken)
	return a, b, c
}

func crossover(target, donor []float64, cr float64, r *rand.Rand) []float64 {
	n := len(target)
	trial := make([]float64, n)
	jRand := r.Intn(n)
	for j := 0; j < n; j++ {
		if j == jRand || r.Float64() < cr {
			trial[j] = donor[j]
		} else {
			trial[j] = target[j]
		}
	}
	return trial
}

func bestMember(pop []member) member {
	best := pop[0]
	for _, m := range pop[1:] {
		if m.fitness < best.fitness {
			best = m
		}
	}
	return best
}

func meanStd(pop []member) (float64, float64) {
	n := float64(len(pop))
	mean := 0.0
	for _, m := range pop {
		mean += m.fitness
	}
	mean /= n
	variance := 0.0
	for _, m := range pop {
		diff := m.fitness - mean
		variance += diff * diff
	}
	variance /= n
	return mean, math.Sqrt(variance)
}
