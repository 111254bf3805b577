// Package pso implements particle swarm optimization with selectable
// neighborhood topology, boundary handling, and adaptive inertia
// (spec.md §4.5.2), grounded on original_source's PSOWorker.py velocity/
// position update and global-best tracking, generalized to the ring,
// von-Neumann, and random topologies and the three boundary policies
// spec.md adds beyond the single global-best reference implementation.
package pso

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/engine"
	"github.com/devana-go/dva/internal/rng"
)

// Topology selects how a particle's "neighborhood best" is determined.
type Topology int

const (
	// Global gives every particle the same swarm-wide best.
	Global Topology = iota
	// Ring restricts each particle to its two immediate neighbors by index.
	Ring
	// VonNeumann uses a 2D-grid 4-neighbor topology over the swarm index.
	VonNeumann
	// Random rewires each particle's neighbor set on every iteration.
	Random
)

// BoundaryPolicy selects how a particle that leaves the bounds is
// handled.
type BoundaryPolicy int

const (
	// Absorbing clamps the particle to the bound and zeroes its velocity.
	Absorbing BoundaryPolicy = iota
	// Reflecting mirrors the particle back off the bound it crossed
	// (clamping if the mirror overshoots the opposite bound) and reverses
	// velocity.
	Reflecting
	// Invisible lets the particle fly out of bounds but its fitness is
	// never evaluated nor allowed to become personal/global best until
	// it re-enters.
	Invisible
)

// Config is the PSO-specific configuration.
type Config struct {
	engine.RunConfig
	Topology        Topology
	Boundary        BoundaryPolicy
	InertiaStart    float64 // w at iteration 0
	InertiaEnd      float64 // floor w never decays past, when WDamping is set
	WDamping        bool    // multiplicative per-iteration inertia decay
	WDampingRatio   float64 // w *= WDampingRatio each iteration, when WDamping is set
	Cognitive       float64 // c1
	Social          float64 // c2
	VMaxFactor      float64 // clip |v| <= VMaxFactor*(high-low) per coordinate
	MutationRate    float64 // probability a particle's coordinate gets a random re-roll each iteration
	Tolerance       float64 // stop when global best fitness <= Tolerance
	StagnationLimit int     // generations without improvement before a stagnation-escape kick

	// EarlyStoppingTol/EarlyStoppingIters implement a relative-progress
	// stop distinct from the absolute Tolerance check above: if gbest has
	// not improved by more than EarlyStoppingTol over the last
	// EarlyStoppingIters iterations, the run halts (spec.md §4.5.2).
	EarlyStoppingTol   float64
	EarlyStoppingIters int

	SobolInit bool // use a quasi-random Halton sequence (a Sobol stand-in) for initial positions
}

type particle struct {
	position     []float64
	velocity     []float64
	bestPosition []float64
	bestFitness  float64
	outOfBounds  bool
}

// PSO is a particle swarm optimizer.
type PSO struct {
	cfg Config
}

// New constructs a PSO engine, filling in spec.md defaults for any
// zero-valued tunable.
func New(cfg Config) *PSO {
	if cfg.InertiaStart == 0 && cfg.InertiaEnd == 0 {
		cfg.InertiaStart, cfg.InertiaEnd = 0.9, 0.4
	}
	if cfg.Cognitive == 0 {
		cfg.Cognitive = 1.5
	}
	if cfg.Social == 0 {
		cfg.Social = 1.5
	}
	if cfg.StagnationLimit == 0 {
		cfg.StagnationLimit = 20
	}
	if cfg.VMaxFactor == 0 {
		cfg.VMaxFactor = 0.2
	}
	if cfg.WDamping && cfg.WDampingRatio == 0 {
		cfg.WDampingRatio = 0.99
	}
	if cfg.EarlyStoppingIters == 0 {
		cfg.EarlyStoppingIters = 30
	}
	return &PSO{cfg: cfg}
}

func (p *PSO) Name() string { return "pso" }

// Run executes the PSO swarm to completion, early-stop tolerance,
// or cancellation (spec.md §4.5.2).
func (p *PSO) Run(ctx context.Context) (engine.Result, error) {
	cfg := p.cfg
	if cfg.PopSize <= 0 {
		return engine.Result{}, dvaerr.New(dvaerr.InvalidInput, "swarm size must be > 0")
	}
	sink := engine.SinkOrNull(cfg.Sink)
	r := rng.New(cfg.Seed)
	abort := engine.AbortChecker(ctx)

	vmax := make([]float64, dva.NumDVAParams)
	for j := 0; j < dva.NumDVAParams; j++ {
		vmax[j] = cfg.VMaxFactor * (cfg.Bounds.High[j] - cfg.Bounds.Low[j])
	}

	swarm := make([]particle, cfg.PopSize)
	for i := range swarm {
		swarm[i] = p.initParticle(cfg, r, i)
		swarm[i].bestFitness = cfg.Objective(swarm[i].position)
		swarm[i].bestPosition = append([]float64(nil), swarm[i].position...)
	}

	globalBestIdx := bestIndex(swarm)
	globalBest := append([]float64(nil), swarm[globalBestIdx].bestPosition...)
	globalBestFitness := swarm[globalBestIdx].bestFitness

	trace := dva.RunTrace{SystemInfo: dva.CurrentSystemInfo()}
	stagnation := 0
	w := cfg.InertiaStart
	earlyStopHistory := make([]float64, 0, cfg.EarlyStoppingIters+1)

	gen := 0
	for ; gen < cfg.MaxGenerations; gen++ {
		if abort() {
			break
		}
		genStart := time.Now()

		improved := false
		for i := range swarm {
			neighborBest := p.neighborhoodBest(swarm, i, globalBest, r)
			for j := 0; j < dva.NumDVAParams; j++ {
				if cfg.Fixed[j] {
					swarm[i].velocity[j] = 0
					swarm[i].position[j] = cfg.Bounds.Low[j]
					continue
				}
				r1, r2 := r.Float64(), r.Float64()
				cognitive := cfg.Cognitive * r1 * (swarm[i].bestPosition[j] - swarm[i].position[j])
				social := cfg.Social * r2 * (neighborBest[j] - swarm[i].position[j])
				v := w*swarm[i].velocity[j] + cognitive + social
				if v > vmax[j] {
					v = vmax[j]
				} else if v < -vmax[j] {
					v = -vmax[j]
				}
				swarm[i].velocity[j] = v
				swarm[i].position[j] += v
				p.applyBoundary(&swarm[i], j, cfg.Bounds)
			}

			if cfg.MutationRate > 0 {
				for j := 0; j < dva.NumDVAParams; j++ {
					if cfg.Fixed[j] || r.Float64() >= cfg.MutationRate {
						continue
					}
					swarm[i].position[j] = rng.Unif(cfg.Bounds.Low[j], cfg.Bounds.High[j], r)
					swarm[i].velocity[j] = 0
				}
			}

			swarm[i].outOfBounds = false
			for j := 0; j < dva.NumDVAParams; j++ {
				if swarm[i].position[j] < cfg.Bounds.Low[j] || swarm[i].position[j] > cfg.Bounds.High[j] {
					swarm[i].outOfBounds = true
					break
				}
			}
			if swarm[i].outOfBounds && cfg.Boundary == Invisible {
				continue
			}
			fitness := cfg.Objective(swarm[i].position)
			if fitness < swarm[i].bestFitness {
				swarm[i].bestFitness = fitness
				swarm[i].bestPosition = append([]float64(nil), swarm[i].position...)
				if fitness < globalBestFitness {
					globalBestFitness = fitness
					globalBest = append([]float64(nil), swarm[i].position...)
					improved = true
				}
			}
		}

		if improved {
			stagnation = 0
		} else {
			stagnation++
			if stagnation >= cfg.StagnationLimit {
				p.escapeStagnation(swarm, cfg, r)
				stagnation = 0
			}
		}

		if cfg.WDamping {
			w *= cfg.WDampingRatio
			if w < cfg.InertiaEnd {
				w = cfg.InertiaEnd
			}
		}

		mean, std := meanStdFitness(swarm)
		elapsed := time.Since(genStart).Seconds()
		trace.FitnessHistory = append(trace.FitnessHistory, fitnessSnapshot(swarm))
		trace.MeanFitnessHistory = append(trace.MeanFitnessHistory, mean)
		trace.StdFitnessHistory = append(trace.StdFitnessHistory, std)
		trace.BestFitnessPerGen = append(trace.BestFitnessPerGen, globalBestFitness)
		trace.BestIndividualPerGen = append(trace.BestIndividualPerGen, append([]float64(nil), globalBest...))
		trace.DiversityHistory = append(trace.DiversityHistory, std)
		trace.EvaluationTimes = append(trace.EvaluationTimes, elapsed)
		trace.SelectionTimes = append(trace.SelectionTimes, 0)
		trace.CrossoverTimes = append(trace.CrossoverTimes, 0)
		trace.MutationTimes = append(trace.MutationTimes, 0)
		sink.Event(dva.ProgressEvent{
			Generation:  gen,
			BestFitness: globalBestFitness,
			MeanFitness: mean,
			StdFitness:  std,
			Diversity:   std,
			OpTimings:   dva.OpTimings{Evaluation: elapsed},
		})

		if cfg.Tolerance > 0 && globalBestFitness <= cfg.Tolerance {
			sink.Text("convergence tolerance reached")
			gen++
			break
		}

		if cfg.EarlyStoppingTol > 0 {
			earlyStopHistory = append(earlyStopHistory, globalBestFitness)
			if len(earlyStopHistory) > cfg.EarlyStoppingIters {
				earlyStopHistory = earlyStopHistory[len(earlyStopHistory)-cfg.EarlyStoppingIters-1:]
				oldest := earlyStopHistory[0]
				if oldest-globalBestFitness < cfg.EarlyStoppingTol {
					sink.Text("early stopping: insufficient improvement")
					gen++
					break
				}
			}
		}
	}

	return engine.Result{
		BestSolution: globalBest,
		BestFitness:  globalBestFitness,
		Trace:        trace,
		Generations:  gen,
	}, nil
}

func fitnessSnapshot(swarm []particle) []float64 {
	out := make([]float64, len(swarm))
	for i, part := range swarm {
		out[i] = part.bestFitness
	}
	return out
}

func (p *PSO) initParticle(cfg Config, r *rand.Rand, index int) particle {
	pos := make([]float64, dva.NumDVAParams)
	vel := make([]float64, dva.NumDVAParams)
	for j := 0; j < dva.NumDVAParams; j++ {
		if cfg.Fixed[j] {
			pos[j] = cfg.Bounds.Low[j]
			continue
		}
		if cfg.SobolInit {
			pos[j] = haltonSample(index+1, primeForDim(j), cfg.Bounds.Low[j], cfg.Bounds.High[j])
		} else {
			pos[j] = rng.Unif(cfg.Bounds.Low[j], cfg.Bounds.High[j], r)
		}
		delta := cfg.Bounds.High[j] - cfg.Bounds.Low[j]
		if delta != 0 {
			vel[j] = rng.Unif(-delta, delta, r)
		}
	}
	return particle{position: pos, velocity: vel}
}

func (p *PSO) applyBoundary(part *particle, j int, b dva.Bounds) {
	if part.position[j] >= b.Low[j] && part.position[j] <= b.High[j] {
		part.outOfBounds = false
		return
	}
	switch p.cfg.Boundary {
	case Reflecting:
		if part.position[j] < b.Low[j] {
			part.position[j] = b.Low[j] + (b.Low[j] - part.position[j])
		} else {
			part.position[j] = b.High[j] - (part.position[j] - b.High[j])
		}
		part.velocity[j] = -part.velocity[j]
		if part.position[j] < b.Low[j] {
			part.position[j] = b.Low[j]
		} else if part.position[j] > b.High[j] {
			part.position[j] = b.High[j]
		}
	case Invisible:
		part.outOfBounds = true
	default: // Absorbing
		if part.position[j] < b.Low[j] {
			part.position[j] = b.Low[j]
		} else {
			part.position[j] = b.High[j]
		}
		part.velocity[j] = 0
	}
}

func (p *PSO) neighborhoodBest(swarm []particle, i int, globalBest []float64, r *rand.Rand) []float64 {
	switch p.cfg.Topology {
	case Ring:
		n := len(swarm)
		left, right := (i-1+n)%n, (i+1)%n
		return bestAmong(swarm, i, left, right)
	case VonNeumann:
		n := len(swarm)
		side := int(math.Sqrt(float64(n)))
		if side < 1 {
			side = 1
		}
		row, col := i/side, i%side
		up := ((row-1+side)%side)*side + col
		down := ((row+1)%side)*side + col
		left := row*side + (col-1+side)%side
		right := row*side + (col+1)%side
		candidates := []int{i, up % n, down % n, left % n, right % n}
		best := candidates[0]
		for _, c := range candidates[1:] {
			if swarm[c].bestFitness < swarm[best].bestFitness {
				best = c
			}
		}
		return swarm[best].bestPosition
	case Random:
		n := len(swarm)
		a, b := r.Intn(n), r.Intn(n)
		return bestAmong(swarm, i, a, b)
	default: // Global
		return globalBest
	}
}

func bestAmong(swarm []particle, indices ...int) []float64 {
	best := indices[0]
	for _, idx := range indices[1:] {
		if swarm[idx].bestFitness < swarm[best].bestFitness {
			best = idx
		}
	}
	return swarm[best].bestPosition
}

// escapeStagnation re-randomizes the worst half of the swarm's velocities
// to kick the population out of a stalled optimum (spec.md §4.5.2
// "stagnation escape").
func (p *PSO) escapeStagnation(swarm []particle, cfg Config, r *rand.Rand) {
	order := make([]int, len(swarm))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return swarm[order[a]].bestFitness > swarm[order[b]].bestFitness })
	for _, i := range order[:(len(swarm)+1)/2] {
		for j := 0; j < dva.NumDVAParams; j++ {
			if cfg.Fixed[j] {
				continue
			}
			delta := cfg.Bounds.High[j] - cfg.Bounds.Low[j]
			swarm[i].velocity[j] = rng.Unif(-delta, delta, r)
		}
	}
}

func bestIndex(swarm []particle) int {
	best := 0
	for i, part := range swarm[1:] {
		if part.bestFitness < swarm[best].bestFitness {
			best = i + 1
		}
	}
	return best
}

func meanStdFitness(swarm []particle) (float64, float64) {
	n := float64(len(swarm))
	mean := 0.0
	for _, part := range swarm {
		mean += part.bestFitness
	}
	mean /= n
	variance := 0.0
	for _, part := range swarm {
		d := part.bestFitness - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

// haltonSample generates the Halton low-discrepancy sequence value for
// the given index and prime base, scaled into [low, high] (spec.md §4.5.2
// "optional Sobol/Halton init").
func haltonSample(index, base int, low, high float64) float64 {
	result, f := 0.0, 1.0
	i := index
	for i > 0 {
		f /= float64(base)
		result += f * float64(i%base)
		i /= base
	}
	return low + result*(high-low)
}

var smallPrimes = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

func primeForDim(dim int) int {
	return smallPrimes[dim%len(smallPrimes)]
}
