// Package engine defines the shared façade every optimization algorithm
// (package engine/ga, engine/pso, engine/de, engine/sa, engine/cmaes,
// engine/nsga2) implements, so the benchmark harness and the CLI can
// drive any of the six engines identically (spec.md §4.5-4.6).
package engine

import (
	"context"

	"github.com/devana-go/dva"
)

// RunConfig is the configuration every engine accepts, regardless of its
// algorithm-specific knobs (those live in each sub-package's own Config
// type, embedding RunConfig).
type RunConfig struct {
	Bounds         dva.Bounds
	Fixed          dva.FixedMask
	Objective      dva.ObjectiveFunc
	Seed           int64
	MaxGenerations int
	PopSize        int
	Sink           dva.ProgressSink
	WorkerCount    int
}

// Result is the outcome of one engine run: the best solution found, its
// fitness, and the generation-by-generation trace used both for live
// reporting and for benchmark post-processing (spec.md §3 "Benchmark
// record").
type Result struct {
	BestSolution []float64
	BestFitness  float64
	Trace        dva.RunTrace
	Generations  int
}

// Engine is the uniform contract the benchmark harness and CLI drive
// (spec.md §4.5): Run executes one seeded optimization to completion or
// until ctx is canceled, in which case it returns the best result found
// so far with a nil error; cancellation is not reported as a
// dvaerr.Aborted error.
type Engine interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// AbortChecker lets a long-running generational loop check for
// cancellation only at generation boundaries, preserving RNG determinism
// (spec.md §5): engine-level decisions never consume randomness from a
// context-cancellation race.
func AbortChecker(ctx context.Context) func() bool {
	return func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
}

// SinkOrNull returns sink if non-nil, otherwise a no-op sink, so every
// engine can call Text/Event unconditionally.
func SinkOrNull(sink dva.ProgressSink) dva.ProgressSink {
	if sink == nil {
		return dva.NullSink{}
	}
	return sink
}
