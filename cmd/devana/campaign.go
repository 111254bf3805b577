package main

import (
	"context"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/config"
	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/engine"
	"github.com/devana-go/dva/frf"
)

// campaign bundles the pieces every `run-*` subcommand assembles from
// the shared --config document: bounds, the fitness function, and a
// base engine.RunConfig with the objective already wired in.
type campaign struct {
	doc       *config.Document
	bounds    dva.Bounds
	fixed     dva.FixedMask
	objective dva.ObjectiveFunc
}

func loadCampaign() (*campaign, error) {
	if err := requireConfigPath(); err != nil {
		return nil, err
	}
	doc, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	bounds, fixed, err := doc.Bounds.ToBounds()
	if err != nil {
		return nil, err
	}
	alpha := engineFloat(doc.Engine, "alpha", 0.01)
	objective := frf.Fitness(frf.FitnessConfig{
		Main:        doc.MainParams,
		Sweep:       frf.Sweep{Grid: doc.Frequency.ToGrid(), MassTargets: doc.MassTargets()},
		Alpha:       alpha,
		WorkerCount: workerCount(),
	})
	return &campaign{doc: doc, bounds: bounds, fixed: fixed, objective: objective}, nil
}

func (c *campaign) runConfig(engineName string) engine.RunConfig {
	return engine.RunConfig{
		Bounds:         c.bounds,
		Fixed:          c.fixed,
		Objective:      c.objective,
		Seed:           int64(engineFloat(c.doc.Engine, "seed", 1)),
		MaxGenerations: int(engineFloat(c.doc.Engine, "max_generations", 100)),
		PopSize:        int(engineFloat(c.doc.Engine, "pop_size", 40)),
		WorkerCount:    workerCount(),
		Sink:           newZerologSink(engineName),
	}
}

func engineFloat(cfg config.EngineConfig, key string, fallback float64) float64 {
	if cfg == nil {
		return fallback
	}
	v, ok := cfg[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return fallback
	}
}

func engineBool(cfg config.EngineConfig, key string, fallback bool) bool {
	if cfg == nil {
		return fallback
	}
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return fallback
}

func engineString(cfg config.EngineConfig, key, fallback string) string {
	if cfg == nil {
		return fallback
	}
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return fallback
}

func runEngineAndPrint(ctx context.Context, eng engine.Engine) error {
	result, err := eng.Run(ctx)
	if err != nil {
		if dvaerr.Is(err, dvaerr.InvalidInput) {
			return err
		}
		return dvaerr.Wrap(dvaerr.NumericFailure, err, "%s run failed", eng.Name())
	}
	record := dva.BenchmarkRecord{
		EngineName:     eng.Name(),
		BestFitness:    result.BestFitness,
		ParameterNames: dva.ParameterNames(),
		Trace:          result.Trace,
	}
	copy(record.BestSolution[:], result.BestSolution)
	return printJSON(record)
}
