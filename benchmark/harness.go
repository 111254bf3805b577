// Package benchmark runs N independent seeded repetitions of an engine,
// aggregates per-run statistics, and compares multiple engines with the
// Friedman and Wilcoxon significance tests (spec.md §4.6), adapted from
// the teacher's comparison.go (ComparisonRunner/AlgorithmStatistics/
// WilcoxonResult/FriedmanTestResult are near-verbatim ports, generalized
// from the teacher's single-objective-function benchmark loop to the
// uniform engine.Engine interface).
package benchmark

import (
	"context"
	"time"

	"github.com/devana-go/dva"
	"github.com/devana-go/dva/dvaerr"
	"github.com/devana-go/dva/engine"
)

// EngineFactory builds a fresh engine.Engine for the given seed, so each
// repetition runs from independent, reproducible randomness (spec.md
// §4.6: "seed_base + run_index").
type EngineFactory func(seed int64) engine.Engine

// RunSpec describes one engine's benchmark participation: its display
// name, its factory, and how many repetitions to run.
type RunSpec struct {
	Name     string
	Factory  EngineFactory
	Runs     int
	SeedBase int64
}

// Snapshot is the stable JSON-exportable benchmark result (spec.md §6):
// "benchmark_data" is a flat array of records matching the wire schema
// exactly; Comparison is an additive sidecar carrying the cross-engine
// statistics the single-engine wire schema has no room for, populated
// only when more than one RunSpec was benchmarked together.
type Snapshot struct {
	BenchmarkData   []dva.BenchmarkRecord `json:"benchmark_data"`
	ExportTimestamp string                `json:"export_timestamp"`
	Comparison      *Comparison           `json:"comparison,omitempty"`
}

// Comparison holds per-engine aggregate statistics, rankings, and the
// pairwise/overall significance tests ported from the teacher's
// comparison.go.
type Comparison struct {
	Statistics map[string]AlgorithmStatistics `json:"statistics"`
	Rankings   map[string]int                 `json:"rankings"`
	Wilcoxon   []WilcoxonResult                `json:"wilcoxon"`
	Friedman   *FriedmanTestResult             `json:"friedman,omitempty"`
}

// Run executes a single engine's N seeded repetitions and returns the
// wire-schema-faithful per-run records together with the per-run
// results used for statistics (spec.md §4.6 contract:
// benchmark(engine, cfg, N_runs, seed_base) -> [BenchmarkRecord; N_runs]).
func Run(ctx context.Context, spec RunSpec) ([]dva.BenchmarkRecord, []RunResult, error) {
	if spec.Runs <= 0 {
		return nil, nil, dvaerr.New(dvaerr.InvalidInput, "engine %q: runs must be > 0", spec.Name)
	}
	records := make([]dva.BenchmarkRecord, 0, spec.Runs)
	results := make([]RunResult, 0, spec.Runs)

	for i := 0; i < spec.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, dvaerr.Wrap(dvaerr.Aborted, err, "benchmark canceled")
		}
		seed := spec.SeedBase + int64(i)
		eng := spec.Factory(seed)
		start := time.Now()
		result, err := eng.Run(ctx)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			return nil, nil, dvaerr.Wrap(dvaerr.NumericFailure, err, "engine %q run %d failed", spec.Name, i)
		}

		record := dva.BenchmarkRecord{
			RunID:          i,
			EngineName:     spec.Name,
			Seed:           seed,
			BestFitness:    result.BestFitness,
			ParameterNames: dva.ParameterNames(),
			ElapsedSeconds: elapsed,
			Trace:          result.Trace,
		}
		copy(record.BestSolution[:], result.BestSolution)
		records = append(records, record)
		results = append(results, RunResult{
			BestCost:      result.BestFitness,
			Iterations:    result.Generations,
			ExecutionTime: elapsed,
		})
	}
	return records, results, nil
}

// RunAll executes every RunSpec's repetitions, then aggregates and
// compares them (spec.md §4.6). TargetCost, if > 0, marks a run
// "successful" when BestFitness <= TargetCost for the success-rate
// statistic. The returned Snapshot's BenchmarkData is the union of every
// engine's records; Comparison carries the cross-engine analysis when
// len(specs) >= 2.
func RunAll(ctx context.Context, specs []RunSpec, targetCost float64) (Snapshot, error) {
	if len(specs) == 0 {
		return Snapshot{}, dvaerr.New(dvaerr.InvalidInput, "at least one engine spec is required")
	}

	var allRecords []dva.BenchmarkRecord
	runResults := make(map[string][]RunResult, len(specs))
	order := make([]string, 0, len(specs))

	for _, spec := range specs {
		records, results, err := Run(ctx, spec)
		if err != nil {
			return Snapshot{}, err
		}
		allRecords = append(allRecords, records...)
		runResults[spec.Name] = results
		order = append(order, spec.Name)
	}

	statistics := make(map[string]AlgorithmStatistics, len(specs))
	for name, results := range runResults {
		statistics[name] = CalculateStatistics(results, targetCost)
	}
	rankings := RankAlgorithms(statistics)

	var comparison *Comparison
	if len(specs) >= 2 {
		var wilcoxon []WilcoxonResult
		ordered := make([][]RunResult, len(order))
		for i, name := range order {
			ordered[i] = runResults[name]
		}
		for i := 0; i < len(order); i++ {
			for j := i + 1; j < len(order); j++ {
				if len(ordered[i]) == len(ordered[j]) {
					wilcoxon = append(wilcoxon, WilcoxonSignedRankTest(order[i], order[j], ordered[i], ordered[j]))
				}
			}
		}
		comparison = &Comparison{
			Statistics: statistics,
			Rankings:   rankings,
			Wilcoxon:   wilcoxon,
			Friedman:   FriedmanTest(ordered),
		}
	}

	return Snapshot{
		BenchmarkData:   allRecords,
		ExportTimestamp: time.Now().UTC().Format("2006-01-02 15:04:05"),
		Comparison:      comparison,
	}, nil
}
