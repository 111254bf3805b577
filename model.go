package dva

import (
	"runtime"
	"strconv"

	"github.com/devana-go/dva/dvaerr"
)

// MainParams is the main-system parameter tuple M, constant for the
// lifetime of an optimization campaign (spec.md §3): mass ratio, main
// system stiffness/damping arrays, actuation bounds, forcing frequencies,
// and the DC-motor reference frequency/damping ratio the rest of the
// model scales against.
type MainParams struct {
	Mu      float64
	Lambda  [5]float64
	Nu      [5]float64
	ALow    float64
	AUp     float64
	F1      float64
	F2      float64
	OmegaDC float64
	ZetaDC  float64
}

// Validate checks the invariants spec.md §3 places on MainParams:
// Ω_DC > 0 and the damping ratio in [0, 1).
func (m MainParams) Validate() error {
	if m.OmegaDC <= 0 {
		return dvaerr.New(dvaerr.InvalidInput, "omega_dc must be > 0, got %g", m.OmegaDC)
	}
	if m.ZetaDC < 0 || m.ZetaDC >= 1 {
		return dvaerr.New(dvaerr.InvalidInput, "zeta_dc must be in [0,1), got %g", m.ZetaDC)
	}
	return nil
}

// FrequencyGrid is Ω = linspace(ω_start, ω_end, N), per spec.md §3.
type FrequencyGrid struct {
	Start float64
	End   float64
	N     int
}

// Validate checks N is within the supported range and the grid is
// non-degenerate.
func (g FrequencyGrid) Validate() error {
	if g.N < 50 {
		return dvaerr.New(dvaerr.InvalidInput, "frequency grid N must be >= 50, got %d", g.N)
	}
	if g.Start >= g.End {
		return dvaerr.New(dvaerr.InvalidInput, "omega_start %g must be < omega_end %g", g.Start, g.End)
	}
	return nil
}

// Values materializes the grid as a linspace slice of length N.
func (g FrequencyGrid) Values() []float64 {
	out := make([]float64, g.N)
	if g.N == 1 {
		out[0] = g.Start
		return out
	}
	step := (g.End - g.Start) / float64(g.N-1)
	for i := range out {
		out[i] = g.Start + step*float64(i)
	}
	return out
}

// NumMasses is the fixed dimensionality of the mechanical model (spec.md
// §4.1: a 5x5 system).
const NumMasses = 5

// MaxPeaks and MaxPeakPositions bound the per-mass peak schema (spec.md
// §3): 4 peak-value slots and 5 peak-position slots, NaN-padded.
// findPeaks keeps at most MaxPeaks peaks, so the fifth position slot is
// always NaN.
const (
	MaxPeaks         = 4
	MaxPeakPositions = 5
)

// Peak is one local maximum of a magnitude curve.
type Peak struct {
	Index     int
	Value     float64
	Frequency float64
}

// TargetKey names one entry in the recognized target/weight schema
// (spec.md §3): peak_value_k (k=1..4), peak_position_k (k=1..5),
// bandwidth_i_j and slope_i_j (1<=i<j<=4), and area_under_curve.
type TargetKey string

// PeakValueKey, PeakPositionKey, BandwidthKey, and SlopeKey build the
// recognized TargetKey strings for the indexed target families.
func PeakValueKey(k int) TargetKey    { return TargetKey("peak_value_" + strconv.Itoa(k)) }
func PeakPositionKey(k int) TargetKey { return TargetKey("peak_position_" + strconv.Itoa(k)) }
func BandwidthKey(i, j int) TargetKey {
	return TargetKey("bandwidth_" + strconv.Itoa(i) + "_" + strconv.Itoa(j))
}
func SlopeKey(i, j int) TargetKey {
	return TargetKey("slope_" + strconv.Itoa(i) + "_" + strconv.Itoa(j))
}

// AreaUnderCurveKey is the single area-under-curve target key.
const AreaUnderCurveKey TargetKey = "area_under_curve"

// Targets and Weights are parallel per-mass maps over the recognized
// TargetKey schema (spec.md §3). A key absent from Weights (or present
// with weight 0) contributes nothing to the singular response.
type Targets map[TargetKey]float64
type Weights map[TargetKey]float64

// MassTargets pairs the recognized-key target/weight maps for one of the
// five masses.
type MassTargets struct {
	Targets Targets
	Weights Weights
}

// CompositeMeasures holds the per-mass reduction: the weighted absolute
// error contributed by each recognized feature, and their sum.
type CompositeMeasures struct {
	PerFeature map[TargetKey]float64
	Total      float64
}

// PercentDiffs holds the relative-error channel NSGA-II and other
// multi-objective engines consume (spec.md §3: "percentage_differences").
type PercentDiffs map[TargetKey]float64

// MassResult is one mass's FRF output: its magnitude curve, optional
// extracted peaks, and the composite measure derived from it.
type MassResult struct {
	Magnitude []float64
	Peaks     []Peak // len <= MaxPeaks, ordered by increasing frequency
	Composite CompositeMeasures
	Percent   PercentDiffs
}

// FrfResult is the full per-mass-plus-reduction output of one FRF
// evaluation (spec.md §4.2): five mass results, the overall composite
// measures, the scalar singular response, and the percentage-differences
// channel aggregated across masses.
type FrfResult struct {
	Masses            [NumMasses]MassResult
	CompositeMeasures CompositeMeasures
	SingularResponse  float64
	PercentageDiffs   PercentDiffs
}

// AdaptiveRateEvent records one adaptive-rate drift decision GA's
// optional adaptive-rates feature makes (spec.md §4.5.1): cxpb/mutpb
// before and after the drift, and which direction it moved in.
type AdaptiveRateEvent struct {
	Generation     int     `json:"generation"`
	OldCxpb        float64 `json:"old_cxpb"`
	NewCxpb        float64 `json:"new_cxpb"`
	OldMutpb       float64 `json:"old_mutpb"`
	NewMutpb       float64 `json:"new_mutpb"`
	AdaptationType string  `json:"adaptation_type"` // "Exploration" or "Exploitation"
}

// SystemInfo snapshots the runtime environment a benchmark run executed
// under (spec.md §6 "system_info"), so exported records remain
// interpretable once compared across machines.
type SystemInfo struct {
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	NumCPU    int    `json:"num_cpu"`
	GoVersion string `json:"go_version"`
}

// CurrentSystemInfo snapshots the executing process's runtime
// environment.
func CurrentSystemInfo() SystemInfo {
	return SystemInfo{
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}
}

// RunTrace records one optimization run's per-generation history, used
// both for live progress reporting and for post-hoc benchmark analysis.
// The field set and JSON names mirror spec.md §6's benchmark_metrics
// wire schema exactly; DiversityHistory is an internal-only series (not
// part of that schema) that feeds the live progress sink's diversity
// channel and is excluded from the exported JSON.
type RunTrace struct {
	FitnessHistory       [][]float64         `json:"fitness_history"` // per generation, per individual
	MeanFitnessHistory   []float64           `json:"mean_fitness_history"`
	StdFitnessHistory    []float64           `json:"std_fitness_history"`
	BestFitnessPerGen    []float64           `json:"best_fitness_per_gen"`
	BestIndividualPerGen [][]float64         `json:"best_individual_per_gen"`
	AdaptiveRatesHistory []AdaptiveRateEvent `json:"adaptive_rates_history,omitempty"`
	EvaluationTimes      []float64           `json:"evaluation_times"`
	CrossoverTimes       []float64           `json:"crossover_times"`
	MutationTimes        []float64           `json:"mutation_times"`
	SelectionTimes       []float64           `json:"selection_times"`
	SystemInfo           SystemInfo          `json:"system_info"`
	DiversityHistory     []float64           `json:"-"`
}

// BenchmarkRecord is one run's complete record (spec.md §3, §6: the
// JSON field names follow the "benchmark_data[]" wire schema), the seed
// and result identity, the winning vector, and its trace.
type BenchmarkRecord struct {
	RunID          int                   `json:"run_number"`
	EngineName     string                `json:"engine_name"`
	Seed           int64                 `json:"seed"`
	BestFitness    float64               `json:"best_fitness"`
	BestSolution   [NumDVAParams]float64 `json:"best_solution"`
	ParameterNames []string              `json:"parameter_names"`
	ElapsedSeconds float64               `json:"elapsed_time"`
	Trace          RunTrace              `json:"benchmark_metrics"`
	Metadata       map[string]any        `json:"optimization_metadata,omitempty"`
}
