package benchmark

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunResult is one repetition's summary, ported from the teacher's
// comparison.go RunResult (trimmed to the fields the DVA benchmark
// harness actually produces: the teacher's FuncEvals/ConvergenceAt are
// not tracked by engine.Result and are left for a future instrumentation
// pass rather than faked).
type RunResult struct {
	BestCost      float64
	Iterations    int
	ExecutionTime float64
}

// AlgorithmStatistics ports the teacher's AlgorithmStatistics
// (comparison.go) verbatim in shape.
type AlgorithmStatistics struct {
	Mean        float64
	Median      float64
	StdDev      float64
	Best        float64
	Worst       float64
	Q1          float64
	Q3          float64
	IQR         float64
	SuccessRate float64
	AvgTime     float64
}

// WilcoxonResult ports the teacher's WilcoxonResult (comparison.go).
type WilcoxonResult struct {
	Algorithm1  string
	Algorithm2  string
	Winner      string
	WStatistic  float64
	PValue      float64
	Significant bool
}

// FriedmanTestResult ports the teacher's FriedmanTestResult
// (comparison.go).
type FriedmanTestResult struct {
	ChiSquare        float64
	PValue           float64
	Significant      bool
	DegreesOfFreedom int
}

// CalculateStatistics ports the teacher's calculateAlgorithmStatistics
// (comparison.go), adding quartiles/IQR (spec.md §4.6 names Q1/Q3/IQR
// explicitly, which the teacher's version omits) via gonum/stat's
// Mean/StdDev/Quantile rather than the teacher's hand-rolled loops.
func CalculateStatistics(runs []RunResult, targetCost float64) AlgorithmStatistics {
	if len(runs) == 0 {
		return AlgorithmStatistics{}
	}
	costs := make([]float64, len(runs))
	for i, r := range runs {
		costs[i] = r.BestCost
	}
	sorted := append([]float64(nil), costs...)
	sort.Float64s(sorted)

	mean := stat.Mean(costs, nil)
	successes := 0
	totalTime := 0.0
	for _, r := range runs {
		if targetCost > 0 && r.BestCost <= targetCost {
			successes++
		}
		totalTime += r.ExecutionTime
	}

	stats := AlgorithmStatistics{
		Mean:    mean,
		Median:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev:  stat.StdDev(costs, nil),
		Best:    sorted[0],
		Worst:   sorted[len(sorted)-1],
		Q1:      stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Q3:      stat.Quantile(0.75, stat.Empirical, sorted, nil),
		AvgTime: totalTime / float64(len(runs)),
	}
	stats.IQR = stats.Q3 - stats.Q1
	if targetCost > 0 {
		stats.SuccessRate = float64(successes) / float64(len(runs))
	}
	return stats
}

// RankAlgorithms ports the teacher's rankAlgorithms (comparison.go):
// rank 1 is the lowest (best) mean cost.
func RankAlgorithms(statistics map[string]AlgorithmStatistics) map[string]int {
	names := make([]string, 0, len(statistics))
	for name := range statistics {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && statistics[names[j-1]].Mean > statistics[names[j]].Mean; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	ranks := make(map[string]int, len(names))
	for i, name := range names {
		ranks[name] = i + 1
	}
	return ranks
}

// rankValues ports the teacher's rankValues (comparison.go): ascending
// ranks with tie-averaging.
func rankValues(values []float64) []float64 {
	n := len(values)
	type indexed struct {
		value float64
		index int
	}
	idx := make([]indexed, n)
	for i, v := range values {
		idx[i] = indexed{v, i}
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && idx[j-1].value > idx[j].value; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j < n && idx[j].value == idx[i].value {
			j++
		}
		avgRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k].index] = avgRank
		}
		i = j
	}
	return ranks
}

// WilcoxonSignedRankTest ports the teacher's wilcoxonSignedRankTest
// (comparison.go): a paired, tie-filtered signed-rank test between two
// algorithms' matched-seed run costs, with a normal-approximation
// p-value.
func WilcoxonSignedRankTest(name1, name2 string, runs1, runs2 []RunResult) WilcoxonResult {
	n := len(runs1)
	if n > len(runs2) {
		n = len(runs2)
	}
	diffs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		d := runs1[i].BestCost - runs2[i].BestCost
		if math.Abs(d) > 1e-10 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return WilcoxonResult{Algorithm1: name1, Algorithm2: name2, Winner: "tie", PValue: 1}
	}

	absDiffs := make([]float64, len(diffs))
	for i, d := range diffs {
		absDiffs[i] = math.Abs(d)
	}
	ranks := rankValues(absDiffs)

	wPlus, wMinus := 0.0, 0.0
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}

	nd := float64(len(diffs))
	meanW := nd * (nd + 1) / 4
	stdW := math.Sqrt(nd * (nd + 1) * (2*nd + 1) / 24)

	w := math.Min(wPlus, wMinus)
	var z float64
	if stdW > 0 {
		z = (w - meanW) / stdW
	}
	pValue := 2 * (1 - normalCDF(math.Abs(z)))
	if pValue > 1 {
		pValue = 1
	}

	winner := name1
	if wPlus > wMinus {
		winner = name2
	}
	significant := pValue < 0.05
	if !significant {
		winner = "tie"
	}

	return WilcoxonResult{
		Algorithm1:  name1,
		Algorithm2:  name2,
		Winner:      winner,
		WStatistic:  w,
		PValue:      pValue,
		Significant: significant,
	}
}

// FriedmanTest ports the teacher's friedmanTest (comparison.go): a
// chi-square statistic over per-run rankings across k algorithms,
// requiring every algorithm to have the same run count (matched seeds).
func FriedmanTest(algorithmRuns [][]RunResult) *FriedmanTestResult {
	k := len(algorithmRuns)
	if k < 2 {
		return nil
	}
	n := len(algorithmRuns[0])
	for _, runs := range algorithmRuns {
		if len(runs) != n {
			return nil
		}
	}
	if n == 0 {
		return nil
	}

	rankSums := make([]float64, k)
	for run := 0; run < n; run++ {
		costs := make([]float64, k)
		for a := 0; a < k; a++ {
			costs[a] = algorithmRuns[a][run].BestCost
		}
		ranks := rankValues(costs)
		for a := 0; a < k; a++ {
			rankSums[a] += ranks[a]
		}
	}

	sumSquares := 0.0
	for _, rs := range rankSums {
		sumSquares += rs * rs
	}
	nf, kf := float64(n), float64(k)
	chiSquare := (12 / (nf * kf * (kf + 1)) * sumSquares) - 3*nf*(kf+1)
	df := k - 1
	pValue := chiSquareCDFUpper(chiSquare, df)

	return &FriedmanTestResult{
		ChiSquare:        chiSquare,
		PValue:           pValue,
		Significant:      pValue < 0.05,
		DegreesOfFreedom: df,
	}
}

// normalCDF ports the teacher's normalCDF (comparison.go): the standard
// normal cumulative distribution function via the error function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// chiSquareCDFUpper approximates P(X > x) for a chi-square distribution
// with df degrees of freedom, ported from the teacher's chiSquareCDF
// (comparison.go): a Wilson-Hilferty normal approximation, accurate
// enough for the significance threshold this test needs.
func chiSquareCDFUpper(x float64, df int) float64 {
	if x <= 0 {
		return 1
	}
	dff := float64(df)
	h := 2.0 / (9 * dff)
	z := (math.Pow(x/dff, 1.0/3) - (1 - h)) / math.Sqrt(h)
	return 1 - normalCDF(z)
}
