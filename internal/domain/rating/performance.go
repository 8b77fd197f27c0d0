package rating

import (
	"math"
)

// AveragePerformance is the decayed arithmetic mean of a performance
// history, weighting the most recent entry by Decay^1, the one before by
// Decay^2 and so on. A participant without history gets InitialPerf.
func AveragePerformance(history []int, p Params) float64 {
	n := len(history)
	if n == 0 {
		return p.InitialPerf
	}
	var num, den float64
	for k, perf := range history {
		w := math.Pow(p.Decay, float64(n-k))
		num += float64(perf) * w
		den += w
	}
	return num / den
}

// ExpectedRank is the expected number of participants beating a performance
// of x under the logistic model, counting the participant itself as a half.
// It is strictly decreasing in x.
func ExpectedRank(x float64, aperf []float64, p Params) float64 {
	est := 0.0
	for _, a := range aperf {
		est += 1.0 / (1.0 + math.Pow(p.LogisticBase, (x-a)/p.LogisticSpan))
	}
	return est
}

// SolvePerformance bisects [SearchMin, SearchMax] for the x whose expected
// rank equals rank - 0.5 and returns the midpoint of the final bracket.
func SolvePerformance(rank float64, aperf []float64, p Params) float64 {
	lo, hi := p.SearchMin, p.SearchMax
	mid := (hi + lo) / 2.0
	width := hi - lo
	target := rank - 0.5
	for width >= p.Tolerance {
		if ExpectedRank(mid, aperf, p) >= target {
			lo = mid
		} else {
			hi = mid
		}
		width = hi - lo
		mid = (hi + lo) / 2.0
	}
	return mid
}

// ScalePerformance stretches x around InitialPerf by exag and rounds it.
func ScalePerformance(x, exag float64, p Params) int {
	return roundHalfUp((x-p.InitialPerf)*exag + p.InitialPerf)
}

// roundHalfUp adds one half and truncates toward zero, the rounding every
// persisted perf, rate and inner rate was produced with. Ties round up, never
// to even.
func roundHalfUp(v float64) int {
	return int(v + 0.5)
}
