package rating

import (
	"math"
	"strconv"
)

// NewParticipantChange marks the rating change of a participant whose
// previous displayed rate was zero.
const NewParticipantChange = "NEW"

// The small-sample penalty is normalised for a decay of 0.9: 0.81 is its
// square and sqrt(19) is the penalty ratio after one attendance.
const (
	penaltyDecaySquared = 0.81
	penaltyDecay        = 0.9
	penaltyNorm         = 19.0
)

// InnerRate is the decayed geometric mean of a performance history in
// 2^(perf/GeoSpan) space, most recent entry weighted Decay^1.
func InnerRate(history []int, p Params) float64 {
	var num, den float64
	for j := 1; j <= len(history); j++ {
		perf := history[len(history)-j]
		w := math.Pow(p.Decay, float64(j))
		num += math.Pow(2.0, float64(perf)/p.GeoSpan) * w
		den += w
	}
	return p.GeoSpan * math.Log2(num/den)
}

// Penalty is subtracted from the inner rate of a participant with att
// attendances. It equals PenaltyMax at att == 1 and tends to zero.
func Penalty(att int, p Params) float64 {
	n := float64(att)
	ratio := math.Pow(1.0-math.Pow(penaltyDecaySquared, n), 0.5) / (1.0 - math.Pow(penaltyDecay, n))
	return p.PenaltyMax * (ratio - 1.0) / (math.Pow(penaltyNorm, 0.5) - 1.0)
}

// DisplayRate applies the small-sample penalty to inner and compresses
// results at or below FloorRate so they stay positive.
func DisplayRate(inner float64, att int, p Params) float64 {
	rate := inner - Penalty(att, p)
	if rate <= p.FloorRate {
		rate = p.FloorRate / math.Exp((p.FloorRate-rate)/p.FloorRate)
	}
	return rate
}

// Change formats the difference between the new and previous displayed
// rate. A previous rate of zero yields NewParticipantChange.
func Change(prev, next int) string {
	if prev <= 0 {
		return NewParticipantChange
	}
	delta := next - prev
	if delta >= 0 {
		return "+" + strconv.Itoa(delta)
	}
	return "-" + strconv.Itoa(-delta)
}
