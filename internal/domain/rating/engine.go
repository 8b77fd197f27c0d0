package rating

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
)

// Outcome is the result of one day's computation.
type Outcome struct {
	// Results are ordered by display rank, ties in admission order.
	Results []model.DailyResult
	// Store is the updated rating store to persist for the day.
	Store model.RatingStore
	// Observed counts raw observations across both lists.
	Observed int
	// Admitted counts the day's participants; Late of them came from the
	// late-catch list.
	Admitted int
	Late     int
}

// ComputeDaily rates one day. prior is the store persisted for the previous
// day and is not modified; a nil or empty prior means every participant is
// new. A day without entries returns no results and a copy of prior.
//
// exag stretches performances around the initial strength and is 1 outside
// of bootstrap backfills.
func (e *Engine) ComputeDaily(day time.Time, primary, secondary []model.Observation, prior model.RatingStore, exag float64) (Outcome, error) {
	if math.IsNaN(exag) || math.IsInf(exag, 0) || exag <= 0 {
		return Outcome{}, fmt.Errorf("%w: exag must be positive and finite, got %v", ErrInvalidInput, exag)
	}
	target := e.TargetInstant(day)
	if err := e.checkPrior(target, prior); err != nil {
		return Outcome{}, err
	}

	primaryEntries, err := e.Filter(target, primary)
	if err != nil {
		return Outcome{}, err
	}
	lateEntries, err := e.Filter(target, secondary)
	if err != nil {
		return Outcome{}, err
	}

	store := prior.Clone()
	participants := e.BuildParticipants(primaryEntries, lateEntries, store)
	entries := participants.Entries
	out := Outcome{
		Results:  []model.DailyResult{},
		Store:    store,
		Observed: len(primary) + len(secondary),
		Admitted: len(entries),
		Late:     participants.Late,
	}
	if len(entries) == 0 {
		return out, nil
	}

	// Ranks and expected strengths are fixed before any record changes.
	scores := make([]float64, len(entries))
	aperf := make([]float64, len(entries))
	for i, en := range entries {
		scores[i] = en.Score
		aperf[i] = AveragePerformance(store[en.Handle].Perf, e.params)
	}
	ranks := AssignRanks(scores)
	perfs := make([]int, len(entries))
	for i := range entries {
		x := SolvePerformance(ranks[i].Fractional, aperf, e.params)
		perfs[i] = ScalePerformance(x, exag, e.params)
	}

	attendDate := target.Format(model.AttendDateLayout)
	for i, en := range entries {
		r := store[en.Handle]
		if ranks[i].Display == 1 {
			r.Win++
		}
		r.AttendDate = append(r.AttendDate, attendDate)
		r.Record = append(r.Record, en.Time)
		r.Standing = append(r.Standing, ranks[i].Display)
		r.Perf = append(r.Perf, perfs[i])
		r.Attend++
	}

	results := make([]model.DailyResult, len(entries))
	for i, en := range entries {
		r := store[en.Handle]
		inner := InnerRate(r.Perf, e.params)
		rate := roundHalfUp(DisplayRate(inner, len(r.Perf), e.params))

		results[i] = model.DailyResult{
			Handle:       en.Handle,
			Rank:         ranks[i].Fractional,
			RankNormal:   ranks[i].Display,
			Perf:         perfs[i],
			Time:         en.Time,
			Score:        en.Score,
			ID:           en.ID,
			InnerRate:    r.InnerRate,
			NewInnerRate: roundHalfUp(inner),
			Rating:       strconv.Itoa(rate),
			Change:       Change(r.Rate, rate),
		}

		r.InnerRate = roundHalfUp(inner)
		r.Rate = rate
		r.RateHist = append(r.RateHist, rate)
		if rate >= r.Highest {
			r.Highest = rate
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].RankNormal < results[b].RankNormal
	})
	out.Results = results
	return out, nil
}

// checkPrior rejects corrupted records and stores that already contain the
// target day or a later one.
func (e *Engine) checkPrior(target time.Time, prior model.RatingStore) error {
	for handle, r := range prior {
		if err := ValidateRecord(r); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidRecord, handle, err)
		}
		last, ok, err := r.LastAttended(e.params.Location)
		if err != nil {
			return fmt.Errorf("%w: %q: attend date: %w", ErrInvalidRecord, handle, err)
		}
		if ok && !last.Before(target) {
			return fmt.Errorf("%w: %q already attended %s, computing %s",
				ErrOutOfOrder, handle, last.Format(model.AttendDateLayout), target.Format(model.AttendDateLayout))
		}
	}
	return nil
}

// ValidateRecord checks the structural invariants of a persisted record.
func ValidateRecord(r *model.RatingRecord) error {
	switch {
	case r == nil:
		return fmt.Errorf("record is nil")
	case r.Attend < 0:
		return fmt.Errorf("attend is negative: %d", r.Attend)
	case r.Win < 0 || r.Win > r.Attend:
		return fmt.Errorf("win %d outside [0, attend %d]", r.Win, r.Attend)
	case r.Rate < 0 || r.Highest < 0:
		return fmt.Errorf("negative rate %d or highest %d", r.Rate, r.Highest)
	case math.IsNaN(r.BestScore) || math.IsInf(r.BestScore, 0):
		return fmt.Errorf("best score is not finite")
	}
	for name, n := range map[string]int{
		"attend_date": len(r.AttendDate),
		"standing":    len(r.Standing),
		"perf":        len(r.Perf),
		"rate_hist":   len(r.RateHist),
	} {
		if n != r.Attend {
			return fmt.Errorf("%s has %d entries, attend is %d", name, n, r.Attend)
		}
	}
	return nil
}
