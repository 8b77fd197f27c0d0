package rating

import (
	"github.com/okian/syaroho/internal/domain/model"
)

// Participants is the de-duplicated entry set of one day.
type Participants struct {
	Entries []model.DailyEntry
	// Late counts entries recovered from the late-catch list.
	Late int
}

// BuildParticipants merges primary entries with late-catch entries, one
// entry per handle. A handle posting several primary entries keeps its
// earliest one. Late-catch entries are admitted only for handles absent from
// the primary list and within the late-catch window of the target.
//
// Records for first-time handles are created in store. Every primary entry,
// including duplicates that lose to an earlier post, and every admitted
// late-catch entry refreshes its record's best score when it is at least as
// good.
func (e *Engine) BuildParticipants(primary, late []model.DailyEntry, store model.RatingStore) Participants {
	window := e.params.LateCatchWindow.Milliseconds()
	index := make(map[string]int, len(primary)+len(late))
	out := make([]model.DailyEntry, 0, len(primary)+len(late))

	for _, en := range primary {
		refreshBest(store, en)
		if i, ok := index[en.Handle]; ok {
			if en.Record < out[i].Record {
				out[i] = en
			}
			continue
		}
		index[en.Handle] = len(out)
		out = append(out, en)
	}

	lateCount := 0
	for _, en := range late {
		if _, ok := index[en.Handle]; ok {
			continue
		}
		if abs64(en.Record) > window {
			continue
		}
		index[en.Handle] = len(out)
		out = append(out, en)
		refreshBest(store, en)
		lateCount++
	}
	return Participants{Entries: out, Late: lateCount}
}

// refreshBest records en as the best of its handle when it scores at least
// as well, creating the record on first sight.
func refreshBest(store model.RatingStore, en model.DailyEntry) {
	r, ok := store[en.Handle]
	if !ok {
		r = model.NewRatingRecord()
		store[en.Handle] = r
	}
	if en.Score >= r.BestScore {
		r.BestScore = en.Score
		r.BestTime = en.Time
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
