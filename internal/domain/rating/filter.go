package rating

import (
	"fmt"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/snowflake"
)

const entryTimeLayout = "15:04:05.000"

// Score rates a signed millisecond offset from the target instant.
// Exactly on time scores the bonus; early entries get no bonus.
func Score(record int64, bonus float64) float64 {
	abs := record
	if abs < 0 {
		abs = -abs
	}
	if record >= 0 {
		return bonus - float64(abs)
	}
	return -float64(abs)
}

// Filter selects the competition entries of a day: exact marker text from a
// client outside the denylist. Order is preserved and a handle may appear
// more than once.
func (e *Engine) Filter(day time.Time, observations []model.Observation) ([]model.DailyEntry, error) {
	target := e.TargetInstant(day).UnixMilli()
	entries := make([]model.DailyEntry, 0, len(observations))
	for _, o := range observations {
		if !e.valid(o) {
			continue
		}
		ms, err := timestampMS(o)
		if err != nil {
			return nil, err
		}
		record := ms - target
		entries = append(entries, model.DailyEntry{
			Handle: o.Author,
			ID:     o.ID,
			Record: record,
			Score:  Score(record, e.params.OnTimeBonus),
			Time:   time.UnixMilli(ms).In(e.params.Location).Format(entryTimeLayout),
		})
	}
	return entries, nil
}

func (e *Engine) valid(o model.Observation) bool {
	if o.Text != e.params.MarkerPhrase {
		return false
	}
	_, denied := e.invalid[o.Source]
	return !denied
}

// timestampMS returns the creation time of o in Unix milliseconds, decoding
// the id when the source left Timestamp unset.
func timestampMS(o model.Observation) (int64, error) {
	if !o.Timestamp.IsZero() {
		return o.Timestamp.UnixMilli(), nil
	}
	ms, err := snowflake.TimestampMS(o.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: observation by %q: %w", ErrInvalidInput, o.Author, err)
	}
	return ms, nil
}
