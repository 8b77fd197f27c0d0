package rating

import (
	"sort"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
)

const previewTimeLayout = "05.000"

// Preview ranks the entries of a quick, incomplete fetch and returns the
// best n. Posts pass the same text and client checks as Filter; the
// late-catch window is left to the final computation.
func (e *Engine) Preview(day time.Time, observations []model.Observation, n int) ([]model.PreviewEntry, error) {
	target := e.TargetInstant(day).UnixMilli()
	out := make([]model.PreviewEntry, 0, len(observations))
	for _, o := range observations {
		if !e.valid(o) {
			continue
		}
		ms, err := timestampMS(o)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PreviewEntry{
			Handle: o.Author,
			Time:   time.UnixMilli(ms).In(e.params.Location).Format(previewTimeLayout),
			Score:  Score(ms-target, e.params.OnTimeBonus),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
