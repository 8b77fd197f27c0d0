package rating_test

import (
	"strconv"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/rating"
	"github.com/okian/syaroho/internal/domain/snowflake"
)

var jst = time.FixedZone("JST", 9*60*60)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, jst)
}

func newEngine(opts ...rating.Option) *rating.Engine {
	return rating.New(append([]rating.Option{rating.WithLocation(jst)}, opts...)...)
}

// post builds a marker observation by handle offsetMS milliseconds after
// midnight of January d.
func post(handle string, d int, offsetMS int64) model.Observation {
	ms := day(d).UnixMilli() + offsetMS
	id := uint64(ms-snowflake.EpochMS) << 22
	return model.Observation{
		ID:     strconv.FormatUint(id, 10),
		Text:   rating.DefaultMarkerPhrase,
		Source: "Twitter for iPhone",
		Author: handle,
	}
}

func posts(d int, offsets map[string]int64, order ...string) []model.Observation {
	out := make([]model.Observation, 0, len(order))
	for _, h := range order {
		out = append(out, post(h, d, offsets[h]))
	}
	return out
}
