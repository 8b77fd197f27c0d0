package rating_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/rating"
	"github.com/sebdah/goldie/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeDailySingleParticipant(t *testing.T) {
	Convey("Given one participant exactly on time", t, func() {
		out, err := newEngine().ComputeDaily(day(1), []model.Observation{post("alice", 1, 0)}, nil, nil, 1.0)
		So(err, ShouldBeNil)

		Convey("Then the result is the neutral first day", func() {
			So(out.Results, ShouldHaveLength, 1)
			r := out.Results[0]
			So(r.Handle, ShouldEqual, "alice")
			So(r.Rank, ShouldEqual, 1.0)
			So(r.RankNormal, ShouldEqual, 1)
			So(r.Perf, ShouldEqual, 1600)
			So(r.Score, ShouldEqual, 1000)
			So(r.Time, ShouldEqual, "00:00:00.000")
			So(r.InnerRate, ShouldEqual, model.DefaultInnerRate)
			So(r.NewInnerRate, ShouldEqual, 1600)
			So(r.Rating, ShouldEqual, "400")
			So(r.Change, ShouldEqual, rating.NewParticipantChange)
		})

		Convey("Then the stored record reflects the attendance", func() {
			rec := out.Store["alice"]
			So(rec.Attend, ShouldEqual, 1)
			So(rec.Win, ShouldEqual, 1)
			So(rec.Rate, ShouldEqual, 400)
			So(rec.Highest, ShouldEqual, 400)
			So(rec.InnerRate, ShouldEqual, 1600)
			So(rec.BestScore, ShouldEqual, 1000)
			So(rec.BestTime, ShouldEqual, "00:00:00.000")
			So(rec.AttendDate, ShouldResemble, []string{"2024/01/01"})
			So(rec.Record, ShouldResemble, []string{"00:00:00.000"})
			So(rec.Standing, ShouldResemble, []int{1})
			So(rec.Perf, ShouldResemble, []int{1600})
			So(rec.RateHist, ShouldResemble, []int{400})
		})

		Convey("Then the counters describe the input", func() {
			So(out.Observed, ShouldEqual, 1)
			So(out.Admitted, ShouldEqual, 1)
			So(out.Late, ShouldEqual, 0)
		})
	})
}

func TestComputeDailyTies(t *testing.T) {
	Convey("Given two participants tied on time and one late", t, func() {
		obs := posts(1, map[string]int64{"a": 0, "b": 0, "c": 100}, "a", "b", "c")
		out, err := newEngine().ComputeDaily(day(1), obs, nil, nil, 1.0)
		So(err, ShouldBeNil)
		So(out.Results, ShouldHaveLength, 3)

		Convey("Then the tied pair shares rank and performance", func() {
			a, b, c := out.Results[0], out.Results[1], out.Results[2]
			So(a.Handle, ShouldEqual, "a")
			So(b.Handle, ShouldEqual, "b")
			So(a.RankNormal, ShouldEqual, 1)
			So(b.RankNormal, ShouldEqual, 1)
			So(a.Rank, ShouldEqual, 1.5)
			So(b.Rank, ShouldEqual, 1.5)
			So(a.Perf, ShouldEqual, 1755)
			So(b.Perf, ShouldEqual, 1755)
			So(a.Rating, ShouldEqual, "555")
			So(b.Rating, ShouldEqual, "555")

			So(c.RankNormal, ShouldEqual, 3)
			So(c.Rank, ShouldEqual, 3.0)
			So(c.Score, ShouldEqual, 900)
			So(c.Perf, ShouldEqual, 1241)
			So(c.Rating, ShouldEqual, "163")
		})

		Convey("Then both tied participants are credited a win", func() {
			So(out.Store["a"].Win, ShouldEqual, 1)
			So(out.Store["b"].Win, ShouldEqual, 1)
			So(out.Store["c"].Win, ShouldEqual, 0)
		})
	})
}

func TestComputeDailyBootstrap(t *testing.T) {
	Convey("Given a bootstrap exaggeration of 1.5", t, func() {
		obs := posts(1, map[string]int64{"alice": 0, "bob": -5}, "alice", "bob")
		out, err := newEngine().ComputeDaily(day(1), obs, nil, nil, 1.5)
		So(err, ShouldBeNil)

		Convey("Then performances are stretched around 1600", func() {
			So(out.Results[0].Perf, ShouldEqual, 1968)
			So(out.Results[1].Perf, ShouldEqual, 1232)
		})
	})
}

func TestComputeDailyInputs(t *testing.T) {
	e := newEngine()

	Convey("Given a day without valid entries", t, func() {
		prev, err := e.ComputeDaily(day(1), []model.Observation{post("alice", 1, 0)}, nil, nil, 1.0)
		So(err, ShouldBeNil)

		noise := post("bob", 2, 0)
		noise.Text = "zzz"
		out, err := e.ComputeDaily(day(2), []model.Observation{noise}, nil, prev.Store, 1.0)
		So(err, ShouldBeNil)

		Convey("Then results are empty and the store is unchanged", func() {
			So(out.Results, ShouldBeEmpty)
			So(out.Store, ShouldResemble, prev.Store)
			So(out.Observed, ShouldEqual, 1)
			So(out.Admitted, ShouldEqual, 0)
		})
	})

	Convey("Given a prior store", t, func() {
		prev, err := e.ComputeDaily(day(1), posts(1, map[string]int64{"alice": 0, "bob": -5}, "alice", "bob"), nil, nil, 1.0)
		So(err, ShouldBeNil)
		before := prev.Store.Clone()

		_, err = e.ComputeDaily(day(2), posts(2, map[string]int64{"alice": 10, "bob": 5}, "alice", "bob"), nil, prev.Store, 1.0)
		So(err, ShouldBeNil)

		Convey("Then computing the next day leaves it untouched", func() {
			So(prev.Store, ShouldResemble, before)
		})

		Convey("When the same day is computed again", func() {
			_, err := e.ComputeDaily(day(1), []model.Observation{post("carol", 1, 0)}, nil, prev.Store, 1.0)

			Convey("Then the run is rejected as out of order", func() {
				So(errors.Is(err, rating.ErrOutOfOrder), ShouldBeTrue)
			})
		})
	})

	Convey("Given a corrupted record", t, func() {
		broken := model.NewRatingRecord()
		broken.Attend = 2
		broken.AttendDate = []string{"2024/01/01"}
		_, err := e.ComputeDaily(day(3), nil, nil, model.RatingStore{"alice": broken}, 1.0)

		Convey("Then the store is rejected", func() {
			So(errors.Is(err, rating.ErrInvalidRecord), ShouldBeTrue)
		})
	})

	Convey("Given an unusable exaggeration", t, func() {
		for _, exag := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := e.ComputeDaily(day(1), nil, nil, nil, exag)
			So(errors.Is(err, rating.ErrInvalidInput), ShouldBeTrue)
		}
	})

	Convey("Given late-catch observations", t, func() {
		primary := []model.Observation{post("alice", 1, 0)}
		secondary := []model.Observation{post("alice", 1, -100), post("bob", 1, 40000)}
		out, err := e.ComputeDaily(day(1), primary, secondary, nil, 1.0)
		So(err, ShouldBeNil)

		Convey("Then only the new handle joins the day", func() {
			So(out.Results, ShouldHaveLength, 2)
			So(out.Results[0].Handle, ShouldEqual, "alice")
			So(out.Results[0].Score, ShouldEqual, 1000)
			So(out.Results[1].Handle, ShouldEqual, "bob")
			So(out.Observed, ShouldEqual, 3)
			So(out.Late, ShouldEqual, 1)
		})
	})
}

type goldenDay struct {
	Day     string              `json:"day"`
	Results []model.DailyResult `json:"results"`
}

func TestComputeDailySequence(t *testing.T) {
	e := newEngine()
	days := []struct {
		d       int
		offsets map[string]int64
		order   []string
	}{
		{1, map[string]int64{"alice": 0, "bob": -5}, []string{"alice", "bob"}},
		{2, map[string]int64{"alice": 10, "bob": 5}, []string{"alice", "bob"}},
		{3, map[string]int64{"alice": 0, "bob": 0, "carol": 500}, []string{"alice", "bob", "carol"}},
	}

	Convey("Given three consecutive days", t, func() {
		var store model.RatingStore
		var got []goldenDay
		stores := make([]model.RatingStore, 0, len(days))
		for _, d := range days {
			out, err := e.ComputeDaily(day(d.d), posts(d.d, d.offsets, d.order...), nil, store, 1.0)
			So(err, ShouldBeNil)
			store = out.Store
			stores = append(stores, store)
			got = append(got, goldenDay{Day: day(d.d).Format("2006-01-02"), Results: out.Results})
		}

		Convey("Then every history has one entry per attendance", func() {
			for _, r := range store {
				So(rating.ValidateRecord(r), ShouldBeNil)
				So(r.Record, ShouldHaveLength, r.Attend)
				So(r.Highest, ShouldBeGreaterThanOrEqualTo, r.Rate)
			}
			So(store["alice"].Attend, ShouldEqual, 3)
			So(store["carol"].Attend, ShouldEqual, 1)
		})

		Convey("Then the returning participants carry their previous rates", func() {
			day3 := got[2].Results
			So(day3[0].Handle, ShouldEqual, "alice")
			So(day3[0].InnerRate, ShouldEqual, 1585)
			So(day3[0].Change, ShouldEqual, "+267")
			So(day3[2].Handle, ShouldEqual, "carol")
			So(day3[2].Change, ShouldEqual, "NEW")
		})

		Convey("Then skipping a day changes what follows", func() {
			d := days[2]
			skipped, err := e.ComputeDaily(day(d.d), posts(d.d, d.offsets, d.order...), nil, stores[0], 1.0)
			So(err, ShouldBeNil)
			So(skipped.Results[0].Rating, ShouldNotEqual, got[2].Results[0].Rating)
		})

		Convey("Then the results match the recorded sequence", func() {
			data, err := json.MarshalIndent(got, "", "  ")
			So(err, ShouldBeNil)

			g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
			g.Assert(t, "daily_sequence", append(data, '\n'))
		})
	})
}
