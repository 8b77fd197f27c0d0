package rating_test

import (
	"testing"

	"github.com/okian/syaroho/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInnerRate(t *testing.T) {
	p := rating.DefaultParams()

	Convey("Given a single performance", t, func() {
		So(rating.InnerRate([]int{1845}, p), ShouldAlmostEqual, 1845, 1e-9)
	})

	Convey("Given a constant history", t, func() {
		So(rating.InnerRate([]int{1500, 1500, 1500, 1500}, p), ShouldAlmostEqual, 1500, 1e-9)
	})

	Convey("Given a rising history", t, func() {
		Convey("Then recent performances pull harder than old ones", func() {
			rising := rating.InnerRate([]int{1200, 2000}, p)
			falling := rating.InnerRate([]int{2000, 1200}, p)
			So(rising, ShouldBeGreaterThan, 1600)
			So(falling, ShouldBeLessThan, 1600)
		})

		Convey("Then the two-day fixture rounds to 1585", func() {
			So(int(rating.InnerRate([]int{1845, 1287}, p)+0.5), ShouldEqual, 1585)
		})
	})
}

func TestPenalty(t *testing.T) {
	p := rating.DefaultParams()

	Convey("Given growing attendance", t, func() {
		Convey("Then a single attendance costs the full penalty", func() {
			So(rating.Penalty(1, p), ShouldAlmostEqual, 1200, 1e-9)
		})

		Convey("Then the penalty shrinks with every attendance", func() {
			So(rating.Penalty(2, p), ShouldAlmostEqual, 745.413209167406, 1e-9)
			So(rating.Penalty(3, p), ShouldAlmostEqual, 545.1360660734736, 1e-9)
			prev := rating.Penalty(1, p)
			for att := 2; att <= 200; att++ {
				cur := rating.Penalty(att, p)
				So(cur, ShouldBeLessThan, prev)
				So(cur, ShouldBeGreaterThanOrEqualTo, 0)
				prev = cur
			}
		})
	})
}

func TestDisplayRate(t *testing.T) {
	p := rating.DefaultParams()

	Convey("Given a first-day participant", t, func() {
		Convey("Then a perf of 1600 displays 400", func() {
			So(int(rating.DisplayRate(1600, 1, p)+0.5), ShouldEqual, 400)
		})

		Convey("Then a perf of 1241 is compressed below the floor", func() {
			So(int(rating.DisplayRate(1241, 1, p)+0.5), ShouldEqual, 163)
		})
	})

	Convey("Given very low inner rates", t, func() {
		Convey("Then the displayed rate stays positive and decreasing", func() {
			prev := rating.DisplayRate(400+1200, 1, p)
			for inner := 1590.0; inner > -4000; inner -= 10 {
				cur := rating.DisplayRate(inner, 1, p)
				So(cur, ShouldBeGreaterThan, 0)
				So(cur, ShouldBeLessThan, prev)
				prev = cur
			}
		})
	})

	Convey("Given rates around the floor", t, func() {
		Convey("Then both branches meet at 400", func() {
			below := rating.DisplayRate(400+1200-1e-9, 1, p)
			above := rating.DisplayRate(400+1200+1e-9, 1, p)
			So(below, ShouldAlmostEqual, above, 1e-6)
		})
	})
}

func TestChange(t *testing.T) {
	Convey("Given a previous rate", t, func() {
		So(rating.Change(839, 1106), ShouldEqual, "+267")
		So(rating.Change(1106, 1000), ShouldEqual, "-106")
		So(rating.Change(500, 500), ShouldEqual, "+0")
	})

	Convey("Given a previous rate of zero", t, func() {
		So(rating.Change(0, 400), ShouldEqual, rating.NewParticipantChange)
		So(rating.Change(0, 0), ShouldEqual, "NEW")
	})
}
