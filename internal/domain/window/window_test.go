package window_test

import (
	"testing"
	"time"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
	"github.com/smartystreets/goconvey/convey"
)

func TestWindowContains(t *testing.T) {
	convey.Convey("Given a bounded window", t, func() {
		w := window.Window{Start: "2024-03-01", End: "2024-03-31"}

		convey.Convey("Then dates strictly inside are contained", func() {
			convey.So(w.Contains("2024-03-15"), convey.ShouldBeTrue)
			convey.So(w.Contains("2024-03-15 09:30:00"), convey.ShouldBeTrue)
		})

		convey.Convey("Then boundary dates are included on both ends", func() {
			convey.So(w.Contains("2024-03-01"), convey.ShouldBeTrue)
			convey.So(w.Contains("2024-03-31"), convey.ShouldBeTrue)
			convey.So(w.Contains("2024-03-31 23:59:59"), convey.ShouldBeTrue)
		})

		convey.Convey("Then out-of-range dates are rejected", func() {
			convey.So(w.Contains("2024-02-29"), convey.ShouldBeFalse)
			convey.So(w.Contains("2024-04-01"), convey.ShouldBeFalse)
			convey.So(w.Contains("2024-04-01 00:00:01"), convey.ShouldBeFalse)
		})

		convey.Convey("Then a record without a date never matches", func() {
			convey.So(w.Contains(""), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a half-open window", t, func() {
		convey.Convey("When only the start bound is set", func() {
			w := window.Window{Start: "2024-03-01"}
			convey.So(w.Contains("2024-02-28"), convey.ShouldBeFalse)
			convey.So(w.Contains("2030-01-01"), convey.ShouldBeTrue)
		})

		convey.Convey("When only the end bound is set", func() {
			w := window.Window{End: "2024-03-31"}
			convey.So(w.Contains("1999-01-01"), convey.ShouldBeTrue)
			convey.So(w.Contains("2024-04-01"), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given the zero window", t, func() {
		var w window.Window

		convey.Convey("Then everything passes through, even undated records", func() {
			convey.So(w.IsZero(), convey.ShouldBeTrue)
			convey.So(w.Contains("2024-03-15"), convey.ShouldBeTrue)
			convey.So(w.Contains(""), convey.ShouldBeTrue)
		})
	})
}

func TestForDays(t *testing.T) {
	convey.Convey("Given a reference time", t, func() {
		now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

		convey.Convey("When building a seven-day window", func() {
			w := window.ForDays(now, 7)

			convey.Convey("Then the bounds cover the trailing week inclusively", func() {
				convey.So(w.Start, convey.ShouldEqual, "2024-03-03")
				convey.So(w.End, convey.ShouldEqual, "2024-03-10")
				convey.So(w.Contains("2024-03-03"), convey.ShouldBeTrue)
				convey.So(w.Contains("2024-03-02"), convey.ShouldBeFalse)
			})
		})
	})
}
