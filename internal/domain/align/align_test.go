package align_test

import (
	"errors"
	"testing"

	"github.com/okian/heataoi/internal/domain/align"
	"github.com/okian/heataoi/internal/domain/raster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewPlan(t *testing.T) {
	Convey("Given three overlapping layers of different resolution", t, func() {
		lst := align.Layer{Name: "lst", Transform: raster.FromOrigin(1000, 9000, 30, 30), Rows: 200, Cols: 200}
		ndvi := align.Layer{Name: "ndvi", Transform: raster.FromOrigin(1500, 8800, 10, 10), Rows: 500, Cols: 500}
		chm := align.Layer{Name: "chm", Transform: raster.FromOrigin(1200, 8900, 1, 1), Rows: 5000, Cols: 4000}

		Convey("When the intersection is computed", func() {
			ext, err := align.Intersect(lst, ndvi, chm)

			Convey("Then it is bounded by the tightest edge on each side", func() {
				So(err, ShouldBeNil)
				So(ext, ShouldResemble, align.Extent{West: 1500, South: 3900, East: 5200, North: 8800})
			})
		})

		Convey("When a 10 m plan is built", func() {
			plan, err := align.NewPlan(align.DefaultResolution, lst, ndvi, chm)

			Convey("Then the grid is anchored at the north-west corner", func() {
				So(err, ShouldBeNil)
				So(plan.Cols, ShouldEqual, 370)
				So(plan.Rows, ShouldEqual, 490)
				So(plan.Transform, ShouldResemble, raster.FromOrigin(1500, 8800, 10, 10))
			})
		})

		Convey("When the resolution is not positive", func() {
			_, err := align.NewPlan(0, lst, ndvi, chm)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, align.ErrInvalidResolution), ShouldBeTrue)
			})
		})
	})

	Convey("Given disjoint layers", t, func() {
		a := align.Layer{Name: "a", Transform: raster.FromOrigin(0, 100, 10, 10), Rows: 10, Cols: 10}
		b := align.Layer{Name: "b", Transform: raster.FromOrigin(500, 100, 10, 10), Rows: 10, Cols: 10}

		_, err := align.NewPlan(10, a, b)

		So(errors.Is(err, align.ErrEmptyIntersection), ShouldBeTrue)
	})

	Convey("Given an overlap thinner than one output pixel", t, func() {
		a := align.Layer{Name: "a", Transform: raster.FromOrigin(0, 100, 10, 10), Rows: 10, Cols: 10}
		b := align.Layer{Name: "b", Transform: raster.FromOrigin(95, 100, 10, 10), Rows: 10, Cols: 10}

		_, err := align.NewPlan(10, a, b)

		So(errors.Is(err, align.ErrEmptyIntersection), ShouldBeTrue)
	})

	Convey("Given a layer with no cells", t, func() {
		a := align.Layer{Name: "a", Transform: raster.FromOrigin(0, 100, 10, 10)}

		_, err := align.Intersect(a)

		So(errors.Is(err, raster.ErrShape), ShouldBeTrue)
	})
}
