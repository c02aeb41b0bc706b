package raster_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/heataoi/internal/domain/raster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGrid(t *testing.T) {
	Convey("Given grids built from rows", t, func() {
		Convey("When the rows are rectangular", func() {
			g, err := raster.FromRows([][]float64{{1, 2, 3}, {4, math.NaN(), 6}})

			Convey("Then the grid keeps row-major order", func() {
				So(err, ShouldBeNil)
				So(g.Rows, ShouldEqual, 2)
				So(g.Cols, ShouldEqual, 3)
				So(g.At(1, 2), ShouldEqual, 6)
				So(g.CountNaN(), ShouldEqual, 1)
				So(g.Validate(), ShouldBeNil)
			})

			Convey("And the finite range skips NaN", func() {
				lo, hi, ok := g.FiniteRange()
				So(ok, ShouldBeTrue)
				So(lo, ShouldEqual, 1)
				So(hi, ShouldEqual, 6)
			})
		})

		Convey("When the rows are ragged", func() {
			_, err := raster.FromRows([][]float64{{1, 2}, {3}})

			Convey("Then a shape error is returned", func() {
				So(errors.Is(err, raster.ErrShape), ShouldBeTrue)
			})
		})

		Convey("When every cell is NaN", func() {
			g := raster.NewGridFilled(2, 2, math.NaN())
			_, _, ok := g.FiniteRange()

			Convey("Then no finite range exists", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the data slice disagrees with the shape", func() {
			g := &raster.Grid{Rows: 2, Cols: 2, Data: []float64{1}}

			Convey("Then validation fails", func() {
				So(errors.Is(g.Validate(), raster.ErrShape), ShouldBeTrue)
			})
		})
	})
}

func TestTransform(t *testing.T) {
	Convey("Given a north-up transform", t, func() {
		tr := raster.FromOrigin(1000, 5000, 10, 10)

		Convey("Then pixel corners map to map space", func() {
			So(tr.Corner(0, 0), ShouldResemble, raster.Point{X: 1000, Y: 5000})
			So(tr.Corner(2, 3), ShouldResemble, raster.Point{X: 1030, Y: 4980})
			So(tr.CellCenter(0, 0), ShouldResemble, raster.Point{X: 1005, Y: 4995})
		})

		Convey("And the pixel size is absolute", func() {
			w, h := tr.PixelSize()
			So(w, ShouldEqual, 10)
			So(h, ShouldEqual, 10)
		})

		Convey("And it round-trips through GDAL coefficients", func() {
			c := tr.GDAL()
			back, err := raster.FromGDAL(c[:])
			So(err, ShouldBeNil)
			So(back, ShouldResemble, tr)
		})
	})

	Convey("Given malformed coefficients", t, func() {
		_, err := raster.FromGDAL([]float64{1, 2, 3})
		So(errors.Is(err, raster.ErrTransform), ShouldBeTrue)
		So(errors.Is(raster.Transform{PixelWidth: 1}.Validate(), raster.ErrTransform), ShouldBeTrue)
	})
}

func TestGridJSON(t *testing.T) {
	Convey("Given a grid with a missing cell", t, func() {
		g, _ := raster.FromRows([][]float64{{1, math.NaN()}})

		Convey("When it is encoded", func() {
			b, err := json.Marshal(g)

			Convey("Then NaN is written as null", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"rows":1,"cols":2,"data":[1,null]}`)
			})

			Convey("And decoding restores NaN", func() {
				var back raster.Grid
				So(json.Unmarshal(b, &back), ShouldBeNil)
				So(back.At(0, 0), ShouldEqual, 1)
				So(math.IsNaN(back.At(0, 1)), ShouldBeTrue)
			})
		})

		Convey("When the payload shape is inconsistent", func() {
			var back raster.Grid
			err := json.Unmarshal([]byte(`{"rows":2,"cols":2,"data":[1]}`), &back)

			Convey("Then decoding fails", func() {
				So(errors.Is(err, raster.ErrShape), ShouldBeTrue)
			})
		})
	})
}
