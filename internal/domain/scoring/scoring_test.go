package scoring_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func randomGrid(rng *rand.Rand, rows, cols int, nanFrac float64) *raster.Grid {
	g := raster.NewGrid(rows, cols)
	for i := range g.Data {
		if rng.Float64() < nanFrac {
			g.Data[i] = math.NaN()
			if rng.Intn(3) == 0 {
				g.Data[i] = math.Inf(1 - 2*rng.Intn(2))
			}
			continue
		}
		g.Data[i] = rng.NormFloat64()*15 + 30
	}
	return g
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func TestNormalize(t *testing.T) {
	Convey("Given a grid with dynamic range", t, func() {
		g, _ := raster.FromRows([][]float64{{10, 20}, {math.NaN(), 30}})

		Convey("When it is normalised", func() {
			out, degenerate := scoring.Normalize(g)

			Convey("Then the extremes map to exactly 0 and 1", func() {
				So(degenerate, ShouldBeFalse)
				So(out.At(0, 0), ShouldEqual, 0.0)
				So(out.At(1, 1), ShouldEqual, 1.0)
				So(out.At(0, 1), ShouldAlmostEqual, 0.5)
			})

			Convey("And NaN propagates", func() {
				So(math.IsNaN(out.At(1, 0)), ShouldBeTrue)
			})

			Convey("And the input is untouched", func() {
				So(g.At(0, 0), ShouldEqual, 10)
			})
		})
	})

	Convey("Given random grids with scattered NaN and infinite cells", t, func() {
		rng := rand.New(rand.NewSource(7))
		for trial := 0; trial < 20; trial++ {
			g := randomGrid(rng, 1+rng.Intn(12), 1+rng.Intn(12), 0.2)
			lo, hi, ok := g.FiniteRange()
			if !ok || lo == hi {
				continue
			}
			out, degenerate := scoring.Normalize(g)
			So(degenerate, ShouldBeFalse)
			for i, v := range out.Data {
				if !finite(g.Data[i]) {
					So(math.IsNaN(v), ShouldBeTrue)
					continue
				}
				So(v, ShouldBeBetweenOrEqual, 0.0, 1.0)
				if g.Data[i] == lo {
					So(v, ShouldEqual, 0.0)
				}
				if g.Data[i] == hi {
					So(v, ShouldEqual, 1.0)
				}
			}
		}
	})

	Convey("Given a grid with infinite extremes", t, func() {
		g, _ := raster.FromRows([][]float64{{math.Inf(-1), 10}, {20, math.Inf(1)}})
		out, degenerate := scoring.Normalize(g)

		So(degenerate, ShouldBeFalse)
		So(math.IsNaN(out.At(0, 0)), ShouldBeTrue)
		So(math.IsNaN(out.At(1, 1)), ShouldBeTrue)
		So(out.At(0, 1), ShouldEqual, 0.0)
		So(out.At(1, 0), ShouldEqual, 1.0)
	})

	Convey("Given a constant grid", t, func() {
		g, _ := raster.FromRows([][]float64{{5, 5}, {5, math.NaN()}})

		Convey("When it is normalised", func() {
			out, degenerate := scoring.Normalize(g)

			Convey("Then finite cells fall back to zero and NaN stays NaN", func() {
				So(degenerate, ShouldBeTrue)
				So(out.At(0, 0), ShouldEqual, 0.0)
				So(out.At(1, 0), ShouldEqual, 0.0)
				So(math.IsNaN(out.At(1, 1)), ShouldBeTrue)
			})
		})
	})

	Convey("Given an all-NaN grid", t, func() {
		out, degenerate := scoring.Normalize(raster.NewGridFilled(2, 3, math.NaN()))

		So(degenerate, ShouldBeTrue)
		So(out.CountNaN(), ShouldEqual, 6)
	})
}

func TestHeatScore(t *testing.T) {
	Convey("Given three co-registered layers", t, func() {
		temp, _ := raster.FromRows([][]float64{{20, 40}, {30, 25}})
		veg, _ := raster.FromRows([][]float64{{0.8, 0.1}, {0.5, 0.3}})
		height, _ := raster.FromRows([][]float64{{15, 0}, {5, 10}})

		Convey("When the heat score is computed", func() {
			res, err := scoring.HeatScore(scoring.Layers{Temperature: temp, Vegetation: veg, Height: height})

			Convey("Then hot bare cells score highest", func() {
				So(err, ShouldBeNil)
				So(res.Degenerate, ShouldBeEmpty)
				So(res.Score.At(0, 1), ShouldAlmostEqual, 3.0)
				So(res.Score.At(0, 0), ShouldAlmostEqual, 0.0)
			})
		})
	})

	Convey("Given random layers", t, func() {
		rng := rand.New(rand.NewSource(11))
		for trial := 0; trial < 10; trial++ {
			rows, cols := 2+rng.Intn(10), 2+rng.Intn(10)
			res, err := scoring.HeatScore(scoring.Layers{
				Temperature: randomGrid(rng, rows, cols, 0.1),
				Vegetation:  randomGrid(rng, rows, cols, 0.1),
				Height:      randomGrid(rng, rows, cols, 0.1),
			})
			So(err, ShouldBeNil)
			for _, v := range res.Score.Data {
				if math.IsNaN(v) {
					continue
				}
				So(v, ShouldBeBetweenOrEqual, scoring.MinHeatScore, scoring.MaxHeatScore)
			}
		}
	})

	Convey("Given constant vegetation and height layers", t, func() {
		temp, _ := raster.FromRows([][]float64{{1, 2}})
		flat := raster.NewGridFilled(1, 2, 3)

		res, err := scoring.HeatScore(scoring.Layers{Temperature: temp, Vegetation: flat, Height: flat.Clone()})

		So(err, ShouldBeNil)
		So(res.Degenerate, ShouldResemble, []string{scoring.LayerVegetation, scoring.LayerHeight})
		So(res.Score.At(0, 0), ShouldEqual, 2.0)
		So(res.Score.At(0, 1), ShouldEqual, 3.0)
	})

	Convey("Given layers of different shapes", t, func() {
		_, err := scoring.HeatScore(scoring.Layers{
			Temperature: raster.NewGrid(2, 2),
			Vegetation:  raster.NewGrid(2, 3),
			Height:      raster.NewGrid(2, 2),
		})

		So(errors.Is(err, scoring.ErrShapeMismatch), ShouldBeTrue)
	})

	Convey("Given a missing layer", t, func() {
		_, err := scoring.HeatScore(scoring.Layers{Temperature: raster.NewGrid(1, 1), Vegetation: raster.NewGrid(1, 1)})

		So(errors.Is(err, raster.ErrShape), ShouldBeTrue)
	})
}
