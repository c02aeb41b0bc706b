// Package scoring turns raw raster layers into per-cell heat scores.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/heataoi/internal/domain/raster"
)

// Heat score bounds.
const (
	MinHeatScore = 0.0
	MaxHeatScore = 3.0
)

// Layer names used in reports and logs.
const (
	LayerTemperature = "temperature"
	LayerVegetation  = "vegetation"
	LayerHeight      = "height"
)

// Normalize min-max scales the finite samples of g into [0, 1]. NaN and
// infinite cells become NaN. When the grid has no dynamic range (or no
// finite sample at all) every finite cell maps to 0 and degenerate is true.
func Normalize(g *raster.Grid) (out *raster.Grid, degenerate bool) {
	out = raster.NewGrid(g.Rows, g.Cols)
	lo, hi, ok := g.FiniteRange()
	span := hi - lo
	if !ok || span == 0 {
		for i, v := range g.Data {
			if !isFinite(v) {
				out.Data[i] = math.NaN()
			}
		}
		return out, true
	}
	for i, v := range g.Data {
		switch {
		case !isFinite(v):
			out.Data[i] = math.NaN()
		case v == hi:
			out.Data[i] = 1
		default:
			out.Data[i] = (v - lo) / span
		}
	}
	return out, false
}

// Layers bundles the three co-registered inputs of the heat score.
type Layers struct {
	Temperature *raster.Grid
	Vegetation  *raster.Grid
	Height      *raster.Grid
}

// Validate checks that all three layers exist and share one shape.
func (l Layers) Validate() error {
	named := []struct {
		name string
		g    *raster.Grid
	}{
		{LayerTemperature, l.Temperature},
		{LayerVegetation, l.Vegetation},
		{LayerHeight, l.Height},
	}
	for _, n := range named {
		if err := n.g.Validate(); err != nil {
			return fmt.Errorf("%s layer: %w", n.name, err)
		}
	}
	if !l.Temperature.SameShape(l.Vegetation) || !l.Temperature.SameShape(l.Height) {
		return fmt.Errorf("temperature %dx%d, vegetation %dx%d, height %dx%d: %w",
			l.Temperature.Rows, l.Temperature.Cols,
			l.Vegetation.Rows, l.Vegetation.Cols,
			l.Height.Rows, l.Height.Cols,
			ErrShapeMismatch)
	}
	return nil
}

// Result is a heat score grid together with the layers whose normalisation
// fell back to zero.
type Result struct {
	Score      *raster.Grid
	Degenerate []string
}

// HeatScore normalises each layer independently and combines them as
// temp + (1 - vegetation) + (1 - height). Hot, bare, low-canopy cells score
// highest. The result lies in [0, 3]; a NaN in any layer yields NaN.
func HeatScore(l Layers) (Result, error) {
	if err := l.Validate(); err != nil {
		return Result{}, err
	}
	var res Result
	temp, deg := Normalize(l.Temperature)
	if deg {
		res.Degenerate = append(res.Degenerate, LayerTemperature)
	}
	veg, deg := Normalize(l.Vegetation)
	if deg {
		res.Degenerate = append(res.Degenerate, LayerVegetation)
	}
	height, deg := Normalize(l.Height)
	if deg {
		res.Degenerate = append(res.Degenerate, LayerHeight)
	}

	score := raster.NewGrid(temp.Rows, temp.Cols)
	for i := range score.Data {
		score.Data[i] = temp.Data[i] + (1 - veg.Data[i]) + (1 - height.Data[i])
	}
	res.Score = score
	return res, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
