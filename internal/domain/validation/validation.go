// Package validation compares a height raster against surveyed building
// heights. Every valid cell centre falling strictly inside a building
// footprint is attributed to that building.
package validation

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/heataoi/internal/domain/raster"
)

// DefaultHalfSize is half the side of the default 2 km study box.
const DefaultHalfSize = 1000.0

// Building is a surveyed footprint with its reference height.
type Building struct {
	ID     string  `json:"id"`
	Height float64 `json:"height"`
	// Footprint is a list of rings; the first is the outer boundary.
	Footprint [][]raster.Point `json:"footprint"`
}

func (b Building) polygon() geom.Polygon {
	poly := make(geom.Polygon, len(b.Footprint))
	for i, ring := range b.Footprint {
		pts := make([]geom.Point, len(ring))
		for j, p := range ring {
			pts[j] = geom.Point{X: p.X, Y: p.Y}
		}
		poly[i] = pts
	}
	return poly
}

// BuildingStats summarises the raster cells inside one footprint.
type BuildingStats struct {
	ID     string  `json:"id"`
	Height float64 `json:"height"`
	Count  int     `json:"count"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	// Difference is Mean minus the surveyed height.
	Difference float64 `json:"difference"`
}

// Summary is the outcome of Validate.
type Summary struct {
	Buildings        []BuildingStats `json:"buildings"`
	Evaluated        int             `json:"evaluated"`
	MeanDifference   float64         `json:"mean_difference"`
	StdDevDifference float64         `json:"std_dev_difference"`
}

// BBoxAround returns the square box of half-side half centred on (cx, cy).
func BBoxAround(cx, cy, half float64) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: cx - half, Y: cy - half},
		Max: geom.Point{X: cx + half, Y: cy + half},
	}
}

type cellCenter struct {
	geom.Point
	value float64
}

// Index is an R-tree over the centres of the non-NaN cells of a grid.
type Index struct {
	tree  *rtree.Rtree
	cells int
}

// NewIndex builds the cell-centre index for g georeferenced by t.
func NewIndex(g *raster.Grid, t raster.Transform) (*Index, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	idx := &Index{tree: rtree.NewTree(25, 50)}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			p := t.CellCenter(r, c)
			idx.tree.Insert(&cellCenter{Point: geom.Point{X: p.X, Y: p.Y}, value: v})
			idx.cells++
		}
	}
	return idx, nil
}

// Len is the number of indexed cells.
func (idx *Index) Len() int { return idx.cells }

// Inside returns the values of cells strictly inside poly. Cells on the
// boundary are excluded.
func (idx *Index) Inside(poly geom.Polygon) []float64 {
	var out []float64
	for _, s := range idx.tree.SearchIntersect(poly.Bounds()) {
		cc := s.(*cellCenter)
		if cc.Point.Within(poly) == geom.Inside {
			out = append(out, cc.value)
		}
	}
	return out
}

// Validate evaluates every building whose footprint bounds overlap box.
// Buildings without a finite reference height, or without any cell inside
// them, are skipped. Summary statistics are zero when nothing was evaluated.
func Validate(g *raster.Grid, t raster.Transform, buildings []Building, box *geom.Bounds) (Summary, error) {
	if box == nil || box.Max.X <= box.Min.X || box.Max.Y <= box.Min.Y {
		return Summary{}, fmt.Errorf("%w: empty study box", ErrInvalidInput)
	}
	idx, err := NewIndex(g, t)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Buildings: []BuildingStats{}}
	diffs := make([]float64, 0, len(buildings))
	for _, b := range buildings {
		if len(b.Footprint) == 0 || math.IsNaN(b.Height) || math.IsInf(b.Height, 0) {
			continue
		}
		poly := b.polygon()
		if !poly.Bounds().Overlaps(box) {
			continue
		}
		vals := idx.Inside(poly)
		if len(vals) == 0 {
			continue
		}
		st := describe(b, vals)
		sum.Buildings = append(sum.Buildings, st)
		diffs = append(diffs, st.Difference)
	}

	sum.Evaluated = len(sum.Buildings)
	if len(diffs) > 0 {
		mean, variance := stat.PopMeanVariance(diffs, nil)
		sum.MeanDifference = mean
		sum.StdDevDifference = math.Sqrt(variance)
	}
	return sum, nil
}

func describe(b Building, vals []float64) BuildingStats {
	mean, variance := stat.PopMeanVariance(vals, nil)
	return BuildingStats{
		ID:         b.ID,
		Height:     b.Height,
		Count:      len(vals),
		Max:        floats.Max(vals),
		Min:        floats.Min(vals),
		Mean:       mean,
		StdDev:     math.Sqrt(variance),
		Difference: mean - b.Height,
	}
}
