package aoi

import (
	"math"

	"github.com/okian/heataoi/internal/domain/raster"
)

// Window is a square pixel footprint in the source grid.
type Window struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Size int `json:"size"`
}

// Overlaps reports whether two windows share at least one pixel.
func (w Window) Overlaps(o Window) bool {
	return w.Row < o.Row+o.Size && o.Row < w.Row+w.Size &&
		w.Col < o.Col+o.Size && o.Col < w.Col+w.Size
}

// Result is one selected area of interest. TopLeft and BottomRight are the
// map coordinates of the window's outer corners.
type Result struct {
	Rank        int          `json:"rank"`
	Score       float64      `json:"score"`
	Window      Window       `json:"window"`
	TopLeft     raster.Point `json:"top_left"`
	BottomRight raster.Point `json:"bottom_right"`
}

// SelectTop picks up to topN non-overlapping windows from an aggregated
// score grid, best first. agg is not modified. Ties go to the first cell in
// row-major order. When the candidates run out early the partial selection
// is returned with an *ExhaustedError. The aggregated cell (r, c) covers
// source pixels [r, r+w) x [c, c+w), not the block starting at (r*w, c*w).
func SelectTop(agg *raster.Grid, w int, t raster.Transform, topN int) ([]Result, error) {
	if err := agg.Validate(); err != nil {
		return nil, invalid("aggregated grid: %v", err)
	}
	if topN < 1 {
		return nil, invalid("top_n %d must be at least 1", topN)
	}
	if w < 1 {
		return nil, invalid("window size %d must be at least 1", w)
	}

	scratch := agg.Clone()
	results := make([]Result, 0, topN)
	for len(results) < topN {
		row, col, score, ok := argMax(scratch)
		if !ok {
			return results, &ExhaustedError{Requested: topN, Found: len(results)}
		}
		win := Window{Row: row, Col: col, Size: w}
		results = append(results, Result{
			Rank:        len(results) + 1,
			Score:       score,
			Window:      win,
			TopLeft:     t.Corner(win.Row, win.Col),
			BottomRight: t.Corner(win.Row+w, win.Col+w),
		})
		suppress(scratch, win)
	}
	return results, nil
}

// argMax scans in row-major order and keeps the first strict maximum.
func argMax(g *raster.Grid) (row, col int, best float64, ok bool) {
	best = math.Inf(-1)
	for i, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		if !ok || v > best {
			best, ok = v, true
			row, col = i/g.Cols, i%g.Cols
		}
	}
	return row, col, best, ok
}

// suppress blanks every aggregated cell whose window would overlap win.
// Aggregated cell (i, j) covers pixel rows [i, i+size) and cols [j, j+size).
func suppress(agg *raster.Grid, win Window) {
	r0 := max(0, win.Row-win.Size+1)
	r1 := min(agg.Rows, win.Row+win.Size)
	c0 := max(0, win.Col-win.Size+1)
	c1 := min(agg.Cols, win.Col+win.Size)
	nan := math.NaN()
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			agg.Set(r, c, nan)
		}
	}
}
