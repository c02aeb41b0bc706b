package aoi

import (
	"fmt"
	"math"

	"github.com/okian/heataoi/internal/domain/raster"
)

// summedArea holds two (rows+1) x (cols+1) prefix tables: the sum of finite
// values and the count of finite values above and left of each corner.
type summedArea struct {
	stride int
	sum    []float64
	count  []int
}

func newSummedArea(g *raster.Grid) *summedArea {
	stride := g.Cols + 1
	s := &summedArea{
		stride: stride,
		sum:    make([]float64, (g.Rows+1)*stride),
		count:  make([]int, (g.Rows+1)*stride),
	}
	for r := 0; r < g.Rows; r++ {
		var rowSum float64
		var rowCount int
		for c := 0; c < g.Cols; c++ {
			if v := g.At(r, c); !math.IsNaN(v) && !math.IsInf(v, 0) {
				rowSum += v
				rowCount++
			}
			idx := (r+1)*stride + c + 1
			s.sum[idx] = s.sum[r*stride+c+1] + rowSum
			s.count[idx] = s.count[r*stride+c+1] + rowCount
		}
	}
	return s
}

// block returns the finite sum and count of the h x w block at (r, c).
func (s *summedArea) block(r, c, h, w int) (float64, int) {
	a := r*s.stride + c
	b := r*s.stride + c + w
	d := (r+h)*s.stride + c
	e := (r+h)*s.stride + c + w
	return s.sum[e] - s.sum[b] - s.sum[d] + s.sum[a], s.count[e] - s.count[b] - s.count[d] + s.count[a]
}

// SlidingWindowMean returns the mean of the finite samples of every w x w
// block of g, one value per top-left offset, as a (rows-w+1) x (cols-w+1)
// grid. NaN and infinite cells count as missing. A block with no finite
// sample yields NaN. Cost is linear in the grid size and
// independent of w.
func SlidingWindowMean(g *raster.Grid, w int) (*raster.Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if w < 1 {
		return nil, invalid("window size %d must be at least 1", w)
	}
	if w > g.Rows || w > g.Cols {
		return nil, invalid("window size %d exceeds grid %dx%d", w, g.Rows, g.Cols)
	}

	sat := newSummedArea(g)
	out := raster.NewGrid(g.Rows-w+1, g.Cols-w+1)
	for r := 0; r < out.Rows; r++ {
		for c := 0; c < out.Cols; c++ {
			sum, n := sat.block(r, c, w, w)
			if n == 0 {
				out.Set(r, c, math.NaN())
				continue
			}
			out.Set(r, c, sum/float64(n))
		}
	}
	return out, nil
}
