// Package raster contains the grid and affine transform types shared by the
// scoring, AOI, alignment and validation packages.
package raster

import (
	"fmt"
	"math"
)

// Grid is a dense row-major 2-D array of samples. NaN marks missing data.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid allocates a zero-filled rows x cols grid.
func NewGrid(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// NewGridFilled allocates a rows x cols grid with every cell set to v.
func NewGridFilled(rows, cols int, v float64) *Grid {
	g := NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// FromRows builds a grid from a slice of equal-length rows.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	cols := len(rows[0])
	g := NewGrid(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", r, len(row), cols, ErrShape)
		}
		copy(g.Data[r*cols:(r+1)*cols], row)
	}
	return g, nil
}

// Validate reports whether the backing slice matches the declared shape.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("nil grid: %w", ErrShape)
	}
	if g.Rows < 0 || g.Cols < 0 {
		return fmt.Errorf("negative shape %dx%d: %w", g.Rows, g.Cols, ErrShape)
	}
	if len(g.Data) != g.Rows*g.Cols {
		return fmt.Errorf("data length %d does not match %dx%d: %w", len(g.Data), g.Rows, g.Cols, ErrShape)
	}
	return nil
}

// At returns the sample at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return g.Rows * g.Cols
}

// SameShape reports whether g and o have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	copy(c.Data, g.Data)
	return c
}

// FiniteRange returns the minimum and maximum finite values. ok is false when
// the grid holds no finite value.
func (g *Grid) FiniteRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		ok = true
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return lo, hi, true
}

// CountNaN returns the number of NaN cells.
func (g *Grid) CountNaN() int {
	n := 0
	for _, v := range g.Data {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
