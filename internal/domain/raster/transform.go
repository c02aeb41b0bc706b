package raster

import (
	"fmt"
	"math"
)

// Transform maps grid index space to map space. Coefficients follow the GDAL
// geotransform order: OriginX, PixelWidth, RowRotation, OriginY,
// ColRotation, PixelHeight. PixelHeight is negative for north-up rasters.
type Transform struct {
	OriginX     float64
	PixelWidth  float64
	RowRotation float64
	OriginY     float64
	ColRotation float64
	PixelHeight float64
}

// Point is a map-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromOrigin builds a north-up transform with square or rectangular pixels
// anchored at the upper-left corner (west, north).
func FromOrigin(west, north, xsize, ysize float64) Transform {
	return Transform{
		OriginX:     west,
		PixelWidth:  xsize,
		OriginY:     north,
		PixelHeight: -ysize,
	}
}

// FromGDAL builds a Transform from six GDAL-ordered coefficients.
func FromGDAL(c []float64) (Transform, error) {
	if len(c) != 6 {
		return Transform{}, fmt.Errorf("want 6 coefficients, got %d: %w", len(c), ErrTransform)
	}
	return Transform{
		OriginX:     c[0],
		PixelWidth:  c[1],
		RowRotation: c[2],
		OriginY:     c[3],
		ColRotation: c[4],
		PixelHeight: c[5],
	}, nil
}

// GDAL returns the six coefficients in GDAL order.
func (t Transform) GDAL() [6]float64 {
	return [6]float64{t.OriginX, t.PixelWidth, t.RowRotation, t.OriginY, t.ColRotation, t.PixelHeight}
}

// Validate rejects transforms with zero or non-finite pixel sizes.
func (t Transform) Validate() error {
	for _, v := range t.GDAL() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite coefficient: %w", ErrTransform)
		}
	}
	if t.PixelWidth == 0 || t.PixelHeight == 0 {
		return fmt.Errorf("zero pixel size: %w", ErrTransform)
	}
	return nil
}

// Apply converts a (possibly fractional) pixel position to map coordinates.
func (t Transform) Apply(row, col float64) Point {
	return Point{
		X: t.OriginX + col*t.PixelWidth + row*t.RowRotation,
		Y: t.OriginY + col*t.ColRotation + row*t.PixelHeight,
	}
}

// Corner returns the map coordinate of the upper-left corner of pixel (row, col).
func (t Transform) Corner(row, col int) Point {
	return t.Apply(float64(row), float64(col))
}

// CellCenter returns the map coordinate of the centre of pixel (row, col).
func (t Transform) CellCenter(row, col int) Point {
	return t.Apply(float64(row)+0.5, float64(col)+0.5)
}

// PixelSize returns the absolute pixel width and height.
func (t Transform) PixelSize() (width, height float64) {
	return math.Abs(t.PixelWidth), math.Abs(t.PixelHeight)
}
