// Package align plans the common target grid for a set of raster layers:
// the intersection of their extents snapped to a fixed output resolution.
// Resampling onto the planned grid is left to the caller's raster library.
package align

import (
	"fmt"
	"math"

	"github.com/okian/heataoi/internal/domain/raster"
)

// DefaultResolution is the output pixel size in map units (metres).
const DefaultResolution = 10.0

// Layer describes one input raster by its transform and dimensions.
type Layer struct {
	Name      string           `json:"name"`
	Transform raster.Transform `json:"transform"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
}

// Extent is an axis-aligned box in map coordinates.
type Extent struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Empty reports whether the extent has no area.
func (e Extent) Empty() bool {
	return e.East <= e.West || e.North <= e.South
}

// Extent returns the layer footprint. Rotation terms are ignored.
func (l Layer) Extent() Extent {
	x0 := l.Transform.OriginX
	x1 := x0 + float64(l.Cols)*l.Transform.PixelWidth
	y0 := l.Transform.OriginY
	y1 := y0 + float64(l.Rows)*l.Transform.PixelHeight
	return Extent{
		West:  math.Min(x0, x1),
		East:  math.Max(x0, x1),
		South: math.Min(y0, y1),
		North: math.Max(y0, y1),
	}
}

// Plan is the target grid every layer should be resampled onto.
type Plan struct {
	Extent     Extent           `json:"extent"`
	Transform  raster.Transform `json:"transform"`
	Rows       int              `json:"rows"`
	Cols       int              `json:"cols"`
	Resolution float64          `json:"resolution"`
}

// Intersect returns the common extent of all layers.
func Intersect(layers ...Layer) (Extent, error) {
	if len(layers) == 0 {
		return Extent{}, fmt.Errorf("no layers: %w", ErrEmptyIntersection)
	}
	out := Extent{
		West:  math.Inf(-1),
		South: math.Inf(-1),
		East:  math.Inf(1),
		North: math.Inf(1),
	}
	for _, l := range layers {
		if err := l.Transform.Validate(); err != nil {
			return Extent{}, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		if l.Rows <= 0 || l.Cols <= 0 {
			return Extent{}, fmt.Errorf("layer %q has shape %dx%d: %w", l.Name, l.Rows, l.Cols, raster.ErrShape)
		}
		e := l.Extent()
		out.West = math.Max(out.West, e.West)
		out.South = math.Max(out.South, e.South)
		out.East = math.Min(out.East, e.East)
		out.North = math.Min(out.North, e.North)
	}
	if out.Empty() {
		return Extent{}, fmt.Errorf("extents do not overlap: %w", ErrEmptyIntersection)
	}
	return out, nil
}

// NewPlan intersects the layers and lays a north-up grid of the given
// resolution over the result, anchored at its north-west corner. Partial
// pixels at the east and south edges are dropped.
func NewPlan(resolution float64, layers ...Layer) (Plan, error) {
	if math.IsNaN(resolution) || math.IsInf(resolution, 0) || resolution <= 0 {
		return Plan{}, fmt.Errorf("resolution %v: %w", resolution, ErrInvalidResolution)
	}
	ext, err := Intersect(layers...)
	if err != nil {
		return Plan{}, err
	}
	cols := int(math.Floor((ext.East - ext.West) / resolution))
	rows := int(math.Floor((ext.North - ext.South) / resolution))
	if rows < 1 || cols < 1 {
		return Plan{}, fmt.Errorf("overlap %.3fx%.3f is smaller than one %v pixel: %w",
			ext.East-ext.West, ext.North-ext.South, resolution, ErrEmptyIntersection)
	}
	return Plan{
		Extent:     ext,
		Transform:  raster.FromOrigin(ext.West, ext.North, resolution, resolution),
		Rows:       rows,
		Cols:       cols,
		Resolution: resolution,
	}, nil
}
