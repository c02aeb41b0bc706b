package raster

import (
	"encoding/json"
	"fmt"
	"math"
)

// gridJSON is the wire shape of a Grid. NaN cells travel as null because JSON
// has no NaN literal.
type gridJSON struct {
	Rows int        `json:"rows"`
	Cols int        `json:"cols"`
	Data []*float64 `json:"data"`
}

// MarshalJSON encodes NaN cells as null.
func (g Grid) MarshalJSON() ([]byte, error) {
	out := gridJSON{Rows: g.Rows, Cols: g.Cols, Data: make([]*float64, len(g.Data))}
	for i := range g.Data {
		if math.IsNaN(g.Data[i]) {
			continue
		}
		v := g.Data[i]
		out.Data[i] = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null cells as NaN and checks the declared shape.
func (g *Grid) UnmarshalJSON(b []byte) error {
	var in gridJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.Rows < 0 || in.Cols < 0 || len(in.Data) != in.Rows*in.Cols {
		return fmt.Errorf("grid %dx%d with %d samples: %w", in.Rows, in.Cols, len(in.Data), ErrShape)
	}
	g.Rows, g.Cols = in.Rows, in.Cols
	g.Data = make([]float64, len(in.Data))
	for i, p := range in.Data {
		if p == nil {
			g.Data[i] = math.NaN()
			continue
		}
		g.Data[i] = *p
	}
	return nil
}

// MarshalJSON encodes the transform as its six GDAL coefficients.
func (t Transform) MarshalJSON() ([]byte, error) {
	c := t.GDAL()
	return json.Marshal(c[:])
}

// UnmarshalJSON decodes six GDAL coefficients.
func (t *Transform) UnmarshalJSON(b []byte) error {
	var c []float64
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	parsed, err := FromGDAL(c)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
