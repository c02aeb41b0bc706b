// Package aoi locates the windows of worst urban-heat severity in a set of
// co-registered raster layers.
//
// The pipeline is: heat score per cell, NaN-aware mean over every square
// window of the target physical size, then greedy selection of the best
// non-overlapping windows. Everything here is pure and single-threaded;
// inputs are never modified.
package aoi

import (
	"errors"
	"fmt"

	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/scoring"
)

// Default identification parameters.
const (
	DefaultTopN     = 3
	DefaultTargetKM = 2.0
)

// Params controls a single identification.
type Params struct {
	// TopN is the maximum number of windows returned. 1 selects the single
	// best window.
	TopN int `json:"top_n"`
	// TargetKM is the physical window side length in kilometres.
	TargetKM float64 `json:"target_km"`
}

// DefaultParams returns TopN=3, TargetKM=2.
func DefaultParams() Params {
	return Params{TopN: DefaultTopN, TargetKM: DefaultTargetKM}
}

// Report is the outcome of Identify.
type Report struct {
	AOIs       []Result `json:"aois"`
	Requested  int      `json:"requested"`
	WindowSize int      `json:"window_size"`
	// Degenerate lists layers with no dynamic range; they contributed a
	// constant term to every cell.
	Degenerate []string `json:"degenerate,omitempty"`
	// Partial is set when fewer than Requested windows were available.
	Partial bool `json:"partial"`
}

// Identify scores the layers and returns the best non-overlapping windows.
// The three layers must share shape and transform t; only the shape is
// checked. On ExhaustedCandidates the partial report is returned together
// with an error matching ErrExhaustedCandidates.
func Identify(layers scoring.Layers, t raster.Transform, p Params) (Report, error) {
	if err := t.Validate(); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	w, err := WindowSizeKM(t, p.TargetKM)
	if err != nil {
		return Report{}, err
	}
	return IdentifyWindow(layers, t, w, p.TopN)
}

// IdentifyWindow is Identify with an explicit window size in pixels instead
// of a physical target length.
func IdentifyWindow(layers scoring.Layers, t raster.Transform, w, topN int) (Report, error) {
	if topN < 1 {
		return Report{}, invalid("top_n %d must be at least 1", topN)
	}
	heat, err := scoring.HeatScore(layers)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	agg, err := SlidingWindowMean(heat.Score, w)
	if err != nil {
		return Report{}, err
	}

	rep := Report{Requested: topN, WindowSize: w, Degenerate: heat.Degenerate}
	rep.AOIs, err = SelectTop(agg, w, t, topN)
	if err != nil {
		if !errors.Is(err, ErrExhaustedCandidates) {
			return Report{}, err
		}
		rep.Partial = true
		return rep, err
	}
	return rep, nil
}
