package aoi

import (
	"math"

	"github.com/okian/heataoi/internal/domain/raster"
)

// metersPerKilometer converts target_km into transform units, which are
// assumed to be metres.
const metersPerKilometer = 1000.0

// WindowSize returns the side length, in pixels, of the largest square
// window that fits inside targetLength along both axes. targetLength is in
// the transform's linear unit.
func WindowSize(t raster.Transform, targetLength float64) (int, error) {
	if math.IsNaN(targetLength) || math.IsInf(targetLength, 0) || targetLength <= 0 {
		return 0, invalid("target length %v must be positive", targetLength)
	}
	pw, ph := t.PixelSize()
	if math.IsNaN(pw) || math.IsNaN(ph) || pw == 0 || ph == 0 {
		return 0, invalid("pixel size %vx%v must be non-zero", pw, ph)
	}
	wx := math.Floor(targetLength / pw)
	wy := math.Floor(targetLength / ph)
	w := math.Min(wx, wy)
	if w < 1 {
		return 0, invalid("pixel size %vx%v exceeds target length %v", pw, ph, targetLength)
	}
	if w > math.MaxInt32 {
		return 0, invalid("window of %v pixels is too large", w)
	}
	return int(w), nil
}

// WindowSizeKM is WindowSize with the target expressed in kilometres.
func WindowSizeKM(t raster.Transform, targetKM float64) (int, error) {
	return WindowSize(t, targetKM*metersPerKilometer)
}
