package align

import "errors"

// Sentinel kinds for alignment errors.
var (
	ErrEmptyIntersection = errors.New("layer extents do not intersect")
	ErrInvalidResolution = errors.New("invalid output resolution")
)
