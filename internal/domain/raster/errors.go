package raster

import "errors"

// Sentinel kinds for raster errors.
var (
	ErrShape     = errors.New("invalid grid shape")
	ErrTransform = errors.New("invalid affine transform")
)
