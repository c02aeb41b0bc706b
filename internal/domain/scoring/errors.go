package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrShapeMismatch = errors.New("layers are not co-registered")
)
