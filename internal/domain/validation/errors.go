package validation

import "errors"

// ErrInvalidInput marks a malformed grid, transform or study box.
var ErrInvalidInput = errors.New("invalid validation input")
