package aoi

import (
	"errors"
	"fmt"
)

// Sentinel kinds for AOI errors. These allow errors.Is/As from callers.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrExhaustedCandidates = errors.New("candidate windows exhausted")
)

// ExhaustedError reports that fewer than the requested number of
// non-overlapping windows exist. The partial result is returned alongside it.
type ExhaustedError struct {
	Requested int
	Found     int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("found %d of %d requested windows: %s", e.Found, e.Requested, ErrExhaustedCandidates)
}

// Unwrap lets errors.Is match ErrExhaustedCandidates.
func (e *ExhaustedError) Unwrap() error {
	return ErrExhaustedCandidates
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
