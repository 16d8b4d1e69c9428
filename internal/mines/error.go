package mines

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyShape        = errors.New("shape has no axes")
	ErrAxisSize          = errors.New("axis size out of range")
	ErrTooManyDimensions = errors.New("too many dimensions")
	ErrTooManyNeighbours = errors.New("too many neighbours per cell")
	ErrTooManyCells      = errors.New("too many cells")

	ErrInvalidCoordinate = errors.New("coordinates out of bounds")
	ErrAlreadySelected   = errors.New("cell already selected")
)

// ConfigError is returned by [Build] when a board cannot be constructed.
// It never leaves a partially built board behind.
type ConfigError struct {
	Shape Shape
	Err   error
}

// [ConfigError] implements [error]
func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid board %v: %v", []int(e.Shape), e.Err)
}

func (e ConfigError) Unwrap() error {
	return e.Err
}
