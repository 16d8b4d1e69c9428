package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vancomm/hypermines/internal/mines"
)

func lookupInt(key string, fallback int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an int: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

// Limits reads board limits from MINES_MAX_DIMENSIONS, MINES_MAX_AXIS_SIZE,
// MINES_MAX_ADJACENT and MINES_MAX_CELLS, falling back to
// [mines.DefaultLimits] for unset variables. Zero disables a limit.
func Limits() (mines.Limits, error) {
	var (
		l   = mines.DefaultLimits
		err error
	)
	if l.MaxDimensions, err = lookupInt("MINES_MAX_DIMENSIONS", l.MaxDimensions); err != nil {
		return l, err
	}
	if l.MaxAxisSize, err = lookupInt("MINES_MAX_AXIS_SIZE", l.MaxAxisSize); err != nil {
		return l, err
	}
	if l.MaxAdjacent, err = lookupInt("MINES_MAX_ADJACENT", l.MaxAdjacent); err != nil {
		return l, err
	}
	if l.MaxCells, err = lookupInt("MINES_MAX_CELLS", l.MaxCells); err != nil {
		return l, err
	}
	return l, nil
}
