package mines

// Limits bounds the boards [Build] accepts. A zero field disables that check.
type Limits struct {
	MaxDimensions int
	MaxAxisSize   int
	MaxAdjacent   int // neighbours of a single cell
	MaxCells      int
}

// DefaultLimits are the bounds used when none are configured.
var DefaultLimits = Limits{
	MaxDimensions: 8,
	MaxAxisSize:   64,
	MaxAdjacent:   6560, // 3^8 - 1
	MaxCells:      1 << 20,
}

// Validate checks s against l and returns a [ConfigError] describing the
// first violation found.
func (s Shape) Validate(l Limits) error {
	if len(s) == 0 {
		return ConfigError{Shape: s, Err: ErrEmptyShape}
	}
	if l.MaxDimensions > 0 && len(s) > l.MaxDimensions {
		return ConfigError{Shape: s, Err: ErrTooManyDimensions}
	}
	for _, size := range s {
		if size <= 0 || (l.MaxAxisSize > 0 && size > l.MaxAxisSize) {
			return ConfigError{Shape: s, Err: ErrAxisSize}
		}
	}

	// both products are capped early so huge shapes cannot overflow
	cells, fanout := 1, 1
	for _, size := range s {
		cells *= size
		if l.MaxCells > 0 && cells > l.MaxCells {
			return ConfigError{Shape: s, Err: ErrTooManyCells}
		}
		fanout *= min(size, 3)
		if l.MaxAdjacent > 0 && fanout-1 > l.MaxAdjacent {
			return ConfigError{Shape: s, Err: ErrTooManyNeighbours}
		}
	}
	return nil
}
