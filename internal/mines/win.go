package mines

// IsWon reports whether every cell without a mine has been selected.
func (b *Board) IsWon() bool {
	for _, c := range b.cells {
		if !c.mined && !c.selected {
			return false
		}
	}
	return true
}

// Status is the state of a game derived from its board.
type Status int

const (
	Playing Status = iota
	Lost
	Victory
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Lost:
		return "lost"
	case Victory:
		return "won"
	default:
		return "unknown"
	}
}

// Status derives the game state from the selected flags. A detonated board
// is lost even if every safe cell was revealed as well.
func (b *Board) Status() Status {
	for _, c := range b.cells {
		if c.mined && c.selected {
			return Lost
		}
	}
	if b.IsWon() {
		return Victory
	}
	return Playing
}

// Outcome maps the current status onto the outcome a move would report.
func (s Status) Outcome() Outcome {
	switch s {
	case Lost:
		return Detonated
	case Victory:
		return Won
	default:
		return Continuing
	}
}
