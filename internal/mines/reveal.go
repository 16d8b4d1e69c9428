package mines

import (
	"log/slog"

	"github.com/gammazero/deque"
)

// Outcome is the result of a single [Board.Select].
type Outcome int

const (
	Rejected Outcome = iota
	Detonated
	Continuing
	Won
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Detonated:
		return "detonated"
	case Continuing:
		return "continuing"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// Check reports why selecting c would be rejected, or nil if it would not.
func (b *Board) Check(c Coords) error {
	if !b.shape.Contains(c) {
		return ErrInvalidCoordinate
	}
	if b.cells[b.weights.IndexOf(c)].selected {
		return ErrAlreadySelected
	}
	return nil
}

// Select reveals the cell at c.
//
// Selecting a mine marks it selected and returns [Detonated]. Selecting a
// safe cell with no mined neighbours also reveals every cell reachable from
// it through other such cells, plus their border. The board is left
// untouched when the selection is [Rejected].
//
// The board keeps no game over flag: callers stop selecting once they see
// [Detonated] or [Won].
func (b *Board) Select(c Coords) Outcome {
	if err := b.Check(c); err != nil {
		Log.Debug("select rejected",
			slog.String("coords", c.String()),
			slog.Any("reason", err),
		)
		return Rejected
	}
	return b.selectIndex(b.weights.IndexOf(c))
}

// SelectIndex is [Board.Select] addressed by linear index.
func (b *Board) SelectIndex(i int) Outcome {
	if i < 0 || i >= len(b.cells) || b.cells[i].selected {
		return Rejected
	}
	return b.selectIndex(i)
}

func (b *Board) selectIndex(i int) Outcome {
	c := &b.cells[i]
	c.selected = true
	if c.mined {
		return Detonated
	}
	if c.hint == 0 {
		n := b.cascade(i)
		Log.Debug("cascade",
			slog.String("from", c.coords.String()),
			slog.Int("revealed", n),
		)
	}
	if b.IsWon() {
		return Won
	}
	return Continuing
}

// cascade reveals the zero-hint region around the already selected cell
// start and returns how many further cells were revealed. Cells are marked
// before they are queued so each one is visited once.
func (b *Board) cascade(start int) int {
	var todo deque.Deque[int]
	todo.PushBack(start)

	revealed := 0
	for todo.Len() > 0 {
		i := todo.PopFront()
		for _, j := range b.cells[i].adjacent {
			n := &b.cells[j]
			if n.selected {
				continue
			}
			n.selected = true
			revealed++
			if n.hint == 0 {
				todo.PushBack(j)
			}
		}
	}
	return revealed
}

// RevealAll selects every cell that is still hidden without cascading or
// reporting an outcome. It is how a game is given up.
func (b *Board) RevealAll() {
	for i := range b.cells {
		b.cells[i].selected = true
	}
}
