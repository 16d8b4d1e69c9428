package mines

import (
	"fmt"
	"strconv"
	"strings"
)

// CellState is what a player may know about one cell.
//
//   - 0 and above: the cell is revealed and holds its hint.
//   - Unknown: the cell is hidden.
//   - ExplodedMine: a selected mine.
//   - Mine: a hidden mine, only disclosed once the game is over.
type CellState int

const (
	Unknown      CellState = -2
	ExplodedMine CellState = -3
	Mine         CellState = -4
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return "#"
	case s == ExplodedMine:
		return "X"
	case s == Mine:
		return "*"
	case s == 0:
		return "."
	case s > 0:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Grid holds one [CellState] per cell in linear index order.
type Grid []CellState

// NewGrid returns a grid of shape with every cell hidden.
func NewGrid(shape Shape) Grid {
	g := make(Grid, shape.TotalCells())
	for i := range g {
		g[i] = Unknown
	}
	return g
}

// View projects the board onto what a player may see.
func (b *Board) View() Grid {
	over := b.Status() != Playing
	g := make(Grid, len(b.cells))
	for i, c := range b.cells {
		switch {
		case c.mined && c.selected:
			g[i] = ExplodedMine
		case c.mined && over:
			g[i] = Mine
		case c.selected && !c.mined:
			g[i] = CellState(c.hint)
		default:
			g[i] = Unknown
		}
	}
	return g
}

// Format renders g as rows of axis 0 stacked along axis 1. Boards with more
// than two axes are printed one 2D layer at a time, each headed by the
// coordinates of its remaining axes.
func (g Grid) Format(shape Shape) string {
	if len(shape) == 0 || len(g) != shape.TotalCells() {
		return ""
	}
	width, height := shape[0], 1
	if len(shape) > 1 {
		height = shape[1]
	}
	layer := width * height
	w := shape.Weights()

	var b strings.Builder
	for start := 0; start < len(g); start += layer {
		if len(shape) > 2 {
			fmt.Fprintf(&b, "%v\n", w.CoordsOf(start)[2:])
		}
		for y := range height {
			for x := range width {
				if x > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(g[start+y*width+x].String())
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
