package mines

import (
	"fmt"
	"log/slog"
	"slices"
)

var Log *slog.Logger = slog.Default()

// Cell is a single square of a [Board]. Only the selected flag ever changes
// after the board is built.
type Cell struct {
	mined    bool
	selected bool
	hint     int
	coords   Coords
	adjacent []int // indexes into Board.cells, ascending
}

func (c Cell) Mined() bool {
	return c.mined
}

func (c Cell) Selected() bool {
	return c.selected
}

// Hint is the number of mined neighbours.
func (c Cell) Hint() int {
	return c.hint
}

func (c Cell) Coords() Coords {
	return slices.Clone(c.coords)
}

// Adjacent returns the linear indexes of the neighbours of c in ascending
// order.
func (c Cell) Adjacent() []int {
	return slices.Clone(c.adjacent)
}

// Board owns every cell of a game. Neighbour lists refer to cells by index.
//
// A Board is not safe for concurrent use.
type Board struct {
	shape   Shape
	weights Weights
	cells   []Cell
	mines   int
}

type buildOptions struct {
	limits Limits
}

type BuildOption func(*buildOptions)

// WithLimits replaces [DefaultLimits] for a single build.
func WithLimits(l Limits) BuildOption {
	return func(o *buildOptions) {
		o.limits = l
	}
}

// Build creates a board of the given shape with mines at the given
// coordinates. Duplicate mine coordinates are counted once.
//
// Build fails with a [ConfigError] if the shape violates the configured
// [Limits] or a mine lies outside the board.
func Build(shape Shape, mines []Coords, opts ...BuildOption) (*Board, error) {
	o := buildOptions{limits: DefaultLimits}
	for _, opt := range opts {
		opt(&o)
	}

	if err := shape.Validate(o.limits); err != nil {
		return nil, err
	}

	shape = slices.Clone(shape)
	b := &Board{
		shape:   shape,
		weights: shape.Weights(),
		cells:   make([]Cell, shape.TotalCells()),
	}

	for _, m := range mines {
		if !shape.Contains(m) {
			return nil, ConfigError{
				Shape: shape,
				Err:   fmt.Errorf("mine %v: %w", m, ErrInvalidCoordinate),
			}
		}
		i := b.weights.IndexOf(m)
		if !b.cells[i].mined {
			b.cells[i].mined = true
			b.mines++
		}
	}

	for i := range b.cells {
		b.cells[i].coords = b.weights.CoordsOf(i)
	}

	offsets := neighbourOffsets(shape, b.weights)
	for i := range b.cells {
		b.link(i, offsets)
	}

	Log.Debug("built board",
		slog.String("shape", shape.String()),
		slog.Int("cells", len(b.cells)),
		slog.Int("mines", b.mines),
	)

	return b, nil
}

type offset struct {
	delta  Coords
	linear int
}

// neighbourOffsets lists every non-zero step in {-1,0,1}^N that can land on
// the board, ordered by the linear distance it covers. Applying them in this
// order to any cell yields its neighbours in ascending index order.
func neighbourOffsets(shape Shape, w Weights) []offset {
	var offsets []offset
	delta := make(Coords, len(shape))
	var walk func(j int)
	walk = func(j int) {
		if j == len(shape) {
			linear := w.IndexOf(delta)
			if linear != 0 {
				offsets = append(offsets, offset{slices.Clone(delta), linear})
			}
			return
		}
		for d := -1; d <= 1; d++ {
			if d != 0 && shape[j] == 1 {
				continue
			}
			delta[j] = d
			walk(j + 1)
		}
		delta[j] = 0
	}
	walk(0)

	slices.SortFunc(offsets, func(a, b offset) int {
		return a.linear - b.linear
	})
	return offsets
}

func (b *Board) link(i int, offsets []offset) {
	c := &b.cells[i]
	for _, off := range offsets {
		inside := true
		for j, d := range off.delta {
			v := c.coords[j] + d
			if v < 0 || v >= b.shape[j] {
				inside = false
				break
			}
		}
		if !inside {
			continue
		}
		n := i + off.linear
		c.adjacent = append(c.adjacent, n)
		if b.cells[n].mined {
			c.hint++
		}
	}
}

func (b *Board) Shape() Shape {
	return slices.Clone(b.shape)
}

func (b *Board) Weights() Weights {
	return slices.Clone(b.weights)
}

// Len returns the number of cells.
func (b *Board) Len() int {
	return len(b.cells)
}

func (b *Board) MineCount() int {
	return b.mines
}

// At returns the cell with linear index i. It panics if i is out of range.
func (b *Board) At(i int) Cell {
	return b.cells[i]
}

// Cell returns the cell at c, or false if c is not on the board.
func (b *Board) Cell(c Coords) (Cell, bool) {
	if !b.shape.Contains(c) {
		return Cell{}, false
	}
	return b.cells[b.weights.IndexOf(c)], true
}

// Cells returns a copy of every cell in linear index order.
func (b *Board) Cells() []Cell {
	return slices.Clone(b.cells)
}
