package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// snapshot is the persisted form of a board. Hints and adjacency are
// rebuilt on decode rather than stored.
type snapshot struct {
	Shape    Shape
	Mines    []int
	Selected []int
}

// Bytes encodes the board so that [DecodeBoard] can restore it.
func (b *Board) Bytes() ([]byte, error) {
	s := snapshot{Shape: b.shape}
	for i, c := range b.cells {
		if c.mined {
			s.Mines = append(s.Mines, i)
		}
		if c.selected {
			s.Selected = append(s.Selected, i)
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBoard rebuilds a board from the output of [Board.Bytes].
func DecodeBoard(buf []byte, opts ...BuildOption) (*Board, error) {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&s); err != nil {
		return nil, err
	}

	w := s.Shape.Weights()
	n := s.Shape.TotalCells()
	mines := make([]Coords, 0, len(s.Mines))
	for _, i := range s.Mines {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("mine index %d out of range", i)
		}
		mines = append(mines, w.CoordsOf(i))
	}

	b, err := Build(s.Shape, mines, opts...)
	if err != nil {
		return nil, err
	}
	for _, i := range s.Selected {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("selected index %d out of range", i)
		}
		b.cells[i].selected = true
	}
	return b, nil
}
