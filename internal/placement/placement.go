// Package placement chooses mine positions for a new game. The rules engine
// in package mines never places mines itself.
package placement

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"slices"

	"github.com/vancomm/hypermines/internal/mines"
)

var ErrTooManyMines = errors.New("more mines than free cells")

// NewRand returns a generator seeded from runtime randomness.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Random picks count distinct cells of shape. The safe cell never holds a
// mine, and neither do its neighbours unless the board is too crowded to
// leave them clear. A nil safe cell places mines anywhere.
//
// The result is ordered by linear index.
func Random(
	shape mines.Shape, count int, r *rand.Rand, safe mines.Coords,
) ([]mines.Coords, error) {
	n := shape.TotalCells()
	if count < 0 {
		return nil, fmt.Errorf("negative mine count %d", count)
	}
	if safe != nil && !shape.Contains(safe) {
		return nil, fmt.Errorf("safe cell %v: %w", safe, mines.ErrInvalidCoordinate)
	}

	w := shape.Weights()
	var wide, narrow []int
	for i := range n {
		if safe == nil {
			wide = append(wide, i)
			continue
		}
		c := w.CoordsOf(i)
		if slices.Equal(c, safe) {
			continue
		}
		narrow = append(narrow, i)
		if !mines.Adjacent(c, safe) {
			wide = append(wide, i)
		}
	}

	candidates := wide
	if safe != nil && count > len(wide) {
		candidates = narrow
	}
	if count > len(candidates) {
		return nil, fmt.Errorf(
			"%d mines on %v: %w", count, shape, ErrTooManyMines,
		)
	}

	r.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	picked := candidates[:count]
	slices.Sort(picked)

	out := make([]mines.Coords, count)
	for k, i := range picked {
		out[k] = w.CoordsOf(i)
	}
	return out, nil
}
