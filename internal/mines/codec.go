package mines

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape lists the extent of every axis of a board, axis 0 first.
type Shape []int

// Coords is a position on a board, one value per axis.
type Coords []int

// Weights is the mixed-radix table used to flatten [Coords] into a linear
// cell index and back. Weights[0] is always 1.
type Weights []int

// Dimensions returns the number of axes of s.
func (s Shape) Dimensions() int {
	return len(s)
}

// Weights returns the positional weight of every axis: the product of all
// axis sizes before it.
func (s Shape) Weights() Weights {
	if len(s) == 0 {
		return nil
	}
	w := make(Weights, len(s))
	w[0] = 1
	for j := 1; j < len(s); j++ {
		w[j] = s[j-1] * w[j-1]
	}
	return w
}

// TotalCells returns the number of cells on a board of shape s. A shape
// with no axes or with a non-positive axis has no cells.
func (s Shape) TotalCells() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, size := range s {
		if size <= 0 {
			return 0
		}
		n *= size
	}
	return n
}

// Contains reports whether c has one value per axis of s and every value
// lies in [0, s[j]).
func (s Shape) Contains(c Coords) bool {
	if len(c) != len(s) {
		return false
	}
	for j, v := range c {
		if v < 0 || v >= s[j] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for j, size := range s {
		parts[j] = strconv.Itoa(size)
	}
	return strings.Join(parts, "x")
}

// ParseShape reads a shape written as "9x9x9" or "9,9,9".
func ParseShape(str string) (Shape, error) {
	ints, err := parseInts(str, "x,")
	if err != nil {
		return nil, fmt.Errorf("invalid shape %q: %w", str, err)
	}
	return Shape(ints), nil
}

// IndexOf flattens c. Validity of c is the caller's concern.
func (w Weights) IndexOf(c Coords) int {
	index := 0
	for j := range w {
		index += c[j] * w[j]
	}
	return index
}

// CoordsOf is the inverse of [Weights.IndexOf].
func (w Weights) CoordsOf(index int) Coords {
	if len(w) == 0 {
		return nil
	}
	c := make(Coords, len(w))
	for j := len(w) - 1; j > 0; j-- {
		c[j] = index / w[j]
		index %= w[j]
	}
	c[0] = index
	return c
}

// Adjacent reports whether a and b are distinct cells no more than one step
// apart along every axis.
func Adjacent(a, b Coords) bool {
	if len(a) != len(b) {
		return false
	}
	same := true
	for j := range a {
		d := a[j] - b[j]
		if d < -1 || d > 1 {
			return false
		}
		if d != 0 {
			same = false
		}
	}
	return !same
}

func (c Coords) String() string {
	parts := make([]string, len(c))
	for j, v := range c {
		parts[j] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// ParseCoords reads coordinates written as "1,2,3", "1 2 3" or "(1,2,3)".
func ParseCoords(str string) (Coords, error) {
	str = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(str), "("), ")")
	ints, err := parseInts(str, ", ")
	if err != nil {
		return nil, fmt.Errorf("invalid coordinates %q: %w", str, err)
	}
	return Coords(ints), nil
}

func parseInts(str string, seps string) ([]int, error) {
	fields := strings.FieldsFunc(str, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no values")
	}
	ints := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		ints[i] = v
	}
	return ints, nil
}
