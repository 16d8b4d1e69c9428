package command

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/hypermines/internal/mines"
)

type Kind string

const (
	Noop    Kind = "g"
	Open    Kind = "o"
	Forfeit Kind = "r"
)

var (
	ErrUnknown  = errors.New("unknown command")
	ErrArgCount = errors.New("invalid number of arguments")
	ErrEmpty    = errors.New("empty command")
)

type Command struct {
	Kind   Kind
	Coords mines.Coords
}

func (c Command) String() string {
	if c.Kind == Open {
		parts := make([]string, 0, len(c.Coords)+1)
		parts = append(parts, string(c.Kind))
		for _, v := range c.Coords {
			parts = append(parts, strconv.Itoa(v))
		}
		return strings.Join(parts, " ")
	}
	return string(c.Kind)
}

// nargs returns the number of arguments k takes on a board with dims axes.
func nargs(k Kind, dims int) (int, bool) {
	switch k {
	case Noop, Forfeit:
		return 0, true
	case Open:
		return dims, true
	default:
		return 0, false
	}
}

// Parse reads one command line such as "o 1 0 4" for a board with dims
// axes.
func Parse(line string, dims int) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrEmpty
	}
	kind := Kind(parts[0])
	n, ok := nargs(kind, dims)
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknown, parts[0])
	}
	if len(parts)-1 != n {
		return Command{}, fmt.Errorf(
			"%w: %q takes %d, got %d", ErrArgCount, kind, n, len(parts)-1,
		)
	}

	cmd := Command{Kind: kind}
	if kind == Open {
		cmd.Coords = make(mines.Coords, n)
		for j, arg := range parts[1:] {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return Command{}, fmt.Errorf("argument %d must be an int", j+1)
			}
			cmd.Coords[j] = v
		}
	}
	return cmd, nil
}

// Apply runs c against b. A rejected selection is reported together with
// the reason from [mines.Board.Check]; a forfeit reveals the whole board.
func Apply(b *mines.Board, c Command) (mines.Outcome, error) {
	switch c.Kind {
	case Noop:
		return b.Status().Outcome(), nil
	case Open:
		if err := b.Check(c.Coords); err != nil {
			return mines.Rejected, err
		}
		return b.Select(c.Coords), nil
	case Forfeit:
		b.RevealAll()
		return mines.Detonated, nil
	default:
		return mines.Rejected, ErrUnknown
	}
}

// Lines yields each line of s with its position, including empty ones.
func Lines(s string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var line string
		for found {
			line, s, found = strings.Cut(s, "\n")
			if !yield(i, line) {
				return
			}
			i += 1
		}
	}
}
