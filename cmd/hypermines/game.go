package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/hypermines/internal/command"
	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/placement"
)

// game defers mine placement until the first cell is opened so that the
// first move never detonates.
type game struct {
	log    *logrus.Logger
	shape  mines.Shape
	count  int
	rnd    *rand.Rand
	limits mines.Limits
	board  *mines.Board
}

func (g *game) build(safe mines.Coords) error {
	ms, err := placement.Random(g.shape, g.count, g.rnd, safe)
	if err != nil {
		return err
	}
	g.board, err = mines.Build(g.shape, ms, mines.WithLimits(g.limits))
	if err != nil {
		return err
	}
	g.log.WithFields(logrus.Fields{
		"shape": g.shape.String(),
		"mines": g.board.MineCount(),
	}).Debug("placed mines")
	return nil
}

func (g *game) apply(c command.Command) (mines.Outcome, error) {
	if g.board == nil {
		switch c.Kind {
		case command.Noop:
			return mines.Continuing, nil
		case command.Open:
			if !g.shape.Contains(c.Coords) {
				return mines.Rejected, mines.ErrInvalidCoordinate
			}
			if err := g.build(c.Coords); err != nil {
				return mines.Rejected, err
			}
		default:
			if err := g.build(nil); err != nil {
				return mines.Rejected, err
			}
		}
	}
	return command.Apply(g.board, c)
}

func (g *game) print(out io.Writer) {
	if g.board == nil {
		fmt.Fprint(out, mines.NewGrid(g.shape).Format(g.shape))
		return
	}
	fmt.Fprint(out, g.board.View().Format(g.shape))
}

// play reads commands from in until the game is decided or in is exhausted.
// save is called with the board after every accepted command.
func (g *game) play(in io.Reader, out io.Writer, save func(*mines.Board) error) (mines.Outcome, error) {
	g.print(out)

	outcome := mines.Continuing
	if g.board != nil {
		outcome = g.board.Status().Outcome()
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		c, err := command.Parse(line, g.shape.Dimensions())
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}

		outcome, err = g.apply(c)
		if err != nil {
			g.log.WithError(err).WithField("command", c.String()).Debug("rejected")
			fmt.Fprintln(out, "error:", err)
			continue
		}

		if save != nil && g.board != nil {
			if err := save(g.board); err != nil {
				return outcome, fmt.Errorf("unable to save game: %w", err)
			}
		}

		g.print(out)
		fmt.Fprintln(out, outcome)

		if outcome == mines.Detonated || outcome == mines.Won {
			return outcome, nil
		}
	}
	return outcome, scanner.Err()
}
