package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vancomm/hypermines/internal/command"
	"github.com/vancomm/hypermines/internal/handlers"
	"github.com/vancomm/hypermines/internal/middleware"
	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/placement"
	"github.com/vancomm/hypermines/internal/repository"
)

var ErrGameOver = errors.New("game is over")

// placeMines returns the explicit mines of dto, or count random mines that
// keep first and, where possible, its neighbours clear.
func (app *application) placeMines(dto handlers.NewGameDTO, shape mines.Shape, first mines.Coords) ([]mines.Coords, error) {
	if dto.MineCount == nil {
		return dto.Mines()
	}
	app.rndMu.Lock()
	defer app.rndMu.Unlock()
	return placement.Random(shape, *dto.MineCount, app.rnd, first)
}

func (app *application) handleNewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := handlers.ParseNewGameDTO(r.URL.Query())
	if err != nil {
		app.badRequest(w, err)
		return
	}

	shape := mines.Shape(dto.Shape)
	if err := shape.Validate(app.limits); err != nil {
		app.badRequest(w, err)
		return
	}

	first := mines.Coords(dto.Coord)
	if !shape.Contains(first) {
		app.badRequest(w, fmt.Errorf("first cell %v: %w", first, mines.ErrInvalidCoordinate))
		return
	}

	ms, err := app.placeMines(dto, shape, first)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	board, err := mines.Build(shape, ms, mines.WithLimits(app.limits))
	if err != nil {
		app.badRequest(w, err)
		return
	}
	outcome := board.Select(first)

	params := repository.CreateGameSessionParams{
		Ranked: dto.MineCount != nil,
	}
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		params.PlayerId = &claims.PlayerId
	}

	session, err := app.repo.CreateGameSession(r.Context(), board, params)
	if err != nil {
		app.internalError(w, "unable to create game session", slog.Any("error", err))
		return
	}

	app.logger.Debug("created game session",
		slog.Int64("id", session.GameSessionId),
		slog.String("shape", shape.String()),
		slog.Int("mines", board.MineCount()),
		slog.String("outcome", outcome.String()),
	)

	handlers.SendJSONOrLog(w, app.logger, handlers.NewGameSessionDTO(session, board, outcome))
}

func (app *application) handleFetchGame(w http.ResponseWriter, r *http.Request) {
	id, err := app.getSessionId(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	session, board, ok := app.loadSession(w, r, id)
	if !ok {
		return
	}

	handlers.SendJSONOrLog(w, app.logger, handlers.NewGameSessionDTO(session, board, mines.Rejected))
}

// saveBoard stores board and closes the session once the game is decided.
func (app *application) saveBoard(
	ctx context.Context, session *repository.GameSession, board *mines.Board,
) (*repository.GameSession, error) {
	state, err := board.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode board: %w", err)
	}
	status := board.Status()
	dead, won := status == mines.Lost, status == mines.Victory
	params := repository.UpdateGameSessionParams{
		Dead:  &dead,
		Won:   &won,
		State: &state,
	}
	if status != mines.Playing && !session.EndedAt.Valid {
		now := time.Now().UTC()
		params.EndedAt = &now
	}
	return app.repo.UpdateGameSession(ctx, session.GameSessionId, params)
}

// play applies c to the session's board under the session lock.
func (app *application) play(
	w http.ResponseWriter, r *http.Request, c command.Command,
) {
	id, err := app.getSessionId(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	unlock := app.locks.Lock(id)
	defer unlock()

	session, board, ok := app.loadSession(w, r, id)
	if !ok {
		return
	}
	if !owns(r, session) {
		app.unauthorized(w)
		return
	}

	if board.Status() != mines.Playing {
		handlers.SendErrorOrLog(w, app.logger, http.StatusConflict, ErrGameOver)
		return
	}

	outcome, err := command.Apply(board, c)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	updated, err := app.saveBoard(r.Context(), session, board)
	if err != nil {
		app.internalError(w, "unable to update game session",
			slog.Int64("id", id), slog.Any("error", err))
		return
	}

	handlers.SendJSONOrLog(w, app.logger, handlers.NewGameSessionDTO(updated, board, outcome))
}

func (app *application) handleSelect(w http.ResponseWriter, r *http.Request) {
	dto, err := handlers.ParseSelectDTO(r.URL.Query())
	if err != nil {
		app.badRequest(w, err)
		return
	}
	app.play(w, r, command.Command{Kind: command.Open, Coords: mines.Coords(dto.Coord)})
}

func (app *application) handleForfeit(w http.ResponseWriter, r *http.Request) {
	app.play(w, r, command.Command{Kind: command.Forfeit})
}
