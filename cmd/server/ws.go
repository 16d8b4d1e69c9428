package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/hypermines/internal/command"
	"github.com/vancomm/hypermines/internal/handlers"
	"github.com/vancomm/hypermines/internal/mines"
)

type wsReply struct {
	Session *handlers.GameSessionDTO `json:"session,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// runCommands applies every line of text to board and stops at the first
// command that fails or once the game is decided.
func runCommands(board *mines.Board, text string) (mines.Outcome, error) {
	outcome := board.Status().Outcome()
	for _, line := range command.Lines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := command.Parse(line, board.Shape().Dimensions())
		if err != nil {
			return mines.Rejected, err
		}
		if c.Kind != command.Noop && board.Status() != mines.Playing {
			return mines.Rejected, ErrGameOver
		}
		if outcome, err = command.Apply(board, c); err != nil {
			return outcome, err
		}
		if outcome == mines.Detonated || outcome == mines.Won {
			break
		}
	}
	return outcome, nil
}

func (app *application) handleConnect(w http.ResponseWriter, r *http.Request) {
	id, err := app.getSessionId(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	session, _, ok := app.loadSession(w, r, id)
	if !ok {
		return
	}
	if !owns(r, session) {
		app.unauthorized(w)
		return
	}

	conn, err := app.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				app.logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		text := strings.TrimSpace(string(message))
		app.logger.Debug("ws command", slog.Int64("id", id), slog.String("text", text))

		reply, ok := app.applyMessage(r, id, text)
		if !ok {
			return
		}

		conn.SetWriteDeadline(time.Now().Add(app.ws.WriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			app.logger.Error("unable to write json", slog.Any("error", err))
			return
		}
	}
}

// applyMessage runs one websocket message against the stored session. It
// reports false when the connection should be dropped.
func (app *application) applyMessage(r *http.Request, id int64, text string) (wsReply, bool) {
	unlock := app.locks.Lock(id)
	defer unlock()

	session, err := app.repo.FetchGameSession(r.Context(), id)
	if err != nil {
		app.logger.Error("unable to fetch session from db", slog.Any("error", err))
		return wsReply{}, false
	}
	if !owns(r, session) {
		return wsReply{Error: "unauthorized"}, false
	}
	board, err := session.Board(mines.WithLimits(app.limits))
	if err != nil {
		app.logger.Error("db returned invalid game_session.state", slog.Any("error", err))
		return wsReply{}, false
	}

	outcome, cmdErr := runCommands(board, text)

	updated, err := app.saveBoard(r.Context(), session, board)
	if err != nil {
		app.logger.Error("unable to update session in db", slog.Any("error", err))
		return wsReply{}, false
	}

	reply := wsReply{Session: handlers.NewGameSessionDTO(updated, board, outcome)}
	if cmdErr != nil {
		reply.Error = cmdErr.Error()
	}
	return reply, true
}
