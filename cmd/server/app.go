package main

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/hypermines/internal/config"
	"github.com/vancomm/hypermines/internal/handlers"
	"github.com/vancomm/hypermines/internal/middleware"
	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/repository"
)

type application struct {
	logger  *slog.Logger
	repo    *repository.Queries
	cookies *config.Cookies
	ws      *config.WebSocket
	limits  mines.Limits
	locks   *sessionLocks

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func (app *application) Router(basePath string) *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix(basePath + "/v1").Subrouter()

	v1.Methods("POST").Path("/game").HandlerFunc(app.handleNewGame)
	v1.Methods("GET").Path("/game/{id:[0-9]+}").HandlerFunc(app.handleFetchGame)
	v1.Methods("POST").Path("/game/{id:[0-9]+}/select").HandlerFunc(app.handleSelect)
	v1.Methods("POST").Path("/game/{id:[0-9]+}/forfeit").HandlerFunc(app.handleForfeit)
	v1.Methods("GET").Path("/game/{id:[0-9]+}/connect").HandlerFunc(app.handleConnect)

	v1.Methods("GET").Path("/highscores").HandlerFunc(app.handleFetchHighscores)

	v1.Methods("POST").Path("/register").HandlerFunc(app.handleRegister)
	v1.Methods("POST").Path("/login").HandlerFunc(app.handleLogin)
	v1.Methods("POST").Path("/logout").HandlerFunc(app.handleLogout)
	v1.Methods("GET").Path("/status").HandlerFunc(app.handleStatus)

	return router
}

func (app *application) getSessionId(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (app *application) badRequest(w http.ResponseWriter, err error) {
	handlers.SendErrorOrLog(w, app.logger, http.StatusBadRequest, err)
}

func (app *application) notFound(w http.ResponseWriter) {
	handlers.SendErrorOrLog(w, app.logger, http.StatusNotFound, errors.New("not found"))
}

func (app *application) unauthorized(w http.ResponseWriter) {
	handlers.SendErrorOrLog(w, app.logger, http.StatusUnauthorized, errors.New("unauthorized"))
}

func (app *application) internalError(w http.ResponseWriter, msg string, args ...any) {
	w.WriteHeader(http.StatusInternalServerError)
	app.logger.Error(msg, args...)
}

// owns reports whether the caller may change session. Anonymous sessions
// are open to anyone; a player's session only to that player.
func owns(r *http.Request, session *repository.GameSession) bool {
	if session.PlayerId == nil {
		return true
	}
	claims, ok := middleware.PlayerClaims(r.Context())
	return ok && claims.PlayerId == *session.PlayerId
}

// loadSession fetches the session named in the route and decodes its board.
// On failure it has already replied.
func (app *application) loadSession(
	w http.ResponseWriter, r *http.Request, id int64,
) (*repository.GameSession, *mines.Board, bool) {
	session, err := app.repo.FetchGameSession(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		app.notFound(w)
		return nil, nil, false
	}
	if err != nil {
		app.internalError(w, "unable to fetch session from db",
			slog.Int64("id", id), slog.Any("error", err))
		return nil, nil, false
	}

	board, err := session.Board(mines.WithLimits(app.limits))
	if err != nil {
		app.internalError(w, "db returned invalid game_session.state",
			slog.Int64("id", id), slog.Any("error", err))
		return nil, nil, false
	}
	return session, board, true
}
