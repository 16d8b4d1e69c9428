package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/hypermines/internal/handlers"
	"github.com/vancomm/hypermines/internal/middleware"
	"github.com/vancomm/hypermines/internal/repository"
)

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password too long")
	ErrUsernameTaken      = errors.New("username taken")
)

// readCredentials reads a url-encoded username and password.
func readCredentials(r *http.Request) (username string, password []byte, err error) {
	if err := r.ParseForm(); err != nil {
		return "", nil, ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = []byte(r.FormValue("password"))
	if username == "" || len(password) == 0 {
		return "", nil, ErrBadAuthBody
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return "", nil, ErrBadPasswordTooLong
	}
	return username, password, nil
}

type playerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type authStatus struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *playerInfo `json:"player,omitempty"`
}

func (app *application) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, err := readCredentials(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		app.internalError(w, "unable to hash password", slog.Any("error", err))
		return
	}

	player, err := app.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		handlers.SendErrorOrLog(w, app.logger, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		app.internalError(w, "unable to insert player", slog.Any("error", err))
		return
	}

	if err := app.cookies.Issue(w, player.PlayerId, player.Username); err != nil {
		app.internalError(w, "unable to issue auth cookies", slog.Any("error", err))
		return
	}

	handlers.SendJSONOrLog(w, app.logger, authStatus{
		LoggedIn: true,
		Player:   &playerInfo{player.PlayerId, player.Username},
	})
}

func (app *application) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, err := readCredentials(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	player, err := app.repo.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		app.unauthorized(w)
		return
	}
	if err != nil {
		app.internalError(w, "could not fetch player from db", slog.Any("error", err))
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, password)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		app.unauthorized(w)
		return
	}
	if err != nil {
		app.internalError(w, "bcrypt compare error", slog.Any("error", err))
		return
	}

	if err := app.cookies.Issue(w, player.PlayerId, player.Username); err != nil {
		app.internalError(w, "unable to issue auth cookies", slog.Any("error", err))
		return
	}

	handlers.SendJSONOrLog(w, app.logger, authStatus{
		LoggedIn: true,
		Player:   &playerInfo{player.PlayerId, player.Username},
	})
}

func (app *application) handleLogout(w http.ResponseWriter, r *http.Request) {
	app.cookies.Clear(w)
	handlers.SendMessageOrLog(w, app.logger, "ok")
}

// handleStatus reports who is logged in and refreshes their cookies.
func (app *application) handleStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		app.cookies.Clear(w)
		handlers.SendJSONOrLog(w, app.logger, authStatus{LoggedIn: false})
		return
	}

	if err := app.cookies.Issue(w, claims.PlayerId, claims.Username); err != nil {
		app.internalError(w, "unable to refresh auth cookies", slog.Any("error", err))
		return
	}

	handlers.SendJSONOrLog(w, app.logger, authStatus{
		LoggedIn: true,
		Player:   &playerInfo{claims.PlayerId, claims.Username},
	})
}
