package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/hypermines/internal/config"
	"github.com/vancomm/hypermines/internal/handlers"
	"github.com/vancomm/hypermines/internal/middleware"
	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/placement"
	"github.com/vancomm/hypermines/internal/repository"
)

type testServer struct {
	app     *application
	db      *memoryDB
	cookies *config.Cookies
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := newMemoryDB()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &application{
		logger:  logger,
		repo:    repository.New(db),
		cookies: newTestCookies(t),
		ws:      config.NewWebSocket(),
		limits:  mines.DefaultLimits,
		locks:   newSessionLocks(),
		rnd:     placement.NewRand(),
	}
	return &testServer{
		app:     app,
		db:      db,
		cookies: app.cookies,
		handler: middleware.Wrap(app.Router(""), middleware.Auth(logger, app.cookies)),
	}
}

// login returns the cookies of a logged in player.
func (s *testServer) login(t *testing.T, playerId int64) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, s.cookies.Issue(rec, playerId, "player"))
	return rec.Result().Cookies()
}

func (s *testServer) do(method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// seed stores board as a new session and returns its id.
func (s *testServer) seed(t *testing.T, board *mines.Board, owner *int64) int64 {
	t.Helper()
	session, err := s.app.repo.CreateGameSession(
		context.Background(), board, repository.CreateGameSessionParams{PlayerId: owner},
	)
	require.NoError(t, err)
	return session.GameSessionId
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) handlers.GameSessionDTO {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dto handlers.GameSessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

// lineBoard is 5 cells in a row with a mine at 0 and cell 1 selected.
func lineBoard(t *testing.T) *mines.Board {
	t.Helper()
	b, err := mines.Build(mines.Shape{5}, []mines.Coords{{0}})
	require.NoError(t, err)
	require.Equal(t, mines.Continuing, b.Select(mines.Coords{1}))
	return b
}

func TestNewGameSelectsFirstCell(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	dto := decodeSession(t, s.do(http.MethodPost,
		"/v1/game?shape=5&shape=5&coord=2&coord=3&mine_count=3", nil))

	assert.Equal(t, mines.Shape{5, 5}, dto.Shape)
	assert.Equal(t, 3, dto.MineCount)
	assert.Contains(t, []string{"continuing", "won"}, dto.Outcome)
	// the first cell and its neighbours are kept clear
	assert.Equal(t, mines.CellState(0), dto.Grid[mines.Shape{5, 5}.Weights().IndexOf(mines.Coords{2, 3})])

	stored, ok := s.db.session(1)
	require.True(t, ok)
	assert.True(t, stored.Ranked)
	assert.Nil(t, stored.PlayerId)
}

func TestNewGameWithExplicitMinesIsUnranked(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	dto := decodeSession(t, s.do(http.MethodPost,
		"/v1/game?shape=9&shape=9&coord=0&coord=0&mine=8,8", nil))
	assert.Equal(t, "won", dto.Outcome)
	assert.True(t, dto.Won)
	assert.NotNil(t, dto.EndedAt)

	stored, ok := s.db.session(1)
	require.True(t, ok)
	assert.True(t, stored.Won)
	assert.False(t, stored.Ranked)
}

func TestNewGameOwnedByPlayer(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	decodeSession(t, s.do(http.MethodPost,
		"/v1/game?shape=4&shape=4&coord=0&coord=0&mine_count=2", s.login(t, 9)))

	stored, ok := s.db.session(1)
	require.True(t, ok)
	require.NotNil(t, stored.PlayerId)
	assert.Equal(t, int64(9), *stored.PlayerId)
}

func TestNewGameRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"no mines", "shape=3&shape=3&coord=0&coord=0"},
		{"first cell outside", "shape=3&shape=3&coord=3&coord=0&mine_count=1"},
		{"first cell dimensions", "shape=3&shape=3&coord=0&mine_count=1"},
		{"too many mines", "shape=3&shape=3&coord=0&coord=0&mine_count=9"},
		{"empty axis", "shape=3&shape=0&coord=0&coord=0&mine_count=1"},
		{"mine outside", "shape=3&shape=3&coord=0&coord=0&mine=5,5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			rec := s.do(http.MethodPost, "/v1/game?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			_, stored := s.db.session(1)
			assert.False(t, stored)
		})
	}
}

func TestFetchGame(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	id := s.seed(t, lineBoard(t), nil)

	dto := decodeSession(t, s.do(http.MethodGet, "/v1/game/1", nil))
	assert.Equal(t, "1", dto.GameSessionId)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "playing", dto.Status)
	assert.Empty(t, dto.Outcome)
	assert.Equal(t, mines.Grid{mines.Unknown, 1, mines.Unknown, mines.Unknown, mines.Unknown}, dto.Grid)

	rec := s.do(http.MethodGet, "/v1/game/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectRejectedWithReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"already selected", "coord=1", `{"error":"cell already selected"}`},
		{"outside", "coord=7", `{"error":"coordinates out of bounds"}`},
		{"wrong dimensions", "coord=1&coord=0", `{"error":"coordinates out of bounds"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			s.seed(t, lineBoard(t), nil)
			before, _ := s.db.session(1)

			rec := s.do(http.MethodPost, "/v1/game/1/select?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())

			after, _ := s.db.session(1)
			assert.Equal(t, before.State, after.State)
		})
	}
}

func TestSelectMissingCoord(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed(t, lineBoard(t), nil)

	rec := s.do(http.MethodPost, "/v1/game/1/select", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectUntilGameOver(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed(t, lineBoard(t), nil)

	dto := decodeSession(t, s.do(http.MethodPost, "/v1/game/1/select?coord=3", nil))
	assert.Equal(t, "won", dto.Outcome)
	assert.Equal(t, "won", dto.Status)
	assert.NotNil(t, dto.EndedAt)
	assert.Equal(t, mines.Grid{mines.Mine, 1, 0, 0, 0}, dto.Grid)

	stored, _ := s.db.session(1)
	assert.True(t, stored.Won)
	assert.True(t, stored.EndedAt.Valid)

	rec := s.do(http.MethodPost, "/v1/game/1/select?coord=0", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"game is over"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/v1/game/1/forfeit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSelectDetonates(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed(t, lineBoard(t), nil)

	dto := decodeSession(t, s.do(http.MethodPost, "/v1/game/1/select?coord=0", nil))
	assert.Equal(t, "detonated", dto.Outcome)
	assert.Equal(t, "lost", dto.Status)
	assert.True(t, dto.Dead)
	assert.Equal(t, mines.ExplodedMine, dto.Grid[0])

	rec := s.do(http.MethodPost, "/v1/game/1/select?coord=4", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestForfeit(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed(t, lineBoard(t), nil)

	dto := decodeSession(t, s.do(http.MethodPost, "/v1/game/1/forfeit", nil))
	assert.Equal(t, "detonated", dto.Outcome)
	assert.Equal(t, "lost", dto.Status)

	stored, _ := s.db.session(1)
	assert.True(t, stored.Dead)
	assert.True(t, stored.EndedAt.Valid)
}

func TestMovesRequireOwner(t *testing.T) {
	t.Parallel()

	owner := int64(7)
	tests := []struct {
		name   string
		method string
		target string
	}{
		{"select", http.MethodPost, "/v1/game/1/select?coord=3"},
		{"forfeit", http.MethodPost, "/v1/game/1/forfeit"},
		{"connect", http.MethodGet, "/v1/game/1/connect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t)
			s.seed(t, lineBoard(t), &owner)
			before, _ := s.db.session(1)

			rec := s.do(tt.method, tt.target, s.login(t, 8))
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "other player")

			rec = s.do(tt.method, tt.target, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous")

			after, _ := s.db.session(1)
			assert.Equal(t, before.State, after.State)
			assert.False(t, after.Dead)
		})
	}
}

func TestOwnerMayMove(t *testing.T) {
	t.Parallel()
	owner := int64(7)
	s := newTestServer(t)
	s.seed(t, lineBoard(t), &owner)

	dto := decodeSession(t, s.do(http.MethodPost, "/v1/game/1/select?coord=3", s.login(t, owner)))
	assert.Equal(t, "won", dto.Outcome)
}

func TestAnonymousGameOpenToAll(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed(t, lineBoard(t), nil)

	dto := decodeSession(t, s.do(http.MethodPost, "/v1/game/1/forfeit", s.login(t, 3)))
	assert.Equal(t, "lost", dto.Status)
}
