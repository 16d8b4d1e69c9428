package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSendErrorOrLog(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SendErrorOrLog(rec, discard, http.StatusBadRequest, errors.New("boom"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestSendJSONOrLog(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SendJSONOrLog(rec, discard, map[string]int{"a": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())
}

func TestParseNewGameDTO(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{"random", "shape=4&shape=4&shape=4&coord=0&coord=0&coord=0&mine_count=5", nil},
		{"explicit", "shape=3&shape=3&coord=2&coord=2&mine=0,0&mine=1,0", nil},
		{"no mines", "shape=3&shape=3&coord=2&coord=2", ErrNoMines},
		{"both", "shape=3&shape=3&coord=2&coord=2&mine=0,0&mine_count=1", ErrMinesConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = ParseNewGameDTO(q)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseNewGameDTOMissingShape(t *testing.T) {
	t.Parallel()
	q, err := url.ParseQuery("coord=1&mine_count=1")
	require.NoError(t, err)
	_, err = ParseNewGameDTO(q)
	assert.Error(t, err)
}

func TestNewGameDTOMines(t *testing.T) {
	t.Parallel()

	q, err := url.ParseQuery("shape=3&shape=3&coord=2&coord=2&mine=0,0&mine=1,2")
	require.NoError(t, err)
	dto, err := ParseNewGameDTO(q)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3}, dto.Shape)
	assert.Equal(t, []int{2, 2}, dto.Coord)
	ms, err := dto.Mines()
	require.NoError(t, err)
	assert.Equal(t, []mines.Coords{{0, 0}, {1, 2}}, ms)

	dto.Mine = []string{"a,b"}
	_, err = dto.Mines()
	assert.Error(t, err)
}

func TestHighscoreDTOFilter(t *testing.T) {
	t.Parallel()

	q, err := url.ParseQuery("username=dave&shape=9&shape=9&limit=5")
	require.NoError(t, err)
	dto, err := ParseHighscoreDTO(q)
	require.NoError(t, err)

	filter := dto.Filter()
	require.NotNil(t, filter.Username)
	assert.Equal(t, "dave", *filter.Username)
	assert.Equal(t, mines.Shape{9, 9}, filter.Shape)
	assert.Nil(t, filter.MineCount)
	assert.Equal(t, 5, filter.Limit)

	empty, err := ParseHighscoreDTO(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, repository.HighscoreFilter{}, empty.Filter())
}

func TestNewGameSessionDTO(t *testing.T) {
	t.Parallel()

	b, err := mines.Build(mines.Shape{3, 3}, []mines.Coords{{0, 0}})
	require.NoError(t, err)
	outcome := b.Select(mines.Coords{1, 1})

	started := time.UnixMilli(1_700_000_000_000)
	session := &repository.GameSession{
		GameSessionId: 12,
		StartedAt:     pgtype.Timestamptz{Time: started, Valid: true},
	}

	dto := NewGameSessionDTO(session, b, outcome)
	assert.Equal(t, "12", dto.GameSessionId)
	assert.Equal(t, "playing", dto.Status)
	assert.Equal(t, "continuing", dto.Outcome)
	assert.Equal(t, started.UnixMilli(), dto.StartedAt)
	assert.Nil(t, dto.EndedAt)

	payload, err := json.Marshal(dto)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Len(t, decoded["grid"], 9)
	assert.NotContains(t, decoded, "ended_at")

	rejected := NewGameSessionDTO(session, b, mines.Rejected)
	assert.Empty(t, rejected.Outcome)
}
