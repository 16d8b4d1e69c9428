package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/schema"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/hypermines/internal/mines"
	"github.com/vancomm/hypermines/internal/repository"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

var (
	ErrNoMines       = errors.New("either mine or mine_count must be given")
	ErrMinesConflict = errors.New("mine and mine_count are mutually exclusive")
)

// NewGameDTO describes a new game: its shape, the first cell to select and
// either explicit mines ("1,2") or a number of mines to place at random.
type NewGameDTO struct {
	Shape     []int    `schema:"shape,required"`
	Coord     []int    `schema:"coord,required"`
	MineCount *int     `schema:"mine_count"`
	Mine      []string `schema:"mine"`
}

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	switch {
	case dto.MineCount == nil && len(dto.Mine) == 0:
		return dto, ErrNoMines
	case dto.MineCount != nil && len(dto.Mine) > 0:
		return dto, ErrMinesConflict
	case dto.MineCount != nil && *dto.MineCount < 0:
		return dto, fmt.Errorf("invalid mine_count %d", *dto.MineCount)
	}
	return dto, nil
}

// Mines parses the explicit mine coordinates, if any were given.
func (dto NewGameDTO) Mines() ([]mines.Coords, error) {
	out := make([]mines.Coords, 0, len(dto.Mine))
	for _, m := range dto.Mine {
		c, err := mines.ParseCoords(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type SelectDTO struct {
	Coord []int `schema:"coord,required"`
}

func ParseSelectDTO(src map[string][]string) (SelectDTO, error) {
	var dto SelectDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type HighscoreDTO struct {
	Username  *string `schema:"username"`
	Shape     []int   `schema:"shape"`
	MineCount *int    `schema:"mine_count"`
	Limit     int     `schema:"limit"`
}

func ParseHighscoreDTO(src map[string][]string) (HighscoreDTO, error) {
	var dto HighscoreDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto HighscoreDTO) Filter() repository.HighscoreFilter {
	var shape mines.Shape
	if len(dto.Shape) > 0 {
		shape = mines.Shape(dto.Shape)
	}
	return repository.HighscoreFilter{
		Username:  dto.Username,
		Shape:     shape,
		MineCount: dto.MineCount,
		Limit:     dto.Limit,
	}
}

type GameSessionDTO struct {
	GameSessionId string      `json:"game_session_id"`
	Shape         mines.Shape `json:"shape"`
	Grid          mines.Grid  `json:"grid"`
	MineCount     int         `json:"mine_count"`
	Status        string      `json:"status"`
	Dead          bool        `json:"dead"`
	Won           bool        `json:"won"`
	StartedAt     int64       `json:"started_at"`
	EndedAt       *int64      `json:"ended_at,omitempty"`
	Outcome       string      `json:"outcome,omitempty"`
}

func timestampMilli(ts pgtype.Timestamptz) *int64 {
	if !ts.Valid {
		return nil
	}
	ms := ts.Time.UnixMilli()
	return &ms
}

// NewGameSessionDTO describes board as stored in session. outcome is the
// result of the move that produced board and is omitted when Rejected.
func NewGameSessionDTO(
	session *repository.GameSession, board *mines.Board, outcome mines.Outcome,
) *GameSessionDTO {
	status := board.Status()
	dto := &GameSessionDTO{
		GameSessionId: strconv.FormatInt(session.GameSessionId, 10),
		Shape:         board.Shape(),
		Grid:          board.View(),
		MineCount:     board.MineCount(),
		Status:        status.String(),
		Dead:          status == mines.Lost,
		Won:           status == mines.Victory,
		EndedAt:       timestampMilli(session.EndedAt),
	}
	if started := timestampMilli(session.StartedAt); started != nil {
		dto.StartedAt = *started
	} else {
		dto.StartedAt = time.Now().UnixMilli()
	}
	if outcome != mines.Rejected {
		dto.Outcome = outcome.String()
	}
	return dto
}
