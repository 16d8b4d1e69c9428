package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/hypermines/internal/mines"
)

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	PlayerId      *int64             `db:"player_id"`
	Shape         []int32            `db:"shape"`
	MineCount     int32              `db:"mine_count"`
	Dead          bool               `db:"dead"`
	Won           bool               `db:"won"`
	Ranked        bool               `db:"ranked"`
	State         []byte             `db:"state"`
	StartedAt     pgtype.Timestamptz `db:"started_at"`
	EndedAt       pgtype.Timestamptz `db:"ended_at"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

const gameSessionColumns = `game_session_id, player_id, shape, mine_count,
	dead, won, ranked, state, started_at, ended_at, created_at, updated_at`

// Board decodes the stored board state.
func (s GameSession) Board(opts ...mines.BuildOption) (*mines.Board, error) {
	return mines.DecodeBoard(s.State, opts...)
}

func ShapeToInt32(shape mines.Shape) []int32 {
	out := make([]int32, len(shape))
	for i, v := range shape {
		out[i] = int32(v)
	}
	return out
}

func ShapeFromInt32(shape []int32) mines.Shape {
	out := make(mines.Shape, len(shape))
	for i, v := range shape {
		out[i] = int(v)
	}
	return out
}

type CreateGameSessionParams struct {
	PlayerId *int64
	// Ranked games count towards highscores. Only games whose mines the
	// player did not choose may be ranked.
	Ranked bool
}

func (q *Queries) CreateGameSession(
	ctx context.Context, board *mines.Board, params CreateGameSessionParams,
) (*GameSession, error) {
	state, err := board.Bytes()
	if err != nil {
		return nil, err
	}

	status := board.Status()

	// a game can be decided by its very first selection
	var endedAt *time.Time
	if status != mines.Playing {
		now := time.Now().UTC()
		endedAt = &now
	}

	args := pgx.NamedArgs{
		"player_id":  params.PlayerId,
		"shape":      ShapeToInt32(board.Shape()),
		"mine_count": board.MineCount(),
		"dead":       status == mines.Lost,
		"won":        status == mines.Victory,
		"ranked":     params.Ranked,
		"state":      state,
		"ended_at":   endedAt,
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, shape, mine_count, dead, won, ranked, state, ended_at
		)
		VALUES (
			@player_id, @shape, @mine_count, @dead, @won, @ranked, @state, @ended_at
		)
		RETURNING `+gameSessionColumns,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		`SELECT `+gameSessionColumns+` FROM game_session WHERE game_session_id = $1`,
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

type UpdateGameSessionParams struct {
	Dead    *bool
	Won     *bool
	EndedAt *time.Time
	State   *[]byte
}

// SetClause builds the SET list for the fields that are present. It always
// touches updated_at.
func (p UpdateGameSessionParams) SetClause() (string, pgx.NamedArgs) {
	parts := []string{"updated_at = now()"}
	args := pgx.NamedArgs{}

	if p.Dead != nil {
		parts = append(parts, "dead = @dead")
		args["dead"] = *p.Dead
	}
	if p.Won != nil {
		parts = append(parts, "won = @won")
		args["won"] = *p.Won
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_session SET `+setClause+`
		WHERE game_session_id = @game_session_id
		RETURNING `+gameSessionColumns,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
