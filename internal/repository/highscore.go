package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/hypermines/internal/mines"
)

type Highscore struct {
	GameSessionId int64   `db:"game_session_id" json:"-"`
	Username      *string `db:"username" json:"username"`
	Shape         []int32 `db:"shape" json:"shape"`
	MineCount     int32   `db:"mine_count" json:"mine_count"`
	PlaytimeMs    float64 `db:"playtime_ms" json:"playtime_ms"`
}

type HighscoreFilter struct {
	Username  *string
	Shape     mines.Shape
	MineCount *int
	Limit     int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.Shape != nil {
		clauses = append(clauses, "shape = @shape")
		args["shape"] = ShapeToInt32(f.Shape)
	}
	if f.MineCount != nil {
		clauses = append(clauses, "mine_count = @mine_count")
		args["mine_count"] = *f.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

// highscoreQuery lists ranked, won and finished sessions matching filter,
// fastest first.
func highscoreQuery(filter HighscoreFilter) (string, pgx.NamedArgs) {
	query := `
	SELECT
		game_session_id,
		username,
		shape,
		mine_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		)::float8 * 1000 playtime_ms
	FROM game_session
		LEFT OUTER JOIN player USING (player_id)
	WHERE
		ranked = true
		AND won = true
		AND dead = false
		AND ended_at IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY playtime_ms"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}
	return query, args
}

func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query, args := highscoreQuery(filter)
	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
