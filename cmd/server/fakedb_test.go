package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/hypermines/internal/repository"
)

// memoryDB keeps game sessions in memory and answers the queries issued by
// repository.Queries for them.
type memoryDB struct {
	mu       sync.Mutex
	next     int64
	sessions map[int64]repository.GameSession
}

func newMemoryDB() *memoryDB {
	return &memoryDB{sessions: make(map[int64]repository.GameSession)}
}

func (db *memoryDB) session(id int64) (repository.GameSession, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.sessions[id]
	return s, ok
}

func timestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func (db *memoryDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("exec not supported")
}

func (db *memoryDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &memoryRows{err: errors.New("query row not supported")}
}

func (db *memoryDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	switch {
	case strings.Contains(sql, "INSERT INTO game_session"):
		a := args[0].(pgx.NamedArgs)
		db.next++
		now := time.Now().UTC()
		s := repository.GameSession{
			GameSessionId: db.next,
			PlayerId:      a["player_id"].(*int64),
			Shape:         a["shape"].([]int32),
			MineCount:     int32(a["mine_count"].(int)),
			Dead:          a["dead"].(bool),
			Won:           a["won"].(bool),
			Ranked:        a["ranked"].(bool),
			State:         a["state"].([]byte),
			StartedAt:     timestamp(now),
			CreatedAt:     timestamp(now),
			UpdatedAt:     timestamp(now),
		}
		if endedAt := a["ended_at"].(*time.Time); endedAt != nil {
			s.EndedAt = timestamp(*endedAt)
		}
		db.sessions[s.GameSessionId] = s
		return newMemoryRows(s), nil

	case strings.Contains(sql, "UPDATE game_session"):
		a := args[0].(pgx.NamedArgs)
		id := a["game_session_id"].(int64)
		s, ok := db.sessions[id]
		if !ok {
			return newMemoryRows(), nil
		}
		if v, ok := a["dead"]; ok {
			s.Dead = v.(bool)
		}
		if v, ok := a["won"]; ok {
			s.Won = v.(bool)
		}
		if v, ok := a["ended_at"]; ok {
			s.EndedAt = timestamp(v.(time.Time))
		}
		if v, ok := a["state"]; ok {
			s.State = v.([]byte)
		}
		s.UpdatedAt = timestamp(time.Now().UTC())
		db.sessions[id] = s
		return newMemoryRows(s), nil

	case strings.Contains(sql, "FROM game_session WHERE game_session_id"):
		s, ok := db.sessions[args[0].(int64)]
		if !ok {
			return newMemoryRows(), nil
		}
		return newMemoryRows(s), nil
	}
	return &memoryRows{err: fmt.Errorf("unsupported query: %s", sql)}, nil
}

// memoryRows serves structs as rows whose columns are the struct's db tags.
type memoryRows struct {
	fields []pgconn.FieldDescription
	rows   [][]any
	pos    int
	err    error
}

func newMemoryRows[T any](values ...T) *memoryRows {
	typ := reflect.TypeFor[T]()
	r := &memoryRows{}
	for i := range typ.NumField() {
		r.fields = append(r.fields, pgconn.FieldDescription{Name: typ.Field(i).Tag.Get("db")})
	}
	for _, v := range values {
		rv := reflect.ValueOf(v)
		row := make([]any, typ.NumField())
		for i := range row {
			row[i] = rv.Field(i).Interface()
		}
		r.rows = append(r.rows, row)
	}
	return r
}

func (r *memoryRows) Close() {}
func (r *memoryRows) Err() error { return r.err }
func (r *memoryRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *memoryRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *memoryRows) RawValues() [][]byte { return nil }
func (r *memoryRows) Conn() *pgx.Conn { return nil }

func (r *memoryRows) Next() bool {
	if r.err != nil || r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *memoryRows) Values() ([]any, error) {
	if r.pos == 0 {
		return nil, errors.New("no current row")
	}
	return r.rows[r.pos-1], nil
}

func (r *memoryRows) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	row, err := r.Values()
	if err != nil {
		return err
	}
	if len(dest) != len(row) {
		return fmt.Errorf("scan %d values into %d targets", len(row), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(row[i]))
	}
	return nil
}
