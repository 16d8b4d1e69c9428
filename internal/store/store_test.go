package store

import (
	"database/sql"
	"maps"
	"math/rand/v2"
	"os"
	"slices"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/hypermines/internal/mines"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	f, err := os.CreateTemp("", "sqlite-storage-")
	require.NoError(t, err, "failed to create temp file")
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})

	db, err := sql.Open("sqlite3", f.Name())
	require.NoError(t, err, "failed to connect sqlite db")
	t.Cleanup(func() { db.Close() })

	s, err := New(db, "teststore")
	require.NoError(t, err, "failed to create new store")
	return s
}

func TestStoreBadName(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	for _, name := range []string{"", "drop table", "games;", "x1"} {
		_, err := New(db, name)
		assert.ErrorIs(t, err, ErrBadName, name)
	}
}

func TestStoreReadEmpty(t *testing.T) {
	s := setupTestStore(t)

	var nothing struct{}
	assert.ErrorIs(t, s.Get("some key", &nothing), ErrNotFound)
}

func TestStoreWriteAndReadPrimitive(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Set("key", 1337))

	var rtVal int
	require.NoError(t, s.Get("key", &rtVal))
	assert.Equal(t, 1337, rtVal)
}

func TestStoreWriteAndReadBoard(t *testing.T) {
	s := setupTestStore(t)

	b, err := mines.Build(mines.Shape{4, 4, 2}, []mines.Coords{{0, 0, 0}, {3, 3, 1}})
	require.NoError(t, err)
	b.Select(mines.Coords{2, 0, 1})

	buf, err := b.Bytes()
	require.NoError(t, err)
	require.NoError(t, s.Set("save", buf))

	var rtBuf []byte
	require.NoError(t, s.Get("save", &rtBuf))
	rt, err := mines.DecodeBoard(rtBuf)
	require.NoError(t, err)
	assert.Equal(t, b.Cells(), rt.Cells())
}

func TestStoreWriteAndReadNil(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Set("key", 1337))
	assert.NoError(t, s.Get("key", nil))
}

func TestStoreUpdate(t *testing.T) {
	s := setupTestStore(t)

	r := rand.New(rand.NewPCG(1, 2))
	val := r.Int32()
	require.NoError(t, s.Set("key", val))

	val = r.Int32()
	require.NoError(t, s.Set("key", val))

	var rtVal int32
	require.NoError(t, s.Get("key", &rtVal))
	assert.Equal(t, val, rtVal, "failed to update value")
}

func TestStoreDeleteMissing(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Delete("something"))
}

func TestStoreDeleteExisting(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Set("key", 1337))
	require.NoError(t, s.Delete("key"))

	var rtVal int
	assert.ErrorIs(t, s.Get("key", &rtVal), ErrNotFound)
}

func TestStoreCountAndKeys(t *testing.T) {
	s := setupTestStore(t)

	rows := map[string]int{
		"a": 1,
		"b": 2,
		"c": 3,
		"d": 4,
	}
	for key, value := range rows {
		require.NoError(t, s.Set(key, value))
	}

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, len(rows), count)

	keys, err := s.GetAllKeys()
	require.NoError(t, err)
	assert.Equal(t, slices.Sorted(maps.Keys(rows)), keys)

	delete(rows, "a")
	require.NoError(t, s.Delete("a"))

	count, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, len(rows), count)
}
