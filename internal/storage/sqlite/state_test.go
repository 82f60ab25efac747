package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "chatgate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserStateRepo_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewUserStateRepo(newTestDB(t))

	first := map[string]json.RawMessage{
		"u1": json.RawMessage(`{"rawMessages":[]}`),
		"u2": json.RawMessage(`{"profile":{"summary":"hi"}}`),
	}
	require.NoError(t, repo.SaveAll(ctx, first))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := map[string]json.RawMessage{
		"u2": json.RawMessage(`{"profile":{"summary":"changed"}}`),
	}
	require.NoError(t, repo.SaveAll(ctx, second))

	got, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got, "missing users are deleted and present ones replaced")
}

func TestUserStateRepo_Get(t *testing.T) {
	ctx := context.Background()
	repo := NewUserStateRepo(newTestDB(t))
	require.NoError(t, repo.SaveAll(ctx, map[string]json.RawMessage{
		"u1": json.RawMessage(`{}`),
	}))

	doc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(doc))

	doc, err = repo.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestNewDB_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatgate.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM user_state`).Scan(&n))
	assert.Equal(t, 0, n)
}
