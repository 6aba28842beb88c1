package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRepo_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "compify.db")

	db, summary, err := Open(ctx, "", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Equal(t, "sqlite:"+path, summary)

	repo := NewCredentialRepo(db)

	_, err = repo.Get(ctx, "gemini")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repo.Put(ctx, "gemini", "first"))
	require.NoError(t, repo.Put(ctx, "gemini", "second"))
	v, err := repo.Get(ctx, "gemini")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	require.NoError(t, repo.Delete(ctx, "gemini"))
	_, err = repo.Get(ctx, "gemini")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "gemini"))
}

func TestCredentialRepo_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "compify.db")

	db, _, err := Open(ctx, "", path)
	require.NoError(t, err)
	require.NoError(t, NewCredentialRepo(db).Put(ctx, "gemini", "persisted"))
	require.NoError(t, db.Close())

	db, _, err = Open(ctx, "", path)
	require.NoError(t, err)
	defer db.Close()
	v, err := NewCredentialRepo(db).Get(ctx, "gemini")
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "pgx:bob@db:5432/compify", Summary("pgx", "postgres://bob:hunter2@db:5432/compify?sslmode=disable"))
	assert.NotContains(t, Summary("pgx", "postgres://bob:hunter2@db/x"), "hunter2")
	assert.Equal(t, "pgx:<dsn>", Summary("pgx", "host=db user=bob password=x"))
	assert.Equal(t, "sqlite:/tmp/a.db", Summary("sqlite", "/tmp/a.db"))
}
