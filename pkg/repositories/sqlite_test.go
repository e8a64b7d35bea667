package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Tests use the pure-Go driver so they run without cgo.
const testSQLiteDriver = "sqlite"

func newTestSQLiteRepository(t *testing.T) Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minimmo.db")
	repository, err := NewSQLiteRepository(context.Background(), testSQLiteDriver, path)
	require.NoError(t, err)
	t.Cleanup(func() {
		repository.Close(context.Background())
	})
	return repository
}

func TestSQLiteRepository(t *testing.T) {
	testRepository(t, newTestSQLiteRepository)
	testRepositoryFresh(t, newTestSQLiteRepository)
}

func TestSQLiteRepository_upsertUnknownCharacter(t *testing.T) {
	repository := newTestSQLiteRepository(t)
	_, err := repository.UpsertPosition(context.Background(), 42, 0, 0)
	assert.Error(t, err)
}

func TestSQLiteRepository_migrationsAreRepeatable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "minimmo.db")

	first, err := NewSQLiteRepository(ctx, testSQLiteDriver, path)
	require.NoError(t, err)
	c := createCharacter(t, first, "Malfurion5")
	require.NoError(t, first.Close(ctx))

	second, err := NewSQLiteRepository(ctx, testSQLiteDriver, path)
	require.NoError(t, err)
	defer second.Close(ctx)

	got, err := second.GetCharacter(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestForeignKeysDSN(t *testing.T) {
	tests := []struct {
		driver string
		dsn    string
		want   string
	}{
		{driver: SQLiteDriver, dsn: "minimmo.db", want: "minimmo.db?_foreign_keys=1"},
		{driver: SQLiteDriver, dsn: "file:minimmo.db?cache=shared", want: "file:minimmo.db?cache=shared&_foreign_keys=1"},
		{driver: "sqlite", dsn: "/tmp/minimmo.db", want: "/tmp/minimmo.db?_pragma=foreign_keys(1)"},
		{driver: "other", dsn: "minimmo.db", want: "minimmo.db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, foreignKeysDSN(tt.driver, tt.dsn))
	}
}

func TestSQLiteRepository_foreignKeysOnFreshConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "minimmo.db")
	repository, err := NewSQLiteRepository(ctx, testSQLiteDriver, path)
	require.NoError(t, err)
	defer repository.Close(ctx)

	// no idle connections, so every statement below runs on a newly opened connection
	repository.db.SetMaxIdleConns(0)

	for i := 0; i < 3; i++ {
		var foreignKeys int
		require.NoError(t, repository.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
		assert.Equal(t, 1, foreignKeys)
	}

	_, err = repository.db.ExecContext(ctx, "INSERT INTO positions (character_id, x, y) VALUES (?, ?, ?)", 404, 1, 1)
	assert.Error(t, err)

	c := createCharacter(t, repository, "Uther77")
	_, err = repository.UpsertPosition(ctx, c.ID, 2, 2)
	require.NoError(t, err)
	_, err = repository.db.ExecContext(ctx, "DELETE FROM characters WHERE id = ?", c.ID)
	require.NoError(t, err)
	_, err = repository.GetPosition(ctx, c.ID)
	assert.True(t, IsNotFound(err), "position is removed by ON DELETE CASCADE")
}
