package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	first := migrations[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "create_kv_entries", first.Name)
	assert.Contains(t, first.Up, "CREATE TABLE IF NOT EXISTS kv_entries")
	assert.Contains(t, first.Down, "DROP TABLE IF EXISTS kv_entries")

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestRunMigrations_CreatesSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))

	_, err := db.Exec(`INSERT INTO kv_entries (key, value, updated_at) VALUES ('token', 'abc', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	applied, err := AppliedVersions(ctx, db)
	require.NoError(t, err)
	assert.True(t, applied[1])
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	_, err := db.Exec(`INSERT INTO kv_entries (key, value, updated_at) VALUES ('user', '{}', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv_entries`).Scan(&count))
	assert.Equal(t, 1, count, "re-running migrations must not touch existing data")

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExtractVersionAndName(t *testing.T) {
	assert.Equal(t, 12, extractVersion("000012_add_index.up.sql"))
	assert.Equal(t, 0, extractVersion("README.md"))
	assert.Equal(t, "add_index", extractName("000012_add_index.up.sql"))
}
