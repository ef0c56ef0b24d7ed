package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	return db
}

func TestSQLiteUpIsIdempotent(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, Up(db, SQLite))
	require.NoError(t, Up(db, SQLite))

	version, dirty, err := Version(db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	_, err = db.Exec(`INSERT INTO kv (key, value) VALUES ('a', x'7b7d')`)
	assert.NoError(t, err)
}

func TestSQLiteStepsDown(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Up(db, SQLite))
	require.NoError(t, Steps(db, SQLite, -1))

	_, err := db.Exec(`SELECT 1 FROM kv`)
	assert.Error(t, err, "table is gone after rolling back")
}
