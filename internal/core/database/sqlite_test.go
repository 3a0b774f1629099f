package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestApplySchema_Idempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	schema := `CREATE TABLE IF NOT EXISTS things (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`
	ctx := context.Background()

	require.NoError(t, ApplySchema(ctx, db, schema))
	require.NoError(t, ApplySchema(ctx, db, schema))

	_, err = db.Exec(`INSERT INTO things (name) VALUES ('a')`)
	assert.NoError(t, err)
}

func TestApplySchema_Invalid(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	err = ApplySchema(context.Background(), db, "CREATE TABLE (")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute schema")
}
