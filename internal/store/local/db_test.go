package local

// No driver import here on purpose: InitDatabase must work with only
// this package's own imports, the way the binary opens the database.

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "state.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err, "driver registration and migrations must not depend on test imports")
	defer db.Close()

	// The migrated schema is usable straight away.
	_, err = db.ExecContext(ctx, `INSERT INTO user_state(key, value) VALUES('theme', '"dark"')`)
	require.NoError(t, err)

	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM user_state WHERE key = 'theme'`).Scan(&value)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, value)
}

func TestInitDatabase_Reopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "state.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Migrations are idempotent across restarts.
	db, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
}
