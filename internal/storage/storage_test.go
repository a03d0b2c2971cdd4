package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, " ", zap.NewNop())
	require.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "root@/plz", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpenSQLiteAppliesSchemaOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plz.db")

	db, err := Open(ctx, DriverSQLite, path, zap.NewNop())
	require.NoError(t, err)

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('representatives', 'plz_regions') ORDER BY name"))
	assert.Equal(t, []string{"plz_regions", "representatives"}, tables)
	require.NoError(t, db.Close())

	// Reopening must not re-run or duplicate migrations.
	db, err = Open(ctx, DriverSQLite, path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.GetContext(ctx, &applied, "SELECT COUNT(*) FROM schema_migrations"))
	assert.Equal(t, 1, applied)

	var fk int
	require.NoError(t, db.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "data/plz.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		SQLiteDSN("data//plz.db"))
	assert.Equal(t, "plz.db?mode=ro", SQLiteDSN("plz.db?mode=ro"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("disk I/O error")))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("rename: %w", &pq.Error{Code: "23505"})))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: representatives.name")))
}

func TestIsUniqueViolationFromSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "plz.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, "INSERT INTO representatives (name, color) VALUES ('Müller', '#112233')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO representatives (name, color) VALUES ('Müller', '#445566')")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}
