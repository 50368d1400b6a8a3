package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/database"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "gold.db")

	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Migrate(ctx, db), "migrations are idempotent")

	for _, table := range []string{"price_cache", "price_cache_row"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	assert.NoError(t, database.HealthCheck(ctx, db))

	v, err := database.SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestSingleRecordConstraint(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(filepath.Join(t.TempDir(), "gold.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(ctx, db))

	_, err = db.ExecContext(ctx, `
		INSERT INTO price_cache (id, refresh_id, last_update, exchange_rate, latest_close, latest_localized_price)
		VALUES (2, 'x', '2024-01-01T00:00:00Z', '1', '1', '1')
	`)
	assert.Error(t, err, "only id 1 is allowed")
}
