package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) DB {
	t.Helper()
	db, err := NewSQLiteDB(context.Background(), config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "hub.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	n, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), n)

	n, err = Migrate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var version int
	require.NoError(t, db.GetDB().GetContext(ctx, &version, `SELECT MAX(version) FROM schema_migrations`))
	assert.Equal(t, LatestVersion(), version)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := Migrate(ctx, db)
	require.NoError(t, err)

	_, err = db.GetDB().ExecContext(ctx,
		`INSERT INTO readings (id, controller_id, sensor_id, timestamp, temperature, humidity) VALUES ('r1', 'missing', 1, '2024-01-01 00:00:00', 20, 50)`)
	require.Error(t, err)
	assert.Equal(t, ConstraintForeignKey, ClassifyError(err).Kind)
}

func TestClassifyUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := Migrate(ctx, db)
	require.NoError(t, err)

	insert := `INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, 'x', '2024-01-01 00:00:00')`
	_, err = db.GetDB().ExecContext(ctx, insert, "u1", "ana", "ana@example.com")
	require.NoError(t, err)

	_, err = db.GetDB().ExecContext(ctx, insert, "u2", "ana", "other@example.com")
	v := ClassifyError(err)
	assert.Equal(t, ConstraintUnique, v.Kind)
	assert.True(t, v.Mentions("users.username"))

	_, err = db.GetDB().ExecContext(ctx, insert, "u3", "bea", "ana@example.com")
	v = ClassifyError(err)
	assert.Equal(t, ConstraintUnique, v.Kind)
	assert.True(t, v.Mentions("users.email"))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := Migrate(ctx, db)
	require.NoError(t, err)

	boom := assert.AnError
	err = WithTx(ctx, db, func(tx Transaction) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO ensayos (id, name, state, registered_at) VALUES ('e1', 'x', 'Parado', '2024-01-01 00:00:00')`)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM ensayos`))
	assert.Zero(t, count)
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, ConstraintNone, ClassifyError(nil).Kind)
}
