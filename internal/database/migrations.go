// FilePath: internal/database/migrations.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/secador-solar/sensorhub/internal/logging"
)

type migration struct {
	version  int
	name     string
	postgres []string
	sqlite   []string
}

func (m migration) statements(driver string) []string {
	if driver == config.DriverPostgres {
		return m.postgres
	}
	return m.sqlite
}

// migrations are applied in order and recorded in schema_migrations. Never
// edit an entry once released; append a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				CONSTRAINT users_username_key UNIQUE (username),
				CONSTRAINT users_email_key UNIQUE (email)
			)`,
			`CREATE TABLE IF NOT EXISTS ensayos (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				controller_id TEXT,
				state TEXT NOT NULL,
				registered_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS controllers (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				state TEXT NOT NULL,
				battery DOUBLE PRECISION,
				active_ensayo_id TEXT REFERENCES ensayos(id) ON DELETE SET NULL,
				generic_ensayo_id TEXT NOT NULL REFERENCES ensayos(id) ON DELETE RESTRICT,
				registered_at TIMESTAMPTZ NOT NULL,
				version BIGINT NOT NULL DEFAULT 1
			)`,
			`ALTER TABLE ensayos ADD CONSTRAINT ensayos_controller_id_fkey
				FOREIGN KEY (controller_id) REFERENCES controllers(id) ON DELETE SET NULL`,
			`CREATE TABLE IF NOT EXISTS readings (
				id TEXT PRIMARY KEY,
				controller_id TEXT NOT NULL REFERENCES controllers(id) ON DELETE CASCADE,
				ensayo_id TEXT REFERENCES ensayos(id) ON DELETE SET NULL,
				sensor_id INTEGER NOT NULL CHECK (sensor_id BETWEEN 1 AND 4),
				timestamp TIMESTAMPTZ NOT NULL,
				temperature DOUBLE PRECISION NOT NULL,
				humidity DOUBLE PRECISION NOT NULL,
				battery DOUBLE PRECISION
			)`,
		},
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS ensayos (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				controller_id TEXT REFERENCES controllers(id) ON DELETE SET NULL,
				state TEXT NOT NULL,
				registered_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS controllers (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				state TEXT NOT NULL,
				battery REAL,
				active_ensayo_id TEXT REFERENCES ensayos(id) ON DELETE SET NULL,
				generic_ensayo_id TEXT NOT NULL REFERENCES ensayos(id) ON DELETE RESTRICT,
				registered_at DATETIME NOT NULL,
				version INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE TABLE IF NOT EXISTS readings (
				id TEXT PRIMARY KEY,
				controller_id TEXT NOT NULL REFERENCES controllers(id) ON DELETE CASCADE,
				ensayo_id TEXT REFERENCES ensayos(id) ON DELETE SET NULL,
				sensor_id INTEGER NOT NULL CHECK (sensor_id BETWEEN 1 AND 4),
				timestamp DATETIME NOT NULL,
				temperature REAL NOT NULL,
				humidity REAL NOT NULL,
				battery REAL
			)`,
		},
	},
	{
		version: 2,
		name:    "lookup indexes",
		postgres: []string{
			`CREATE INDEX IF NOT EXISTS idx_readings_controller ON readings (controller_id)`,
			`CREATE INDEX IF NOT EXISTS idx_readings_ensayo ON readings (ensayo_id)`,
			`CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings (timestamp DESC, id DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_ensayos_controller ON ensayos (controller_id)`,
		},
		sqlite: []string{
			`CREATE INDEX IF NOT EXISTS idx_readings_controller ON readings (controller_id)`,
			`CREATE INDEX IF NOT EXISTS idx_readings_ensayo ON readings (ensayo_id)`,
			`CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings (timestamp DESC, id DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_ensayos_controller ON ensayos (controller_id)`,
		},
	},
}

// LatestVersion is the schema version Migrate brings a database up to.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate applies every pending migration, each in its own transaction.
// It returns the number of migrations applied.
func Migrate(ctx context.Context, db DB) (int, error) {
	conn := db.GetDB()

	createTable := `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`
	if _, err := conn.ExecContext(ctx, createTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := conn.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := WithTx(ctx, db, func(tx Transaction) error {
			for _, stmt := range m.statements(db.Driver()) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			record := tx.Rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`)
			_, err := tx.ExecContext(ctx, record, m.version, m.name, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return applied, err
		}
		logging.L.Infof("[Migrate] Applied migration %d: %s", m.version, m.name)
		applied++
	}

	return applied, nil
}
