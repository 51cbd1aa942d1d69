// FilePath: internal/testutil/testdb.go

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/stretchr/testify/require"
)

// NewSQLite opens a migrated SQLite database in a temp dir.
func NewSQLite(t *testing.T) database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "hub.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.Migrate(ctx, db)
	require.NoError(t, err)
	return db
}

// StepClock advances by Step on every call to Now.
type StepClock struct {
	mu   sync.Mutex
	T    time.Time
	Step time.Duration
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.T
	c.T = c.T.Add(c.Step)
	return now
}

// NewStamper returns a Stamper on a StepClock in UTC-5 that ticks one
// second per call.
func NewStamper() *clock.Stamper {
	zone := time.FixedZone("COT", -5*60*60)
	return clock.NewStamper(&StepClock{T: time.Date(2024, 5, 1, 8, 0, 0, 0, zone), Step: time.Second}, zone)
}
