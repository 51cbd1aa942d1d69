// FilePath: internal/repository/postgres/postgres.reading.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
)

const readingColumns = `id, controller_id, ensayo_id, sensor_id, timestamp, temperature, humidity, battery`

// Newest first; ids are time-ordered so they break timestamp ties in
// insertion order.
const readingOrder = ` ORDER BY timestamp DESC, id DESC`

type ReadingRepo struct {
	PostgresBaseRepo
}

func NewReadingRepository(db database.DB, stamp *clock.Stamper) *ReadingRepo {
	return &ReadingRepo{PostgresBaseRepo: newBaseRepo(db, stamp)}
}

// Create stores a reading. The timestamp is always taken from the hub clock.
func (r *ReadingRepo) Create(ctx context.Context, tx database.Transaction, reading *models.Reading) error {
	if reading.ID == "" {
		reading.ID = models.NewID()
	}
	reading.Timestamp = r.stamp.Now()

	query := `
		INSERT INTO readings (
			id, controller_id, ensayo_id, sensor_id, timestamp,
			temperature, humidity, battery
		) VALUES (
			:id, :controller_id, :ensayo_id, :sensor_id, :timestamp,
			:temperature, :humidity, :battery
		)`

	if _, err := r.namedExec(ctx, tx, query, reading); err != nil {
		if database.ClassifyError(err).Kind == database.ConstraintForeignKey {
			return errors.NewNotFoundError("controller not found", err)
		}
		return translateError("failed to create reading", err)
	}
	return nil
}

func (r *ReadingRepo) Get(ctx context.Context, id string) (*models.Reading, error) {
	reading := &models.Reading{}
	query := `SELECT ` + readingColumns + ` FROM readings WHERE id = ?`

	err := r.get(ctx, nil, reading, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("reading not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) List(ctx context.Context, filters models.ReadingFilters, page models.Pagination) ([]*models.Reading, error) {
	readings := []*models.Reading{}

	w := &where{}
	if filters.ControllerID != nil {
		w.add("controller_id = ?", *filters.ControllerID)
	}
	if filters.SensorID != nil {
		w.add("sensor_id = ?", *filters.SensorID)
	}
	if filters.EnsayoID != nil {
		w.add("ensayo_id = ?", *filters.EnsayoID)
	}
	query := `SELECT ` + readingColumns + ` FROM readings` + w.String() + readingOrder + ` LIMIT ? OFFSET ?`
	args := append(w.args, page.Limit, page.Skip)

	if err := r.selectAll(ctx, nil, &readings, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to list readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings` + readingOrder + ` LIMIT 1`
	return r.latest(ctx, query)
}

func (r *ReadingRepo) LatestByController(ctx context.Context, controllerID string) (*models.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings WHERE controller_id = ?` + readingOrder + ` LIMIT 1`
	return r.latest(ctx, query, controllerID)
}

func (r *ReadingRepo) latest(ctx context.Context, query string, args ...interface{}) (*models.Reading, error) {
	reading := &models.Reading{}
	err := r.get(ctx, nil, reading, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to get latest reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) CountByEnsayo(ctx context.Context, tx database.Transaction, ensayoID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM readings WHERE ensayo_id = ?`

	if err := r.get(ctx, tx, &count, query, ensayoID); err != nil {
		return 0, errors.NewDatabaseError("failed to count readings", err)
	}
	return count, nil
}

func (r *ReadingRepo) Delete(ctx context.Context, tx database.Transaction, id string) error {
	query := `DELETE FROM readings WHERE id = ?`
	return r.execOne(ctx, tx, "reading not found", "failed to delete reading", query, id)
}
