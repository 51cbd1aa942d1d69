// FilePath: internal/repository/postgres/postgres.controller.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
)

const controllerColumns = `id, name, state, battery, active_ensayo_id, generic_ensayo_id, registered_at, version`

type ControllerRepo struct {
	PostgresBaseRepo
}

func NewControllerRepository(db database.DB, stamp *clock.Stamper) *ControllerRepo {
	return &ControllerRepo{PostgresBaseRepo: newBaseRepo(db, stamp)}
}

func (r *ControllerRepo) Create(ctx context.Context, tx database.Transaction, controller *models.Controller) error {
	if controller.ID == "" {
		controller.ID = models.NewID()
	}
	if controller.RegisteredAt.IsZero() {
		controller.RegisteredAt = r.stamp.Now()
	}
	if controller.Version == 0 {
		controller.Version = 1
	}

	query := `
		INSERT INTO controllers (
			id, name, state, battery, active_ensayo_id,
			generic_ensayo_id, registered_at, version
		) VALUES (
			:id, :name, :state, :battery, :active_ensayo_id,
			:generic_ensayo_id, :registered_at, :version
		)`

	if _, err := r.namedExec(ctx, tx, query, controller); err != nil {
		return translateError("failed to create controller", err)
	}
	return nil
}

func (r *ControllerRepo) Get(ctx context.Context, tx database.Transaction, id string) (*models.Controller, error) {
	controller := &models.Controller{}
	query := `SELECT ` + controllerColumns + ` FROM controllers WHERE id = ?`

	err := r.get(ctx, tx, controller, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("controller not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get controller", err)
	}
	return controller, nil
}

func (r *ControllerRepo) List(ctx context.Context, page models.Pagination) ([]*models.Controller, error) {
	controllers := []*models.Controller{}
	query := `SELECT ` + controllerColumns + ` FROM controllers ORDER BY registered_at, id LIMIT ? OFFSET ?`

	if err := r.selectAll(ctx, nil, &controllers, query, page.Limit, page.Skip); err != nil {
		return nil, errors.NewDatabaseError("failed to list controllers", err)
	}
	return controllers, nil
}

func (r *ControllerRepo) UpdateName(ctx context.Context, tx database.Transaction, id, name string) error {
	query := `UPDATE controllers SET name = ?, version = version + 1 WHERE id = ?`
	return r.execOne(ctx, tx, "controller not found", "failed to update controller name", query, name, id)
}

func (r *ControllerRepo) UpdateBattery(ctx context.Context, tx database.Transaction, id string, battery float64) error {
	query := `UPDATE controllers SET battery = ? WHERE id = ?`
	return r.execOne(ctx, tx, "controller not found", "failed to update controller battery", query, battery, id)
}

func (r *ControllerRepo) SetActiveEnsayo(ctx context.Context, tx database.Transaction, id, ensayoID string, state models.ControllerState, expectedVersion int64) error {
	query := `
		UPDATE controllers SET
			active_ensayo_id = ?,
			state = ?,
			version = version + 1
		WHERE id = ? AND version = ?`

	result, err := r.exec(ctx, tx, query, ensayoID, state, id, expectedVersion)
	if err != nil {
		return translateError("failed to switch active ensayo", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		// Either the row vanished or someone else moved the version on.
		if _, getErr := r.Get(ctx, tx, id); getErr != nil {
			return getErr
		}
		return errors.NewConflictError(errors.ReasonConcurrentModification, "controller was modified concurrently", nil)
	}
	return nil
}

func (r *ControllerRepo) FindByGenericEnsayo(ctx context.Context, tx database.Transaction, ensayoID string) (*models.Controller, error) {
	controller := &models.Controller{}
	query := `SELECT ` + controllerColumns + ` FROM controllers WHERE generic_ensayo_id = ?`

	err := r.get(ctx, tx, controller, query, ensayoID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no controller owns this generic ensayo", err)
		}
		return nil, errors.NewDatabaseError("failed to look up generic ensayo owner", err)
	}
	return controller, nil
}

func (r *ControllerRepo) IsActiveEnsayo(ctx context.Context, tx database.Transaction, ensayoID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM controllers WHERE active_ensayo_id = ?`

	if err := r.get(ctx, tx, &count, query, ensayoID); err != nil {
		return false, errors.NewDatabaseError("failed to check active ensayo", err)
	}
	return count > 0, nil
}

func (r *ControllerRepo) Delete(ctx context.Context, tx database.Transaction, id string) error {
	query := `DELETE FROM controllers WHERE id = ?`
	return r.execOne(ctx, tx, "controller not found", "failed to delete controller", query, id)
}
