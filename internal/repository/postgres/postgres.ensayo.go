// FilePath: internal/repository/postgres/postgres.ensayo.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
)

const ensayoColumns = `id, name, controller_id, state, registered_at`

type EnsayoRepo struct {
	PostgresBaseRepo
}

func NewEnsayoRepository(db database.DB, stamp *clock.Stamper) *EnsayoRepo {
	return &EnsayoRepo{PostgresBaseRepo: newBaseRepo(db, stamp)}
}

func (r *EnsayoRepo) Create(ctx context.Context, tx database.Transaction, ensayo *models.Ensayo) error {
	if ensayo.ID == "" {
		ensayo.ID = models.NewID()
	}
	if ensayo.RegisteredAt.IsZero() {
		ensayo.RegisteredAt = r.stamp.Now()
	}

	query := `
		INSERT INTO ensayos (id, name, controller_id, state, registered_at)
		VALUES (:id, :name, :controller_id, :state, :registered_at)`

	if _, err := r.namedExec(ctx, tx, query, ensayo); err != nil {
		if database.ClassifyError(err).Kind == database.ConstraintForeignKey {
			return errors.NewNotFoundError("controller not found", err)
		}
		return translateError("failed to create ensayo", err)
	}
	return nil
}

func (r *EnsayoRepo) Get(ctx context.Context, tx database.Transaction, id string) (*models.Ensayo, error) {
	ensayo := &models.Ensayo{}
	query := `SELECT ` + ensayoColumns + ` FROM ensayos WHERE id = ?`

	err := r.get(ctx, tx, ensayo, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("ensayo not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get ensayo", err)
	}
	return ensayo, nil
}

func (r *EnsayoRepo) List(ctx context.Context, filters models.EnsayoFilters, page models.Pagination) ([]*models.Ensayo, error) {
	ensayos := []*models.Ensayo{}

	w := &where{}
	if filters.ControllerID != nil {
		w.add("controller_id = ?", *filters.ControllerID)
	}
	query := `SELECT ` + ensayoColumns + ` FROM ensayos` + w.String() + ` ORDER BY registered_at, id LIMIT ? OFFSET ?`
	args := append(w.args, page.Limit, page.Skip)

	if err := r.selectAll(ctx, nil, &ensayos, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to list ensayos", err)
	}
	return ensayos, nil
}

func (r *EnsayoRepo) Update(ctx context.Context, tx database.Transaction, ensayo *models.Ensayo) error {
	query := `
		UPDATE ensayos SET
			name = :name,
			controller_id = :controller_id,
			state = :state
		WHERE id = :id`

	result, err := r.namedExec(ctx, tx, query, ensayo)
	if err != nil {
		if database.ClassifyError(err).Kind == database.ConstraintForeignKey {
			return errors.NewNotFoundError("controller not found", err)
		}
		return translateError("failed to update ensayo", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("ensayo not found", nil)
	}

	return nil
}

func (r *EnsayoRepo) SetOwner(ctx context.Context, tx database.Transaction, id string, controllerID *string) error {
	query := `UPDATE ensayos SET controller_id = ? WHERE id = ?`
	return r.execOne(ctx, tx, "ensayo not found", "failed to set ensayo owner", query, controllerID, id)
}

func (r *EnsayoRepo) SetState(ctx context.Context, tx database.Transaction, id string, state models.EnsayoState) error {
	query := `UPDATE ensayos SET state = ? WHERE id = ?`
	return r.execOne(ctx, tx, "ensayo not found", "failed to set ensayo state", query, state, id)
}

func (r *EnsayoRepo) Delete(ctx context.Context, tx database.Transaction, id string) error {
	query := `DELETE FROM ensayos WHERE id = ?`

	result, err := r.exec(ctx, tx, query, id)
	if err != nil {
		// controllers.generic_ensayo_id is ON DELETE RESTRICT.
		if database.ClassifyError(err).Kind == database.ConstraintForeignKey {
			return errors.NewConflictError(errors.ReasonGenericEnsayo, "ensayo is a controller's generic ensayo", err)
		}
		return errors.NewDatabaseError("failed to delete ensayo", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("ensayo not found", nil)
	}

	return nil
}
