// FilePath: internal/repository/postgres/postgres.baserepo.go

// Package postgres implements the repositories with sqlx. Queries are written
// with ? placeholders and rebound per driver, so the same code serves
// PostgreSQL in production and SQLite for embedded deployments and tests.
package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
)

type PostgresBaseRepo struct {
	db    database.DB
	stamp *clock.Stamper
}

func newBaseRepo(db database.DB, stamp *clock.Stamper) PostgresBaseRepo {
	if stamp == nil {
		stamp = clock.NewStamper(nil, nil)
	}
	return PostgresBaseRepo{db: db, stamp: stamp}
}

func (r *PostgresBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

// ext picks the transaction when there is one and the pool otherwise.
func (r *PostgresBaseRepo) ext(tx database.Transaction) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

func (r *PostgresBaseRepo) get(ctx context.Context, tx database.Transaction, dest interface{}, query string, args ...interface{}) error {
	q := r.ext(tx)
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func (r *PostgresBaseRepo) selectAll(ctx context.Context, tx database.Transaction, dest interface{}, query string, args ...interface{}) error {
	q := r.ext(tx)
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func (r *PostgresBaseRepo) exec(ctx context.Context, tx database.Transaction, query string, args ...interface{}) (sql.Result, error) {
	q := r.ext(tx)
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

func (r *PostgresBaseRepo) namedExec(ctx context.Context, tx database.Transaction, query string, arg interface{}) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, r.ext(tx), query, arg)
}

// execOne runs a single-row write and maps zero affected rows to notFound.
func (r *PostgresBaseRepo) execOne(ctx context.Context, tx database.Transaction, notFound, failMsg, query string, args ...interface{}) error {
	result, err := r.exec(ctx, tx, query, args...)
	if err != nil {
		return translateError(failMsg, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError(notFound, nil)
	}
	return nil
}

// translateError maps driver constraint failures onto API errors and
// everything else onto a database error.
func translateError(msg string, err error) error {
	v := database.ClassifyError(err)
	switch v.Kind {
	case database.ConstraintUnique:
		switch {
		case v.Mentions("username"):
			return errors.NewConflictError(errors.ReasonDuplicateUsername, "username already registered", err)
		case v.Mentions("email"):
			return errors.NewConflictError(errors.ReasonDuplicateEmail, "email already registered", err)
		}
		return errors.NewConflictError(errors.ReasonConstraintViolation, msg, err)
	case database.ConstraintForeignKey:
		return errors.NewConflictError(errors.ReasonConstraintViolation, msg, err)
	case database.ConstraintCheck:
		return errors.NewValidationError(msg, err)
	}
	return errors.NewDatabaseError(msg, err)
}

// where accumulates AND-combined conditions.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, arg)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
