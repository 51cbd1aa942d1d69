// FilePath: internal/repository/postgres/postgres.user.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
)

const userColumns = `id, username, email, password_hash, created_at`

type UserRepo struct {
	PostgresBaseRepo
}

func NewUserRepository(db database.DB, stamp *clock.Stamper) *UserRepo {
	return &UserRepo{PostgresBaseRepo: newBaseRepo(db, stamp)}
}

// Create inserts the user. Duplicate usernames or emails surface as conflicts
// straight from the unique constraints.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.stamp.Now()
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (:id, :username, :email, :password_hash, :created_at)`

	if _, err := r.namedExec(ctx, nil, query, user); err != nil {
		return translateError("failed to create user", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`

	err := r.get(ctx, nil, user, query, value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("user not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}
