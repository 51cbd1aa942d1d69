// FilePath: internal/repository/repository.go
package repository

import (
	"context"

	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/models"
)

// Every method taking a database.Transaction runs on the pool when tx is nil.

// ControllerRepository defines the interface for controller data operations
type ControllerRepository interface {
	database.Repository
	Create(ctx context.Context, tx database.Transaction, controller *models.Controller) error
	Get(ctx context.Context, tx database.Transaction, id string) (*models.Controller, error)
	List(ctx context.Context, page models.Pagination) ([]*models.Controller, error)
	UpdateName(ctx context.Context, tx database.Transaction, id, name string) error
	UpdateBattery(ctx context.Context, tx database.Transaction, id string, battery float64) error
	// SetActiveEnsayo moves the controller to ensayoID and state, bumping the
	// version. It fails with a concurrent-modification conflict when the
	// stored version differs from expectedVersion.
	SetActiveEnsayo(ctx context.Context, tx database.Transaction, id, ensayoID string, state models.ControllerState, expectedVersion int64) error
	// FindByGenericEnsayo returns the controller whose generic ensayo is
	// ensayoID, or a not-found error.
	FindByGenericEnsayo(ctx context.Context, tx database.Transaction, ensayoID string) (*models.Controller, error)
	// IsActiveEnsayo reports whether any controller currently points at ensayoID.
	IsActiveEnsayo(ctx context.Context, tx database.Transaction, ensayoID string) (bool, error)
	Delete(ctx context.Context, tx database.Transaction, id string) error
}

// EnsayoRepository defines the interface for ensayo data operations
type EnsayoRepository interface {
	database.Repository
	Create(ctx context.Context, tx database.Transaction, ensayo *models.Ensayo) error
	Get(ctx context.Context, tx database.Transaction, id string) (*models.Ensayo, error)
	List(ctx context.Context, filters models.EnsayoFilters, page models.Pagination) ([]*models.Ensayo, error)
	Update(ctx context.Context, tx database.Transaction, ensayo *models.Ensayo) error
	SetOwner(ctx context.Context, tx database.Transaction, id string, controllerID *string) error
	SetState(ctx context.Context, tx database.Transaction, id string, state models.EnsayoState) error
	Delete(ctx context.Context, tx database.Transaction, id string) error
}

// ReadingRepository defines the interface for sensor readings
type ReadingRepository interface {
	database.Repository
	Create(ctx context.Context, tx database.Transaction, reading *models.Reading) error
	Get(ctx context.Context, id string) (*models.Reading, error)
	List(ctx context.Context, filters models.ReadingFilters, page models.Pagination) ([]*models.Reading, error)
	// Latest returns the most recent reading overall, or nil when there is none.
	Latest(ctx context.Context) (*models.Reading, error)
	// LatestByController returns nil when the controller never reported.
	LatestByController(ctx context.Context, controllerID string) (*models.Reading, error)
	CountByEnsayo(ctx context.Context, tx database.Transaction, ensayoID string) (int64, error)
	Delete(ctx context.Context, tx database.Transaction, id string) error
}

// UserRepository defines the interface for account storage
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
