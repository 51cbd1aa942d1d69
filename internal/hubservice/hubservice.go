// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"context"

	"github.com/secador-solar/sensorhub/internal/auth"
	"github.com/secador-solar/sensorhub/internal/cleanup"
	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/locking"
	"github.com/secador-solar/sensorhub/internal/monitoring"
	"github.com/secador-solar/sensorhub/internal/repository"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Controllers repository.ControllerRepository
	Ensayos     repository.EnsayoRepository
	Readings    repository.ReadingRepository
	Users       repository.UserRepository
	Cleanup     *cleanup.CleanupService
	Tokens      *auth.TokenIssuer

	// Monitoring is optional; ingestion counters are skipped when nil.
	Monitoring *monitoring.Service

	locker locking.Locker
	clock  clock.Clock
}

// Options carries the non-repository dependencies of a HubService.
type Options struct {
	Locker     locking.Locker
	Tokens     *auth.TokenIssuer
	Monitoring *monitoring.Service
	Clock      clock.Clock
}

// New creates a new HubService instance. A nil locker falls back to an
// in-process keyed mutex.
func New(
	controllers repository.ControllerRepository,
	ensayos repository.EnsayoRepository,
	readings repository.ReadingRepository,
	users repository.UserRepository,
	opts Options,
) *HubService {
	if opts.Locker == nil {
		opts.Locker = locking.NewKeyedMutex()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	svc := &HubService{
		Controllers: controllers,
		Ensayos:     ensayos,
		Readings:    readings,
		Users:       users,
		Tokens:      opts.Tokens,
		Monitoring:  opts.Monitoring,
		locker:      opts.Locker,
		clock:       opts.Clock,
	}
	svc.Cleanup = cleanup.New(controllers, ensayos, readings, opts.Locker)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Controllers == nil {
		return ErrMissingRepository("controllers")
	}
	if s.Ensayos == nil {
		return ErrMissingRepository("ensayos")
	}
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	if s.Users == nil {
		return ErrMissingRepository("users")
	}
	if s.Tokens == nil {
		return errors.NewInternalError("missing token issuer", nil)
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *HubService) inTx(ctx context.Context, fn func(tx database.Transaction) error) error {
	tx, err := s.Controllers.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit transaction", err)
	}
	return nil
}
