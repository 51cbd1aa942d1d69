// FilePath: internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"fmt"

	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/locking"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/models"
	"github.com/secador-solar/sensorhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Cleanup events, emitted after the deleting transaction commits. Handlers
// receive the id of the removed entity (the controller id for
// EventReadingsDeleted).
const (
	EventControllerDeleted = "controller.deleted"
	EventEnsayoDeleted     = "ensayo.deleted"
	EventReadingsDeleted   = "readings.deleted"
	EventReadingDeleted    = "reading.deleted"
)

// CleanupService coordinates deletion across controllers, ensayos and
// readings while keeping the generic-ensayo invariants.
type CleanupService struct {
	controllers repository.ControllerRepository
	ensayos     repository.EnsayoRepository
	readings    repository.ReadingRepository
	locker      locking.Locker
	events      *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	controllers repository.ControllerRepository,
	ensayos repository.EnsayoRepository,
	readings repository.ReadingRepository,
	locker locking.Locker,
) *CleanupService {
	if locker == nil {
		locker = locking.NewKeyedMutex()
	}
	return &CleanupService{
		controllers: controllers,
		ensayos:     ensayos,
		readings:    readings,
		locker:      locker,
		events:      nuts.NewEventEmitter(),
	}
}

// DeleteController deletes a controller, its readings and its generic
// ensayo. It refuses while the generic ensayo still holds readings. Other
// ensayos the controller owned survive with no owner. The returned value is
// the controller as it was before deletion.
func (s *CleanupService) DeleteController(ctx context.Context, controllerID string) (*models.Controller, error) {
	release, err := s.locker.Lock(ctx, ControllerLockKey(controllerID))
	if err != nil {
		return nil, errors.NewUnavailableError("could not acquire controller lock", err)
	}
	defer release()

	// Start transaction
	tx, err := s.controllers.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	controller, err := s.controllers.Get(ctx, tx, controllerID)
	if err != nil {
		return nil, err
	}

	count, err := s.readings.CountByEnsayo(ctx, tx, controller.GenericEnsayoID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.NewConflictError(errors.ReasonHasReadings,
			"controller cannot be deleted while its generic ensayo has readings", nil).
			WithDetails(map[string]int64{"readings": count})
	}

	// Ensayos left without an owner are never running.
	if !controller.ActiveIsGeneric() {
		if err := s.stopRunning(ctx, tx, *controller.ActiveEnsayoID); err != nil {
			return nil, err
		}
	}

	// Cascades readings; nulls ownership and active references.
	if err := s.controllers.Delete(ctx, tx, controllerID); err != nil {
		return nil, err
	}

	if err := s.ensayos.Delete(ctx, tx, controller.GenericEnsayoID); err != nil {
		return nil, fmt.Errorf("failed to delete generic ensayo: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return nil, errors.NewDatabaseError("failed to commit transaction", err)
	}

	// Emit events after successful deletion
	s.events.Emit(EventReadingsDeleted, controllerID)
	s.events.Emit(EventEnsayoDeleted, controller.GenericEnsayoID)
	s.events.Emit(EventControllerDeleted, controllerID)
	return controller, nil
}

func (s *CleanupService) stopRunning(ctx context.Context, tx database.Transaction, ensayoID string) error {
	ensayo, err := s.ensayos.Get(ctx, tx, ensayoID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if ensayo.State != models.EnsayoRunning {
		return nil
	}
	return s.ensayos.SetState(ctx, tx, ensayo.ID, models.EnsayoStopped)
}

// DeleteEnsayo deletes a non-generic ensayo. Readings that referenced it
// keep existing with no ensayo, and a controller that had it active falls
// back to generic assignment.
func (s *CleanupService) DeleteEnsayo(ctx context.Context, ensayoID string) error {
	before, err := s.ensayos.Get(ctx, nil, ensayoID)
	if err != nil {
		return err
	}

	// The owner may have it active; serialise with its switches.
	release, err := locking.LockAll(ctx, s.locker, ownerLockKey(before))
	if err != nil {
		return errors.NewUnavailableError("could not acquire controller lock", err)
	}
	defer release()

	tx, err := s.ensayos.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := s.ensayos.Get(ctx, tx, ensayoID)
	if err != nil {
		return err
	}
	if ownerLockKey(current) != ownerLockKey(before) {
		return errors.NewConflictError(errors.ReasonConcurrentModification,
			"ensayo changed controller while being deleted", nil)
	}

	owner, err := s.controllers.FindByGenericEnsayo(ctx, tx, ensayoID)
	switch {
	case err == nil:
		return errors.NewConflictError(errors.ReasonGenericEnsayo,
			"ensayo is the generic ensayo of a controller", nil).
			WithDetails(map[string]string{"controller_id": owner.ID})
	case !errors.IsNotFound(err):
		return err
	}

	if err := s.ensayos.Delete(ctx, tx, ensayoID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit transaction", err)
	}

	s.events.Emit(EventEnsayoDeleted, ensayoID)
	return nil
}

// DeleteReading removes a single reading.
func (s *CleanupService) DeleteReading(ctx context.Context, readingID string) error {
	if err := s.readings.Delete(ctx, nil, readingID); err != nil {
		return err
	}
	s.events.Emit(EventReadingDeleted, readingID)
	return nil
}

// OnCleanup registers a callback for cleanup events. A panicking handler is
// logged and does not affect other handlers.
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, nuts.NID("cleanup_handler", 8), func(args ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				logging.L.Errorf("[Cleanup] Handler for %s panicked: %v", event, r)
			}
		}()
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

// ControllerLockKey is the lock scope shared by every mutation of one
// controller's active ensayo.
func ControllerLockKey(controllerID string) string {
	return "controller:" + controllerID
}

// ownerLockKey is the lock key of the controller owning e, or "" when e has
// no owner.
func ownerLockKey(e *models.Ensayo) string {
	if e.ControllerID == nil {
		return ""
	}
	return ControllerLockKey(*e.ControllerID)
}
