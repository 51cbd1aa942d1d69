// FilePath: internal/hubservice/hubservice.ensayo.go
package hubservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/secador-solar/sensorhub/internal/cleanup"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/locking"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/models"
)

// CreateEnsayo creates an ensayo, optionally owned by a controller. New
// ensayos cannot start out running; they are started by switching a
// controller to them.
func (s *HubService) CreateEnsayo(ctx context.Context, in models.EnsayoInput) (*models.Ensayo, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("ensayo name is required", nil)
	}

	state := in.RequestedState()
	if state == models.EnsayoRunning {
		return nil, errors.NewValidationError("an ensayo is started by making it a controller's active ensayo", nil)
	}

	if in.ControllerID != nil {
		if _, err := s.Controllers.Get(ctx, nil, *in.ControllerID); err != nil {
			return nil, err
		}
	}

	ensayo := &models.Ensayo{
		Name:         name,
		ControllerID: in.ControllerID,
		State:        state,
	}
	if err := s.Ensayos.Create(ctx, nil, ensayo); err != nil {
		return nil, err
	}

	logging.L.Infof("[EnsayoService] Created ensayo %s (%s) in state %s", ensayo.Name, ensayo.ID, ensayo.State)
	return ensayo, nil
}

func (s *HubService) GetEnsayo(ctx context.Context, id string) (*models.Ensayo, error) {
	return s.Ensayos.Get(ctx, nil, id)
}

// ListEnsayos lists ensayos, optionally restricted to one controller.
func (s *HubService) ListEnsayos(ctx context.Context, filters models.EnsayoFilters, page models.Pagination) ([]*models.Ensayo, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.Ensayos.List(ctx, filters, page)
}

// UpdateEnsayo applies a partial update. An empty name, missing owner or
// missing state keeps the stored value. State changes follow
// EnsayoState.CanTransitionTo. Generic and currently active ensayos keep
// their owner, and a generic ensayo is never finished.
func (s *HubService) UpdateEnsayo(ctx context.Context, id string, in models.EnsayoInput) (*models.Ensayo, error) {
	before, err := s.Ensayos.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	keys := []string{ownerLockKey(before.ControllerID)}
	if in.ControllerID != nil {
		keys = append(keys, cleanup.ControllerLockKey(*in.ControllerID))
	}
	release, err := locking.LockAll(ctx, s.locker, keys...)
	if err != nil {
		return nil, errors.NewUnavailableError("could not acquire controller lock", err)
	}
	defer release()

	var updated *models.Ensayo
	err = s.inTx(ctx, func(tx database.Transaction) error {
		current, err := s.Ensayos.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if ownerLockKey(current.ControllerID) != ownerLockKey(before.ControllerID) {
			return errors.NewConflictError(errors.ReasonConcurrentModification,
				"ensayo changed controller while being updated", nil)
		}
		next := *current

		generic, err := s.isGenericEnsayo(ctx, tx, id)
		if err != nil {
			return err
		}

		if name := strings.TrimSpace(in.Name); name != "" {
			next.Name = name
		}

		if in.State != nil && *in.State != current.State {
			if generic && *in.State == models.EnsayoFinished {
				return errors.NewConflictError(errors.ReasonGenericEnsayo,
					"the generic ensayo cannot be finished", nil)
			}
			if !current.State.CanTransitionTo(*in.State) {
				return errors.NewConflictError(errors.ReasonInvalidTransition,
					fmt.Sprintf("ensayo cannot move from %s to %s", current.State, *in.State), nil)
			}
			next.State = *in.State
		}

		if in.ControllerID != nil && !ownedBy(current, *in.ControllerID) {
			if generic {
				return errors.NewConflictError(errors.ReasonGenericEnsayo,
					"the generic ensayo cannot change controller", nil)
			}
			if err := s.checkOwnerChange(ctx, tx, current, *in.ControllerID); err != nil {
				return err
			}
			next.ControllerID = in.ControllerID
		}

		if err := s.Ensayos.Update(ctx, tx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.L.Infof("[EnsayoService] Updated ensayo %s", id)
	return updated, nil
}

func (s *HubService) isGenericEnsayo(ctx context.Context, tx database.Transaction, id string) (bool, error) {
	_, err := s.Controllers.FindByGenericEnsayo(ctx, tx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *HubService) checkOwnerChange(ctx context.Context, tx database.Transaction, ensayo *models.Ensayo, newOwner string) error {
	active, err := s.Controllers.IsActiveEnsayo(ctx, tx, ensayo.ID)
	if err != nil {
		return err
	}
	if active {
		return errors.NewConflictError(errors.ReasonReferencedByController,
			"an active ensayo cannot change controller", nil)
	}

	_, err = s.Controllers.Get(ctx, tx, newOwner)
	return err
}

func ownerLockKey(controllerID *string) string {
	if controllerID == nil {
		return ""
	}
	return cleanup.ControllerLockKey(*controllerID)
}

// DeleteEnsayo removes a non-generic ensayo.
func (s *HubService) DeleteEnsayo(ctx context.Context, id string) error {
	if err := s.Cleanup.DeleteEnsayo(ctx, id); err != nil {
		return err
	}
	logging.L.Infof("[EnsayoService] Deleted ensayo %s", id)
	return nil
}
