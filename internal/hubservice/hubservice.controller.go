// FilePath: internal/hubservice/hubservice.controller.go
package hubservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/secador-solar/sensorhub/internal/cleanup"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/models"
)

// Connectivity values reported by GetControllerStatus.
const (
	ConnectivityOnline  = "online"
	ConnectivityAway    = "away"
	ConnectivityOffline = "offline"
	ConnectivityUnknown = "unknown"
)

// CreateController registers a controller together with its generic
// ensayo. Both rows commit or neither does.
func (s *HubService) CreateController(ctx context.Context, in models.ControllerCreate) (*models.ControllerCreated, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("controller name is required", nil)
	}

	var created models.ControllerCreated
	err := s.inTx(ctx, func(tx database.Transaction) error {
		generic := &models.Ensayo{
			Name:  models.GenericEnsayoName(name),
			State: models.EnsayoStopped,
		}
		if err := s.Ensayos.Create(ctx, tx, generic); err != nil {
			return err
		}

		controller := &models.Controller{
			Name:            name,
			State:           models.ControllerActive,
			Battery:         in.Battery,
			ActiveEnsayoID:  &generic.ID,
			GenericEnsayoID: generic.ID,
		}
		if err := s.Controllers.Create(ctx, tx, controller); err != nil {
			return err
		}

		if err := s.Ensayos.SetOwner(ctx, tx, generic.ID, &controller.ID); err != nil {
			return err
		}
		generic.ControllerID = &controller.ID

		created = models.ControllerCreated{Controller: controller, GenericEnsayo: generic}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.L.Infof("[ControllerService] Registered controller %s (%s) with generic ensayo %s",
		created.Controller.Name, created.Controller.ID, created.GenericEnsayo.ID)
	return &created, nil
}

// GetController retrieves a controller by id
func (s *HubService) GetController(ctx context.Context, id string) (*models.Controller, error) {
	return s.Controllers.Get(ctx, nil, id)
}

func (s *HubService) ListControllers(ctx context.Context, page models.Pagination) ([]*models.Controller, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.Controllers.List(ctx, page)
}

// UpdateControllerName renames a controller. The generic ensayo keeps the
// name it was created with.
func (s *HubService) UpdateControllerName(ctx context.Context, id, name string) (*models.Controller, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("controller name is required", nil)
	}
	if err := s.Controllers.UpdateName(ctx, nil, id, name); err != nil {
		return nil, err
	}
	logging.L.Infof("[ControllerService] Renamed controller %s to %s", id, name)
	return s.Controllers.Get(ctx, nil, id)
}

// SwitchActiveEnsayo points the controller at ensayoID and starts it. The
// previously running ensayo, if any, is stopped. Switches on the same
// controller are serialized by the lock and guarded by the row version.
func (s *HubService) SwitchActiveEnsayo(ctx context.Context, controllerID, ensayoID string) (*models.ControllerSwitched, error) {
	release, err := s.locker.Lock(ctx, cleanup.ControllerLockKey(controllerID))
	if err != nil {
		return nil, errors.NewUnavailableError("could not acquire controller lock", err)
	}
	defer release()

	var switched models.ControllerSwitched
	err = s.inTx(ctx, func(tx database.Transaction) error {
		controller, err := s.Controllers.Get(ctx, tx, controllerID)
		if err != nil {
			return err
		}
		target, err := s.Ensayos.Get(ctx, tx, ensayoID)
		if err != nil {
			return err
		}

		if !controller.IsGeneric(target.ID) && !ownedBy(target, controller.ID) {
			return errors.NewValidationError("ensayo does not belong to this controller", nil).
				WithDetails(map[string]string{"controller_id": controllerID, "ensayo_id": ensayoID})
		}
		if target.State.IsTerminal() {
			return errors.NewConflictError(errors.ReasonInvalidTransition,
				fmt.Sprintf("ensayo is %s and cannot be started", target.State), nil)
		}

		if err := s.stopPrevious(ctx, tx, controller, target.ID); err != nil {
			return err
		}

		if err := s.Controllers.SetActiveEnsayo(ctx, tx, controller.ID, target.ID,
			models.ControllerInTrial, controller.Version); err != nil {
			return err
		}
		if err := s.Ensayos.SetState(ctx, tx, target.ID, models.EnsayoRunning); err != nil {
			return err
		}

		if switched.Controller, err = s.Controllers.Get(ctx, tx, controller.ID); err != nil {
			return err
		}
		switched.Ensayo, err = s.Ensayos.Get(ctx, tx, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.L.Infof("[ControllerService] Controller %s switched to ensayo %s", controllerID, ensayoID)
	return &switched, nil
}

// stopPrevious moves the currently active ensayo back to Parado when it is
// running and is not the switch target.
func (s *HubService) stopPrevious(ctx context.Context, tx database.Transaction, controller *models.Controller, targetID string) error {
	if controller.ActiveEnsayoID == nil || *controller.ActiveEnsayoID == targetID {
		return nil
	}

	previous, err := s.Ensayos.Get(ctx, tx, *controller.ActiveEnsayoID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if previous.State != models.EnsayoRunning {
		return nil
	}
	return s.Ensayos.SetState(ctx, tx, previous.ID, models.EnsayoStopped)
}

// GetControllerStatus combines the controller with its active ensayo and the
// last reading it reported.
func (s *HubService) GetControllerStatus(ctx context.Context, id string) (*models.ControllerStatus, error) {
	controller, err := s.GetController(ctx, id)
	if err != nil {
		return nil, err
	}

	status := &models.ControllerStatus{Controller: controller, Connectivity: ConnectivityUnknown}

	if controller.ActiveEnsayoID != nil {
		active, err := s.Ensayos.Get(ctx, nil, *controller.ActiveEnsayoID)
		if err != nil {
			logging.L.Warnf("[ControllerService] Failed to get active ensayo for controller %s: %v", id, err)
		} else {
			status.ActiveEnsayo = active
		}
	}

	latest, err := s.Readings.LatestByController(ctx, id)
	if err != nil {
		logging.L.Warnf("[ControllerService] Failed to get latest reading for controller %s: %v", id, err)
	}
	if latest != nil {
		status.LatestReading = latest
		ts := latest.Timestamp
		status.LastActivity = &ts
		status.Connectivity = determineConnectivity(s.clock.Now().Sub(ts))
	}

	return status, nil
}

// DeleteController removes a controller and its generic ensayo.
func (s *HubService) DeleteController(ctx context.Context, id string) (*models.Controller, error) {
	controller, err := s.Cleanup.DeleteController(ctx, id)
	if err != nil {
		return nil, err
	}
	logging.L.Infof("[ControllerService] Deleted controller %s (%s)", controller.Name, id)
	return controller, nil
}

func determineConnectivity(sinceLastReading time.Duration) string {
	switch {
	case sinceLastReading < 5*time.Minute:
		return ConnectivityOnline
	case sinceLastReading < 15*time.Minute:
		return ConnectivityAway
	default:
		return ConnectivityOffline
	}
}

func ownedBy(e *models.Ensayo, controllerID string) bool {
	return e.ControllerID != nil && *e.ControllerID == controllerID
}
