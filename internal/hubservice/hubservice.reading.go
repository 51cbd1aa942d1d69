// FilePath: internal/hubservice/hubservice.reading.go
package hubservice

import (
	"context"
	"fmt"

	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/models"
	"github.com/secador-solar/sensorhub/internal/monitoring"
)

// Assignment is the ensayo a new reading is attributed to.
type Assignment struct {
	EnsayoID string
	// Source is monitoring.SourceActive or monitoring.SourceGeneric.
	Source string
}

// ResolveAssignment picks the ensayo for a reading from c: the active
// ensayo when set, otherwise the generic one.
func ResolveAssignment(c *models.Controller) (Assignment, error) {
	if c.ActiveEnsayoID != nil && *c.ActiveEnsayoID != "" {
		if c.IsGeneric(*c.ActiveEnsayoID) {
			return Assignment{EnsayoID: *c.ActiveEnsayoID, Source: monitoring.SourceGeneric}, nil
		}
		return Assignment{EnsayoID: *c.ActiveEnsayoID, Source: monitoring.SourceActive}, nil
	}
	if c.GenericEnsayoID != "" {
		return Assignment{EnsayoID: c.GenericEnsayoID, Source: monitoring.SourceGeneric}, nil
	}
	return Assignment{}, errors.NewAssignmentError(
		fmt.Sprintf("controller %s has neither an active nor a generic ensayo", c.ID), nil)
}

// RecordReading stores a reading for one of the controller's sensors. The
// hub assigns the ensayo and the timestamp. A reported battery level also
// updates the controller.
func (s *HubService) RecordReading(ctx context.Context, in models.ReadingCreate) (*models.Reading, error) {
	if !models.ValidSensorID(in.SensorID) {
		return nil, errors.NewValidationError(
			fmt.Sprintf("sensor_id must be between %d and %d", models.MinSensorID, models.MaxSensorID), nil).
			WithDetails(map[string]int{"sensor_id": in.SensorID})
	}
	if in.ControllerID == "" {
		return nil, errors.NewValidationError("controller_id is required", nil)
	}

	var (
		reading    *models.Reading
		assignment Assignment
	)
	err := s.inTx(ctx, func(tx database.Transaction) error {
		controller, err := s.Controllers.Get(ctx, tx, in.ControllerID)
		if err != nil {
			return err
		}

		assignment, err = ResolveAssignment(controller)
		if err != nil {
			return err
		}

		reading = &models.Reading{
			ControllerID: controller.ID,
			EnsayoID:     &assignment.EnsayoID,
			SensorID:     in.SensorID,
			Temperature:  in.Temperature,
			Humidity:     in.Humidity,
			Battery:      in.Battery,
		}
		if err := s.Readings.Create(ctx, tx, reading); err != nil {
			return err
		}

		if in.Battery != nil {
			return s.Controllers.UpdateBattery(ctx, tx, controller.ID, *in.Battery)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Monitoring != nil {
		s.Monitoring.RecordReading(assignment.Source)
	}
	logging.L.Debugf("[ReadingService] Stored reading %s for controller %s sensor %d in ensayo %s",
		reading.ID, reading.ControllerID, reading.SensorID, assignment.EnsayoID)
	return reading, nil
}

func (s *HubService) GetReading(ctx context.Context, id string) (*models.Reading, error) {
	return s.Readings.Get(ctx, id)
}

// ListReadings returns readings newest first.
func (s *HubService) ListReadings(ctx context.Context, filters models.ReadingFilters, page models.Pagination) ([]*models.Reading, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.Readings.List(ctx, filters, page)
}

// GetLatestReading returns the most recent reading across all controllers.
func (s *HubService) GetLatestReading(ctx context.Context) (*models.Reading, error) {
	reading, err := s.Readings.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, errors.NewNotFoundError("no readings found", nil)
	}
	return reading, nil
}

func (s *HubService) DeleteReading(ctx context.Context, id string) error {
	return s.Cleanup.DeleteReading(ctx, id)
}
