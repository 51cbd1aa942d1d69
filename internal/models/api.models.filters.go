// FilePath: internal/models/api.models.filters.go
package models

import (
	"github.com/google/uuid"
	"github.com/secador-solar/sensorhub/internal/errors"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Pagination is applied after filtering.
type Pagination struct {
	Skip  int `json:"skip" schema:"skip"`
	Limit int `json:"limit" schema:"limit"`
}

// DefaultPagination returns skip=0, limit=100.
func DefaultPagination() Pagination {
	return Pagination{Skip: 0, Limit: DefaultLimit}
}

// Validate rejects out-of-range values instead of clamping them.
func (p Pagination) Validate() error {
	if p.Skip < 0 {
		return errors.NewValidationError("skip must be >= 0", nil)
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return errors.NewValidationError("limit must be between 1 and 1000", nil)
	}
	return nil
}

// ReadingFilters defines the available filter options for readings. Set
// fields are AND-combined.
type ReadingFilters struct {
	ControllerID *string `json:"controller_id,omitempty" schema:"controller_id"`
	SensorID     *int    `json:"sensor_id,omitempty" schema:"sensor_id"`
	EnsayoID     *string `json:"ensayo_id,omitempty" schema:"ensayo_id"`
}

func (f ReadingFilters) Validate() error {
	if f.ControllerID != nil {
		if err := ValidateID("controller_id", *f.ControllerID); err != nil {
			return err
		}
	}
	if f.EnsayoID != nil {
		if err := ValidateID("ensayo_id", *f.EnsayoID); err != nil {
			return err
		}
	}
	if f.SensorID != nil && !ValidSensorID(*f.SensorID) {
		return errors.NewValidationError("sensor_id must be between 1 and 4", nil)
	}
	return nil
}

// EnsayoFilters defines the available filter options for ensayos
type EnsayoFilters struct {
	ControllerID *string `json:"controller_id,omitempty" schema:"controller_id"`
}

func (f EnsayoFilters) Validate() error {
	if f.ControllerID != nil {
		return ValidateID("controller_id", *f.ControllerID)
	}
	return nil
}

// ValidateID checks that id is a UUID.
func ValidateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError(field+" must be a UUID", err)
	}
	return nil
}

// NewID returns a time-ordered UUID string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
