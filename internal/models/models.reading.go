// FilePath: internal/models/models.reading.go
package models

import "time"

const (
	MinSensorID = 1
	MaxSensorID = 4
)

// Reading is a single temperature/humidity sample from one sensor of a
// controller. Readings are immutable once stored.
type Reading struct {
	ID           string    `json:"id" db:"id"`
	ControllerID string    `json:"controller_id" db:"controller_id"`
	EnsayoID     *string   `json:"ensayo_id" db:"ensayo_id"`
	SensorID     int       `json:"sensor_id" db:"sensor_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Temperature  float64   `json:"temperature" db:"temperature"`
	Humidity     float64   `json:"humidity" db:"humidity"`
	Battery      *float64  `json:"battery" db:"battery"`
}

// ReadingCreate is what a controller posts. The ensayo and timestamp are
// assigned by the hub.
type ReadingCreate struct {
	ControllerID string   `json:"controller_id"`
	SensorID     int      `json:"sensor_id"`
	Temperature  float64  `json:"temperature"`
	Humidity     float64  `json:"humidity"`
	Battery      *float64 `json:"battery,omitempty"`
}

// ValidSensorID reports whether id addresses one of the controller's sensors.
func ValidSensorID(id int) bool {
	return id >= MinSensorID && id <= MaxSensorID
}
