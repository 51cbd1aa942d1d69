// FilePath: internal/models/models.composite.go
package models

import "time"

// ControllerStatus combines a controller with its active ensayo and the most
// recent reading it reported.
type ControllerStatus struct {
	Controller    *Controller `json:"controller"`
	ActiveEnsayo  *Ensayo     `json:"active_ensayo"`
	LatestReading *Reading    `json:"latest_reading"`
	Connectivity  string      `json:"connectivity"`
	LastActivity  *time.Time  `json:"last_activity"`
}
