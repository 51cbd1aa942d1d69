// FilePath: internal/models/models.controller.go
package models

import "time"

// GenericEnsayoName is the name given to the ensayo created with a controller.
func GenericEnsayoName(controllerName string) string {
	return "Ensayo Genérico para " + controllerName
}

type Controller struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	State           ControllerState `json:"state" db:"state" swaggertype:"string" enums:"Inactivo,Activo,En ensayo"`
	Battery         *float64        `json:"battery" db:"battery"`
	ActiveEnsayoID  *string         `json:"active_ensayo_id" db:"active_ensayo_id"`
	GenericEnsayoID string          `json:"generic_ensayo_id" db:"generic_ensayo_id"`
	RegisteredAt    time.Time       `json:"registered_at" db:"registered_at"`
	Version         int64           `json:"-" db:"version"`
}

// IsGeneric reports whether ensayoID is this controller's generic ensayo.
func (c *Controller) IsGeneric(ensayoID string) bool {
	return c.GenericEnsayoID == ensayoID
}

// ActiveIsGeneric reports whether the active ensayo is unset or the generic one.
func (c *Controller) ActiveIsGeneric() bool {
	return c.ActiveEnsayoID == nil || *c.ActiveEnsayoID == c.GenericEnsayoID
}

type ControllerCreate struct {
	Name    string   `json:"name"`
	Battery *float64 `json:"battery,omitempty"`
}

type ControllerNameUpdate struct {
	Name string `json:"name"`
}

type ControllerEnsayoUpdate struct {
	ActiveEnsayoID string `json:"active_ensayo_id"`
}

// ControllerCreated is returned by controller registration.
type ControllerCreated struct {
	Controller    *Controller `json:"controller"`
	GenericEnsayo *Ensayo     `json:"generic_ensayo"`
}

// ControllerSwitched is returned after the active ensayo changes.
type ControllerSwitched struct {
	Controller *Controller `json:"controller"`
	Ensayo     *Ensayo     `json:"ensayo"`
}
