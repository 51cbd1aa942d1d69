// FilePath: internal/models/models.ensayo.go
package models

import "time"

type Ensayo struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	ControllerID *string     `json:"controller_id" db:"controller_id"`
	State        EnsayoState `json:"state" db:"state" swaggertype:"string" enums:"Default,Parado,Corriendo,Finalizado"`
	RegisteredAt time.Time   `json:"registered_at" db:"registered_at"`
}

// EnsayoInput is the body of ensayo create and update requests. On create a
// missing state means Parado; on update it keeps the stored state.
type EnsayoInput struct {
	Name         string       `json:"name"`
	ControllerID *string      `json:"controller_id,omitempty"`
	State        *EnsayoState `json:"state,omitempty" swaggertype:"string" enums:"Default,Parado,Corriendo,Finalizado"`
}

// RequestedState returns the state asked for on create, defaulting to Parado.
func (in EnsayoInput) RequestedState() EnsayoState {
	if in.State == nil {
		return EnsayoStopped
	}
	return *in.State
}
