// FilePath: internal/models/models.state.go
package models

import (
	"database/sql/driver"
	"fmt"
)

// ControllerState is the lifecycle state of a controller. The stored and
// serialised form is the Spanish label returned by String.
type ControllerState uint8

const (
	ControllerInactive ControllerState = iota
	ControllerActive
	ControllerInTrial
)

func (s ControllerState) String() string {
	switch s {
	case ControllerInactive:
		return "Inactivo"
	case ControllerActive:
		return "Activo"
	case ControllerInTrial:
		return "En ensayo"
	default:
		return fmt.Sprintf("ControllerState(%d)", uint8(s))
	}
}

// ParseControllerState maps a label back to its state.
func ParseControllerState(label string) (ControllerState, error) {
	switch label {
	case "Inactivo":
		return ControllerInactive, nil
	case "Activo":
		return ControllerActive, nil
	case "En ensayo":
		return ControllerInTrial, nil
	default:
		return 0, fmt.Errorf("unknown controller state %q", label)
	}
}

func (s ControllerState) MarshalText() ([]byte, error) {
	if s > ControllerInTrial {
		return nil, fmt.Errorf("invalid controller state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *ControllerState) UnmarshalText(text []byte) error {
	parsed, err := ParseControllerState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements the driver.Valuer interface
func (s ControllerState) Value() (driver.Value, error) {
	if s > ControllerInTrial {
		return nil, fmt.Errorf("invalid controller state %d", uint8(s))
	}
	return s.String(), nil
}

// Scan implements the sql.Scanner interface
func (s *ControllerState) Scan(value interface{}) error {
	label, err := scanLabel(value)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(label))
}

// EnsayoState is the lifecycle state of an ensayo.
type EnsayoState uint8

const (
	// EnsayoDefault is only found on legacy rows; new generic ensayos start
	// stopped.
	EnsayoDefault EnsayoState = iota
	EnsayoStopped
	EnsayoRunning
	EnsayoFinished
)

func (s EnsayoState) String() string {
	switch s {
	case EnsayoDefault:
		return "Default"
	case EnsayoStopped:
		return "Parado"
	case EnsayoRunning:
		return "Corriendo"
	case EnsayoFinished:
		return "Finalizado"
	default:
		return fmt.Sprintf("EnsayoState(%d)", uint8(s))
	}
}

// ParseEnsayoState maps a label back to its state.
func ParseEnsayoState(label string) (EnsayoState, error) {
	switch label {
	case "Default":
		return EnsayoDefault, nil
	case "Parado":
		return EnsayoStopped, nil
	case "Corriendo":
		return EnsayoRunning, nil
	case "Finalizado":
		return EnsayoFinished, nil
	default:
		return 0, fmt.Errorf("unknown ensayo state %q", label)
	}
}

func (s EnsayoState) MarshalText() ([]byte, error) {
	if s > EnsayoFinished {
		return nil, fmt.Errorf("invalid ensayo state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *EnsayoState) UnmarshalText(text []byte) error {
	parsed, err := ParseEnsayoState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements the driver.Valuer interface
func (s EnsayoState) Value() (driver.Value, error) {
	if s > EnsayoFinished {
		return nil, fmt.Errorf("invalid ensayo state %d", uint8(s))
	}
	return s.String(), nil
}

// Scan implements the sql.Scanner interface
func (s *EnsayoState) Scan(value interface{}) error {
	label, err := scanLabel(value)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(label))
}

// IsTerminal reports whether no further transition is allowed.
func (s EnsayoState) IsTerminal() bool {
	return s == EnsayoFinished
}

// CanTransitionTo reports whether a direct update may move an ensayo from s
// to next. Entering EnsayoRunning is reserved for the active-ensayo switch.
func (s EnsayoState) CanTransitionTo(next EnsayoState) bool {
	if s == next {
		return true
	}
	switch s {
	case EnsayoDefault:
		return next == EnsayoStopped || next == EnsayoFinished
	case EnsayoStopped:
		return next == EnsayoFinished
	case EnsayoRunning:
		return next == EnsayoStopped || next == EnsayoFinished
	case EnsayoFinished:
		return false
	default:
		return false
	}
}

func scanLabel(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into a state", value)
	}
}
