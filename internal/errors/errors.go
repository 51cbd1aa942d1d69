// FilePath: internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeDatabase    ErrorType = "database"
	ErrorTypeAuth        ErrorType = "authentication"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeAssignment  ErrorType = "assignment"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUnavailable ErrorType = "service_unavailable"
)

// ConflictReason narrows a conflict error down to the rule that was violated.
type ConflictReason string

const (
	ReasonDuplicateUsername      ConflictReason = "duplicate_username"
	ReasonDuplicateEmail         ConflictReason = "duplicate_email"
	ReasonGenericEnsayo          ConflictReason = "generic_ensayo"
	ReasonHasReadings            ConflictReason = "has_readings"
	ReasonConcurrentModification ConflictReason = "concurrent_modification"
	ReasonInvalidTransition      ConflictReason = "invalid_transition"
	ReasonReferencedByController ConflictReason = "referenced_by_controller"
	ReasonConstraintViolation    ConflictReason = "constraint_violation"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType      `json:"type"`
	Message   string         `json:"message"`
	Code      int            `json:"code"`
	Reason    ConflictReason `json:"reason,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   any            `json:"details,omitempty"`
	err       error          // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal cause to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeDatabase,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewAuthError creates a new authentication error
func NewAuthError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeAuth,
		Message: msg,
		Code:    http.StatusUnauthorized,
		err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    http.StatusNotFound,
		err:     err,
	}
}

// NewConflictError creates a new conflict error tagged with the violated rule
func NewConflictError(reason ConflictReason, msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeConflict,
		Message: msg,
		Code:    http.StatusConflict,
		Reason:  reason,
		err:     err,
	}
}

// NewAssignmentError is raised when a reading cannot be attached to any ensayo.
// It is a server fault: every controller is expected to carry a generic ensayo.
func NewAssignmentError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeAssignment,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewUnavailableError creates a new service unavailable error
func NewUnavailableError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeUnavailable,
		Message: msg,
		Code:    http.StatusServiceUnavailable,
		err:     err,
	}
}

// AsAPIError finds the first APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Wrap returns err unchanged when it already carries an APIError, and an
// internal error with msg otherwise.
func Wrap(err error, msg string) *APIError {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr
	}
	return NewInternalError(msg, err)
}

func isType(err error, t ErrorType) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Type == t
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsConflict checks if an error is a Conflict error
func IsConflict(err error) bool { return isType(err, ErrorTypeConflict) }

// IsAuth checks if an error is an authentication error
func IsAuth(err error) bool { return isType(err, ErrorTypeAuth) }

// IsDatabase checks if an error is a persistence error
func IsDatabase(err error) bool { return isType(err, ErrorTypeDatabase) }

// IsUnavailable checks if an error reports a temporarily unavailable dependency
func IsUnavailable(err error) bool { return isType(err, ErrorTypeUnavailable) }

// ConflictReasonOf returns the conflict reason carried by err, or "".
func ConflictReasonOf(err error) ConflictReason {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Type != ErrorTypeConflict {
		return ""
	}
	return apiErr.Reason
}
