// Package errors defines the host's structured error taxonomy.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of host error.
type ErrorCode string

const (
	ErrRoutingMiss        ErrorCode = "ROUTING_MISS"        // 404
	ErrUnknownApp         ErrorCode = "UNKNOWN_APP"         // 404
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrMalformedManifest  ErrorCode = "MALFORMED_MANIFEST"  // 422
	ErrInvalidState       ErrorCode = "INVALID_STATE"       // 409
	ErrPersistenceFailure ErrorCode = "PERSISTENCE_FAILURE" // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// HostError is a structured error with code, status and details.
type HostError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *HostError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *HostError) Unwrap() error {
	return e.Err
}

// NewRoutingMiss reports that no manifest claims an intent.
func NewRoutingMiss(action, dataType string) *HostError {
	return &HostError{
		Code:    ErrRoutingMiss,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("no app handles %s %q", action, dataType),
		Details: map[string]any{"action": action, "type": dataType},
	}
}

// NewUnknownApp reports an app id absent from the catalog.
func NewUnknownApp(appID string) *HostError {
	return &HostError{
		Code:    ErrUnknownApp,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("app not in catalog: %s", appID),
		Details: map[string]any{"app_id": appID},
	}
}

// NewNotFound reports a missing record.
func NewNotFound(kind, identifier string) *HostError {
	return &HostError{
		Code:    ErrNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewInvalidRequest reports bad caller input.
func NewInvalidRequest(msg string) *HostError {
	return &HostError{
		Code:    ErrInvalidRequest,
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

// NewMalformedManifest reports a manifest that cannot be registered as-is.
func NewMalformedManifest(manifestID, reason string) *HostError {
	return &HostError{
		Code:    ErrMalformedManifest,
		Status:  http.StatusUnprocessableEntity,
		Message: fmt.Sprintf("manifest %q: %s", manifestID, reason),
		Details: map[string]any{"manifest_id": manifestID},
	}
}

// NewInvalidState reports an operation not allowed in the current state.
func NewInvalidState(msg string) *HostError {
	return &HostError{
		Code:    ErrInvalidState,
		Status:  http.StatusConflict,
		Message: msg,
	}
}

// NewPersistenceFailure wraps a durable store failure.
func NewPersistenceFailure(op string, err error) *HostError {
	msg := op + " failed"
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return &HostError{
		Code:    ErrPersistenceFailure,
		Status:  http.StatusServiceUnavailable,
		Message: msg,
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HostError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HostError{
		Code:    ErrInternal,
		Status:  http.StatusInternalServerError,
		Message: msg,
		Err:     err,
	}
}

// Is checks whether err, or anything it wraps, is a HostError with code.
func Is(err error, code ErrorCode) bool {
	var hErr *HostError
	if stderrors.As(err, &hErr) {
		return hErr.Code == code
	}
	return false
}

// StatusOf maps an error to an HTTP status code.
func StatusOf(err error) int {
	var hErr *HostError
	if stderrors.As(err, &hErr) {
		return hErr.Status
	}
	return http.StatusInternalServerError
}
