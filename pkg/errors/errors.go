package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"locate-service/internal/domain"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "InvalidRequest", "LocateNotFound")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (field name, validation info, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidRequest", "ValidationError":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusUnauthorized
	case "Forbidden":
		return http.StatusForbidden
	case "LocateNotFound", "ResourceNotFound":
		return http.StatusNotFound
	case "IllegalState", "Conflict", "ConcurrentModification":
		return http.StatusConflict
	case "InsufficientInventory":
		return http.StatusUnprocessableEntity
	case "ServiceUnavailable":
		return http.StatusServiceUnavailable
	case "DatabaseError", "InternalError":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewUnauthorized(message, details string) *StandardError {
	return NewStandardError("Unauthorized", message, details)
}

func NewLocateNotFound(requestID string) *StandardError {
	return NewStandardError("LocateNotFound", "locate request not found", fmt.Sprintf("Request ID: %s", requestID))
}

func NewIllegalState(requestID string, current domain.LocateStatus, operation string) *StandardError {
	return NewStandardError("IllegalState", fmt.Sprintf("cannot %s locate request", operation),
		fmt.Sprintf("Request ID: %s, Status: %s", requestID, current))
}

func NewConcurrentModification() *StandardError {
	return NewStandardError("ConcurrentModification", "locate request was modified concurrently", "retry with the current state")
}

func NewInsufficientInventory(securityID, requested, remaining string) *StandardError {
	return NewStandardError("InsufficientInventory", "insufficient inventory available",
		fmt.Sprintf("Security: %s, Requested: %s, Remaining: %s", securityID, requested, remaining))
}

func NewDatabaseError(operation string, err error) *StandardError {
	return NewStandardError("DatabaseError", fmt.Sprintf("database operation failed: %s", operation), err.Error())
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("InternalError", message, details)
}

// FromDomain maps workflow errors to their API representation. Unknown errors
// become InternalError.
func FromDomain(err error) *StandardError {
	var (
		stdErr       *StandardError
		validation   *domain.ValidationError
		illegal      *domain.IllegalStateError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientInventoryError
	)

	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &validation):
		return NewValidationError(validation.Message, validation.Field)
	case stderrors.As(err, &illegal):
		return NewIllegalState(illegal.RequestID, illegal.Current, illegal.Operation)
	case stderrors.As(err, &notFound):
		return NewLocateNotFound(notFound.RequestID)
	case stderrors.As(err, &insufficient):
		return NewInsufficientInventory(insufficient.SecurityID, insufficient.Requested.String(), insufficient.Remaining.String())
	case stderrors.Is(err, domain.ErrConcurrentModification):
		return NewConcurrentModification()
	default:
		return NewInternalError("internal server error", err)
	}
}
