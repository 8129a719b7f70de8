package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a malformed or incomplete request. Callers must fix the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IllegalStateError reports an operation attempted from the wrong lifecycle state.
type IllegalStateError struct {
	RequestID string
	Current   LocateStatus
	Operation string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("cannot %s locate request %s in status %s", e.Operation, e.RequestID, e.Current)
}

// NotFoundError reports an unknown locate request id.
type NotFoundError struct {
	RequestID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locate request not found: %s", e.RequestID)
}

// InsufficientInventoryError reports a failed availability check during manual approval.
type InsufficientInventoryError struct {
	SecurityID string
	Requested  decimal.Decimal
	Remaining  decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for security %s: requested %s, remaining %s",
		e.SecurityID, e.Requested.String(), e.Remaining.String())
}

// ErrConcurrentModification is returned by repositories when a request changed
// after it was read. The caller's operation lost the race and was not applied.
var ErrConcurrentModification = errors.New("locate request was modified concurrently")
