package errors

import (
	"fmt"
	"net/http"
	"testing"

	"locate-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", &domain.ValidationError{Field: "SecurityID", Message: "is required"}, "ValidationError", http.StatusBadRequest},
		{"illegal state", &domain.IllegalStateError{RequestID: "R-1", Current: domain.StatusApproved, Operation: "approve"}, "IllegalState", http.StatusConflict},
		{"not found", &domain.NotFoundError{RequestID: "R-1"}, "LocateNotFound", http.StatusNotFound},
		{"insufficient", &domain.InsufficientInventoryError{SecurityID: "AAPL", Requested: decimal.NewFromInt(10), Remaining: decimal.NewFromInt(5)}, "InsufficientInventory", http.StatusUnprocessableEntity},
		{"wrapped concurrent", fmt.Errorf("save: %w", domain.ErrConcurrentModification), "ConcurrentModification", http.StatusConflict},
		{"standard passes through", NewUnauthorized("no token", ""), "Unauthorized", http.StatusUnauthorized},
		{"unknown", fmt.Errorf("boom"), "InternalError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := FromDomain(tt.err)

			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.status, stdErr.HTTPStatus())
		})
	}
}

func TestFromDomain_Details(t *testing.T) {
	stdErr := FromDomain(&domain.IllegalStateError{RequestID: "R-1", Current: domain.StatusCancelled, Operation: "cancel"})

	assert.Equal(t, "cannot cancel locate request", stdErr.Message)
	assert.Equal(t, "Request ID: R-1, Status: CANCELLED", stdErr.Details)
}
