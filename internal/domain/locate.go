package domain

import (
	"strings"
	"time"

	"locate-service/internal/settlement"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocateStatus is the lifecycle state of a locate request.
type LocateStatus string

const (
	StatusPending   LocateStatus = "PENDING"
	StatusApproved  LocateStatus = "APPROVED"
	StatusRejected  LocateStatus = "REJECTED"
	StatusCancelled LocateStatus = "CANCELLED"
	StatusExpired   LocateStatus = "EXPIRED"
)

const (
	// SystemUser is recorded as approver/rejector for rule-driven decisions.
	SystemUser = "SYSTEM"

	RejectionReasonInsufficientInventory = "INSUFFICIENT_INVENTORY"

	CalculationPending    = "PENDING"
	CalculationCalculated = "CALCULATED"
)

var transitions = map[LocateStatus][]LocateStatus{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusExpired},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s LocateStatus) CanTransitionTo(next LocateStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsResolved reports whether the request has left PENDING.
func (s LocateStatus) IsResolved() bool {
	return s != StatusPending
}

// ParseStatus normalizes a status string; ok is false for unknown values.
func ParseStatus(value string) (LocateStatus, bool) {
	status := LocateStatus(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusExpired:
		return status, true
	default:
		return "", false
	}
}

// LocateRequest is a request to confirm a security can be borrowed before a short sale.
type LocateRequest struct {
	RequestID         string
	SecurityID        string `validate:"required"`
	ClientID          string `validate:"required"`
	RequestorID       string `validate:"required"`
	AggregationUnitID string
	Market            string
	RequestedQuantity decimal.Decimal
	Status            LocateStatus
	RequestTimestamp  time.Time
	BusinessDate      time.Time
	CalculationStatus string
	Approval          *LocateApproval
	Rejection         *LocateRejection
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int // For optimistic locking
}

// LocateApproval is attached to an approved request.
type LocateApproval struct {
	ApprovalID          string
	RequestID           string
	ApprovedQuantity    decimal.Decimal
	DecrementQuantity   decimal.Decimal
	ApprovedBy          string
	SecurityTemperature SecurityTemperature
	BorrowRate          decimal.Decimal
	IsAutoApproved      bool
	ApprovalTimestamp   time.Time
	ExpiryDate          time.Time
}

// LocateRejection is attached to a rejected request.
type LocateRejection struct {
	RejectionID        string
	RequestID          string
	RejectionReason    string
	RejectedBy         string
	IsAutoRejected     bool
	RejectionTimestamp time.Time
}

var validate = validator.New()

// NewLocateRequest creates a pending request with a fresh identifier.
func NewLocateRequest(securityID, clientID, requestorID, market string, quantity decimal.Decimal) *LocateRequest {
	req := &LocateRequest{
		SecurityID:        securityID,
		ClientID:          clientID,
		RequestorID:       requestorID,
		Market:            market,
		RequestedQuantity: quantity,
	}
	req.Normalize(time.Now())
	return req
}

// Normalize fills the defaults of a request that is about to be created.
func (r *LocateRequest) Normalize(now time.Time) {
	if r.RequestID == "" {
		r.RequestID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.RequestTimestamp.IsZero() {
		r.RequestTimestamp = now
	}
	if r.BusinessDate.IsZero() {
		y, m, d := r.RequestTimestamp.Date()
		r.BusinessDate = time.Date(y, m, d, 0, 0, 0, 0, r.RequestTimestamp.Location())
	}
	if r.CalculationStatus == "" {
		r.CalculationStatus = CalculationPending
	}
	r.Market = strings.ToUpper(strings.TrimSpace(r.Market))
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Validate checks the structural requirements of a new request.
func (r *LocateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return &ValidationError{
				Field:   fieldErrs[0].Field(),
				Message: "is required",
			}
		}
		return &ValidationError{Message: err.Error()}
	}
	if !r.RequestedQuantity.IsPositive() {
		return &ValidationError{Field: "RequestedQuantity", Message: "must be greater than zero"}
	}
	return nil
}

// NewApproval builds an approval for req. The decrement is derived from the
// approved quantity and the expiry is one business day after approval.
func NewApproval(req *LocateRequest, approvedQuantity decimal.Decimal, approvedBy string,
	temperature SecurityTemperature, borrowRate decimal.Decimal, auto bool, now time.Time) *LocateApproval {
	return &LocateApproval{
		ApprovalID:          uuid.New().String(),
		RequestID:           req.RequestID,
		ApprovedQuantity:    approvedQuantity,
		DecrementQuantity:   CalculateDecrementQuantity(approvedQuantity, temperature),
		ApprovedBy:          approvedBy,
		SecurityTemperature: temperature,
		BorrowRate:          borrowRate,
		IsAutoApproved:      auto,
		ApprovalTimestamp:   now,
		ExpiryDate:          settlement.AddBusinessDays(now, 1),
	}
}

// NewRejection builds a rejection for req.
func NewRejection(req *LocateRequest, reason, rejectedBy string, auto bool, now time.Time) *LocateRejection {
	return &LocateRejection{
		RejectionID:        uuid.New().String(),
		RequestID:          req.RequestID,
		RejectionReason:    reason,
		RejectedBy:         rejectedBy,
		IsAutoRejected:     auto,
		RejectionTimestamp: now,
	}
}

// Approve moves a pending request to APPROVED.
func (r *LocateRequest) Approve(approval *LocateApproval) error {
	if err := r.requireTransition(StatusApproved, "approve"); err != nil {
		return err
	}
	if !approval.ApprovedQuantity.IsPositive() {
		return &ValidationError{Field: "ApprovedQuantity", Message: "must be greater than zero"}
	}
	if approval.ApprovedQuantity.GreaterThan(r.RequestedQuantity) {
		return &ValidationError{Field: "ApprovedQuantity", Message: "must not exceed requested quantity"}
	}
	r.Approval = approval
	r.Status = StatusApproved
	r.UpdatedAt = approval.ApprovalTimestamp
	return nil
}

// Reject moves a pending request to REJECTED.
func (r *LocateRequest) Reject(rejection *LocateRejection) error {
	if err := r.requireTransition(StatusRejected, "reject"); err != nil {
		return err
	}
	if strings.TrimSpace(rejection.RejectionReason) == "" {
		return &ValidationError{Field: "RejectionReason", Message: "is required"}
	}
	r.Rejection = rejection
	r.Status = StatusRejected
	r.UpdatedAt = rejection.RejectionTimestamp
	return nil
}

// Cancel moves a pending request to CANCELLED.
func (r *LocateRequest) Cancel(now time.Time) error {
	if err := r.requireTransition(StatusCancelled, "cancel"); err != nil {
		return err
	}
	r.Status = StatusCancelled
	r.UpdatedAt = now
	return nil
}

// Expire moves an approved request to EXPIRED. The approval is retained for audit.
func (r *LocateRequest) Expire(now time.Time) error {
	if err := r.requireTransition(StatusExpired, "expire"); err != nil {
		return err
	}
	r.Status = StatusExpired
	r.UpdatedAt = now
	return nil
}

// IsExpiredAt reports whether an approved request's approval has lapsed at t.
func (r *LocateRequest) IsExpiredAt(t time.Time) bool {
	return r.Status == StatusApproved && r.Approval != nil && r.Approval.ExpiryDate.Before(t)
}

// Clone returns a deep copy so stored records cannot be mutated through shared pointers.
func (r *LocateRequest) Clone() *LocateRequest {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Approval != nil {
		approval := *r.Approval
		cp.Approval = &approval
	}
	if r.Rejection != nil {
		rejection := *r.Rejection
		cp.Rejection = &rejection
	}
	return &cp
}

func (r *LocateRequest) requireTransition(next LocateStatus, operation string) error {
	if !r.Status.CanTransitionTo(next) {
		return &IllegalStateError{
			RequestID: r.RequestID,
			Current:   r.Status,
			Operation: operation,
		}
	}
	return nil
}
