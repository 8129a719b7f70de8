package handlers

import (
	"time"

	"locate-service/internal/domain"
	"locate-service/internal/workflow"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of business and trade dates
const DateLayout = "2006-01-02"

// CreateLocateRequest represents the request body for opening a locate
// @Description Request to locate borrowable inventory before a short sale
type CreateLocateRequest struct {
	// Security identifier (ticker, ISIN or internal code)
	SecurityID string `json:"securityId" binding:"required" example:"7203.T"`

	// Client placing the short sale
	ClientID string `json:"clientId" binding:"required" example:"CLIENT-001"`

	// Optional aggregation unit (book) for rule matching
	AggregationUnitID string `json:"aggregationUnitId" example:"AU-TOKYO-1"`

	// Market code used for rules and settlement conventions
	Market string `json:"market" example:"JP"`

	// Quantity to locate, must be greater than zero
	RequestedQuantity decimal.Decimal `json:"requestedQuantity" swaggertype:"string" example:"1000"`
}

// ApproveLocateRequest represents the request body for a manual approval
// @Description Manual approval. A zero or missing quantity approves the full requested quantity.
type ApproveLocateRequest struct {
	ApprovedQuantity    decimal.Decimal `json:"approvedQuantity" swaggertype:"string" example:"800"`
	SecurityTemperature string          `json:"securityTemperature" example:"HTB"`
	BorrowRate          decimal.Decimal `json:"borrowRate" swaggertype:"string" example:"0.0525"`
}

// RejectLocateRequest represents the request body for a manual rejection
type RejectLocateRequest struct {
	Reason string `json:"reason" binding:"required" example:"CLIENT_LIMIT_EXCEEDED"`
}

// ValidateShortSellRequest represents a short-sell coverage check
type ValidateShortSellRequest struct {
	ClientID   string          `json:"clientId" binding:"required" example:"CLIENT-001"`
	SecurityID string          `json:"securityId" binding:"required" example:"7203.T"`
	Quantity   decimal.Decimal `json:"quantity" swaggertype:"string" example:"500"`
}

// MarkCalculatedRequest selects the business date whose requests are marked calculated
type MarkCalculatedRequest struct {
	BusinessDate string `json:"businessDate" binding:"required" example:"2024-01-12"`
}

// ApprovalResponse is the approval attached to an approved locate
type ApprovalResponse struct {
	ApprovalID          string          `json:"approvalId"`
	ApprovedQuantity    decimal.Decimal `json:"approvedQuantity" swaggertype:"string"`
	DecrementQuantity   decimal.Decimal `json:"decrementQuantity" swaggertype:"string"`
	ApprovedBy          string          `json:"approvedBy"`
	SecurityTemperature string          `json:"securityTemperature"`
	BorrowRate          decimal.Decimal `json:"borrowRate" swaggertype:"string"`
	IsAutoApproved      bool            `json:"isAutoApproved"`
	ApprovalTimestamp   time.Time       `json:"approvalTimestamp"`
	ExpiryDate          time.Time       `json:"expiryDate"`
}

// RejectionResponse is the rejection attached to a rejected locate
type RejectionResponse struct {
	RejectionID        string    `json:"rejectionId"`
	RejectionReason    string    `json:"rejectionReason"`
	RejectedBy         string    `json:"rejectedBy"`
	IsAutoRejected     bool      `json:"isAutoRejected"`
	RejectionTimestamp time.Time `json:"rejectionTimestamp"`
}

// LocateResponse represents a locate request
// @Description Locate request with its current status and decision
type LocateResponse struct {
	RequestID         string             `json:"requestId" example:"550e8400-e29b-41d4-a716-446655440000"`
	SecurityID        string             `json:"securityId" example:"7203.T"`
	ClientID          string             `json:"clientId" example:"CLIENT-001"`
	RequestorID       string             `json:"requestorId" example:"trader"`
	AggregationUnitID string             `json:"aggregationUnitId,omitempty"`
	Market            string             `json:"market" example:"JP"`
	RequestedQuantity decimal.Decimal    `json:"requestedQuantity" swaggertype:"string" example:"1000"`
	Status            string             `json:"status" example:"PENDING"`
	RequestTimestamp  time.Time          `json:"requestTimestamp"`
	BusinessDate      string             `json:"businessDate" example:"2024-01-12"`
	CalculationStatus string             `json:"calculationStatus" example:"PENDING"`
	Approval          *ApprovalResponse  `json:"approval,omitempty"`
	Rejection         *RejectionResponse `json:"rejection,omitempty"`
	Version           int                `json:"version" example:"1"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// LocateListResponse represents a list of locates
type LocateListResponse struct {
	Locates []LocateResponse `json:"locates"`
	Total   int              `json:"total" example:"2"`
}

// AutoApprovalResponse reports whether the rules produced a decision
type AutoApprovalResponse struct {
	// False when no rule matched and the request awaits manual review
	AutoProcessed bool           `json:"autoProcessed" example:"true"`
	Locate        LocateResponse `json:"locate"`
}

// CountResponse reports how many requests an operation touched
type CountResponse struct {
	Count int `json:"count" example:"3"`
}

// ShortSellValidationResponse reports whether active locates cover an order
type ShortSellValidationResponse struct {
	ClientID         string          `json:"clientId"`
	SecurityID       string          `json:"securityId"`
	OrderQuantity    decimal.Decimal `json:"orderQuantity" swaggertype:"string"`
	LocatedQuantity  decimal.Decimal `json:"locatedQuantity" swaggertype:"string"`
	Covered          bool            `json:"covered"`
	LocateRequestIDs []string        `json:"locateRequestIds"`
}

// SettlementDateResponse represents a settlement date calculation
type SettlementDateResponse struct {
	Market         string `json:"market" example:"JP"`
	TradeDate      string `json:"tradeDate" example:"2024-01-12"`
	SettlementDate string `json:"settlementDate" example:"2024-01-16"`
	BeforeCutoff   bool   `json:"beforeCutoff" example:"true"`
}

// SettlementDayResponse represents the signed business-day offset of a date
type SettlementDayResponse struct {
	BusinessDate  string `json:"businessDate" example:"2024-01-12"`
	Date          string `json:"date" example:"2024-01-16"`
	SettlementDay int    `json:"settlementDay" example:"2"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"locate-service"`
}

func toLocateResponse(req *domain.LocateRequest) LocateResponse {
	resp := LocateResponse{
		RequestID:         req.RequestID,
		SecurityID:        req.SecurityID,
		ClientID:          req.ClientID,
		RequestorID:       req.RequestorID,
		AggregationUnitID: req.AggregationUnitID,
		Market:            req.Market,
		RequestedQuantity: req.RequestedQuantity,
		Status:            string(req.Status),
		RequestTimestamp:  req.RequestTimestamp,
		BusinessDate:      req.BusinessDate.Format(DateLayout),
		CalculationStatus: req.CalculationStatus,
		Version:           req.Version,
		UpdatedAt:         req.UpdatedAt,
	}

	if a := req.Approval; a != nil {
		resp.Approval = &ApprovalResponse{
			ApprovalID:          a.ApprovalID,
			ApprovedQuantity:    a.ApprovedQuantity,
			DecrementQuantity:   a.DecrementQuantity,
			ApprovedBy:          a.ApprovedBy,
			SecurityTemperature: string(a.SecurityTemperature),
			BorrowRate:          a.BorrowRate,
			IsAutoApproved:      a.IsAutoApproved,
			ApprovalTimestamp:   a.ApprovalTimestamp,
			ExpiryDate:          a.ExpiryDate,
		}
	}
	if r := req.Rejection; r != nil {
		resp.Rejection = &RejectionResponse{
			RejectionID:        r.RejectionID,
			RejectionReason:    r.RejectionReason,
			RejectedBy:         r.RejectedBy,
			IsAutoRejected:     r.IsAutoRejected,
			RejectionTimestamp: r.RejectionTimestamp,
		}
	}
	return resp
}

func toLocateList(reqs []*domain.LocateRequest) LocateListResponse {
	locates := make([]LocateResponse, 0, len(reqs))
	for _, req := range reqs {
		locates = append(locates, toLocateResponse(req))
	}
	return LocateListResponse{Locates: locates, Total: len(locates)}
}

func toShortSellResponse(v *workflow.ShortSellValidation) ShortSellValidationResponse {
	ids := v.LocateRequestIDs
	if ids == nil {
		ids = []string{}
	}
	return ShortSellValidationResponse{
		ClientID:         v.ClientID,
		SecurityID:       v.SecurityID,
		OrderQuantity:    v.OrderQuantity,
		LocatedQuantity:  v.LocatedQuantity,
		Covered:          v.Covered,
		LocateRequestIDs: ids,
	}
}
